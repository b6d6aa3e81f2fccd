// Package interrupt implements two-step Ctrl+C handling for batch runs.
// The first signal asks the run to stop once the current file is written;
// the second cancels the context, aborting the in-flight request.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ExitInterrupt is the exit code for interrupt (130 = 128 + SIGINT).
const ExitInterrupt = 130

// Messages shown on each interrupt.
const (
	stopMessage  = "\nStopping after the current file. Press Ctrl+C again to abort."
	abortMessage = "\nAborting."
)

// Handler tracks interrupts for one run.
type Handler struct {
	mu         sync.Mutex
	requested  bool
	aborted    bool
	stopped    bool
	cancelFunc context.CancelFunc
	done       chan struct{} // Signals listen goroutine to exit

	stderr io.Writer
}

// Options holds injectable dependencies for testing.
type Options struct {
	SigCh <-chan os.Signal
	// Stderr is the writer for user-facing messages.
	// Must be safe for concurrent writes; defaults to os.Stderr.
	Stderr io.Writer
}

// NewHandler creates a handler that listens for SIGINT/SIGTERM.
// Returns the handler and a context that is canceled on the second interrupt.
func NewHandler(parent context.Context) (*Handler, context.Context) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return newHandler(parent, Options{SigCh: sigCh})
}

// NewHandlerWithOptions creates a handler with injectable dependencies.
// Used by tests to inject mock signal channels and output.
func NewHandlerWithOptions(parent context.Context, opts Options) (*Handler, context.Context) {
	return newHandler(parent, opts)
}

func newHandler(parent context.Context, opts Options) (*Handler, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	h := &Handler{
		cancelFunc: cancel,
		done:       make(chan struct{}),
		stderr:     stderr,
	}

	// Only start listener if sigCh is provided (nil check for safety)
	if opts.SigCh != nil {
		go h.listen(opts.SigCh)
	}

	return h, ctx
}

// listen handles incoming signals.
func (h *Handler) listen(sigCh <-chan os.Signal) {
	for {
		select {
		case <-h.done:
			return
		case _, ok := <-sigCh:
			if !ok {
				return // Channel closed
			}

			h.mu.Lock()
			if h.stopped {
				h.mu.Unlock()
				return
			}

			if !h.requested {
				h.requested = true
				h.mu.Unlock()
				fmt.Fprintln(h.stderr, stopMessage)
				continue
			}

			h.aborted = true
			h.mu.Unlock()
			fmt.Fprintln(h.stderr, abortMessage)
			h.cancelFunc()
			return
		}
	}
}

// StopRequested reports whether at least one interrupt was received.
func (h *Handler) StopRequested() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.requested
}

// Aborted reports whether a second interrupt canceled the context.
func (h *Handler) Aborted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.aborted
}

// Stop cleans up the handler. Should be called when done.
func (h *Handler) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	close(h.done) // Signal listen goroutine to exit
	h.cancelFunc()
}
