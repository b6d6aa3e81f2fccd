package translate

// StatusReporter receives progress messages around each partition request.
// Implementations must not influence the translation; they only report.
type StatusReporter interface {
	OnStart(message string)
	OnEnd(message string)
}

// StatusFuncs adapts two plain functions to StatusReporter.
// Nil fields are skipped.
type StatusFuncs struct {
	Start func(message string)
	End   func(message string)
}

// Compile-time interface compliance checks.
var (
	_ StatusReporter = StatusFuncs{}
	_ StatusReporter = nopReporter{}
)

func (f StatusFuncs) OnStart(message string) {
	if f.Start != nil {
		f.Start(message)
	}
}

func (f StatusFuncs) OnEnd(message string) {
	if f.End != nil {
		f.End(message)
	}
}

type nopReporter struct{}

func (nopReporter) OnStart(string) {}
func (nopReporter) OnEnd(string)   {}
