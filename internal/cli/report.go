package cli

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/alnah/translocutor/internal/format"
	"github.com/alnah/translocutor/internal/translate"
)

// usageReport summarizes one translated file.
// Estimated tokens come from the local tokenizer; usage is what the service billed.
type usageReport struct {
	SourceLanguage string
	TargetLanguage string
	Captions       int
	Partitions     int
	Estimated      int
	Usage          translate.Usage
	Elapsed        time.Duration
}

// render formats the report as a two-column table.
func (r usageReport) render() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"", "Value"})
	tw.AppendRows([]table.Row{
		{"Languages", r.SourceLanguage + " -> " + r.TargetLanguage},
		{"Captions", format.Tokens(r.Captions)},
		{"Requests", format.Tokens(r.Partitions)},
		{"Elapsed", format.Duration(r.Elapsed)},
	})
	tw.AppendSeparator()
	tw.AppendRows([]table.Row{
		{"Estimated tokens", format.Tokens(r.Estimated)},
		{"Prompt tokens", format.Tokens(r.Usage.PromptTokens)},
		{"Completion tokens", format.Tokens(r.Usage.CompletionTokens)},
		{"Total tokens", format.Tokens(r.Usage.TotalTokens)},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignRight},
	})
	return tw.Render()
}
