package verifier

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type Result struct {
	Name     string
	Passed   bool
	Err      error
	Duration time.Duration
}

type Report struct {
	Results []Result
}

func (r Report) Passed() bool {
	return r.Failed() == 0
}

func (r Report) Failed() int {
	failed := 0
	for _, res := range r.Results {
		if !res.Passed {
			failed++
		}
	}
	return failed
}

// Result returns the result of the check with the given name.
func (r Report) Result(name string) (Result, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return Result{}, false
}

// Render writes the report as a table to `w`.
func (r Report) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Check", "Result", "Time", "Detail"})

	for _, res := range r.Results {
		status := text.FgGreen.Sprint("pass")
		detail := ""
		if !res.Passed {
			status = text.FgRed.Sprint("fail")
			if res.Err != nil {
				detail = res.Err.Error()
			}
		}
		t.AppendRow(table.Row{
			res.Name,
			status,
			res.Duration.Round(time.Millisecond).String(),
			detail,
		})
	}

	t.AppendFooter(table.Row{
		"",
		"",
		"passed",
		len(r.Results) - r.Failed(),
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
