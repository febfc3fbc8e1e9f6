package validator

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/thoreinstein/defcheck/internal/errors"
)

// Format specifies the output format for validation reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
	// FormatTable produces a bordered table.
	FormatTable Format = "table"
)

// Formats lists the supported report formats.
var Formats = []Format{FormatText, FormatJSON, FormatTable}

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.Newf("unknown report format %q (supported: text, json, table)", s)
}

// Reporter formats and writes validation results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// Report writes the result of validating checked definitions.
func (r *Reporter) Report(list *ErrorList, checked int) error {
	switch r.format {
	case FormatJSON:
		return r.reportJSON(list, checked)
	case FormatTable:
		return r.reportTable(list, checked)
	default:
		return r.reportText(list, checked)
	}
}

type jsonReport struct {
	Valid   bool        `json:"valid"`
	Checked int         `json:"checked"`
	Count   int         `json:"count"`
	Errors  []jsonError `json:"errors"`
}

type jsonError struct {
	ServiceID string   `json:"service_id"`
	Kind      string   `json:"kind"`
	Message   string   `json:"message"`
	Hints     []string `json:"hints,omitempty"`
}

func (r *Reporter) reportJSON(list *ErrorList, checked int) error {
	report := jsonReport{
		Valid:   list.Len() == 0,
		Checked: checked,
		Count:   list.Len(),
		Errors:  make([]jsonError, 0, list.Len()),
	}
	for e := range list.All() {
		report.Errors = append(report.Errors, jsonError{
			ServiceID: e.ServiceID,
			Kind:      e.Kind(),
			Message:   e.Message(),
			Hints:     e.Hints(),
		})
	}

	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(report), "encoding JSON report")
}

func (r *Reporter) reportText(list *ErrorList, checked int) error {
	if list.Len() == 0 {
		fmt.Fprintln(r.out, color.GreenString("✓ Service definitions are valid (%d checked)", checked))
		return nil
	}

	fmt.Fprintf(r.out, "Service definition validation errors (%s):\n", color.RedString("%d", list.Len()))
	for e := range list.All() {
		fmt.Fprintf(r.out, "- %s: %s\n", color.New(color.Bold).Sprint(e.ServiceID), e.Message())
		for _, hint := range e.Hints() {
			fmt.Fprintln(r.out, color.New(color.FgHiBlack).Sprintf("    hint: %s", hint))
		}
	}
	return nil
}

func (r *Reporter) reportTable(list *ErrorList, checked int) error {
	if list.Len() == 0 {
		fmt.Fprintf(r.out, "%s %s\n", text.FgGreen.Sprint("✓"), text.FgGreen.Sprintf("Service definitions are valid (%d checked)", checked))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"SERVICE", "KIND", "MESSAGE"})
	for e := range list.All() {
		msg := e.Message()
		for _, hint := range e.Hints() {
			msg += "\n" + text.FgHiBlack.Sprint("hint: "+hint)
		}
		t.AppendRow(table.Row{e.ServiceID, e.Kind(), msg})
	}
	t.AppendFooter(table.Row{"", "TOTAL", list.Len()})
	t.Render()
	return nil
}
