package validator

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestReporter_Report(t *testing.T) {
	disableColor(t)
	list := sampleList()

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		reporter := NewReporter(&buf, FormatText)
		if err := reporter.Report(list, 5); err != nil {
			t.Fatalf("Report() error: %v", err)
		}

		output := buf.String()
		if !strings.HasPrefix(output, "Service definition validation errors (2):\n") {
			t.Errorf("output missing header:\n%s", output)
		}
		if !strings.Contains(output, `- mailer: Class "Mailer" does not exist`) {
			t.Error("output missing error details")
		}
		if !strings.Contains(output, `hint: did you mean "logger"?`) {
			t.Error("output missing hint")
		}
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		reporter := NewReporter(&buf, FormatJSON)
		if err := reporter.Report(list, 5); err != nil {
			t.Fatalf("Report() error: %v", err)
		}

		var decoded jsonReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode JSON output: %v", err)
		}

		if decoded.Valid {
			t.Error("valid = true, want false")
		}
		if decoded.Count != 2 || decoded.Checked != 5 {
			t.Errorf("count = %d, checked = %d", decoded.Count, decoded.Checked)
		}
		if decoded.Errors[0].ServiceID != "mailer" || decoded.Errors[0].Kind != "ClassNotFound" {
			t.Errorf("first error = %+v", decoded.Errors[0])
		}
		if len(decoded.Errors[1].Hints) != 1 {
			t.Errorf("second error hints = %v", decoded.Errors[1].Hints)
		}
	})

	t.Run("table format", func(t *testing.T) {
		var buf bytes.Buffer
		reporter := NewReporter(&buf, FormatTable)
		if err := reporter.Report(list, 5); err != nil {
			t.Fatalf("Report() error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"SERVICE", "KIND", "MESSAGE", "mailer", "ClassNotFound", "widget"} {
			if !strings.Contains(output, want) {
				t.Errorf("table output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("empty result text", func(t *testing.T) {
		var buf bytes.Buffer
		reporter := NewReporter(&buf, FormatText)
		if err := reporter.Report(NewErrorList(), 3); err != nil {
			t.Fatalf("Report() error: %v", err)
		}
		if !strings.Contains(buf.String(), "Service definitions are valid (3 checked)") {
			t.Errorf("unexpected output: %q", buf.String())
		}
	})

	t.Run("empty result json", func(t *testing.T) {
		var buf bytes.Buffer
		reporter := NewReporter(&buf, FormatJSON)
		if err := reporter.Report(NewErrorList(), 3); err != nil {
			t.Fatalf("Report() error: %v", err)
		}
		if !strings.Contains(buf.String(), `"errors": []`) {
			t.Errorf("errors should encode as an empty array: %s", buf.String())
		}
		if !strings.Contains(buf.String(), `"valid": true`) {
			t.Errorf("valid should be true: %s", buf.String())
		}
	})
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %q, %v", f, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}
