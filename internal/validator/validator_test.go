package validator

import (
	"testing"

	"github.com/hashicorp/go-multierror"

	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/errors"
)

type kindError struct {
	kind, msg string
}

func (e *kindError) Error() string     { return e.msg }
func (e *kindError) ErrorKind() string { return e.kind }

func sampleList() *ErrorList {
	list := NewErrorList()
	list.Add(NewValidationError("mailer", &definition.Definition{Class: "Mailer"},
		&kindError{kind: "ClassNotFound", msg: `Class "Mailer" does not exist`}))
	list.Add(NewValidationError("widget", &definition.Definition{},
		errors.WithHint(&kindError{kind: "ServiceNotFound", msg: `Service "loger" does not exist`}, `did you mean "logger"?`)))
	return list
}

func TestValidationError(t *testing.T) {
	cause := &kindError{kind: "DefinitionHasNoClass", msg: "Definition has no class"}
	def := &definition.Definition{}
	e := NewValidationError("foo", def, cause)

	if got, want := e.Error(), "foo: Definition has no class"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if e.Kind() != "DefinitionHasNoClass" {
		t.Errorf("Kind() = %q", e.Kind())
	}
	if e.Definition != def {
		t.Error("Definition should be the original pointer")
	}
	if !errors.Is(e, cause) {
		t.Error("ValidationError should unwrap to its cause")
	}

	plain := NewValidationError("bar", nil, errors.New("boom"))
	if plain.Kind() != "Error" {
		t.Errorf("Kind() for plain error = %q, want Error", plain.Kind())
	}
	if len(plain.Hints()) != 0 {
		t.Errorf("Hints() = %v, want none", plain.Hints())
	}
}

func TestValidationError_Hints(t *testing.T) {
	list := sampleList()
	errs := list.Errors()

	hints := errs[1].Hints()
	if len(hints) != 1 || hints[0] != `did you mean "logger"?` {
		t.Errorf("Hints() = %v", hints)
	}
	if errs[1].Kind() != "ServiceNotFound" {
		t.Errorf("Kind() through hint wrapper = %q, want ServiceNotFound", errs[1].Kind())
	}
	if errs[1].Message() != `Service "loger" does not exist` {
		t.Errorf("Message() = %q", errs[1].Message())
	}
}

func TestErrorList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var list ErrorList
		if list.Len() != 0 {
			t.Errorf("Len() = %d, want 0", list.Len())
		}
		if err := list.Err(); err != nil {
			t.Errorf("Err() = %v, want nil", err)
		}
	})

	t.Run("nil list", func(t *testing.T) {
		var list *ErrorList
		if list.Len() != 0 || list.Errors() != nil {
			t.Error("nil list should behave as empty")
		}
		for range list.All() {
			t.Error("nil list should yield nothing")
		}
	})

	t.Run("insertion order", func(t *testing.T) {
		list := sampleList()
		var ids []string
		for e := range list.All() {
			ids = append(ids, e.ServiceID)
		}
		if len(ids) != 2 || ids[0] != "mailer" || ids[1] != "widget" {
			t.Errorf("All() ids = %v", ids)
		}
	})

	t.Run("errors copy is detached", func(t *testing.T) {
		list := sampleList()
		errs := list.Errors()
		errs[0] = nil
		if list.Errors()[0] == nil {
			t.Error("Errors() must return a copy")
		}
	})
}

func TestErrorList_Err(t *testing.T) {
	list := sampleList()
	err := list.Err()
	if err == nil {
		t.Fatal("Err() = nil for non-empty list")
	}

	want := "Service definition validation errors (2):\n" +
		"- mailer: Class \"Mailer\" does not exist\n" +
		"- widget: Service \"loger\" does not exist"
	if err.Error() != want {
		t.Errorf("Err().Error() =\n%s\nwant\n%s", err.Error(), want)
	}
	if Print(list) != want {
		t.Errorf("Print() =\n%s\nwant\n%s", Print(list), want)
	}

	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("Err() should be a *multierror.Error, got %T", err)
	}
	if len(merr.Errors) != 2 {
		t.Errorf("wrapped errors = %d, want 2", len(merr.Errors))
	}
}
