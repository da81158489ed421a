package parser

import (
	"errors"
	"testing"

	"github.com/amirbrooks/duke/internal/tasklist"
)

func run(t *testing.T, list *tasklist.List, lines ...string) Outcome {
	t.Helper()
	var out Outcome
	for _, line := range lines {
		o, err := Dispatch(line, list)
		if err != nil {
			t.Fatalf("Dispatch(%q): %v", line, err)
		}
		out = o
	}
	return out
}

func TestTodoCreatesPlainTask(t *testing.T) {
	list := tasklist.New()
	o := run(t, list, "todo test")
	if o.Command != CommandTodo || o.Index != 0 {
		t.Fatalf("unexpected outcome %#v", o)
	}
	got, _ := list.Get(0)
	want, _ := tasklist.NewTodo("test")
	if got.String() != want.String() {
		t.Fatalf("expected %q, got %q", want.String(), got.String())
	}
}

func TestTodoKeepsOnlyFirstToken(t *testing.T) {
	list := tasklist.New()
	o := run(t, list, "todo read the book")
	if o.Task.Name() != "read" {
		t.Fatalf("expected name read, got %q", o.Task.Name())
	}

	p := New(Options{Strict: true, MultiWordNames: true})
	o, err := p.Dispatch("todo read  the book", list)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if o.Task.Name() != "read the book" {
		t.Fatalf("expected joined name, got %q", o.Task.Name())
	}
}

func TestDeadlineThenMark(t *testing.T) {
	list := tasklist.New()
	run(t, list, "deadline test /by 2020-04-12", "mark 1")
	if list.Len() != 1 {
		t.Fatalf("expected 1 task, got %d", list.Len())
	}
	got, _ := list.Get(0)
	if _, ok := got.(*tasklist.Deadline); !ok {
		t.Fatalf("expected *tasklist.Deadline, got %T", got)
	}
	if !got.Done() {
		t.Fatal("expected task to be done")
	}
	want, _ := tasklist.NewDeadline("test", "2020-04-12")
	want.SetDone(true)
	if got.String() != want.String() {
		t.Fatalf("expected %q, got %q", want.String(), got.String())
	}
}

func TestDeadlineRendersDate(t *testing.T) {
	list := tasklist.New()
	o := run(t, list, "deadline test /by 2020-04-12")
	if got, want := o.Task.Display(tasklist.DateLayout), "[D][ ] test (by: 2020-04-12)"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMarkUnmarkTouchesOnlyTarget(t *testing.T) {
	list := tasklist.New()
	run(t, list, "todo a", "todo b", "todo c")

	o := run(t, list, "mark 2")
	if o.Command != CommandMark || o.Index != 1 || !o.Task.Done() {
		t.Fatalf("unexpected mark outcome %#v", o)
	}
	for i, want := range []bool{false, true, false} {
		got, _ := list.Get(i)
		if got.Done() != want {
			t.Fatalf("task %d: expected done=%t, got %t", i, want, got.Done())
		}
	}

	o = run(t, list, "unmark 2")
	if o.Command != CommandUnmark || o.Task.Done() {
		t.Fatalf("unexpected unmark outcome %#v", o)
	}
	for i := 0; i < 3; i++ {
		got, _ := list.Get(i)
		if got.Done() {
			t.Fatalf("task %d: expected not done", i)
		}
	}
}

func TestOutcomeIsSnapshot(t *testing.T) {
	list := tasklist.New()
	added := run(t, list, "todo a")
	run(t, list, "mark 1")
	if added.Task.Done() {
		t.Fatal("expected earlier outcome to keep its dispatch-time state")
	}
}

func TestDeleteShiftsAndKeepsRemovedTask(t *testing.T) {
	list := tasklist.New()
	run(t, list, "todo a", "event trip /from mon /to fri", "todo c")

	o := run(t, list, "delete 2")
	if o.Command != CommandDelete || o.Index != 1 {
		t.Fatalf("unexpected outcome %#v", o)
	}
	ev, ok := o.Task.(*tasklist.Event)
	if !ok || ev.Name() != "trip" || ev.From() != "mon" || ev.To() != "fri" {
		t.Fatalf("expected removed event trip mon..fri, got %#v", o.Task)
	}
	if list.Len() != 2 {
		t.Fatalf("expected 2 tasks, got %d", list.Len())
	}
	next, _ := list.Get(1)
	if next.Name() != "c" {
		t.Fatalf("expected c at index 1, got %q", next.Name())
	}
}

func TestListAndBye(t *testing.T) {
	list := tasklist.New()
	if o := run(t, list, "list"); o.Command != CommandList || o.Task != nil {
		t.Fatalf("unexpected list outcome %#v", o)
	}
	if o := run(t, list, "  bye  "); o.Command != CommandExit || o.Task != nil {
		t.Fatalf("unexpected bye outcome %#v", o)
	}
}

func TestDispatchErrors(t *testing.T) {
	cases := []struct {
		line string
		want error
	}{
		{"list extra", ErrWrongArity},
		{"bye now", ErrWrongArity},
		{"mark", ErrWrongArity},
		{"mark 1 2", ErrWrongArity},
		{"mark abc", ErrNonNumericIndex},
		{"unmark 1.5", ErrNonNumericIndex},
		{"delete x", ErrNonNumericIndex},
		{"mark 99", ErrIndexOutOfRange},
		{"mark 0", ErrIndexOutOfRange},
		{"delete -1", ErrIndexOutOfRange},
		{"mark 99999999999999999999", ErrIndexOutOfRange},
		{"deadline test 2020-04-12", ErrWrongArity},
		{"deadline test by 2020-04-12", ErrMissingMarker},
		{"deadline test /by tomorrow", ErrInvalidDate},
		{"deadline test /by 2020-13-01", ErrInvalidDate},
		{"event trip /from mon", ErrWrongArity},
		{"event trip /from mon to fri", ErrMissingMarker},
		{"event trip from mon /to fri", ErrMissingMarker},
		{"todo", ErrEmptyParameter},
		{"", ErrUnknownCommand},
		{"   ", ErrUnknownCommand},
		{"blah test", ErrUnknownCommand},
		{"LIST", ErrUnknownCommand},
	}
	for _, tc := range cases {
		list := tasklist.New()
		run(t, list, "todo only")
		_, err := Dispatch(tc.line, list)
		if !errors.Is(err, tc.want) {
			t.Errorf("Dispatch(%q): expected %v, got %v", tc.line, tc.want, err)
			continue
		}
		var ce *CommandError
		if !errors.As(err, &ce) {
			t.Errorf("Dispatch(%q): expected *CommandError, got %T", tc.line, err)
		}
		if list.Len() != 1 {
			t.Errorf("Dispatch(%q): expected list unchanged, got %d tasks", tc.line, list.Len())
		}
		got, _ := list.Get(0)
		if got.Done() {
			t.Errorf("Dispatch(%q): expected task untouched", tc.line)
		}
	}
}

func TestLenientFallsThroughToTodo(t *testing.T) {
	p := New(Options{})
	list := tasklist.New()
	o, err := p.Dispatch("read book", list)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if o.Command != CommandTodo || o.Task.Name() != "book" {
		t.Fatalf("unexpected outcome %#v", o)
	}
	if _, err := p.Dispatch("read", list); !errors.Is(err, ErrEmptyParameter) {
		t.Fatalf("expected ErrEmptyParameter, got %v", err)
	}
	if _, err := p.Dispatch("", list); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand for blank line, got %v", err)
	}
}

func TestKind(t *testing.T) {
	list := tasklist.New()
	_, err := Dispatch("mark 3", list)
	if got := Kind(err); got != "index_out_of_range" {
		t.Fatalf("expected index_out_of_range, got %q", got)
	}
	_, err = Dispatch("unmark 99999999999999999999", list)
	if got := Kind(err); got != "index_out_of_range" {
		t.Fatalf("expected overflowing index to be index_out_of_range, got %q", got)
	}
	if got := Kind(errors.New("boom")); got != "internal" {
		t.Fatalf("expected internal, got %q", got)
	}
	if got := Kind(nil); got != "" {
		t.Fatalf("expected empty kind, got %q", got)
	}
}

func TestCommandErrorMessage(t *testing.T) {
	_, err := Dispatch("mark abc", tasklist.New())
	want := `mark: parameter is not a numerical value (got "abc")`
	if err == nil || err.Error() != want {
		t.Fatalf("expected %q, got %v", want, err)
	}
}
