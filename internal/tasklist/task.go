package tasklist

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only accepted input format for deadline dates.
const DateLayout = "2006-01-02"

var (
	ErrEmptyName       = errors.New("task name is empty")
	ErrInvalidDate     = errors.New("invalid date (format: yyyy-mm-dd)")
	ErrIndexOutOfRange = errors.New("task index out of range")
	ErrMalformedLine   = errors.New("malformed task line")
)

// Type tags used in display strings and persisted lines.
const (
	TagTodo     = "T"
	TagDeadline = "D"
	TagEvent    = "E"
)

// Task is one record in the list. The concrete types are *Todo, *Deadline
// and *Event.
type Task interface {
	Name() string
	Done() bool
	SetDone(done bool)
	// Tag returns the single-letter type tag.
	Tag() string
	// Display formats the task for humans, dates rendered with layout.
	Display(layout string) string
	PersistedLine() string
	Clone() Task
	String() string
}

type base struct {
	name string
	done bool
}

func newBase(name string) (base, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return base{}, ErrEmptyName
	}
	return base{name: name}, nil
}

func (b *base) Name() string      { return b.name }
func (b *base) Done() bool        { return b.done }
func (b *base) SetDone(done bool) { b.done = done }

func (b *base) mark() string {
	if b.done {
		return "[X]"
	}
	return "[ ]"
}

func (b *base) doneFlag() string {
	if b.done {
		return "1"
	}
	return "0"
}

// Todo is a plain task with only a name.
type Todo struct {
	base
}

func NewTodo(name string) (*Todo, error) {
	b, err := newBase(name)
	if err != nil {
		return nil, err
	}
	return &Todo{base: b}, nil
}

func (t *Todo) Tag() string { return TagTodo }

func (t *Todo) Display(string) string {
	return fmt.Sprintf("[%s]%s %s", TagTodo, t.mark(), t.name)
}

func (t *Todo) PersistedLine() string {
	return joinFields(TagTodo, t.doneFlag(), t.name)
}

func (t *Todo) Clone() Task {
	c := *t
	return &c
}

func (t *Todo) String() string { return t.Display(DateLayout) }

// Deadline is a task due on a calendar date.
type Deadline struct {
	base
	by time.Time
}

// NewDeadline parses date with DateLayout.
func NewDeadline(name, date string) (*Deadline, error) {
	b, err := newBase(name)
	if err != nil {
		return nil, err
	}
	by, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	return &Deadline{base: b, by: by}, nil
}

// ParseDate parses a yyyy-mm-dd calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func (d *Deadline) By() time.Time { return d.by }

func (d *Deadline) Tag() string { return TagDeadline }

func (d *Deadline) Display(layout string) string {
	if strings.TrimSpace(layout) == "" {
		layout = DateLayout
	}
	return fmt.Sprintf("[%s]%s %s (by: %s)", TagDeadline, d.mark(), d.name, d.by.Format(layout))
}

func (d *Deadline) PersistedLine() string {
	return joinFields(TagDeadline, d.doneFlag(), d.name, d.by.Format(DateLayout))
}

func (d *Deadline) Clone() Task {
	c := *d
	return &c
}

func (d *Deadline) String() string { return d.Display(DateLayout) }

// Event spans two free-text markers, e.g. "mon" to "fri".
type Event struct {
	base
	from string
	to   string
}

func NewEvent(name, from, to string) (*Event, error) {
	b, err := newBase(name)
	if err != nil {
		return nil, err
	}
	return &Event{base: b, from: strings.TrimSpace(from), to: strings.TrimSpace(to)}, nil
}

func (e *Event) From() string { return e.from }
func (e *Event) To() string   { return e.to }

func (e *Event) Tag() string { return TagEvent }

func (e *Event) Display(string) string {
	return fmt.Sprintf("[%s]%s %s (from: %s to: %s)", TagEvent, e.mark(), e.name, e.from, e.to)
}

func (e *Event) PersistedLine() string {
	return joinFields(TagEvent, e.doneFlag(), e.name, e.from, e.to)
}

func (e *Event) Clone() Task {
	c := *e
	return &c
}

func (e *Event) String() string { return e.Display(DateLayout) }
