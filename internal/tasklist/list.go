package tasklist

import "fmt"

// IndexError reports a zero-based index outside [0, Size).
// It satisfies errors.Is(err, ErrIndexOutOfRange).
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	if e == nil {
		return ErrIndexOutOfRange.Error()
	}
	if e.Size == 0 {
		return fmt.Sprintf("%s: task %d requested but the list is empty", ErrIndexOutOfRange, e.Index+1)
	}
	return fmt.Sprintf("%s: task %d requested, valid range is 1..%d", ErrIndexOutOfRange, e.Index+1, e.Size)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// List is an ordered task collection. It is not safe for concurrent use.
type List struct {
	tasks []Task
}

func New(tasks ...Task) *List {
	l := &List{}
	for _, t := range tasks {
		if t != nil {
			l.tasks = append(l.tasks, t)
		}
	}
	return l
}

func (l *List) Append(t Task) {
	l.tasks = append(l.tasks, t)
}

func (l *List) Len() int { return len(l.tasks) }

func (l *List) check(i int) error {
	if i < 0 || i >= len(l.tasks) {
		return &IndexError{Index: i, Size: len(l.tasks)}
	}
	return nil
}

// Get returns the task at zero-based index i.
func (l *List) Get(i int) (Task, error) {
	if err := l.check(i); err != nil {
		return nil, err
	}
	return l.tasks[i], nil
}

func (l *List) SetDone(i int, done bool) error {
	if err := l.check(i); err != nil {
		return err
	}
	l.tasks[i].SetDone(done)
	return nil
}

// Delete removes the task at i and returns it. Later tasks shift down by one.
func (l *List) Delete(i int) (Task, error) {
	if err := l.check(i); err != nil {
		return nil, err
	}
	t := l.tasks[i]
	copy(l.tasks[i:], l.tasks[i+1:])
	l.tasks[len(l.tasks)-1] = nil
	l.tasks = l.tasks[:len(l.tasks)-1]
	return t, nil
}

// Tasks returns independent copies of every task, in order.
func (l *List) Tasks() []Task {
	out := make([]Task, 0, len(l.tasks))
	for _, t := range l.tasks {
		out = append(out, t.Clone())
	}
	return out
}

func (l *List) Summary() string {
	if len(l.tasks) == 1 {
		return "You have 1 task in the list."
	}
	return fmt.Sprintf("You have %d tasks in the list.", len(l.tasks))
}

// Render returns one 1-indexed display row per task.
func (l *List) Render(layout string) []string {
	rows := make([]string, 0, len(l.tasks))
	for i, t := range l.tasks {
		rows = append(rows, fmt.Sprintf("%d. %s", i+1, t.Display(layout)))
	}
	return rows
}
