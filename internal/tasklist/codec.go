package tasklist

import (
	"fmt"
	"strings"
)

const fieldSep = " | "

func joinFields(fields ...string) string {
	return strings.Join(fields, fieldSep)
}

// EncodeLine returns the pipe-delimited record for t.
func EncodeLine(t Task) string {
	return t.PersistedLine()
}

// ParseLine reverses EncodeLine. Trailing fields are positional, so a name
// that itself contains the separator still round-trips.
func ParseLine(line string) (Task, error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, fieldSep)
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	var done bool
	switch parts[1] {
	case "1":
		done = true
	case "0":
	default:
		return nil, fmt.Errorf("%w: bad done flag %q", ErrMalformedLine, parts[1])
	}

	var (
		t   Task
		err error
	)
	switch parts[0] {
	case TagTodo:
		t, err = NewTodo(strings.Join(parts[2:], fieldSep))
	case TagDeadline:
		if len(parts) < 4 {
			return nil, fmt.Errorf("%w: deadline needs a date: %q", ErrMalformedLine, line)
		}
		n := len(parts)
		t, err = NewDeadline(strings.Join(parts[2:n-1], fieldSep), parts[n-1])
	case TagEvent:
		if len(parts) < 5 {
			return nil, fmt.Errorf("%w: event needs from and to: %q", ErrMalformedLine, line)
		}
		n := len(parts)
		t, err = NewEvent(strings.Join(parts[2:n-2], fieldSep), parts[n-2], parts[n-1])
	default:
		return nil, fmt.Errorf("%w: unknown type tag %q", ErrMalformedLine, parts[0])
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedLine, err)
	}
	t.SetDone(done)
	return t, nil
}
