// Package parser turns one line of user input into a mutation of a
// tasklist.List and a structured Outcome describing it.
package parser

import (
	"errors"
	"strconv"
	"strings"

	"github.com/amirbrooks/duke/internal/tasklist"
)

// Command identifies which operation a line ran.
type Command string

const (
	CommandList     Command = "list"
	CommandMark     Command = "mark"
	CommandUnmark   Command = "unmark"
	CommandDelete   Command = "delete"
	CommandExit     Command = "bye"
	CommandTodo     Command = "todo"
	CommandDeadline Command = "deadline"
	CommandEvent    Command = "event"
)

// Literal markers for deadline and event.
const (
	MarkerBy   = "/by"
	MarkerFrom = "/from"
	MarkerTo   = "/to"
)

func (c Command) String() string { return string(c) }

// Adds reports whether c appends a new task.
func (c Command) Adds() bool {
	return c == CommandTodo || c == CommandDeadline || c == CommandEvent
}

// Mutates reports whether c changes the list.
func (c Command) Mutates() bool {
	switch c {
	case CommandMark, CommandUnmark, CommandDelete:
		return true
	}
	return c.Adds()
}

// Outcome is the result of one Dispatch call. Task is a snapshot taken at
// dispatch time (nil for list and bye); Index is its zero-based position,
// or -1.
type Outcome struct {
	Command Command
	Index   int
	Task    tasklist.Task
}

// Options tune keyword handling. The zero value is lenient; use
// DefaultOptions for strict parsing.
type Options struct {
	// Strict rejects unrecognised keywords with ErrUnknownCommand. When
	// false they create a plain task, as "todo" does.
	Strict bool
	// MultiWordNames joins every token after the keyword into a todo name
	// instead of keeping only the first.
	MultiWordNames bool
}

func DefaultOptions() Options {
	return Options{Strict: true}
}

// Parser is stateless apart from its immutable options.
type Parser struct {
	opts Options
}

func New(opts Options) *Parser {
	return &Parser{opts: opts}
}

var defaultParser = New(DefaultOptions())

// Dispatch runs raw against list using DefaultOptions.
func Dispatch(raw string, list *tasklist.List) (Outcome, error) {
	return defaultParser.Dispatch(raw, list)
}

// Dispatch validates raw and applies it to list. On error the list is left
// untouched.
func (p *Parser) Dispatch(raw string, list *tasklist.List) (Outcome, error) {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return Outcome{}, fail("", "", ErrUnknownCommand)
	}

	switch Command(tokens[0]) {
	case CommandList:
		if len(tokens) != 1 {
			return Outcome{}, fail(tokens[0], "", ErrWrongArity)
		}
		return Outcome{Command: CommandList, Index: -1}, nil
	case CommandMark:
		return p.setDone(CommandMark, tokens, list, true)
	case CommandUnmark:
		return p.setDone(CommandUnmark, tokens, list, false)
	case CommandDelete:
		return p.delete(tokens, list)
	case CommandExit:
		if len(tokens) != 1 {
			return Outcome{}, fail(tokens[0], "", ErrWrongArity)
		}
		return Outcome{Command: CommandExit, Index: -1}, nil
	case CommandDeadline:
		return p.deadline(tokens, list)
	case CommandEvent:
		return p.event(tokens, list)
	case CommandTodo:
		return p.todo(tokens, list)
	default:
		if p.opts.Strict {
			return Outcome{}, fail("", tokens[0], ErrUnknownCommand)
		}
		return p.todo(tokens, list)
	}
}

func parseIndex(cmd Command, tokens []string, list *tasklist.List) (int, error) {
	if len(tokens) != 2 {
		return 0, fail(cmd.String(), "", ErrWrongArity)
	}
	n, err := strconv.Atoi(tokens[1])
	if errors.Is(err, strconv.ErrRange) {
		return 0, fail(cmd.String(), tokens[1], ErrIndexOutOfRange)
	}
	if err != nil {
		return 0, fail(cmd.String(), tokens[1], ErrNonNumericIndex)
	}
	idx := n - 1
	if _, err := list.Get(idx); err != nil {
		return 0, fail(cmd.String(), tokens[1], err)
	}
	return idx, nil
}

func (p *Parser) setDone(cmd Command, tokens []string, list *tasklist.List, done bool) (Outcome, error) {
	idx, err := parseIndex(cmd, tokens, list)
	if err != nil {
		return Outcome{}, err
	}
	if err := list.SetDone(idx, done); err != nil {
		return Outcome{}, fail(cmd.String(), tokens[1], err)
	}
	t, _ := list.Get(idx)
	return Outcome{Command: cmd, Index: idx, Task: t.Clone()}, nil
}

func (p *Parser) delete(tokens []string, list *tasklist.List) (Outcome, error) {
	idx, err := parseIndex(CommandDelete, tokens, list)
	if err != nil {
		return Outcome{}, err
	}
	removed, err := list.Delete(idx)
	if err != nil {
		return Outcome{}, fail(CommandDelete.String(), tokens[1], err)
	}
	return Outcome{Command: CommandDelete, Index: idx, Task: removed.Clone()}, nil
}

func (p *Parser) deadline(tokens []string, list *tasklist.List) (Outcome, error) {
	if len(tokens) != 4 {
		return Outcome{}, fail(CommandDeadline.String(), "", ErrWrongArity)
	}
	if tokens[2] != MarkerBy {
		return Outcome{}, fail(CommandDeadline.String(), tokens[2], ErrMissingMarker)
	}
	t, err := tasklist.NewDeadline(tokens[1], tokens[3])
	if err != nil {
		return Outcome{}, fail(CommandDeadline.String(), tokens[3], err)
	}
	return appendTask(CommandDeadline, t, list), nil
}

func (p *Parser) event(tokens []string, list *tasklist.List) (Outcome, error) {
	if len(tokens) != 6 {
		return Outcome{}, fail(CommandEvent.String(), "", ErrWrongArity)
	}
	if tokens[2] != MarkerFrom {
		return Outcome{}, fail(CommandEvent.String(), tokens[2], ErrMissingMarker)
	}
	if tokens[4] != MarkerTo {
		return Outcome{}, fail(CommandEvent.String(), tokens[4], ErrMissingMarker)
	}
	t, err := tasklist.NewEvent(tokens[1], tokens[3], tokens[5])
	if err != nil {
		return Outcome{}, fail(CommandEvent.String(), "", err)
	}
	return appendTask(CommandEvent, t, list), nil
}

func (p *Parser) todo(tokens []string, list *tasklist.List) (Outcome, error) {
	if len(tokens) < 2 {
		return Outcome{}, fail(tokens[0], "", ErrEmptyParameter)
	}
	name := tokens[1]
	if p.opts.MultiWordNames {
		name = strings.Join(tokens[1:], " ")
	}
	t, err := tasklist.NewTodo(name)
	if err != nil {
		return Outcome{}, fail(tokens[0], "", ErrEmptyParameter)
	}
	return appendTask(CommandTodo, t, list), nil
}

func appendTask(cmd Command, t tasklist.Task, list *tasklist.List) Outcome {
	list.Append(t)
	return Outcome{Command: cmd, Index: list.Len() - 1, Task: t.Clone()}
}
