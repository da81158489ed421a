// Package ui renders dispatch outcomes and errors for the terminal.
package ui

import (
	"encoding/json"
	"strings"

	"github.com/amirbrooks/duke/internal/parser"
	"github.com/amirbrooks/duke/internal/tasklist"
)

const rule = "_______________________________________________________"

const logo = ` ____        _
|  _ \ _   _| | _____
| | | | | | | |/ / _ \
| |_| | |_| |   <  __/
|____/ \__,_|_|\_\___|
`

// Renderer formats outcomes. DateLayout controls deadline dates; empty means
// tasklist.DateLayout.
type Renderer struct {
	DateLayout string
}

func (r Renderer) layout() string {
	if strings.TrimSpace(r.DateLayout) == "" {
		return tasklist.DateLayout
	}
	return r.DateLayout
}

func Welcome() string {
	return "Welcome to the Duke Bot.\n" + logo
}

func frame(lines ...string) string {
	var b strings.Builder
	b.WriteString(rule)
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString(rule)
	b.WriteString("\n")
	return b.String()
}

// Render returns the block printed after a successful command. list is the
// collection after the command ran.
func (r Renderer) Render(o parser.Outcome, list *tasklist.List) string {
	task := ""
	if o.Task != nil {
		task = "  " + o.Task.Display(r.layout())
	}
	switch o.Command {
	case parser.CommandList:
		lines := []string{list.Summary()}
		lines = append(lines, list.Render(r.layout())...)
		return frame(lines...)
	case parser.CommandMark:
		return frame("Nice! One task down!", task)
	case parser.CommandUnmark:
		return frame("One more task to go!", task)
	case parser.CommandDelete:
		return frame("Deleted one task:", task, list.Summary())
	case parser.CommandExit:
		return frame("Bye! See you soon!")
	default:
		return frame("Added one task!", task, list.Summary())
	}
}

// RenderError formats a rejected command.
func (r Renderer) RenderError(err error) string {
	return frame("OOPS! " + err.Error())
}

type taskRecord struct {
	Type string `json:"type"`
	Done bool   `json:"done"`
	Name string `json:"name"`
	By   string `json:"by,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func record(t tasklist.Task, layout string) *taskRecord {
	if t == nil {
		return nil
	}
	rec := &taskRecord{Type: t.Tag(), Done: t.Done(), Name: t.Name()}
	switch v := t.(type) {
	case *tasklist.Deadline:
		rec.By = v.By().Format(layout)
	case *tasklist.Event:
		rec.From = v.From()
		rec.To = v.To()
	}
	return rec
}

type outcomeRecord struct {
	Command string         `json:"command"`
	Index   *int           `json:"index,omitempty"`
	Task    *taskRecord    `json:"task,omitempty"`
	Tasks   *[]*taskRecord `json:"tasks,omitempty"`
	Total   int            `json:"total"`
}

type errorRecord struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// RenderJSON returns one NDJSON line for the outcome. Indexes are 1-based
// as the user sees them.
func (r Renderer) RenderJSON(o parser.Outcome, list *tasklist.List) string {
	rec := outcomeRecord{Command: o.Command.String(), Task: record(o.Task, r.layout()), Total: list.Len()}
	if o.Index >= 0 && o.Task != nil {
		n := o.Index + 1
		rec.Index = &n
	}
	if o.Command == parser.CommandList {
		tasks := []*taskRecord{}
		for _, t := range list.Tasks() {
			tasks = append(tasks, record(t, r.layout()))
		}
		rec.Tasks = &tasks
	}
	b, _ := json.Marshal(rec)
	return string(b) + "\n"
}

func (r Renderer) RenderErrorJSON(err error) string {
	b, _ := json.Marshal(errorRecord{Error: err.Error(), Kind: parser.Kind(err)})
	return string(b) + "\n"
}
