package ui

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/amirbrooks/duke/internal/parser"
	"github.com/amirbrooks/duke/internal/tasklist"
)

func dispatch(t *testing.T, list *tasklist.List, line string) parser.Outcome {
	t.Helper()
	o, err := parser.Dispatch(line, list)
	if err != nil {
		t.Fatalf("Dispatch(%q): %v", line, err)
	}
	return o
}

func TestRenderBlocks(t *testing.T) {
	r := Renderer{}
	list := tasklist.New()

	out := r.Render(dispatch(t, list, "deadline test /by 2020-04-12"), list)
	for _, want := range []string{"Added one task!", "[D][ ] test (by: 2020-04-12)", "You have 1 task in the list."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if !strings.HasPrefix(out, rule+"\n") || !strings.HasSuffix(out, rule+"\n") {
		t.Fatalf("expected framed output, got:\n%s", out)
	}

	out = r.Render(dispatch(t, list, "mark 1"), list)
	if !strings.Contains(out, "Nice! One task down!") || !strings.Contains(out, "[D][X] test") {
		t.Fatalf("unexpected mark output:\n%s", out)
	}

	out = r.Render(dispatch(t, list, "list"), list)
	if !strings.Contains(out, "1. [D][X] test (by: 2020-04-12)") {
		t.Fatalf("unexpected list output:\n%s", out)
	}

	out = r.Render(dispatch(t, list, "delete 1"), list)
	if !strings.Contains(out, "Deleted one task:") || !strings.Contains(out, "You have 0 tasks in the list.") {
		t.Fatalf("unexpected delete output:\n%s", out)
	}

	out = r.Render(dispatch(t, list, "bye"), list)
	if !strings.Contains(out, "Bye! See you soon!") {
		t.Fatalf("unexpected bye output:\n%s", out)
	}
}

func TestRenderUsesDateLayout(t *testing.T) {
	r := Renderer{DateLayout: "Jan 2 2006"}
	list := tasklist.New()
	out := r.Render(dispatch(t, list, "deadline test /by 2020-04-12"), list)
	if !strings.Contains(out, "(by: Apr 12 2020)") {
		t.Fatalf("expected custom layout in:\n%s", out)
	}
}

func TestRenderError(t *testing.T) {
	_, err := parser.Dispatch("mark abc", tasklist.New())
	out := Renderer{}.RenderError(err)
	if !strings.Contains(out, "OOPS! mark: parameter is not a numerical value") {
		t.Fatalf("unexpected error output:\n%s", out)
	}

	var rec map[string]string
	if jerr := json.Unmarshal([]byte(Renderer{}.RenderErrorJSON(err)), &rec); jerr != nil {
		t.Fatalf("invalid json: %v", jerr)
	}
	if rec["kind"] != "non_numeric_index" {
		t.Fatalf("expected kind non_numeric_index, got %q", rec["kind"])
	}
}

func TestRenderJSON(t *testing.T) {
	r := Renderer{}
	list := tasklist.New()
	line := r.RenderJSON(dispatch(t, list, "event trip /from mon /to fri"), list)
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("expected newline-terminated record, got %q", line)
	}
	var rec struct {
		Command string `json:"command"`
		Index   int    `json:"index"`
		Total   int    `json:"total"`
		Task    struct {
			Type string `json:"type"`
			Name string `json:"name"`
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"task"`
	}
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec.Command != "event" || rec.Index != 1 || rec.Total != 1 {
		t.Fatalf("unexpected record %#v", rec)
	}
	if rec.Task.Type != "E" || rec.Task.Name != "trip" || rec.Task.From != "mon" || rec.Task.To != "fri" {
		t.Fatalf("unexpected task %#v", rec.Task)
	}

	if strings.Contains(line, `"tasks"`) {
		t.Fatalf("expected no tasks key on add record, got %s", line)
	}

	listLine := r.RenderJSON(dispatch(t, list, "list"), list)
	if !strings.Contains(listLine, `"tasks":[{"type":"E"`) {
		t.Fatalf("expected tasks array, got %s", listLine)
	}
}

func TestRenderJSONEmptyList(t *testing.T) {
	list := tasklist.New()
	line := Renderer{}.RenderJSON(dispatch(t, list, "list"), list)
	if !strings.Contains(line, `"tasks":[]`) {
		t.Fatalf("expected empty tasks array, got %s", line)
	}
}
