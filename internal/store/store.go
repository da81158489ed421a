package store

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/amirbrooks/duke/internal/logging"
	"github.com/amirbrooks/duke/internal/tasklist"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

var (
	ErrInvalid = errors.New("invalid")
	timeNow    = func() time.Time { return time.Now().UTC() }
)

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Workspace is the directory holding the task file, config and exports.
type Workspace struct {
	Root     string
	taskFile string
	log      *zap.Logger
}

// LoadReport describes lines that could not be parsed.
type LoadReport struct {
	Loaded  int
	Skipped []SkippedLine
}

type SkippedLine struct {
	Line int
	Text string
	Err  error
}

// Open opens a workspace rooted at root. taskFile is relative to root unless
// absolute. It does not create files until Init or Save is called.
func Open(root, taskFile string, log *zap.Logger) *Workspace {
	if log == nil {
		log = logging.Nop()
	}
	root = ExpandHome(root)
	if strings.TrimSpace(taskFile) == "" {
		taskFile = "tasks.txt"
	}
	if !filepath.IsAbs(taskFile) {
		taskFile = filepath.Join(root, taskFile)
	}
	return &Workspace{Root: root, taskFile: taskFile, log: log}
}

func (w *Workspace) Init() error {
	if err := os.MkdirAll(w.Root, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(w.ExportDir(), 0o755)
}

func (w *Workspace) TaskFile() string { return w.taskFile }

func (w *Workspace) ExportDir() string { return filepath.Join(w.Root, "exports") }

// Load reads the task file. A missing file yields an empty list. Malformed
// lines are skipped and reported; they never fail the load.
func (w *Workspace) Load() (*tasklist.List, LoadReport, error) {
	var report LoadReport
	b, err := os.ReadFile(w.taskFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.log.Debug("no task file yet", zap.String("path", w.taskFile))
			return tasklist.New(), report, nil
		}
		return nil, report, err
	}

	list := tasklist.New()
	sc := bufio.NewScanner(bytes.NewReader(b))
	n := 0
	for sc.Scan() {
		n++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		t, err := tasklist.ParseLine(text)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedLine{Line: n, Text: text, Err: err})
			w.log.Warn("skipping malformed task line",
				zap.String("path", w.taskFile), zap.Int("line", n), zap.Error(err))
			continue
		}
		list.Append(t)
	}
	if err := sc.Err(); err != nil {
		return nil, report, err
	}
	report.Loaded = list.Len()
	w.log.Debug("loaded tasks", zap.String("path", w.taskFile), zap.Int("tasks", report.Loaded), zap.Int("skipped", len(report.Skipped)))
	return list, report, nil
}

// Save replaces the task file with one line per task.
func (w *Workspace) Save(list *tasklist.List) error {
	var buf bytes.Buffer
	for _, t := range list.Tasks() {
		buf.WriteString(tasklist.EncodeLine(t))
		buf.WriteString("\n")
	}
	if err := atomicWriteFile(w.taskFile, buf.Bytes(), 0o644); err != nil {
		return err
	}
	w.log.Debug("saved tasks", zap.String("path", w.taskFile), zap.Int("tasks", list.Len()))
	return nil
}

type exportTask struct {
	Type string `yaml:"type" json:"type"`
	Done bool   `yaml:"done" json:"done"`
	Name string `yaml:"name" json:"name"`
	By   string `yaml:"by,omitempty" json:"by,omitempty"`
	From string `yaml:"from,omitempty" json:"from,omitempty"`
	To   string `yaml:"to,omitempty" json:"to,omitempty"`
}

type exportDoc struct {
	ID         string       `yaml:"id" json:"id"`
	ExportedAt time.Time    `yaml:"exported_at" json:"exported_at"`
	Total      int          `yaml:"total" json:"total"`
	Tasks      []exportTask `yaml:"tasks" json:"tasks"`
}

func newExportDoc(list *tasklist.List) exportDoc {
	doc := exportDoc{ID: newULID(), ExportedAt: timeNow(), Total: list.Len(), Tasks: []exportTask{}}
	for _, t := range list.Tasks() {
		et := exportTask{Type: t.Tag(), Done: t.Done(), Name: t.Name()}
		switch v := t.(type) {
		case *tasklist.Deadline:
			et.By = v.By().Format(tasklist.DateLayout)
		case *tasklist.Event:
			et.From = v.From()
			et.To = v.To()
		}
		doc.Tasks = append(doc.Tasks, et)
	}
	return doc
}

// NormalizeFormat maps an export format name to FormatYAML or FormatJSON.
// An empty name means YAML.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatYAML, "yml", "":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", ErrInvalid, format)
	}
}

// Encode renders list in the given export format.
func Encode(list *tasklist.List, format string) ([]byte, error) {
	f, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}
	doc := newExportDoc(list)
	switch f {
	case FormatJSON:
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	default:
		return yaml.Marshal(doc)
	}
}

// Export writes list under dir (default ExportDir) as tasks-<ULID>.<ext>
// and returns the path.
func (w *Workspace) Export(list *tasklist.List, format, dir string) (string, error) {
	ext, err := NormalizeFormat(format)
	if err != nil {
		return "", err
	}
	data, err := Encode(list, ext)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(dir) == "" {
		dir = w.ExportDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("tasks-%s.%s", newULID(), ext))
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	w.log.Info("exported tasks", zap.String("path", path), zap.Int("tasks", list.Len()))
	return path, nil
}

func newULID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		// fallback
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}

// ExpandHome resolves a leading ~ to the user home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		home, _ := os.UserHomeDir()
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	// Rename is atomic on same filesystem.
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
