package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

const (
	EnvPrefix = "DUKE"
	FileName  = "config.yaml"
)

// Config is the effective configuration for one session.
type Config struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage" json:"storage"`
	Parser  ParserConfig  `mapstructure:"parser" yaml:"parser" json:"parser"`
	Display DisplayConfig `mapstructure:"display" yaml:"display" json:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log" json:"log"`
}

type StorageConfig struct {
	File     string `mapstructure:"file" yaml:"file" json:"file"`
	Autosave bool   `mapstructure:"autosave" yaml:"autosave" json:"autosave"`
}

type ParserConfig struct {
	Strict         bool `mapstructure:"strict" yaml:"strict" json:"strict"`
	MultiWordNames bool `mapstructure:"multi_word_names" yaml:"multi_word_names" json:"multi_word_names"`
}

type DisplayConfig struct {
	DateLayout string `mapstructure:"date_layout" yaml:"date_layout" json:"date_layout"`
}

type LogConfig struct {
	Level    string `mapstructure:"level" yaml:"level" json:"level"`
	Encoding string `mapstructure:"encoding" yaml:"encoding" json:"encoding"`
}

// LoadOptions locate the config file. An empty File means <Root>/config.yaml.
type LoadOptions struct {
	Root    string
	File    string
	DotEnv  string
	Environ bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.file", "tasks.txt")
	v.SetDefault("storage.autosave", true)
	v.SetDefault("parser.strict", true)
	v.SetDefault("parser.multi_word_names", false)
	v.SetDefault("display.date_layout", "2006-01-02")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.encoding", "console")
}

// Load resolves defaults, then the config file, then DUKE_* environment
// variables (when opts.Environ is set). A missing file is not an error.
func Load(opts LoadOptions) (*Config, error) {
	if opts.DotEnv != "" {
		if err := godotenv.Load(opts.DotEnv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", opts.DotEnv, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if opts.Environ {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	path := opts.File
	explicit := path != ""
	if !explicit {
		path = filepath.Join(opts.Root, FileName)
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in defaults without reading any file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) Validate() error {
	c.Storage.File = strings.TrimSpace(c.Storage.File)
	if c.Storage.File == "" {
		return fmt.Errorf("%w: storage.file is required", ErrInvalid)
	}
	layout := c.Display.DateLayout
	if strings.TrimSpace(layout) == "" {
		return fmt.Errorf("%w: display.date_layout is required", ErrInvalid)
	}
	ref := time.Date(2020, 4, 12, 0, 0, 0, 0, time.UTC)
	if ref.Format(layout) == layout {
		return fmt.Errorf("%w: display.date_layout %q has no date fields", ErrInvalid, layout)
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("%w: log.level %q is not a zap level", ErrInvalid, c.Log.Level)
	}
	c.Log.Encoding = strings.ToLower(strings.TrimSpace(c.Log.Encoding))
	switch c.Log.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.encoding must be console or json, got %q", ErrInvalid, c.Log.Encoding)
	}
	return nil
}

// Path returns the task file location under root.
func (c *Config) Path(root string) string {
	if filepath.IsAbs(c.Storage.File) {
		return c.Storage.File
	}
	return filepath.Join(root, c.Storage.File)
}

// Keys lists the settable configuration keys.
var Keys = []string{
	"storage.file",
	"storage.autosave",
	"parser.strict",
	"parser.multi_word_names",
	"display.date_layout",
	"log.level",
	"log.encoding",
}

// Set updates one key from its string form and revalidates.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	next := *c
	switch key {
	case "storage.file":
		next.Storage.File = value
	case "storage.autosave":
		v, ok := parseBool(value)
		if !ok {
			return invalidValue(key, value)
		}
		next.Storage.Autosave = v
	case "parser.strict":
		v, ok := parseBool(value)
		if !ok {
			return invalidValue(key, value)
		}
		next.Parser.Strict = v
	case "parser.multi_word_names":
		v, ok := parseBool(value)
		if !ok {
			return invalidValue(key, value)
		}
		next.Parser.MultiWordNames = v
	case "display.date_layout":
		next.Display.DateLayout = value
	case "log.level":
		next.Log.Level = value
	case "log.encoding":
		next.Log.Encoding = value
	default:
		return fmt.Errorf("%w: unknown key %q (allowed: %s)", ErrInvalid, key, strings.Join(Keys, ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Write stores c as YAML at path.
func (c *Config) Write(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

func invalidValue(key, value string) error {
	return fmt.Errorf("%w: invalid value for %s: %q", ErrInvalid, key, value)
}
