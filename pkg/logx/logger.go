package logx

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Config holds the logger configuration.
type Config struct {
	Level        Level
	Format       Format
	EnableColors bool
	EnableCaller bool
	// TimeFormat is a Go layout, or "unix" / "unixmilli".
	TimeFormat string
	Output     io.Writer
}

func DefaultConfig() *Config {
	return &Config{
		Level:        LevelInfo,
		Format:       FormatConsole,
		EnableColors: true,
		TimeFormat:   time.RFC3339,
		Output:       os.Stdout,
	}
}

// LoadFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_COLOR, LOG_CALLER and
// LOG_TIME_FORMAT on top of the defaults.
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = ParseLevel(v)
	}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		cfg.Format = FormatJSON
	}
	if v := os.Getenv("LOG_COLOR"); v != "" {
		cfg.EnableColors = isTrue(v)
	}
	if v := os.Getenv("LOG_CALLER"); v != "" {
		cfg.EnableCaller = isTrue(v)
	}
	if v := os.Getenv("LOG_TIME_FORMAT"); v != "" {
		switch strings.ToUpper(v) {
		case "RFC3339":
			cfg.TimeFormat = time.RFC3339
		case "RFC3339NANO":
			cfg.TimeFormat = time.RFC3339Nano
		case "UNIX":
			cfg.TimeFormat = "unix"
		case "UNIXMILLI":
			cfg.TimeFormat = "unixmilli"
		default:
			cfg.TimeFormat = v
		}
	}
	return cfg
}

func isTrue(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}

// Logger writes formatted records to a single output. It is safe for
// concurrent use.
type Logger struct {
	mu        sync.Mutex
	level     Level
	caller    bool
	formatter formatter
	out       io.Writer
	exit      func(int)
}

func NewLogger(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var f formatter = consoleFormatter{colors: cfg.EnableColors, timeFormat: cfg.TimeFormat}
	if cfg.Format == FormatJSON {
		f = jsonFormatter{timeFormat: cfg.TimeFormat}
	}

	return &Logger{
		level:     cfg.Level,
		caller:    cfg.EnableCaller,
		formatter: f,
		out:       out,
		exit:      os.Exit,
	}
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

func (l *Logger) WithField(key string, value interface{}) *Entry {
	return (&Entry{logger: l}).WithField(key, value)
}

func (l *Logger) WithFields(fields Fields) *Entry {
	return (&Entry{logger: l}).WithFields(fields)
}

func (l *Logger) WithError(err error) *Entry {
	return (&Entry{logger: l}).WithError(err)
}

// log is called directly by the public methods, so callerDepth frames up
// is the user call site.
func (l *Logger) log(level Level, msg string, fields Fields, err error) {
	if !l.GetLevel().Enabled(level) {
		return
	}

	rec := record{
		Level:   level,
		Message: msg,
		Fields:  fields,
		Error:   err,
		Time:    time.Now(),
	}
	if l.caller {
		rec.Caller = caller(callerDepth)
	}

	data, ferr := l.formatter.format(rec)
	if ferr != nil {
		fmt.Fprintf(os.Stderr, "logx: format: %v\n", ferr)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, werr := l.out.Write(data); werr != nil {
		fmt.Fprintf(os.Stderr, "logx: write: %v\n", werr)
	}
}

const callerDepth = 3

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "???"
	}
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		file = file[i+1:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}
