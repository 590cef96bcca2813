package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

type record struct {
	Level   Level
	Message string
	Fields  Fields
	Error   error
	Time    time.Time
	Caller  string
}

type formatter interface {
	format(rec record) ([]byte, error)
}

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorWhite = "\033[97m"

	colorBoldRed    = "\033[1;31m"
	colorBoldYellow = "\033[1;33m"
	colorBoldCyan   = "\033[1;36m"
	colorBoldGreen  = "\033[1;32m"
)

// consoleFormatter renders one human-readable line per record. Fields are
// printed in key order.
type consoleFormatter struct {
	colors     bool
	timeFormat string
}

func (f consoleFormatter) paint(color, s string) string {
	if !f.colors {
		return s
	}
	return color + s + colorReset
}

func (f consoleFormatter) format(rec record) ([]byte, error) {
	var b strings.Builder

	b.WriteString(f.paint(colorGray, formatTime(rec.Time, f.timeFormat)))
	b.WriteByte(' ')
	b.WriteString(f.level(rec.Level))
	b.WriteByte(' ')
	if rec.Caller != "" {
		b.WriteString(f.paint(colorGray, "["+rec.Caller+"]"))
		b.WriteByte(' ')
	}
	b.WriteString(f.paint(colorWhite, rec.Message))

	if len(rec.Fields) > 0 {
		keys := make([]string, 0, len(rec.Fields))
		for k := range rec.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s=%v", k, rec.Fields[k])
		}
		b.WriteByte(' ')
		b.WriteString(f.paint(colorCyan, strings.Join(pairs, " ")))
	}

	if rec.Error != nil {
		b.WriteString("\n")
		b.WriteString(f.paint(colorRed, "  error: "+rec.Error.Error()))
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (f consoleFormatter) level(l Level) string {
	label := fmt.Sprintf("[%-5s]", l.String())
	switch l {
	case LevelDebug:
		return f.paint(colorBoldCyan, label)
	case LevelInfo:
		return f.paint(colorBoldGreen, label)
	case LevelWarn:
		return f.paint(colorBoldYellow, label)
	case LevelError, LevelFatal:
		return f.paint(colorBoldRed, label)
	default:
		return f.paint(colorGray, label)
	}
}

// jsonFormatter renders one JSON object per line.
type jsonFormatter struct {
	timeFormat string
}

func (f jsonFormatter) format(rec record) ([]byte, error) {
	data := make(map[string]interface{}, len(rec.Fields)+5)
	for k, v := range rec.Fields {
		data[k] = v
	}
	data["level"] = rec.Level.String()
	data["message"] = rec.Message
	switch f.timeFormat {
	case "unix":
		data["timestamp"] = rec.Time.Unix()
	case "unixmilli":
		data["timestamp"] = rec.Time.UnixMilli()
	default:
		data["timestamp"] = rec.Time.Format(time.RFC3339Nano)
	}
	if rec.Caller != "" {
		data["caller"] = rec.Caller
	}
	if rec.Error != nil {
		data["error"] = rec.Error.Error()
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func formatTime(t time.Time, layout string) string {
	switch layout {
	case "unix":
		return strconv.FormatInt(t.Unix(), 10)
	case "unixmilli":
		return strconv.FormatInt(t.UnixMilli(), 10)
	default:
		return t.Format(layout)
	}
}
