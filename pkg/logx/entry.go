package logx

import "fmt"

// Fields is a map of structured data attached to a record.
type Fields map[string]interface{}

// Entry accumulates fields for one or more log calls. With* methods return
// a new Entry, so a base entry can be shared and extended freely.
type Entry struct {
	logger *Logger
	fields Fields
	err    error
}

func (e *Entry) clone(extra int) *Entry {
	fields := make(Fields, len(e.fields)+extra)
	for k, v := range e.fields {
		fields[k] = v
	}
	return &Entry{logger: e.logger, fields: fields, err: e.err}
}

func (e *Entry) WithField(key string, value interface{}) *Entry {
	c := e.clone(1)
	c.fields[key] = value
	return c
}

func (e *Entry) WithFields(fields Fields) *Entry {
	c := e.clone(len(fields))
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

func (e *Entry) WithError(err error) *Entry {
	c := e.clone(0)
	c.err = err
	return c
}

func (e *Entry) Trace(msg string) { e.logger.log(LevelTrace, msg, e.fields, e.err) }
func (e *Entry) Debug(msg string) { e.logger.log(LevelDebug, msg, e.fields, e.err) }
func (e *Entry) Info(msg string)  { e.logger.log(LevelInfo, msg, e.fields, e.err) }
func (e *Entry) Warn(msg string)  { e.logger.log(LevelWarn, msg, e.fields, e.err) }
func (e *Entry) Error(msg string) { e.logger.log(LevelError, msg, e.fields, e.err) }

// Fatal logs and exits the process with status 1.
func (e *Entry) Fatal(msg string) {
	e.logger.log(LevelFatal, msg, e.fields, e.err)
	e.logger.exit(1)
}

func (e *Entry) Debugf(format string, args ...interface{}) {
	e.logger.log(LevelDebug, fmt.Sprintf(format, args...), e.fields, e.err)
}

func (e *Entry) Infof(format string, args ...interface{}) {
	e.logger.log(LevelInfo, fmt.Sprintf(format, args...), e.fields, e.err)
}

func (e *Entry) Warnf(format string, args ...interface{}) {
	e.logger.log(LevelWarn, fmt.Sprintf(format, args...), e.fields, e.err)
}

func (e *Entry) Errorf(format string, args ...interface{}) {
	e.logger.log(LevelError, fmt.Sprintf(format, args...), e.fields, e.err)
}

func (e *Entry) Fatalf(format string, args ...interface{}) {
	e.logger.log(LevelFatal, fmt.Sprintf(format, args...), e.fields, e.err)
	e.logger.exit(1)
}
