package logger

import (
	"sync"
)

// Recorder is a Logger that keeps every entry in memory for assertions
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Entry represents a captured log message
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Debug(msg string) { r.log("DEBUG", msg, nil) }
func (r *Recorder) Info(msg string)  { r.log("INFO", msg, nil) }
func (r *Recorder) Warn(msg string)  { r.log("WARN", msg, nil) }
func (r *Recorder) Error(msg string) { r.log("ERROR", msg, nil) }

func (r *Recorder) DebugWithFields(msg string, f map[string]interface{}) { r.log("DEBUG", msg, f) }
func (r *Recorder) InfoWithFields(msg string, f map[string]interface{})  { r.log("INFO", msg, f) }
func (r *Recorder) WarnWithFields(msg string, f map[string]interface{})  { r.log("WARN", msg, f) }
func (r *Recorder) ErrorWithFields(msg string, f map[string]interface{}) { r.log("ERROR", msg, f) }

func (r *Recorder) WithField(key string, value interface{}) Logger {
	return &boundRecorder{rec: r, fields: map[string]interface{}{key: value}}
}

func (r *Recorder) WithFields(fields map[string]interface{}) Logger {
	return (&boundRecorder{rec: r}).WithFields(fields)
}

func (r *Recorder) WithError(err error) Logger {
	if err == nil {
		return r
	}
	return r.WithField("error", err.Error())
}

func (r *Recorder) log(level, msg string, fields map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg, Fields: fields})
}

// Entries returns a copy of everything logged so far
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns the messages logged at level, in order
func (r *Recorder) Messages(level string) []string {
	var msgs []string
	for _, e := range r.Entries() {
		if e.Level == level {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// Contains reports whether any entry at level has the given message
func (r *Recorder) Contains(level, msg string) bool {
	for _, m := range r.Messages(level) {
		if m == msg {
			return true
		}
	}
	return false
}

// Reset clears all captured entries
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

type boundRecorder struct {
	rec    *Recorder
	fields map[string]interface{}
}

func (b *boundRecorder) merge(extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(b.fields)+len(extra))
	for k, v := range b.fields {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (b *boundRecorder) Debug(msg string) { b.rec.log("DEBUG", msg, b.merge(nil)) }
func (b *boundRecorder) Info(msg string)  { b.rec.log("INFO", msg, b.merge(nil)) }
func (b *boundRecorder) Warn(msg string)  { b.rec.log("WARN", msg, b.merge(nil)) }
func (b *boundRecorder) Error(msg string) { b.rec.log("ERROR", msg, b.merge(nil)) }

func (b *boundRecorder) DebugWithFields(msg string, f map[string]interface{}) {
	b.rec.log("DEBUG", msg, b.merge(f))
}
func (b *boundRecorder) InfoWithFields(msg string, f map[string]interface{}) {
	b.rec.log("INFO", msg, b.merge(f))
}
func (b *boundRecorder) WarnWithFields(msg string, f map[string]interface{}) {
	b.rec.log("WARN", msg, b.merge(f))
}
func (b *boundRecorder) ErrorWithFields(msg string, f map[string]interface{}) {
	b.rec.log("ERROR", msg, b.merge(f))
}

func (b *boundRecorder) WithField(key string, value interface{}) Logger {
	return &boundRecorder{rec: b.rec, fields: b.merge(map[string]interface{}{key: value})}
}

func (b *boundRecorder) WithFields(fields map[string]interface{}) Logger {
	return &boundRecorder{rec: b.rec, fields: b.merge(fields)}
}

func (b *boundRecorder) WithError(err error) Logger {
	if err == nil {
		return b
	}
	return b.WithField("error", err.Error())
}
