package logging

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

const (
	// How many log entries the in-memory ring retains before the oldest
	// are discarded.
	ringCapacity = 3000
	// Upper bound for a single List call.
	maxListLimit = 1000
)

// Entry is one captured log record. IDs grow monotonically for the lifetime
// of the process, so clients can poll with "give me everything after ID n".
type Entry struct {
	ID        uint64    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Logger    string    `json:"logger"`
	Message   string    `json:"message"`
}

// Buffer is a bounded in-memory log sink.
// Responsibilities:
// - Retain the most recent ringCapacity entries
// - Assign each entry a monotonically increasing ID
// - Serve incremental reads keyed by last-seen ID
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	nextID  uint64
}

func NewBuffer() *Buffer {
	return &Buffer{nextID: 1}
}

func (b *Buffer) append(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e.ID = b.nextID
	b.nextID++

	b.entries = append(b.entries, e)
	if len(b.entries) > ringCapacity {
		b.entries = b.entries[len(b.entries)-ringCapacity:]
	}
}

// List returns up to limit entries with ID greater than after, oldest first.
// A non-positive limit falls back to maxListLimit; larger limits are capped.
func (b *Buffer) List(after uint64, limit int) []Entry {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, 0, limit)
	for _, e := range b.entries {
		if e.ID <= after {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Clear drops all retained entries. IDs keep growing.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = nil
}

// ringCore is a zapcore.Core that mirrors every enabled record into a Buffer.
type ringCore struct {
	zapcore.LevelEnabler
	buffer *Buffer
	fields []zapcore.Field
}

func newRingCore(enab zapcore.LevelEnabler, buffer *Buffer) zapcore.Core {
	return &ringCore{LevelEnabler: enab, buffer: buffer}
}

func (c *ringCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(clone.fields[:len(clone.fields):len(clone.fields)], fields...)
	return &clone
}

func (c *ringCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *ringCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	message := ent.Message
	if rendered := renderFields(c.fields, fields); rendered != "" {
		message = message + " " + rendered
	}
	c.buffer.append(Entry{
		Timestamp: ent.Time,
		Level:     levelName(ent.Level),
		Logger:    ent.LoggerName,
		Message:   message,
	})
	return nil
}

func (c *ringCore) Sync() error {
	return nil
}
