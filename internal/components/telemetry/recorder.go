package telemetry

import (
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelCount
	LevelWarning
	LevelBroken
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelCount:
		return "count"
	case LevelWarning:
		return "warning"
	case LevelBroken:
		return "broken"
	}
	return "unknown"
}

type Entry struct {
	Level  Level
	ID     string
	Params []any
	Count  int64
}

// Recorder is an API that keeps every report in memory so tests can assert on them.
// It is safe for concurrent use.
type Recorder struct {
	lock    sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(e Entry) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.entries = append(r.entries, e)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add(Entry{Level: LevelBroken, ID: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add(Entry{Level: LevelWarning, ID: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.add(Entry{Level: LevelDebug, ID: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.add(Entry{Level: LevelCount, ID: id, Count: count})
}

// Entries returns a copy of every recorded entry.
func (r *Recorder) Entries() []Entry {
	r.lock.Lock()
	defer r.lock.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Filter returns the recorded entries of a given level.
func (r *Recorder) Filter(level Level) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
