// Package alerts holds the append-only fraud alert log of one session.
package alerts

// Log is an append-only sequence of alert messages with set-like uniqueness
// on exact message text. Iteration order is append order. Deduplication is
// by message text, not by (transaction, rule) identity: two transactions
// that happen to render byte-identical text log one entry. That policy is
// preserved as observed.
type Log struct {
	entries []string
	seen    map[string]struct{}
}

// New creates an empty alert log.
func New() *Log {
	return &Log{seen: make(map[string]struct{})}
}

// FromEntries rebuilds a log from a stored session snapshot. Duplicate
// entries in the input are dropped, keeping the first occurrence.
func FromEntries(entries []string) *Log {
	l := New()
	for _, e := range entries {
		l.Append(e)
	}
	return l
}

// Append adds a message unless an identical one is already present. Reports
// whether the message was appended.
func (l *Log) Append(message string) bool {
	if _, ok := l.seen[message]; ok {
		return false
	}
	l.seen[message] = struct{}{}
	l.entries = append(l.entries, message)
	return true
}

// Contains reports whether an identical message is already logged.
func (l *Log) Contains(message string) bool {
	_, ok := l.seen[message]
	return ok
}

// All returns a snapshot of the entries in append order.
func (l *Log) All() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of logged entries.
func (l *Log) Len() int {
	return len(l.entries)
}
