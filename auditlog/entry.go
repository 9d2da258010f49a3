package auditlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/zero-day-ai/uniguard/types"
)

// Entry is one parsed audit line.
type Entry struct {
	Time    time.Time
	Level   types.Level
	Message string
}

// String renders the entry in the audit line format.
func (e Entry) String() string {
	return Format(e.Time, e.Level, e.Message)
}

// Parse parses a single audit line of the form "[ts] [LEVEL] message".
// The timestamp is interpreted in local time.
func Parse(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")

	ts, rest, ok := bracketed(line)
	if !ok {
		return Entry{}, fmt.Errorf("parse audit line %q: missing timestamp", line)
	}
	t, err := time.ParseInLocation(TimeLayout, ts, time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("parse audit line %q: %w", line, err)
	}

	rest = strings.TrimPrefix(rest, " ")
	lvl, rest, ok := bracketed(rest)
	if !ok {
		return Entry{}, fmt.Errorf("parse audit line %q: missing level", line)
	}
	level := types.Level(lvl)
	if !level.Valid() {
		return Entry{}, fmt.Errorf("parse audit line %q: unknown level %q", line, lvl)
	}

	return Entry{Time: t, Level: level, Message: strings.TrimPrefix(rest, " ")}, nil
}

func bracketed(s string) (inner, rest string, ok bool) {
	if !strings.HasPrefix(s, "[") {
		return "", "", false
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", "", false
	}
	return s[1:end], s[end+1:], true
}

// ReadEntries parses every line of r. Lines that are not audit lines, such
// as diagnostic command output interleaved on a console capture, are skipped.
func ReadEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		entry, err := Parse(scanner.Text())
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return entries, nil
}

// ReadFile parses the audit log at path.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	return ReadEntries(f)
}
