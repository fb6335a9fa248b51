package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()
	return lastLines(file, maxLines)
}

func lastLines(r io.Reader, maxLines int) ([]string, error) {
	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Follower reads a growing log file incrementally.
//
// The first Poll returns the last Limit complete lines; later calls return
// only complete lines appended since. A file that shrank was truncated or
// rotated, so reading restarts from its beginning and Poll reports reset.
type Follower struct {
	Path  string
	Limit int

	offset  int64
	started bool
	partial string
}

// NewFollower returns a follower for path.
func NewFollower(path string, limit int) *Follower {
	return &Follower{Path: path, Limit: limit}
}

// Poll returns newly completed lines.
func (f *Follower) Poll() (lines []string, reset bool, err error) {
	file, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("stat log: %w", err)
	}
	size := info.Size()

	if size < f.offset {
		f.offset = 0
		f.partial = ""
		reset = true
	}

	if !f.started {
		f.started = true
		limit := f.Limit
		if limit <= 0 {
			limit = 1
		}
		body, err := readRange(file, 0, size)
		if err != nil {
			return nil, false, err
		}
		complete, rest := splitComplete(body)
		lines, err = lastLines(strings.NewReader(complete), limit)
		if err != nil {
			return nil, false, err
		}
		f.offset = size
		f.partial = rest
		return lines, reset, nil
	}

	if size == f.offset {
		return nil, reset, nil
	}
	body, err := readRange(file, f.offset, size)
	if err != nil {
		return nil, false, err
	}
	f.offset = size
	complete, rest := splitComplete(f.partial + body)
	f.partial = rest
	if complete == "" {
		return nil, reset, nil
	}
	return strings.Split(strings.TrimSuffix(complete, "\n"), "\n"), reset, nil
}

func readRange(file *os.File, from, to int64) (string, error) {
	if _, err := file.Seek(from, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek log: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(file, to-from))
	if err != nil {
		return "", fmt.Errorf("read log: %w", err)
	}
	return string(data), nil
}

// splitComplete separates the newline-terminated prefix from a trailing
// partial line.
func splitComplete(s string) (complete, rest string) {
	i := strings.LastIndexByte(s, '\n')
	if i < 0 {
		return "", s
	}
	return s[:i+1], s[i+1:]
}

// Filter keeps lines containing every term, case-insensitively.
func Filter(lines []string, terms ...string) []string {
	var want []string
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			want = append(want, t)
		}
	}
	if len(want) == 0 {
		return lines
	}
	var out []string
	for _, line := range lines {
		lower := strings.ToLower(line)
		keep := true
		for _, t := range want {
			if !strings.Contains(lower, t) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, line)
		}
	}
	return out
}
