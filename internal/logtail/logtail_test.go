package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func appendText(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(text)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "homedash.log")
	var all []string
	for i := 1; i <= 10; i++ {
		all = append(all, fmt.Sprintf("Line %d", i))
	}
	writeLines(t, path, all...)

	tests := []struct {
		name     string
		maxLines int
		want     []string
	}{
		{"zero", 0, nil},
		{"last three", 3, all[7:]},
		{"exactly all", 10, all},
		{"more than file", 50, all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(path, tt.maxLines)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFollower_InitialThenIncremental(t *testing.T) {
	path := filepath.Join(t.TempDir(), "homedash.log")
	writeLines(t, path, "a", "b", "c")

	f := NewFollower(path, 2)
	lines, reset, err := f.Poll()
	require.NoError(t, err)
	assert.False(t, reset)
	assert.Equal(t, []string{"b", "c"}, lines)

	lines, _, err = f.Poll()
	require.NoError(t, err)
	assert.Empty(t, lines)

	appendText(t, path, "d\ne")
	lines, _, err = f.Poll()
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, lines, "partial line held back")

	appendText(t, path, "nd\n")
	lines, _, err = f.Poll()
	require.NoError(t, err)
	assert.Equal(t, []string{"end"}, lines)
}

func TestFollower_TruncationResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "homedash.log")
	writeLines(t, path, "one", "two", "three")

	f := NewFollower(path, 10)
	_, _, err := f.Poll()
	require.NoError(t, err)

	writeLines(t, path, "x")
	lines, reset, err := f.Poll()
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, []string{"x"}, lines)
}

func TestFollower_MissingFileLater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.log")
	f := NewFollower(path, 5)
	lines, _, err := f.Poll()
	require.NoError(t, err)
	assert.Empty(t, lines)

	writeLines(t, path, "first")
	lines, _, err = f.Poll()
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, lines)
}

func TestFilter(t *testing.T) {
	lines := []string{
		"2024-01-01 WARN device poll failed room=Kitchen",
		"2024-01-01 INFO toggle confirmed",
		"2024-01-01 WARN toggle reverted",
	}
	assert.Equal(t, lines, Filter(lines))
	assert.Equal(t, []string{lines[0], lines[2]}, Filter(lines, "warn"))
	assert.Equal(t, []string{lines[2]}, Filter(lines, "WARN", " toggle "))
}
