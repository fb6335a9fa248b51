package calendar

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlanner(t *testing.T, store Store) *Planner {
	t.Helper()
	p := NewPlanner(store, nil)
	p.loc = time.UTC
	n := 0
	p.newID = func() string {
		n++
		return fmt.Sprintf("r%d", n)
	}
	return p
}

func TestPlanner_AddRequiresDateAndTitle(t *testing.T) {
	p := newTestPlanner(t, NewMemoryStore())
	ctx := context.Background()

	_, err := p.Add(ctx, Draft{Title: "Clean"})
	assert.ErrorIs(t, err, ErrMissingDate)

	_, err = p.Add(ctx, Draft{Date: "2024-05-01", Title: "   "})
	assert.ErrorIs(t, err, ErrMissingTitle)

	_, err = p.Add(ctx, Draft{Date: "01/05/2024", Title: "Clean"})
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = p.Add(ctx, Draft{Date: "2024-05-01", Title: "Clean", Hour: 24})
	assert.ErrorIs(t, err, ErrInvalidTime)

	list, err := p.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPlanner_AddAttachesFavoritesThatAreSelected(t *testing.T) {
	p := newTestPlanner(t, NewMemoryStore())
	ctx := context.Background()

	p.ToggleFavorite("Daikin")
	p.ToggleFavorite("xiaomi")
	p.ToggleSelected("xiaomi")
	assert.Equal(t, []string{"xiaomi"}, p.Attachable())

	r, err := p.Add(ctx, Draft{Date: "2024-05-01", Hour: 9, Minute: 30, Title: " Vacuum ", Repeat: true})
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, "Vacuum", r.Title)
	assert.True(t, r.Repeat)
	assert.Equal(t, []string{"xiaomi"}, r.Devices)
	assert.True(t, r.At.Equal(time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)))

	assert.False(t, p.IsSelected("xiaomi"), "selection clears after add")
	assert.True(t, p.IsFavorite("xiaomi"), "favorites survive add")
}

func TestPlanner_SelectedButNotFavoriteIsDropped(t *testing.T) {
	p := newTestPlanner(t, NewMemoryStore())
	p.ToggleSelected("Daikin")
	r, err := p.Add(context.Background(), Draft{Date: "2024-05-01", Title: "x"})
	require.NoError(t, err)
	assert.Empty(t, r.Devices)
}

func TestPlanner_ToggleTwiceRemoves(t *testing.T) {
	p := newTestPlanner(t, NewMemoryStore())
	p.ToggleFavorite("xiaomi")
	p.ToggleFavorite("xiaomi")
	assert.Empty(t, p.Favorites())
	assert.Len(t, p.Catalog(), 2)
}

func TestPlanner_DeleteAndOrdering(t *testing.T) {
	p := newTestPlanner(t, NewMemoryStore())
	ctx := context.Background()

	_, err := p.Add(ctx, Draft{Date: "2024-06-01", Title: "late"})
	require.NoError(t, err)
	_, err = p.Add(ctx, Draft{Date: "2024-01-01", Title: "early"})
	require.NoError(t, err)

	list, err := p.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "early", list[0].Title)

	require.NoError(t, p.Delete(ctx, "r1"))
	assert.ErrorIs(t, p.Delete(ctx, "r1"), ErrNotFound)

	list, err = p.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "r2", list[0].ID)
}

func openMemorySQL(t *testing.T) *SQLStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	store, err := OpenSQLStore(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStore_PersistsReminders(t *testing.T) {
	store := openMemorySQL(t)
	p := newTestPlanner(t, store)
	ctx := context.Background()

	p.ToggleFavorite("Daikin")
	p.ToggleSelected("Daikin")
	_, err := p.Add(ctx, Draft{Date: "2024-03-02", Hour: 7, Title: "Filter", Description: "replace"})
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, "Filter", got.Title)
	assert.Equal(t, "replace", got.Description)
	assert.Equal(t, []string{"Daikin"}, got.Devices)
	assert.True(t, got.At.Equal(time.Date(2024, 3, 2, 7, 0, 0, 0, time.UTC)))

	require.NoError(t, store.Delete(ctx, "r1"))
	assert.ErrorIs(t, store.Delete(ctx, "r1"), ErrNotFound)
}

func TestOpenSQLStore_RejectsEmptyDSN(t *testing.T) {
	_, err := OpenSQLStore("  ")
	require.Error(t, err)
}

func TestOpenSQLStore_CreatesDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/reminders.db"
	store, err := OpenSQLStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	assert.FileExists(t, path)
}
