package carousel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestCarousel_RoundTripReturnsToStart(t *testing.T) {
	for _, step := range []int{1, 2, 3, 4} {
		for n := 0; n <= 11; n++ {
			t.Run(fmt.Sprintf("step%d_len%d", step, n), func(t *testing.T) {
				c := New(seq(n), step)
				for c.RequestNext() {
					require.True(t, c.TransitionEnd())
				}
				assert.False(t, c.CanNext())
				for c.RequestPrevious() {
					require.True(t, c.TransitionEnd())
				}
				assert.False(t, c.CanPrevious())
				assert.Equal(t, 0, c.Committed())
			})
		}
	}
}

func TestCarousel_VisibleSwapsOnlyAtTransitionEnd(t *testing.T) {
	c := New(seq(8), 4)
	before := c.Visible()

	require.True(t, c.RequestNext())
	assert.Equal(t, Transitioning, c.Phase())
	assert.Equal(t, VariantNext, c.Variant())
	assert.Equal(t, before, c.Visible(), "window must not change mid-transition")

	require.True(t, c.TransitionEnd())
	assert.Equal(t, []int{4, 5, 6, 7}, c.Visible())
	assert.Equal(t, Idle, c.Phase())
	assert.Equal(t, VariantNone, c.Variant())
}

func TestCarousel_SecondRequestWhileTransitioningIsNoop(t *testing.T) {
	c := New(seq(10), 2)
	require.True(t, c.RequestNext())
	assert.False(t, c.RequestNext())
	assert.False(t, c.RequestPrevious())
	assert.Equal(t, 2, c.Pending())

	c.TransitionEnd()
	assert.Equal(t, 2, c.Committed())
}

func TestCarousel_TransitionEndWhileIdleLeavesState(t *testing.T) {
	c := New(seq(5), 2)
	assert.False(t, c.TransitionEnd())
	assert.Equal(t, 0, c.Committed())
	assert.Equal(t, Idle, c.Phase())
}

func TestCarousel_PartialLastWindow(t *testing.T) {
	c := New(seq(7), 2)
	assert.Equal(t, 4, c.PageCount())

	for c.RequestNext() {
		c.TransitionEnd()
	}
	assert.Equal(t, 6, c.Committed())
	assert.Equal(t, 3, c.CurrentPage())
	assert.Equal(t, []int{6}, c.Visible())
}

func TestCarousel_ControlsDisabledExactlyWhenNoop(t *testing.T) {
	c := New(seq(3), 1)
	assert.False(t, c.CanPrevious())
	assert.False(t, c.RequestPrevious())
	assert.True(t, c.CanNext())

	c.RequestNext()
	assert.False(t, c.CanNext(), "disabled while transitioning")
	c.TransitionEnd()
	c.RequestNext()
	c.TransitionEnd()
	assert.Equal(t, 2, c.Committed())
	assert.False(t, c.CanNext())
	assert.False(t, c.RequestNext())
}

func TestCarousel_EmptyAndStepClamp(t *testing.T) {
	c := New[string](nil, 0)
	assert.Equal(t, 1, c.Step())
	assert.Equal(t, 0, c.PageCount())
	assert.Nil(t, c.Visible())
	assert.False(t, c.RequestNext())
}

func TestCarousel_SetItemsRewinds(t *testing.T) {
	c := New(seq(6), 2)
	c.RequestNext()
	c.SetItems(seq(3))
	assert.Equal(t, Idle, c.Phase())
	assert.Equal(t, 0, c.Committed())
	assert.Equal(t, []int{0, 1}, c.Visible())
}

func TestCarousel_PendingPage(t *testing.T) {
	c := New(seq(7), 2)
	assert.Equal(t, 0, c.PendingPage())

	require.True(t, c.RequestNext())
	assert.Equal(t, 2, c.Pending())
	assert.Equal(t, 1, c.PendingPage())
	assert.Equal(t, 0, c.CurrentPage())

	c.TransitionEnd()
	assert.Equal(t, 1, c.PendingPage())
	assert.Equal(t, c.CurrentPage(), c.PendingPage())
}
