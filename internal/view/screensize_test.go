package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		width int
		want  ScreenSize
	}{
		{1, ScreenExtraSmall},
		{500, ScreenExtraSmall},
		{501, ScreenSmall},
		{1110, ScreenSmall},
		{1111, ScreenMedium},
		{1500, ScreenMedium},
		{1501, ScreenLarge},
		{2560, ScreenLarge},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.width), "width %d", tc.width)
	}
}

func TestClassifyMonotonic(t *testing.T) {
	prev := Classify(1)
	for width := 2; width <= 2000; width++ {
		next := Classify(width)
		require.GreaterOrEqual(t, next, prev, "classification regressed at width %d", width)
		prev = next
	}
}

func TestClassifierPublishesOnlyOnCategoryChange(t *testing.T) {
	c := NewClassifier()

	var published []ScreenSize
	cancel := c.Subscribe(func(s ScreenSize) {
		published = append(published, s)
	})
	defer cancel()

	// Subscribe replays the current value.
	require.Equal(t, []ScreenSize{ScreenLarge}, published)

	c.OnResize(1600) // still large, silent
	c.OnResize(1920) // still large, silent
	assert.Len(t, published, 1)

	c.OnResize(1400)
	require.Len(t, published, 2)
	assert.Equal(t, ScreenMedium, published[1])

	c.OnResize(1200) // still medium, silent
	assert.Len(t, published, 2)

	c.OnResize(480)
	require.Len(t, published, 3)
	assert.Equal(t, ScreenExtraSmall, published[2])
}
