package frontier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/site-parser/internal/frontier"
)

func TestFrontierOrdersByPriority(t *testing.T) {
	q := frontier.New()
	q.Push(10, 0, "http://example.com/deep")
	q.Push(-50, 1, "http://example.com/contact")
	q.Push(0, 0, "http://example.com/")

	item, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "http://example.com/contact", item.URL)

	item, _ = q.Pop()
	assert.Equal(t, "http://example.com/", item.URL)

	item, _ = q.Pop()
	assert.Equal(t, "http://example.com/deep", item.URL)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestFrontierBreaksTiesByDepthThenInsertion(t *testing.T) {
	q := frontier.New()
	q.Push(0, 2, "http://example.com/depth2")
	q.Push(0, 1, "http://example.com/depth1-first")
	q.Push(0, 1, "http://example.com/depth1-second")

	item, _ := q.Pop()
	assert.Equal(t, "http://example.com/depth1-first", item.URL)
	item, _ = q.Pop()
	assert.Equal(t, "http://example.com/depth1-second", item.URL)
	item, _ = q.Pop()
	assert.Equal(t, "http://example.com/depth2", item.URL)
}

func TestFrontierLen(t *testing.T) {
	q := frontier.New()
	assert.Equal(t, 0, q.Len())
	q.Push(0, 0, "http://example.com/")
	q.Push(0, 0, "http://example.com/a")
	assert.Equal(t, 2, q.Len())
	q.Pop()
	assert.Equal(t, 1, q.Len())
}

func TestSet(t *testing.T) {
	s := frontier.NewSet[string]()
	assert.False(t, s.Contains("a"))
	s.Add("a")
	s.Add("a")
	assert.True(t, s.Contains("a"))
	assert.Equal(t, 1, s.Len())
}
