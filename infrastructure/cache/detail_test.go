package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgexplorer/domain/graph"
)

func sampleDetails() (*graph.NodeDetails, []graph.RelatedNode, []graph.Example) {
	details := &graph.NodeDetails{
		ID:          "n1",
		Title:       "Gradient Descent",
		Description: "Iterative optimizer",
		Layer:       1,
		Relevance:   7,
	}
	related := []graph.RelatedNode{
		{ID: "n2", Name: "Learning Rate", ConnectionStrength: 3},
	}
	examples := []graph.Example{
		{Title: "Linear regression", Description: "Fitting a line", Learnings: []string{"step size matters"}},
	}
	return details, related, examples
}

func TestDetailCache_HitWithinWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewDetailCache(NewMemoryCache(10, DefaultDetailTTL), 0, nil).WithClock(clock)
	ctx := context.Background()

	details, related, examples := sampleDetails()
	c.Put(ctx, "g1", "n1", details, related, examples)

	now = now.Add(time.Hour)
	entry := c.Get(ctx, "g1", "n1")
	require.NotNil(t, entry, "entry one hour old must still be valid")
	assert.Equal(t, "Gradient Descent", entry.Details.Title)
	assert.Len(t, entry.RelatedNodes, 1)
	assert.Len(t, entry.Examples, 1)
}

func TestDetailCache_MissAfterWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	backend := NewMemoryCache(10, 48*time.Hour).WithClock(clock)
	c := NewDetailCache(backend, 24*time.Hour, nil).WithClock(clock)
	ctx := context.Background()

	details, related, examples := sampleDetails()
	c.Put(ctx, "g1", "n1", details, related, examples)

	now = now.Add(25 * time.Hour)
	assert.Nil(t, c.Get(ctx, "g1", "n1"), "entry older than the window is a miss")

	// The expired entry was purged from the backend, not just skipped.
	_, ok, _ := backend.Get(ctx, "node-details:g1:n1")
	assert.False(t, ok)
}

func TestDetailCache_MalformedEntryPurged(t *testing.T) {
	backend := NewMemoryCache(10, DefaultDetailTTL)
	c := NewDetailCache(backend, 0, nil)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "node-details:g1:n1", []byte("{not json"), 0))

	assert.Nil(t, c.Get(ctx, "g1", "n1"))

	_, ok, _ := backend.Get(ctx, "node-details:g1:n1")
	assert.False(t, ok, "malformed entry must be purged")
}

func TestDetailCache_KeysScopedByGraph(t *testing.T) {
	c := NewDetailCache(NewMemoryCache(10, DefaultDetailTTL), 0, nil)
	ctx := context.Background()

	details, related, examples := sampleDetails()
	c.Put(ctx, "g1", "n1", details, related, examples)

	assert.Nil(t, c.Get(ctx, "g2", "n1"), "same node id in another graph is a distinct entry")
	assert.NotNil(t, c.Get(ctx, "g1", "n1"))
}

func TestDetailCache_OverwriteLastWriterWins(t *testing.T) {
	c := NewDetailCache(NewMemoryCache(10, DefaultDetailTTL), 0, nil)
	ctx := context.Background()

	first, related, examples := sampleDetails()
	c.Put(ctx, "g1", "n1", first, related, examples)

	second := &graph.NodeDetails{ID: "n1", Title: "Updated"}
	c.Put(ctx, "g1", "n1", second, nil, nil)

	entry := c.Get(ctx, "g1", "n1")
	require.NotNil(t, entry)
	assert.Equal(t, "Updated", entry.Details.Title)
}

func TestDetailCache_Invalidate(t *testing.T) {
	c := NewDetailCache(NewMemoryCache(10, DefaultDetailTTL), 0, nil)
	ctx := context.Background()

	details, related, examples := sampleDetails()
	c.Put(ctx, "g1", "n1", details, related, examples)
	c.Invalidate(ctx, "g1", "n1")

	assert.Nil(t, c.Get(ctx, "g1", "n1"))
}
