package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorForLayer(t *testing.T) {
	assert.Equal(t, "#4F46E5", ColorForLayer(0))
	assert.Equal(t, "#10B981", ColorForLayer(1))
	assert.Equal(t, "#F59E0B", ColorForLayer(2))
	assert.Equal(t, "#EF4444", ColorForLayer(3))
	assert.Equal(t, "#8B5CF6", ColorForLayer(4))
	assert.Equal(t, DefaultColor, ColorForLayer(5))
	assert.Equal(t, DefaultColor, ColorForLayer(-1))
}

func TestNewNode_NormalizesTitleFallback(t *testing.T) {
	node := NewNode("n1", "", "Strategy", "desc", 7, 1, "g1")

	assert.Equal(t, "Strategy", node.Name)
	assert.Equal(t, 7.0, node.Relevance)
	assert.Equal(t, "#10B981", node.Color)
	assert.Nil(t, node.X)
	assert.Nil(t, node.Y)
	assert.False(t, node.Pinned())
}

func TestNewNode_PrefersNameOverTitle(t *testing.T) {
	node := NewNode("n1", "Display Name", "Title", "", 3, 0, "g1")
	assert.Equal(t, "Display Name", node.Name)
}

func TestNewNode_DefaultsRelevanceAndClampsLayer(t *testing.T) {
	node := NewNode("n1", "a", "", "", 0, -2, "g1")

	assert.Equal(t, float64(DefaultRelevance), node.Relevance)
	assert.Equal(t, 0, node.Layer)
}

func TestSetPosition(t *testing.T) {
	node := NewNode("n1", "a", "", "", 5, 0, "g1")
	node.SetPosition(12.5, -3)

	assert.NotNil(t, node.X)
	assert.Equal(t, 12.5, *node.X)
	assert.Equal(t, -3.0, *node.Y)
}
