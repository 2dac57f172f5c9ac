package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityPoolRecyclesWithNewGeneration(t *testing.T) {
	p := NewEntityPool()

	a := p.Create()
	require.False(t, a.IsZero())
	require.True(t, p.Alive(a))
	assert.Equal(t, 1, p.Live())

	require.True(t, p.Destroy(a))
	assert.False(t, p.Alive(a))
	assert.False(t, p.Destroy(a), "double destroy must be a no-op")

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index())
	assert.NotEqual(t, a.Generation(), b.Generation())
	assert.False(t, p.Alive(a), "stale id must not resolve to the new entity")
	assert.True(t, p.Alive(b))
}

func TestEntityPoolZeroIsNeverAlive(t *testing.T) {
	p := NewEntityPool()
	p.Create()
	assert.False(t, p.Alive(0))
	assert.False(t, p.Destroy(0))
	assert.Equal(t, "none", EntityID(0).String())
}
