package btree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterator_SeekMidway(t *testing.T) {
	tree := newTestTree(t, 32, 4, 4)
	for i := Key(0); i < 20; i++ {
		ok, err := tree.Insert(i, Value(i))
		require.NoError(t, err)
		require.True(t, ok)
	}

	it, err := tree.Seek(10)
	require.NoError(t, err)
	require.True(t, it.Valid())
	assert.Equal(t, Key(10), it.Key())

	var seen []Key
	for it.Valid() {
		seen = append(seen, it.Key())
		it.Next()
	}
	require.Len(t, seen, 10)
	assert.Equal(t, Key(19), seen[len(seen)-1])

	assertNoLeaks(t, tree.pool)
}

func TestIterator_SeekPastEnd(t *testing.T) {
	tree := newTestTree(t, 32, 4, 4)
	for i := Key(0); i < 5; i++ {
		_, err := tree.Insert(i, Value(i))
		require.NoError(t, err)
	}

	it, err := tree.Seek(1000)
	require.NoError(t, err)
	assert.False(t, it.Valid())

	assertNoLeaks(t, tree.pool)
}

func TestIterator_EmptyTree(t *testing.T) {
	tree := newTestTree(t, 8, 4, 4)

	it, err := tree.Begin()
	require.NoError(t, err)
	assert.False(t, it.Valid())
}

func TestIterator_CloseBeforeExhaustingReleasesPin(t *testing.T) {
	tree := newTestTree(t, 32, 4, 4)
	for i := Key(0); i < 20; i++ {
		_, err := tree.Insert(i, Value(i))
		require.NoError(t, err)
	}

	it, err := tree.Begin()
	require.NoError(t, err)
	require.True(t, it.Valid())
	it.Next()
	it.Close()

	assertNoLeaks(t, tree.pool)
}
