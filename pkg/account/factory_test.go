package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepository(t *testing.T) {
	repo, err := NewRepository("memory", nil)
	require.NoError(t, err)
	assert.IsType(t, &InMemoryRepository{}, repo)

	_, err = NewRepository("postgres", nil)
	assert.Error(t, err, "postgres without a pool")

	_, err = NewRepository("sqlite", nil)
	assert.Error(t, err)
}
