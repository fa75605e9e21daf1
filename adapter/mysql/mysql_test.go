package mysql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesDSN(t *testing.T) {
	adapter, err := New("user:pass@tcp(localhost:3306)/app?parseTime=true")
	require.NoError(t, err)
	assert.NotNil(t, adapter)
}

func TestNewRejectsBadDSN(t *testing.T) {
	_, err := New("://not-a-dsn")
	assert.Error(t, err)
}

func TestCanReuseAlwaysTrue(t *testing.T) {
	adapter, err := New("user:pass@tcp(localhost:3306)/app")
	require.NoError(t, err)
	assert.True(t, adapter.CanReuse(context.Background(), nil))
}
