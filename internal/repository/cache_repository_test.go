package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/studydesk-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "dash:summary", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "dash:summary", map[string]string{"a": "b"}, time.Minute))

	removed, err := repo.DeleteByPattern(ctx, "dash:*")
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
