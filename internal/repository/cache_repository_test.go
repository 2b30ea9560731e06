package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/rdic-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "rdic:", nil)
	ctx := context.Background()

	var dest map[string]string
	err := repo.Get(ctx, "report:1", &dest)
	require.True(t, errors.Is(err, appErrors.ErrCacheMiss))

	require.NoError(t, repo.Set(ctx, "report:1", map[string]string{"a": "b"}, time.Minute))
	require.NoError(t, repo.Delete(ctx, "report:1"))
	require.NoError(t, repo.DeleteByPattern(ctx, "report:*"))
	require.NoError(t, repo.Close())
	require.Equal(t, "rdic:report:1", repo.key("report:1"))
}
