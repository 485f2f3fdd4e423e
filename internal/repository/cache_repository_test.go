package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

func TestCacheRepositoryWithoutClientIsEmpty(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.NoError(t, repo.Set(ctx, "semester:current", models.Semester{ID: "sem-1"}, time.Minute))

	var semester models.Semester
	assert.ErrorIs(t, repo.Get(ctx, "semester:current", &semester), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Delete(ctx, "semester:current"))
	assert.NoError(t, repo.DeleteByPattern(ctx, "semester:*"))
	counter, err := repo.Incr(ctx, "semester:generation")
	assert.NoError(t, err)
	assert.Zero(t, counter)
	counter, err = repo.Counter(ctx, "semester:generation")
	assert.NoError(t, err)
	assert.Zero(t, counter)
	assert.NoError(t, repo.Close())
}
