package bookmark

import (
	"context"
	"testing"

	"github.com/go-arcade/ideaflow/internal/engine/model/bookmark"
	"github.com/go-arcade/ideaflow/pkg/database"
	"github.com/go-arcade/ideaflow/pkg/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBookmarkRepo(t *testing.T) {
	r := NewBookmarkRepo(dbtest.Open(t, &bookmark.Bookmark{}))
	ctx := context.Background()

	first := &bookmark.Bookmark{UserID: 1, IdeaID: 10}
	require.NoError(t, r.Create(ctx, first))
	require.NoError(t, r.Create(ctx, &bookmark.Bookmark{UserID: 1, IdeaID: 11}))

	err := r.Create(ctx, &bookmark.Bookmark{UserID: 1, IdeaID: 10})
	assert.True(t, database.IsDuplicateKey(err))

	list, err := r.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, uint64(11), list[0].IdeaID)

	got, err := r.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), got.IdeaID)

	require.NoError(t, r.Delete(ctx, first.ID))
	assert.ErrorIs(t, r.Delete(ctx, first.ID), gorm.ErrRecordNotFound)
}
