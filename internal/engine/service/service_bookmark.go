package service

import (
	"context"
	"fmt"

	"github.com/go-arcade/ideaflow/internal/engine/model/bookmark"
	bookmarkrepo "github.com/go-arcade/ideaflow/internal/engine/repo/bookmark"
	"github.com/go-arcade/ideaflow/internal/pkg/directory"
	"github.com/go-arcade/ideaflow/internal/pkg/ideastore"
	"github.com/go-arcade/ideaflow/internal/pkg/notify"
	"github.com/go-arcade/ideaflow/pkg/database"
	"github.com/go-arcade/ideaflow/pkg/log"
)

type BookmarkService struct {
	bookmarks bookmarkrepo.IBookmarkRepository
	store     ideastore.IdeaStore
	publisher notify.Publisher
	names     *directory.NameResolver
}

func NewBookmarkService(bookmarks bookmarkrepo.IBookmarkRepository, store ideastore.IdeaStore, publisher notify.Publisher, names *directory.NameResolver) *BookmarkService {
	return &BookmarkService{bookmarks: bookmarks, store: store, publisher: publisher, names: names}
}

// Create bookmarks an existing idea and tells its owner.
func (s *BookmarkService) Create(ctx context.Context, req *bookmark.CreateBookmarkReq) (*bookmark.Bookmark, error) {
	if req.UserID == 0 || req.IdeaID == 0 {
		return nil, fmt.Errorf("%w: userId and ideaId are required", ErrInvalidArgument)
	}
	owner, err := s.store.GetOwner(ctx, req.IdeaID)
	if err != nil {
		return nil, err
	}

	b := &bookmark.Bookmark{UserID: req.UserID, IdeaID: req.IdeaID}
	if err := s.bookmarks.Create(ctx, b); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: user %d on idea %d", ErrDuplicateBookmark, req.UserID, req.IdeaID)
		}
		log.Errorw("create bookmark failed", "userId", req.UserID, "ideaId", req.IdeaID, "error", err)
		return nil, fmt.Errorf("create bookmark failed: %w", err)
	}

	if owner != req.UserID {
		s.publisher.Notify(ctx, notify.TypeBookmarkActivity, owner, req.IdeaID, map[string]any{
			"actor": resolveName(ctx, s.names, req.UserID, ""),
		})
	}
	return b, nil
}

// Delete removes a bookmark of the requester.
func (s *BookmarkService) Delete(ctx context.Context, id, requesterID uint64) error {
	b, err := s.bookmarks.Get(ctx, id)
	if err != nil {
		return wrapRepoErr(err, "bookmark", id)
	}
	if b.UserID != requesterID {
		return fmt.Errorf("%w: bookmark %d belongs to another user", ErrForbidden, id)
	}
	if err := s.bookmarks.Delete(ctx, id); err != nil {
		return wrapRepoErr(err, "bookmark", id)
	}
	return nil
}

func (s *BookmarkService) ListByUser(ctx context.Context, userID uint64) ([]bookmark.Bookmark, error) {
	list, err := s.bookmarks.ListByUser(ctx, userID)
	if err != nil {
		log.Errorw("list bookmarks failed", "userId", userID, "error", err)
		return nil, fmt.Errorf("list bookmarks failed: %w", err)
	}
	return list, nil
}
