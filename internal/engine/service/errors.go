package service

import (
	"errors"
	"fmt"

	"github.com/go-arcade/ideaflow/internal/pkg/directory"
	"github.com/go-arcade/ideaflow/internal/pkg/ideastore"
	"github.com/go-arcade/ideaflow/pkg/statemachine"
	"gorm.io/gorm"
)

var (
	// ErrInvalidTransition matches every rejected lifecycle move. The
	// wrapped error names the current and the requested status.
	ErrInvalidTransition = statemachine.ErrInvalidTransition
	ErrNotSubmittable    = errors.New("idea is not submittable")
	ErrNotEditable       = errors.New("idea is no longer editable")
	ErrBudgetNotAllowed  = fmt.Errorf("%w: budget approval requires APPROVED or UNDER_REVIEW", ErrInvalidTransition)

	ErrAlreadyMember        = errors.New("user is already a team member")
	ErrNotMember            = errors.New("user is not a team member")
	ErrUserNotFound         = directory.ErrUserNotFound
	ErrDirectoryUnavailable = directory.ErrDirectoryUnavailable

	ErrDuplicateVote     = errors.New("user has already voted for this idea")
	ErrInvalidVoteType   = errors.New("invalid vote type")
	ErrDuplicateBookmark = errors.New("idea is already bookmarked")

	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = ideastore.ErrNotFound
	ErrInvalidArgument = errors.New("invalid argument")
)

func notFound(kind string, id uint64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

// wrapRepoErr turns a missing row into ErrNotFound and leaves other errors as they are.
func wrapRepoErr(err error, kind string, id uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(kind, id)
	}
	return err
}
