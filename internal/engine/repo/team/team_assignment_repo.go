package team

import (
	"context"
	"time"

	"github.com/go-arcade/ideaflow/internal/engine/model/team"
	"github.com/go-arcade/ideaflow/pkg/database"
	"gorm.io/gorm"
)

// ITeamAssignmentRepository is the assignment ledger. Rows are only written
// together with the idea's team list, inside one transaction.
type ITeamAssignmentRepository interface {
	WithTx(tx *gorm.DB) ITeamAssignmentRepository
	Create(ctx context.Context, a *team.TeamAssignment) error
	// CloseCurrent stamps removed_at on the current row of (idea, user).
	CloseCurrent(ctx context.Context, ideaID, userID uint64, at time.Time) (int64, error)
	ListByIdea(ctx context.Context, ideaID uint64, currentOnly bool) ([]team.TeamAssignment, error)
	ListByUser(ctx context.Context, userID uint64, currentOnly bool) ([]team.TeamAssignment, error)
}

type TeamAssignmentRepo struct {
	db database.DB
}

func NewTeamAssignmentRepo(db database.DB) ITeamAssignmentRepository {
	return &TeamAssignmentRepo{db: db}
}

func (r *TeamAssignmentRepo) WithTx(tx *gorm.DB) ITeamAssignmentRepository {
	return &TeamAssignmentRepo{db: database.NewGormDB(tx)}
}

// Create 新增分配记录
func (r *TeamAssignmentRepo) Create(ctx context.Context, a *team.TeamAssignment) error {
	return database.WriteDB(ctx, r.db).Create(a).Error
}

func (r *TeamAssignmentRepo) CloseCurrent(ctx context.Context, ideaID, userID uint64, at time.Time) (int64, error) {
	res := database.WriteDB(ctx, r.db).Model(&team.TeamAssignment{}).
		Where("idea_id = ? AND user_id = ? AND removed_at IS NULL", ideaID, userID).
		Update("removed_at", at)
	return res.RowsAffected, res.Error
}

// ListByIdea 按分配时间排序
func (r *TeamAssignmentRepo) ListByIdea(ctx context.Context, ideaID uint64, currentOnly bool) ([]team.TeamAssignment, error) {
	query := database.ReadDB(ctx, r.db).Where("idea_id = ?", ideaID)
	if currentOnly {
		query = query.Where("removed_at IS NULL")
	}
	var rows []team.TeamAssignment
	err := query.Order("assignment_date, id").Find(&rows).Error
	return rows, err
}

func (r *TeamAssignmentRepo) ListByUser(ctx context.Context, userID uint64, currentOnly bool) ([]team.TeamAssignment, error) {
	query := database.ReadDB(ctx, r.db).Where("user_id = ?", userID)
	if currentOnly {
		query = query.Where("removed_at IS NULL")
	}
	var rows []team.TeamAssignment
	err := query.Order("assignment_date, id").Find(&rows).Error
	return rows, err
}
