package idea

import (
	"context"
	"errors"

	"github.com/go-arcade/ideaflow/internal/engine/model/idea"
	"github.com/go-arcade/ideaflow/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteCountRow is the cached count of one idea.
type VoteCountRow struct {
	ID        uint64 `gorm:"column:id"`
	VoteCount int64  `gorm:"column:vote_count"`
}

type IIdeaRepository interface {
	WithTx(tx *gorm.DB) IIdeaRepository
	Create(ctx context.Context, i *idea.Idea) error
	Get(ctx context.Context, id uint64) (*idea.Idea, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uint64) (*idea.Idea, error)
	Save(ctx context.Context, i *idea.Idea) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, q *idea.IdeaQueryReq) ([]idea.Idea, int64, error)
	SetVoteCount(ctx context.Context, id uint64, count int64) error
	GetOwner(ctx context.Context, id uint64) (uint64, error)
	ListVoteCounts(ctx context.Context) ([]VoteCountRow, error)
}

type IdeaRepo struct {
	db database.DB
}

func NewIdeaRepo(db database.DB) IIdeaRepository {
	return &IdeaRepo{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *IdeaRepo) WithTx(tx *gorm.DB) IIdeaRepository {
	return &IdeaRepo{db: database.NewGormDB(tx)}
}

// Create 创建 idea
func (r *IdeaRepo) Create(ctx context.Context, i *idea.Idea) error {
	return database.WriteDB(ctx, r.db).Create(i).Error
}

// Get 获取 idea
func (r *IdeaRepo) Get(ctx context.Context, id uint64) (*idea.Idea, error) {
	var i idea.Idea
	if err := database.ReadDB(ctx, r.db).Where("id = ?", id).First(&i).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *IdeaRepo) GetForUpdate(ctx context.Context, id uint64) (*idea.Idea, error) {
	var i idea.Idea
	err := database.WriteDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&i).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Save writes the lifecycle columns of i. vote_count is left out, it is
// only written by SetVoteCount.
func (r *IdeaRepo) Save(ctx context.Context, i *idea.Idea) error {
	return database.WriteDB(ctx, r.db).
		Model(&idea.Idea{}).
		Where("id = ?", i.ID).
		Select("title", "description", "status", "budget_approved", "assigned_team_ids", "total_score", "is_in_top10", "updated_at").
		Updates(i).Error
}

// Delete 删除 idea
func (r *IdeaRepo) Delete(ctx context.Context, id uint64) error {
	res := database.WriteDB(ctx, r.db).Where("id = ?", id).Delete(&idea.Idea{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 分页查询，最新的在前
func (r *IdeaRepo) List(ctx context.Context, q *idea.IdeaQueryReq) ([]idea.Idea, int64, error) {
	page := q.PageQuery.Normalize()
	query := database.ReadDB(ctx, r.db).Model(&idea.Idea{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.CreatorID != 0 {
		query = query.Where("creator_id = ?", q.CreatorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ideas []idea.Idea
	err := query.Order("id DESC").Offset(page.Offset()).Limit(page.Size).Find(&ideas).Error
	return ideas, total, err
}

// SetVoteCount is an absolute, idempotent write.
func (r *IdeaRepo) SetVoteCount(ctx context.Context, id uint64, count int64) error {
	res := database.WriteDB(ctx, r.db).Model(&idea.Idea{}).Where("id = ?", id).Update("vote_count", count)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// MySQL reports 0 affected rows when the value is unchanged
	return r.exists(ctx, id)
}

// GetOwner 返回创建者 id
func (r *IdeaRepo) GetOwner(ctx context.Context, id uint64) (uint64, error) {
	var i idea.Idea
	err := database.ReadDB(ctx, r.db).Select("id", "creator_id").Where("id = ?", id).First(&i).Error
	if err != nil {
		return 0, err
	}
	return i.CreatorID, nil
}

func (r *IdeaRepo) ListVoteCounts(ctx context.Context) ([]VoteCountRow, error) {
	var rows []VoteCountRow
	err := database.ReadDB(ctx, r.db).Model(&idea.Idea{}).Select("id", "vote_count").Order("id").Scan(&rows).Error
	return rows, err
}

func (r *IdeaRepo) exists(ctx context.Context, id uint64) error {
	var n int64
	if err := database.WriteDB(ctx, r.db).Model(&idea.Idea{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
