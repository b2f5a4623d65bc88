package vote

import (
	"context"

	"github.com/go-arcade/ideaflow/internal/engine/model/vote"
	"github.com/go-arcade/ideaflow/pkg/database"
	"gorm.io/gorm"
)

// IdeaVoteCount is the ledger count of one idea.
type IdeaVoteCount struct {
	IdeaID uint64 `gorm:"column:idea_id"`
	Total  int64  `gorm:"column:total"`
}

type IVoteRepository interface {
	// Create fails with a duplicate key error when (user, idea) exists.
	Create(ctx context.Context, v *vote.Vote) error
	Get(ctx context.Context, id uint64) (*vote.Vote, error)
	UpdateType(ctx context.Context, id uint64, t vote.VoteType) error
	Delete(ctx context.Context, id uint64) error
	CountByIdea(ctx context.Context, ideaID uint64) (int64, error)
	CountByIdeaAndType(ctx context.Context, ideaID uint64, t vote.VoteType) (int64, error)
	CountByUser(ctx context.Context, userID uint64) (int64, error)
	Exists(ctx context.Context, userID, ideaID uint64) (bool, error)
	ListByIdea(ctx context.Context, ideaID uint64) ([]vote.Vote, error)
	ListByUser(ctx context.Context, userID uint64) ([]vote.Vote, error)
	CountAllByIdea(ctx context.Context) (map[uint64]int64, error)
}

type VoteRepo struct {
	db database.DB
}

func NewVoteRepo(db database.DB) IVoteRepository {
	return &VoteRepo{db: db}
}

// Create 投票
func (r *VoteRepo) Create(ctx context.Context, v *vote.Vote) error {
	return database.WriteDB(ctx, r.db).Create(v).Error
}

// Get 获取投票
func (r *VoteRepo) Get(ctx context.Context, id uint64) (*vote.Vote, error) {
	var v vote.Vote
	if err := database.ReadDB(ctx, r.db).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateType 只允许修改投票类型
func (r *VoteRepo) UpdateType(ctx context.Context, id uint64, t vote.VoteType) error {
	res := database.WriteDB(ctx, r.db).Model(&vote.Vote{}).Where("id = ?", id).Update("vote_type", t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := database.WriteDB(ctx, r.db).Model(&vote.Vote{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// Delete 删除投票
func (r *VoteRepo) Delete(ctx context.Context, id uint64) error {
	res := database.WriteDB(ctx, r.db).Where("id = ?", id).Delete(&vote.Vote{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByIdea counts votes of every type. It reads the primary so a count
// taken right after a write sees that write.
func (r *VoteRepo) CountByIdea(ctx context.Context, ideaID uint64) (int64, error) {
	var n int64
	err := database.WriteDB(ctx, r.db).Model(&vote.Vote{}).Where("idea_id = ?", ideaID).Count(&n).Error
	return n, err
}

func (r *VoteRepo) CountByIdeaAndType(ctx context.Context, ideaID uint64, t vote.VoteType) (int64, error) {
	var n int64
	err := database.ReadDB(ctx, r.db).Model(&vote.Vote{}).
		Where("idea_id = ? AND vote_type = ?", ideaID, t).
		Count(&n).Error
	return n, err
}

func (r *VoteRepo) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := database.ReadDB(ctx, r.db).Model(&vote.Vote{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *VoteRepo) Exists(ctx context.Context, userID, ideaID uint64) (bool, error) {
	var n int64
	err := database.ReadDB(ctx, r.db).Model(&vote.Vote{}).
		Where("user_id = ? AND idea_id = ?", userID, ideaID).
		Count(&n).Error
	return n > 0, err
}

func (r *VoteRepo) ListByIdea(ctx context.Context, ideaID uint64) ([]vote.Vote, error) {
	var votes []vote.Vote
	err := database.ReadDB(ctx, r.db).Where("idea_id = ?", ideaID).Order("id").Find(&votes).Error
	return votes, err
}

func (r *VoteRepo) ListByUser(ctx context.Context, userID uint64) ([]vote.Vote, error) {
	var votes []vote.Vote
	err := database.ReadDB(ctx, r.db).Where("user_id = ?", userID).Order("id").Find(&votes).Error
	return votes, err
}

// CountAllByIdea returns the ledger count of every idea that has votes.
func (r *VoteRepo) CountAllByIdea(ctx context.Context) (map[uint64]int64, error) {
	var rows []IdeaVoteCount
	err := database.WriteDB(ctx, r.db).Model(&vote.Vote{}).
		Select("idea_id, COUNT(*) AS total").
		Group("idea_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint64]int64, len(rows))
	for _, row := range rows {
		counts[row.IdeaID] = row.Total
	}
	return counts, nil
}
