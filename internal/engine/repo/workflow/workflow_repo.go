package workflow

import (
	"context"

	"github.com/go-arcade/ideaflow/internal/engine/model/workflow"
	"github.com/go-arcade/ideaflow/pkg/database"
	"gorm.io/gorm"
)

type IWorkflowRepository interface {
	WithTx(tx *gorm.DB) IWorkflowRepository
	Create(ctx context.Context, step *workflow.WorkflowStep) error
	ListByIdea(ctx context.Context, ideaID uint64) ([]workflow.WorkflowStep, error)
}

type WorkflowRepo struct {
	db database.DB
}

func NewWorkflowRepo(db database.DB) IWorkflowRepository {
	return &WorkflowRepo{db: db}
}

func (r *WorkflowRepo) WithTx(tx *gorm.DB) IWorkflowRepository {
	return &WorkflowRepo{db: database.NewGormDB(tx)}
}

// Create 记录一次状态变更
func (r *WorkflowRepo) Create(ctx context.Context, step *workflow.WorkflowStep) error {
	return database.WriteDB(ctx, r.db).Create(step).Error
}

// ListByIdea 按时间顺序返回历史
func (r *WorkflowRepo) ListByIdea(ctx context.Context, ideaID uint64) ([]workflow.WorkflowStep, error) {
	var steps []workflow.WorkflowStep
	err := database.ReadDB(ctx, r.db).Where("idea_id = ?", ideaID).Order("action_date, id").Find(&steps).Error
	return steps, err
}
