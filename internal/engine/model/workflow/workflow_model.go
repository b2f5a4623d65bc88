package workflow

import (
	"time"

	"github.com/go-arcade/ideaflow/pkg/statemachine"
)

type StepType string

const (
	StepSubmit          StepType = "SUBMIT"
	StepStatusChange    StepType = "STATUS_CHANGE"
	StepTeamAutoAdvance StepType = "TEAM_AUTO_ADVANCE"
)

// WorkflowStep 状态变更历史，一次状态变化一行
type WorkflowStep struct {
	ID         uint64                  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	IdeaID     uint64                  `gorm:"column:idea_id;not null;index:idx_workflow_idea" json:"ideaId"`
	UserID     uint64                  `gorm:"column:user_id" json:"userId"` // 0 for system steps
	StepType   StepType                `gorm:"column:step_type;type:varchar(32);not null" json:"stepType"`
	FromStatus statemachine.IdeaStatus `gorm:"column:from_status;type:varchar(32)" json:"fromStatus"`
	ToStatus   statemachine.IdeaStatus `gorm:"column:to_status;type:varchar(32)" json:"toStatus"`
	ActionDate time.Time               `gorm:"column:action_date;not null" json:"actionDate"`
	Comments   string                  `gorm:"column:comments;type:text" json:"comments,omitempty"`
}

func (WorkflowStep) TableName() string {
	return "t_workflow_step"
}
