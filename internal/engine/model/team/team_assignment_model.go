package team

import (
	"strings"
	"time"

	"github.com/go-arcade/ideaflow/internal/engine/model"
)

const (
	RoleMember = "MEMBER"
	RoleLead   = "LEAD"
)

// NormalizeRole 为空时默认 MEMBER
func NormalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return RoleMember
	}
	return role
}

// TeamAssignment 团队分配台账. A (idea, user) pair may have many
// historical rows; the one with removed_at NULL is current.
type TeamAssignment struct {
	model.BaseModel
	IdeaID         uint64     `gorm:"column:idea_id;not null;index:idx_assignment_idea_user,priority:1" json:"ideaId"`
	UserID         uint64     `gorm:"column:user_id;not null;index:idx_assignment_idea_user,priority:2;index:idx_assignment_user" json:"userId"`
	Role           string     `gorm:"column:role;type:varchar(32);not null" json:"role"`
	AssignedByID   uint64     `gorm:"column:assigned_by_id" json:"assignedById"`
	AssignmentDate time.Time  `gorm:"column:assignment_date;not null" json:"assignmentDate"`
	RemovedAt      *time.Time `gorm:"column:removed_at" json:"removedAt,omitempty"`
}

func (TeamAssignment) TableName() string {
	return "t_team_assignment"
}

func (a *TeamAssignment) IsCurrent() bool {
	return a.RemovedAt == nil
}

// CreateTeamAssignmentReq 团队分配请求
type CreateTeamAssignmentReq struct {
	IdeaID       uint64 `json:"ideaId"`
	UserID       uint64 `json:"userId"`
	Role         string `json:"role"`
	AssignedByID uint64 `json:"assignedById"`
}
