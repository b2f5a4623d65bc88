package idea

import (
	"slices"

	"github.com/go-arcade/ideaflow/internal/engine/model"
	"github.com/go-arcade/ideaflow/pkg/statemachine"
	"gorm.io/datatypes"
)

// DefaultOrganizationID is used when a new idea names no organization.
const DefaultOrganizationID uint64 = 1

// Idea idea aggregate
type Idea struct {
	model.BaseModel
	Title          string                  `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description    string                  `gorm:"column:description;type:text" json:"description"`
	CreatorID      uint64                  `gorm:"column:creator_id;not null;index:idx_idea_creator" json:"creatorId"`           // immutable
	OrganizationID uint64                  `gorm:"column:organization_id;not null;index:idx_idea_org" json:"organizationId"`     // immutable
	Status         statemachine.IdeaStatus `gorm:"column:status;type:varchar(32);not null;index:idx_idea_status" json:"status"` // lifecycle state
	BudgetApproved bool                    `gorm:"column:budget_approved;not null" json:"budgetApproved"`
	// AssignedTeamIDs is a read-optimized copy of the current team; the
	// team assignment ledger is the audit record.
	AssignedTeamIDs datatypes.JSONSlice[uint64] `gorm:"column:assigned_team_ids;type:json" json:"assignedTeamIds"`
	VoteCount       int64                       `gorm:"column:vote_count;not null" json:"voteCount"`
	TotalScore      float64                     `gorm:"column:total_score" json:"totalScore"`
	IsInTop10       bool                        `gorm:"column:is_in_top10" json:"isInTop10"`
}

func (Idea) TableName() string {
	return "t_idea"
}

func (i *Idea) HasMember(userID uint64) bool {
	return slices.Contains(i.AssignedTeamIDs, userID)
}

// AddMember appends userID and reports whether it was absent.
func (i *Idea) AddMember(userID uint64) bool {
	if i.HasMember(userID) {
		return false
	}
	i.AssignedTeamIDs = append(i.AssignedTeamIDs, userID)
	return true
}

// RemoveMember keeps the order of the remaining members.
func (i *Idea) RemoveMember(userID uint64) bool {
	idx := slices.Index(i.AssignedTeamIDs, userID)
	if idx < 0 {
		return false
	}
	i.AssignedTeamIDs = slices.Delete(slices.Clone(i.AssignedTeamIDs), idx, idx+1)
	return true
}

// Members returns a copy of the member list, never nil.
func (i *Idea) Members() []uint64 {
	if len(i.AssignedTeamIDs) == 0 {
		return []uint64{}
	}
	return slices.Clone(i.AssignedTeamIDs)
}

// CreateIdeaReq 创建 idea 请求
type CreateIdeaReq struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	OrganizationID uint64  `json:"organizationId"`
	TotalScore     float64 `json:"totalScore"`
}

// UpdateIdeaReq only touches the editable fields; nil means unchanged.
type UpdateIdeaReq struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	TotalScore  *float64 `json:"totalScore"`
}

type ChangeStatusReq struct {
	Status   string `json:"status"`
	Comments string `json:"comments"`
}

type AddTeamMemberReq struct {
	Role string `json:"role"`
}

// IdeaQueryReq 列表查询
type IdeaQueryReq struct {
	model.PageQuery
	Status    string `json:"status" query:"status"`
	CreatorID uint64 `json:"creatorId" query:"creatorId"`
}
