package vote

import (
	"fmt"
	"strings"

	"github.com/go-arcade/ideaflow/internal/engine/model"
)

type VoteType string

const (
	VoteTypeUp      VoteType = "UPVOTE"
	VoteTypeDown    VoteType = "DOWNVOTE"
	VoteTypeNeutral VoteType = "NEUTRAL"
)

var AllVoteTypes = []VoteType{VoteTypeUp, VoteTypeDown, VoteTypeNeutral}

// ParseVoteType accepts any casing.
func ParseVoteType(s string) (VoteType, error) {
	t := VoteType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case VoteTypeUp, VoteTypeDown, VoteTypeNeutral:
		return t, nil
	}
	return "", fmt.Errorf("unknown vote type %q", s)
}

// Vote 投票表，(user_id, idea_id) 唯一
type Vote struct {
	model.BaseModel
	UserID   uint64   `gorm:"column:user_id;not null;uniqueIndex:uk_vote_user_idea,priority:1;index:idx_vote_user" json:"userId"`
	IdeaID   uint64   `gorm:"column:idea_id;not null;uniqueIndex:uk_vote_user_idea,priority:2;index:idx_vote_idea" json:"ideaId"`
	VoteType VoteType `gorm:"column:vote_type;type:varchar(16);not null" json:"voteType"`
}

func (Vote) TableName() string {
	return "t_vote"
}

// CreateVoteReq 投票请求; userId falls back to the requester
type CreateVoteReq struct {
	UserID    uint64 `json:"userId"`
	IdeaID    uint64 `json:"ideaId"`
	VoteType  string `json:"voteType"`
	ActorName string `json:"actorName"`
}

type UpdateVoteReq struct {
	VoteType string `json:"voteType"`
}

type HasVotedResp struct {
	UserID uint64 `json:"userId"`
	IdeaID uint64 `json:"ideaId"`
	Voted  bool   `json:"voted"`
}
