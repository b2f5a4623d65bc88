package statemachine

import (
	"fmt"
	"strings"
)

type IdeaStatus string

const (
	IdeaDraft         IdeaStatus = "DRAFT"
	IdeaSubmitted     IdeaStatus = "SUBMITTED"
	IdeaUnderReview   IdeaStatus = "UNDER_REVIEW"
	IdeaApproved      IdeaStatus = "APPROVED"
	IdeaRejected      IdeaStatus = "REJECTED"
	IdeaAssigningTeam IdeaStatus = "ASSIGNING_TEAM"
	IdeaInProgress    IdeaStatus = "IN_PROGRESS"
	IdeaCompleted     IdeaStatus = "COMPLETED"
)

const (
	EventSubmit          Event = "submit"
	EventChangeStatus    Event = "change_status"
	EventTeamAutoAdvance Event = "team_auto_advance"
)

// AllIdeaStatuses lists the statuses in lifecycle order.
var AllIdeaStatuses = []IdeaStatus{
	IdeaDraft,
	IdeaSubmitted,
	IdeaUnderReview,
	IdeaApproved,
	IdeaRejected,
	IdeaAssigningTeam,
	IdeaInProgress,
	IdeaCompleted,
}

// ideaLifecycle is immutable after init, so it is shared by every idea.
var ideaLifecycle = NewIdeaStateMachine()

// IdeaLifecycle returns the shared idea transition table.
func IdeaLifecycle() *StateMachine[IdeaStatus] {
	return ideaLifecycle
}

// NewIdeaStateMachine builds the idea lifecycle table.
// REJECTED and COMPLETED are terminal.
func NewIdeaStateMachine() *StateMachine[IdeaStatus] {
	sm := New(IdeaDraft)

	sm.Allow(IdeaDraft, IdeaSubmitted).
		Allow(IdeaSubmitted, IdeaUnderReview, IdeaRejected).
		Allow(IdeaUnderReview, IdeaApproved, IdeaRejected).
		Allow(IdeaApproved, IdeaAssigningTeam).
		Allow(IdeaAssigningTeam, IdeaInProgress).
		Allow(IdeaInProgress, IdeaCompleted).
		Allow(IdeaRejected).
		Allow(IdeaCompleted)

	return sm
}

// ParseIdeaStatus accepts any casing and surrounding spaces.
func ParseIdeaStatus(s string) (IdeaStatus, error) {
	status := IdeaStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !ideaLifecycle.IsKnown(status) {
		return "", fmt.Errorf("unknown idea status %q", s)
	}
	return status, nil
}

func (s IdeaStatus) String() string {
	return string(s)
}

// IsTerminal 判断是否为终止状态
func (s IdeaStatus) IsTerminal() bool {
	return ideaLifecycle.IsTerminal(s)
}

// AllowsBudgetApproval reports whether approveBudget may run in s.
func (s IdeaStatus) AllowsBudgetApproval() bool {
	return s == IdeaApproved || s == IdeaUnderReview
}

// AllowsTeamChanges reports whether members may be added in s.
func (s IdeaStatus) AllowsTeamChanges() bool {
	return s == IdeaApproved || s == IdeaAssigningTeam
}

// IsEditable reports whether title and description may still change.
func (s IdeaStatus) IsEditable() bool {
	return s == IdeaDraft || s == IdeaSubmitted
}
