// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package statemachine

import (
	"errors"
	"testing"
)

func TestIdeaLifecycle_TransitionTable(t *testing.T) {
	allowed := map[IdeaStatus][]IdeaStatus{
		IdeaDraft:         {IdeaSubmitted},
		IdeaSubmitted:     {IdeaUnderReview, IdeaRejected},
		IdeaUnderReview:   {IdeaApproved, IdeaRejected},
		IdeaApproved:      {IdeaAssigningTeam},
		IdeaAssigningTeam: {IdeaInProgress},
		IdeaInProgress:    {IdeaCompleted},
	}

	sm := IdeaLifecycle()
	for _, from := range AllIdeaStatuses {
		for _, to := range AllIdeaStatuses {
			want := false
			for _, target := range allowed[from] {
				if target == to {
					want = true
				}
			}

			err := sm.Transition(from, to, EventChangeStatus)
			if want && err != nil {
				t.Errorf("%s → %s: unexpected error %v", from, to, err)
			}
			if !want {
				if err == nil {
					t.Errorf("%s → %s: expected rejection", from, to)
					continue
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("%s → %s: error %v does not match ErrInvalidTransition", from, to, err)
				}
			}
		}
	}
}

func TestIdeaLifecycle_ErrorNamesBothStatuses(t *testing.T) {
	err := IdeaLifecycle().Transition(IdeaUnderReview, IdeaInProgress, EventChangeStatus)
	if err == nil {
		t.Fatal("expected error")
	}
	want := "invalid transition: UNDER_REVIEW → IN_PROGRESS"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var te *TransitionError[IdeaStatus]
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransitionError, got %T", err)
	}
	if te.From != IdeaUnderReview || te.To != IdeaInProgress {
		t.Errorf("got %s → %s", te.From, te.To)
	}
}

func TestIdeaStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   IdeaStatus
		expected bool
	}{
		{IdeaDraft, false},
		{IdeaSubmitted, false},
		{IdeaUnderReview, false},
		{IdeaApproved, false},
		{IdeaAssigningTeam, false},
		{IdeaInProgress, false},
		{IdeaRejected, true},
		{IdeaCompleted, true},
		{IdeaStatus("UNKNOWN"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIdeaStatus_Gates(t *testing.T) {
	tests := []struct {
		status IdeaStatus
		budget bool
		team   bool
	}{
		{IdeaDraft, false, false},
		{IdeaSubmitted, false, false},
		{IdeaUnderReview, true, false},
		{IdeaApproved, true, true},
		{IdeaAssigningTeam, false, true},
		{IdeaInProgress, false, false},
		{IdeaRejected, false, false},
		{IdeaCompleted, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.AllowsBudgetApproval(); got != tt.budget {
				t.Errorf("AllowsBudgetApproval() = %v, want %v", got, tt.budget)
			}
			if got := tt.status.AllowsTeamChanges(); got != tt.team {
				t.Errorf("AllowsTeamChanges() = %v, want %v", got, tt.team)
			}
		})
	}
}

func TestParseIdeaStatus(t *testing.T) {
	got, err := ParseIdeaStatus(" under_review ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != IdeaUnderReview {
		t.Errorf("got %s, want %s", got, IdeaUnderReview)
	}

	if _, err := ParseIdeaStatus("ARCHIVED"); err == nil {
		t.Error("expected error for unknown status")
	}
}
