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

package notify

import "time"

// Type is the notification category
type Type string

const (
	TypeIdeaCreated       Type = "IDEA_CREATED"
	TypeIdeaStatusChanged Type = "IDEA_STATUS_CHANGED"
	TypeVoteActivity      Type = "VOTE_ACTIVITY"
	TypeTeamAssigned      Type = "TEAM_ASSIGNED"
	TypeBookmarkActivity  Type = "BOOKMARK_ACTIVITY"
)

// Event is the wire form of a notification. EventID is assigned by the
// producer and is the idempotency key on the consumer side.
type Event struct {
	EventID   string    `json:"eventId"`
	UserID    uint64    `json:"userId"`
	IdeaID    uint64    `json:"ideaId,omitempty"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
