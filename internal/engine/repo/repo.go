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

package repo

import (
	"github.com/go-arcade/ideaflow/internal/engine/model/bookmark"
	"github.com/go-arcade/ideaflow/internal/engine/model/idea"
	"github.com/go-arcade/ideaflow/internal/engine/model/notification"
	"github.com/go-arcade/ideaflow/internal/engine/model/team"
	"github.com/go-arcade/ideaflow/internal/engine/model/vote"
	"github.com/go-arcade/ideaflow/internal/engine/model/workflow"
	bookmarkrepo "github.com/go-arcade/ideaflow/internal/engine/repo/bookmark"
	idearepo "github.com/go-arcade/ideaflow/internal/engine/repo/idea"
	notificationrepo "github.com/go-arcade/ideaflow/internal/engine/repo/notification"
	teamrepo "github.com/go-arcade/ideaflow/internal/engine/repo/team"
	voterepo "github.com/go-arcade/ideaflow/internal/engine/repo/vote"
	workflowrepo "github.com/go-arcade/ideaflow/internal/engine/repo/workflow"
	"github.com/go-arcade/ideaflow/pkg/database"
	"github.com/google/wire"
)

// ProviderSet 除通知外的仓储都基于同一个 gorm 连接
var ProviderSet = wire.NewSet(
	notificationrepo.ProviderSet,
	NewRepositories,
)

// Repositories 统一管理所有 repository
type Repositories struct {
	Idea           idearepo.IIdeaRepository
	Vote           voterepo.IVoteRepository
	TeamAssignment teamrepo.ITeamAssignmentRepository
	Workflow       workflowrepo.IWorkflowRepository
	Bookmark       bookmarkrepo.IBookmarkRepository
	Notification   notificationrepo.INotificationRepository
}

// NewRepositories 初始化所有 repository
func NewRepositories(db database.DB, notifications notificationrepo.INotificationRepository) *Repositories {
	return &Repositories{
		Idea:           idearepo.NewIdeaRepo(db),
		Vote:           voterepo.NewVoteRepo(db),
		TeamAssignment: teamrepo.NewTeamAssignmentRepo(db),
		Workflow:       workflowrepo.NewWorkflowRepo(db),
		Bookmark:       bookmarkrepo.NewBookmarkRepo(db),
		Notification:   notifications,
	}
}

// Models lists every table managed by gorm, in migration order.
func Models() []any {
	return []any{
		&idea.Idea{},
		&vote.Vote{},
		&team.TeamAssignment{},
		&workflow.WorkflowStep{},
		&bookmark.Bookmark{},
		&notification.Notification{},
	}
}

// AutoMigrate creates or updates the tables.
func AutoMigrate(db database.DB) error {
	return db.DB().AutoMigrate(Models()...)
}
