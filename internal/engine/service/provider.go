package service

import (
	"github.com/go-arcade/ideaflow/internal/engine/repo"
	"github.com/go-arcade/ideaflow/internal/pkg/actor"
	"github.com/go-arcade/ideaflow/internal/pkg/directory"
	"github.com/go-arcade/ideaflow/internal/pkg/ideastore"
	"github.com/go-arcade/ideaflow/internal/pkg/notify"
	"github.com/go-arcade/ideaflow/internal/pkg/queue"
	"github.com/go-arcade/ideaflow/pkg/database"
	"github.com/google/wire"
)

// ProviderSet 提供服务层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideIdeaService,
	ProvideIdeaStore,
	ideastore.ProvidePusher,
	ProvideVoteCounter,
	ProvideVoteService,
	ProvideReconcileService,
	ProvideNotificationService,
	ProvideBookmarkService,
	NewServices,
)

func ProvideIdeaService(db database.DB, repos *repo.Repositories, actors *actor.System, dir directory.Directory, publisher notify.Publisher) *IdeaService {
	return NewIdeaService(db, repos.Idea, repos.TeamAssignment, repos.Workflow, actors, dir, publisher)
}

// ProvideIdeaStore serves vote counts locally unless a remote idea store is configured.
func ProvideIdeaStore(conf ideastore.Conf, local *IdeaService) ideastore.IdeaStore {
	return ideastore.ProvideIdeaStore(conf, local)
}

// ProvideVoteCounter gives vote counts their own lanes. They must not share
// the idea actors: a count push enters the idea actor through SetVoteCount.
func ProvideVoteCounter(conf actor.Conf, repos *repo.Repositories) (*VoteCounter, func()) {
	lanes := actor.NewSystem(conf)
	return NewVoteCounter(lanes, repos.Vote), lanes.Stop
}

func ProvideVoteService(repos *repo.Repositories, counter *VoteCounter, pusher *ideastore.Pusher, store ideastore.IdeaStore, recounts queue.Enqueuer, publisher notify.Publisher, names *directory.NameResolver) *VoteService {
	return NewVoteService(repos.Vote, counter, pusher, store, recounts, publisher, names)
}

func ProvideReconcileService(repos *repo.Repositories, store ideastore.IdeaStore, counter *VoteCounter) *ReconcileService {
	return NewReconcileService(repos.Idea, repos.Vote, store, counter)
}

func ProvideNotificationService(repos *repo.Repositories) *NotificationService {
	return NewNotificationService(repos.Notification)
}

func ProvideBookmarkService(repos *repo.Repositories, store ideastore.IdeaStore, publisher notify.Publisher, names *directory.NameResolver) *BookmarkService {
	return NewBookmarkService(repos.Bookmark, store, publisher, names)
}
