package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-arcade/ideaflow/internal/engine/model/idea"
	"github.com/go-arcade/ideaflow/internal/engine/repo"
	notificationrepo "github.com/go-arcade/ideaflow/internal/engine/repo/notification"
	"github.com/go-arcade/ideaflow/internal/pkg/actor"
	"github.com/go-arcade/ideaflow/internal/pkg/directory"
	"github.com/go-arcade/ideaflow/internal/pkg/ideastore"
	"github.com/go-arcade/ideaflow/internal/pkg/notify"
	"github.com/go-arcade/ideaflow/pkg/database/dbtest"
	"github.com/go-arcade/ideaflow/pkg/statemachine"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	mu    sync.Mutex
	users map[uint64]string
	err   error
	calls int
}

func (d *fakeDirectory) GetByID(ctx context.Context, userID uint64) (*directory.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	name, ok := d.users[userID]
	if !ok {
		return nil, directory.ErrUserNotFound
	}
	return &directory.User{ID: userID, DisplayName: name}, nil
}

type sentNote struct {
	Type   notify.Type
	UserID uint64
	IdeaID uint64
	Data   map[string]any
}

type recordingPublisher struct {
	mu    sync.Mutex
	notes []sentNote
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, event notify.Event) {}

func (p *recordingPublisher) Notify(ctx context.Context, t notify.Type, userID, ideaID uint64, data map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notes = append(p.notes, sentNote{Type: t, UserID: userID, IdeaID: ideaID, Data: data})
}

func (p *recordingPublisher) ofType(t notify.Type) []sentNote {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []sentNote
	for _, n := range p.notes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

type recordingQueue struct {
	mu  sync.Mutex
	ids []uint64
}

func (q *recordingQueue) EnqueueRecount(ctx context.Context, ideaID uint64, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, ideaID)
	return nil
}

func (q *recordingQueue) enqueued() []uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]uint64(nil), q.ids...)
}

// flakyStore fails the next failSet SetVoteCount calls and records the
// counts it passes on. beforeSet, when set, runs ahead of each write.
type flakyStore struct {
	ideastore.IdeaStore
	mu        sync.Mutex
	failSet   int
	written   []int64
	beforeSet func(count int64)
}

func (s *flakyStore) SetVoteCount(ctx context.Context, ideaID uint64, count int64) error {
	s.mu.Lock()
	if s.failSet > 0 {
		s.failSet--
		s.mu.Unlock()
		return errors.New("idea store unavailable")
	}
	hook := s.beforeSet
	s.mu.Unlock()

	if hook != nil {
		hook(count)
	}
	if err := s.IdeaStore.SetVoteCount(ctx, ideaID, count); err != nil {
		return err
	}
	s.mu.Lock()
	s.written = append(s.written, count)
	s.mu.Unlock()
	return nil
}

func (s *flakyStore) writes() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.written...)
}

func (s *flakyStore) failNext(n int) {
	s.mu.Lock()
	s.failSet = n
	s.mu.Unlock()
}

type fixture struct {
	repos     *repo.Repositories
	dir       *fakeDirectory
	pub       *recordingPublisher
	queue     *recordingQueue
	store     *flakyStore
	ideas     *IdeaService
	votes     *VoteService
	reconcile *ReconcileService
	bookmarks *BookmarkService
	notes     *NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, repo.Models()...)
	repos := repo.NewRepositories(db, notificationrepo.NewNotificationRepo(db))
	actors := actor.NewSystem(actor.Conf{})
	t.Cleanup(actors.Stop)

	f := &fixture{
		repos: repos,
		dir:   &fakeDirectory{users: map[uint64]string{7: "Alice", 8: "Bob", 9: "Carol"}},
		pub:   &recordingPublisher{},
		queue: &recordingQueue{},
	}
	f.ideas = NewIdeaService(db, repos.Idea, repos.TeamAssignment, repos.Workflow, actors, f.dir, f.pub)
	f.store = &flakyStore{IdeaStore: f.ideas}
	pusher := ideastore.NewPusher(f.store, ideastore.PushConf{
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  2 * time.Millisecond,
	})
	lanes := actor.NewSystem(actor.Conf{})
	t.Cleanup(lanes.Stop)
	counter := NewVoteCounter(lanes, repos.Vote)
	names := directory.NewNameResolver(f.dir, nil, time.Minute)
	f.votes = NewVoteService(repos.Vote, counter, pusher, f.store, f.queue, f.pub, names)
	f.reconcile = NewReconcileService(repos.Idea, repos.Vote, f.store, counter)
	f.bookmarks = NewBookmarkService(repos.Bookmark, f.store, f.pub, names)
	f.notes = NewNotificationService(repos.Notification)
	return f
}

// newIdea creates an idea owned by user 1 and forces it into status.
func (f *fixture) newIdea(t *testing.T, status statemachine.IdeaStatus) *idea.Idea {
	t.Helper()
	i, err := f.ideas.CreateIdea(context.Background(), 1, &idea.CreateIdeaReq{Title: "A", Description: "B"})
	require.NoError(t, err)
	if status != statemachine.IdeaDraft {
		i.Status = status
		require.NoError(t, f.repos.Idea.Save(context.Background(), i))
	}
	return i
}

func (f *fixture) reload(t *testing.T, id uint64) *idea.Idea {
	t.Helper()
	i, err := f.ideas.GetIdea(context.Background(), id)
	require.NoError(t, err)
	return i
}
