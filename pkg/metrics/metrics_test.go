package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInspector struct {
	queues []string
	infos  map[string]*asynq.QueueInfo
	err    error
}

func (f *fakeInspector) Queues() ([]string, error) { return f.queues, f.err }

func (f *fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	info, ok := f.infos[queue]
	if !ok {
		return nil, errors.New("no such queue")
	}
	return info, nil
}

func TestAsynqMetricsCollector_Collect(t *testing.T) {
	inspector := &fakeInspector{
		queues: []string{"recount"},
		infos: map[string]*asynq.QueueInfo{
			"recount": {Pending: 3, Retry: 2},
		},
	}
	c := NewAsynqMetricsCollector(inspector, "recount", "default")
	c.Collect()

	assert.Equal(t, 3.0, testutil.ToFloat64(c.gauge.WithLabelValues("recount", "pending")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.gauge.WithLabelValues("recount", "retry")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.gauge.WithLabelValues("default", "pending")))
}

func TestAsynqMetricsCollector_StartStop(t *testing.T) {
	c := NewAsynqMetricsCollector(&fakeInspector{err: errors.New("redis down")})
	c.Start(time.Hour)
	c.Stop()
}

func TestServer_HandlerServesDomainMetrics(t *testing.T) {
	s := NewMetricsServer(MetricsConfig{})
	VoteDriftIdeas.Set(4)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "ideaflow_vote_drift_ideas 4"))
	assert.Contains(t, string(body), "go_goroutines")
}

func TestObserveJobRun(t *testing.T) {
	failed := testutil.ToFloat64(JobRunsTotal.WithLabelValues("vote-reconcile", "failed"))
	ok := testutil.ToFloat64(JobRunsTotal.WithLabelValues("vote-reconcile", "ok"))

	ObserveJobRun("vote-reconcile", time.Millisecond, errors.New("db down"))
	ObserveJobRun("vote-reconcile", time.Millisecond, nil)

	assert.Equal(t, failed+1, testutil.ToFloat64(JobRunsTotal.WithLabelValues("vote-reconcile", "failed")))
	assert.Equal(t, ok+1, testutil.ToFloat64(JobRunsTotal.WithLabelValues("vote-reconcile", "ok")))
}

func TestSetJobNextRun_IgnoresZero(t *testing.T) {
	next := time.Unix(1_800_000_000, 0)
	SetJobNextRun("digest", next)
	SetJobNextRun("digest", time.Time{})
	assert.Equal(t, float64(next.Unix()), testutil.ToFloat64(JobNextRunTimestamp.WithLabelValues("digest")))
}

func TestServer_StartDisabledIsNoop(t *testing.T) {
	s := NewServer(MetricsConfig{})
	require.NoError(t, s.Start())
	assert.NoError(t, s.Stop(context.Background()))
}

func TestServer_StartServesMetrics(t *testing.T) {
	s := NewServer(MetricsConfig{Host: "127.0.0.1", Port: 0, Enable: true})
	require.NoError(t, s.Start())
	defer s.Stop(context.Background())
	assert.NotNil(t, s.srv)
}
