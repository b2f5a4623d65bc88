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

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// VoteCountPushTotal counts setVoteCount pushes by outcome (ok, retried, exhausted)
	VoteCountPushTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideaflow_vote_count_push_total",
			Help: "Vote count pushes to the idea store by outcome",
		},
		[]string{"result"},
	)

	// DeferredRecountTotal counts recount tasks by stage (enqueued, enqueue_failed, processed, failed)
	DeferredRecountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideaflow_deferred_recount_total",
			Help: "Deferred vote recount tasks by stage",
		},
		[]string{"stage"},
	)

	// NotificationPublishTotal counts published notification events
	NotificationPublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideaflow_notification_publish_total",
			Help: "Notification events handed to the broker by type and result",
		},
		[]string{"type", "result"},
	)

	// NotificationConsumeTotal counts consumed notification messages
	NotificationConsumeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideaflow_notification_consume_total",
			Help: "Notification messages consumed by result (stored, duplicate, poison, failed)",
		},
		[]string{"result"},
	)

	// DirectoryLookupTotal counts directory lookups by result
	DirectoryLookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideaflow_directory_lookup_total",
			Help: "Directory lookups by result (found, not_found, unavailable, cached)",
		},
		[]string{"result"},
	)

	// VoteDriftIdeas is the number of ideas whose cached vote count differs from the ledger
	VoteDriftIdeas = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ideaflow_vote_drift_ideas",
			Help: "Ideas whose cached vote count differs from the vote ledger at last inspection",
		},
	)

	// VoteDriftRepairedTotal counts ideas repaired by reconciliation
	VoteDriftRepairedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ideaflow_vote_drift_repaired_total",
			Help: "Ideas whose vote count was repaired by reconciliation",
		},
	)

	// IdeaActorsActive is the number of live per-idea actors
	IdeaActorsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ideaflow_idea_actors_active",
			Help: "Live per-idea mailbox goroutines",
		},
	)

	// IdeaTransitionsTotal counts lifecycle transitions
	IdeaTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideaflow_idea_transitions_total",
			Help: "Idea lifecycle transitions by target status",
		},
		[]string{"to"},
	)

	ideaflowMetricsOnce sync.Once
)

// RegisterIdeaflowMetrics registers the domain and scheduler metrics once per process.
func RegisterIdeaflowMetrics(registry prometheus.Registerer) {
	ideaflowMetricsOnce.Do(func() {
		registry.MustRegister(jobCollectors()...)
		registry.MustRegister(
			VoteCountPushTotal,
			DeferredRecountTotal,
			NotificationPublishTotal,
			NotificationConsumeTotal,
			DirectoryLookupTotal,
			VoteDriftIdeas,
			VoteDriftRepairedTotal,
			IdeaActorsActive,
			IdeaTransitionsTotal,
		)
	})
}
