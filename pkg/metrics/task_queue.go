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
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

// QueueInspector is the part of asynq.Inspector the collector reads.
type QueueInspector interface {
	Queues() ([]string, error)
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// AsynqMetricsCollector exports asynq queue sizes as gauges
type AsynqMetricsCollector struct {
	inspector QueueInspector
	queues    []string
	gauge     *prometheus.GaugeVec
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewAsynqMetricsCollector creates a collector; queues lists queues to report
// as zero before asynq has created them.
func NewAsynqMetricsCollector(inspector QueueInspector, queues ...string) *AsynqMetricsCollector {
	return &AsynqMetricsCollector{
		inspector: inspector,
		queues:    queues,
		gauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ideaflow_asynq_queue_tasks",
				Help: "Tasks in an asynq queue by state",
			},
			[]string{"queue", "state"},
		),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Collector returns the gauge to register
func (c *AsynqMetricsCollector) Collector() prometheus.Collector {
	return c.gauge
}

// Start starts collecting metrics periodically
func (c *AsynqMetricsCollector) Start(interval time.Duration) {
	go c.collectLoop(interval)
}

// Stop stops collecting metrics
func (c *AsynqMetricsCollector) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

func (c *AsynqMetricsCollector) collectLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(c.doneCh)

	c.Collect()

	for {
		select {
		case <-ticker.C:
			c.Collect()
		case <-c.stopCh:
			return
		}
	}
}

// Collect reads every queue once
func (c *AsynqMetricsCollector) Collect() {
	queues, err := c.inspector.Queues()
	if err != nil {
		log.Warnw("failed to get queues for metrics", "error", err)
		return
	}

	seen := make(map[string]bool, len(queues))
	for _, queueName := range queues {
		seen[queueName] = true
		info, err := c.inspector.GetQueueInfo(queueName)
		if err != nil {
			log.Warnw("failed to get queue info", "queue", queueName, "error", err)
			c.set(queueName, &asynq.QueueInfo{})
			continue
		}
		c.set(queueName, info)
	}
	for _, queueName := range c.queues {
		if !seen[queueName] {
			c.set(queueName, &asynq.QueueInfo{})
		}
	}
}

func (c *AsynqMetricsCollector) set(queue string, info *asynq.QueueInfo) {
	c.gauge.WithLabelValues(queue, "pending").Set(float64(info.Pending))
	c.gauge.WithLabelValues(queue, "active").Set(float64(info.Active))
	c.gauge.WithLabelValues(queue, "scheduled").Set(float64(info.Scheduled))
	c.gauge.WithLabelValues(queue, "retry").Set(float64(info.Retry))
	c.gauge.WithLabelValues(queue, "archived").Set(float64(info.Archived))
}
