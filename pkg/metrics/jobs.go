package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 定时任务指标，标签 job 为任务注册名
var (
	JobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideaflow_job_runs_total",
			Help: "Scheduled job runs by job and result (ok, failed)",
		},
		[]string{"job", "result"},
	)

	JobRunSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ideaflow_job_run_seconds",
			Help:    "Scheduled job run duration",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"job"},
	)

	JobNextRunTimestamp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ideaflow_job_next_run_timestamp_seconds",
			Help: "Unix time of the next scheduled run",
		},
		[]string{"job"},
	)

	JobsRegistered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ideaflow_jobs_registered",
			Help: "Jobs known to the scheduler",
		},
	)
)

func jobCollectors() []prometheus.Collector {
	return []prometheus.Collector{JobRunsTotal, JobRunSeconds, JobNextRunTimestamp, JobsRegistered}
}

// ObserveJobRun records one finished run of a scheduled job.
func ObserveJobRun(job string, took time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	JobRunsTotal.WithLabelValues(job, result).Inc()
	JobRunSeconds.WithLabelValues(job).Observe(took.Seconds())
}

// SetJobNextRun exports when job fires next. Zero times are ignored.
func SetJobNextRun(job string, next time.Time) {
	if next.IsZero() {
		return
	}
	JobNextRunTimestamp.WithLabelValues(job).Set(float64(next.Unix()))
}
