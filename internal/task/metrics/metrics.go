// Package metrics exposes task-domain counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TasksCreated    prometheus.Counter
	TasksApproved   prometheus.Counter
	ProgressRecords prometheus.Counter
	DeniedTotal     *prometheus.CounterVec
	ScopeDowngrades prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		TasksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worktrack_tasks_created_total",
			Help: "Tasks created.",
		}),
		TasksApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worktrack_tasks_approved_total",
			Help: "Approve operations that transitioned a task to DONE.",
		}),
		ProgressRecords: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worktrack_progress_records_total",
			Help: "Progress ledger entries appended.",
		}),
		DeniedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worktrack_authorization_denied_total",
			Help: "Operations rejected by the authorization engine.",
		}, []string{"operation"}),
		ScopeDowngrades: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worktrack_listing_scope_downgrades_total",
			Help: "Listing requests silently narrowed to the actor's visibility.",
		}),
	}
}
