package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

var (
	// RowsSubmitted counts rows submitted to bulk writes per entity family.
	RowsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "laurel_rows_submitted_total",
		Help: "Rows submitted to bulk upserts, by entity family",
	}, []string{"entity"})

	// RowsAffected counts rows the store actually changed. Comparing it
	// with RowsSubmitted shows how much of a batch was genuinely new.
	RowsAffected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "laurel_rows_affected_total",
		Help: "Rows actually affected by bulk upserts, by entity family",
	}, []string{"entity"})

	// PipelineRuns counts pipeline stage executions by outcome.
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "laurel_pipeline_runs_total",
		Help: "Pipeline stage executions, by stage and status",
	}, []string{"stage", "status"})
)

// ObserveBatch records one bulk write's submitted and affected counts
func ObserveBatch(entity string, submitted, affected int64) {
	RowsSubmitted.WithLabelValues(entity).Add(float64(submitted))
	RowsAffected.WithLabelValues(entity).Add(float64(affected))
}

// Handler exposes the Prometheus registry for the /metrics route
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
