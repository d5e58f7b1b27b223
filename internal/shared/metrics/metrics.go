package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	recordAnalysisStartedTotal   atomic.Uint64
	recordAnalysisCompletedTotal atomic.Uint64
	recordAnalysisFailedTotal    atomic.Uint64

	batchStartedTotal   atomic.Uint64
	batchCompletedTotal atomic.Uint64
	batchFailedTotal    atomic.Uint64

	batchJobsReceivedTotal             atomic.Uint64
	batchJobsCompletedTotal            atomic.Uint64
	batchJobsFailedTotal               atomic.Uint64
	batchJobsDeletedUnrecoverableTotal atomic.Uint64

	recordAnalysisDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
	batchDuration          = newHistogram([]float64{500, 1000, 5000, 15000, 30000, 60000, 120000, 300000, 600000})
)

// IncRecordAnalysisStarted increments the started counter.
func IncRecordAnalysisStarted() {
	recordAnalysisStartedTotal.Add(1)
}

// IncRecordAnalysisCompleted increments the completed counter.
func IncRecordAnalysisCompleted() {
	recordAnalysisCompletedTotal.Add(1)
}

// IncRecordAnalysisFailed increments the failed counter.
func IncRecordAnalysisFailed() {
	recordAnalysisFailedTotal.Add(1)
}

// ObserveRecordAnalysisDurationMs records one analysis duration in milliseconds.
func ObserveRecordAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	recordAnalysisDuration.Observe(value)
}

// IncBatchStarted increments the batch started counter.
func IncBatchStarted() {
	batchStartedTotal.Add(1)
}

// IncBatchCompleted increments the batch completed counter.
func IncBatchCompleted() {
	batchCompletedTotal.Add(1)
}

// IncBatchFailed increments the batch failed counter.
func IncBatchFailed() {
	batchFailedTotal.Add(1)
}

// ObserveBatchDurationMs records one batch duration in milliseconds.
func ObserveBatchDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	batchDuration.Observe(value)
}

// IncBatchJobsReceived counts queue messages picked up by the worker.
func IncBatchJobsReceived() {
	batchJobsReceivedTotal.Add(1)
}

// IncBatchJobsCompleted counts queue messages processed and deleted.
func IncBatchJobsCompleted() {
	batchJobsCompletedTotal.Add(1)
}

// IncBatchJobsFailed counts queue messages whose processing failed.
func IncBatchJobsFailed() {
	batchJobsFailedTotal.Add(1)
}

// IncBatchJobsDeletedUnrecoverable counts malformed messages dropped
// without processing.
func IncBatchJobsDeletedUnrecoverable() {
	batchJobsDeletedUnrecoverableTotal.Add(1)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "record_analysis_started_total", "Total record analyses started", recordAnalysisStartedTotal.Load())
	writeCounter(&buf, "record_analysis_completed_total", "Total record analyses completed", recordAnalysisCompletedTotal.Load())
	writeCounter(&buf, "record_analysis_failed_total", "Total record analyses failed", recordAnalysisFailedTotal.Load())
	writeCounter(&buf, "batch_started_total", "Total CSV batches started", batchStartedTotal.Load())
	writeCounter(&buf, "batch_completed_total", "Total CSV batches completed", batchCompletedTotal.Load())
	writeCounter(&buf, "batch_failed_total", "Total CSV batches failed", batchFailedTotal.Load())
	writeCounter(&buf, "batch_jobs_received_total", "Total batch queue messages received", batchJobsReceivedTotal.Load())
	writeCounter(&buf, "batch_jobs_completed_total", "Total batch queue messages completed", batchJobsCompletedTotal.Load())
	writeCounter(&buf, "batch_jobs_failed_total", "Total batch queue messages failed", batchJobsFailedTotal.Load())
	writeCounter(&buf, "batch_jobs_deleted_unrecoverable_total", "Total malformed batch queue messages dropped", batchJobsDeletedUnrecoverableTotal.Load())
	writeHistogram(&buf, "record_analysis_duration_ms", "Record analysis duration in milliseconds", recordAnalysisDuration.Snapshot())
	writeHistogram(&buf, "batch_duration_ms", "Batch processing duration in milliseconds", batchDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
