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
	explainTotal          atomic.Uint64
	explainUnmatchedTotal atomic.Uint64
	risksTotal            atomic.Uint64
	summarizeTotal        atomic.Uint64
	documentsTotal        atomic.Uint64
	requestsRejectedTotal atomic.Uint64
	reloadTotal           atomic.Uint64
	reloadFailedTotal     atomic.Uint64
	panicsTotal           atomic.Uint64

	knowledgeExplanations atomic.Int64

	analysisDuration = newHistogram([]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000})
)

// IncExplain counts a clause explanation; matched is false for a none result.
func IncExplain(matched bool) {
	explainTotal.Add(1)
	if !matched {
		explainUnmatchedTotal.Add(1)
	}
}

// IncRisks counts a risk analysis.
func IncRisks() {
	risksTotal.Add(1)
}

// IncSummarize counts a summary.
func IncSummarize() {
	summarizeTotal.Add(1)
}

// IncDocuments counts an analyzed upload.
func IncDocuments() {
	documentsTotal.Add(1)
}

// IncRejected counts a request refused for invalid input.
func IncRejected() {
	requestsRejectedTotal.Add(1)
}

// IncReload counts a knowledge reload attempt and its failure.
func IncReload(err error) {
	reloadTotal.Add(1)
	if err != nil {
		reloadFailedTotal.Add(1)
	}
}

// IncPanic counts a recovered handler panic.
func IncPanic() {
	panicsTotal.Add(1)
}

// SetKnowledgeExplanations records how many explanations the active knowledge base holds.
func SetKnowledgeExplanations(n int) {
	knowledgeExplanations.Store(int64(n))
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
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
	writeCounter(&buf, "clause_explain_total", "Total clause explanations", explainTotal.Load())
	writeCounter(&buf, "clause_explain_unmatched_total", "Clause explanations with no match", explainUnmatchedTotal.Load())
	writeCounter(&buf, "risk_analysis_total", "Total risk analyses", risksTotal.Load())
	writeCounter(&buf, "summary_total", "Total summaries", summarizeTotal.Load())
	writeCounter(&buf, "document_analysis_total", "Total uploaded documents analyzed", documentsTotal.Load())
	writeCounter(&buf, "requests_rejected_total", "Requests rejected for invalid input", requestsRejectedTotal.Load())
	writeCounter(&buf, "knowledge_reload_total", "Knowledge base reload attempts", reloadTotal.Load())
	writeCounter(&buf, "knowledge_reload_failed_total", "Knowledge base reload failures", reloadFailedTotal.Load())
	writeCounter(&buf, "http_panics_total", "Recovered handler panics", panicsTotal.Load())
	writeGauge(&buf, "knowledge_explanations", "Explanations in the active knowledge base", knowledgeExplanations.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
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

func writeGauge(buf *bytes.Buffer, name, help string, value int64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s gauge\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	// counts are already cumulative: Observe bumps every bucket at or above the value.
	for i, bound := range snap.buckets {
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), snap.counts[i])
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

// Since returns the elapsed milliseconds since start.
func Since(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
