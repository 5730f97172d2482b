// Package metrics records export pipeline metrics for watch mode.
package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the Prometheus instruments for the export pipeline.
type Recorder struct {
	registry      *prom.Registry
	pagesExported prom.Counter
	pagesSkipped  prom.Counter
	pagesFailed   prom.Counter
	collapses     prom.Counter
	rewrites      prom.Counter
	exportRuns    *prom.CounterVec
	runDuration   prom.Histogram
}

// NewRecorder constructs and registers the export metrics on reg.
// A nil reg gets a private registry, useful in tests.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{registry: reg}
	r.pagesExported = prom.NewCounter(prom.CounterOpts{
		Namespace: "mdexport",
		Name:      "pages_exported_total",
		Help:      "Pages written to the output tree",
	})
	r.pagesSkipped = prom.NewCounter(prom.CounterOpts{
		Namespace: "mdexport",
		Name:      "pages_skipped_total",
		Help:      "Pages skipped (unchanged or excluded)",
	})
	r.pagesFailed = prom.NewCounter(prom.CounterOpts{
		Namespace: "mdexport",
		Name:      "pages_failed_total",
		Help:      "Pages that failed to export",
	})
	r.collapses = prom.NewCounter(prom.CounterOpts{
		Namespace: "mdexport",
		Name:      "collapsed_directories_total",
		Help:      "Solo-index directories collapsed into sibling files",
	})
	r.rewrites = prom.NewCounter(prom.CounterOpts{
		Namespace: "mdexport",
		Name:      "rewritten_files_total",
		Help:      "Files whose cross-references were updated",
	})
	r.exportRuns = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "mdexport",
		Name:      "export_runs_total",
		Help:      "Export runs by outcome",
	}, []string{"outcome"})
	r.runDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "mdexport",
		Name:      "export_run_duration_seconds",
		Help:      "Duration of full export runs",
		Buckets:   prom.DefBuckets,
	})
	reg.MustRegister(r.pagesExported, r.pagesSkipped, r.pagesFailed,
		r.collapses, r.rewrites, r.exportRuns, r.runDuration)
	return r
}

// Registry returns the underlying registry for HTTP exposure.
func (r *Recorder) Registry() *prom.Registry { return r.registry }

// PageExported increments the exported-page counter.
func (r *Recorder) PageExported() { r.pagesExported.Inc() }

// PageSkipped increments the skipped-page counter.
func (r *Recorder) PageSkipped() { r.pagesSkipped.Inc() }

// PageFailed increments the failed-page counter.
func (r *Recorder) PageFailed() { r.pagesFailed.Inc() }

// DirectoryCollapsed increments the collapse counter.
func (r *Recorder) DirectoryCollapsed() { r.collapses.Inc() }

// FileRewritten increments the rewritten-file counter.
func (r *Recorder) FileRewritten() { r.rewrites.Inc() }

// RunCompleted records one full export run.
func (r *Recorder) RunCompleted(outcome string, d time.Duration) {
	r.exportRuns.WithLabelValues(outcome).Inc()
	r.runDuration.Observe(d.Seconds())
}
