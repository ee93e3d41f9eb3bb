// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsIngest is the lazily-initialized set of prometheus collectors for
// one process: counters for each file/entity/edge outcome plus histograms
// for the three pipeline phases.
type metricsIngest struct {
	once sync.Once

	filesDiscovered prometheus.Counter
	filesParsed     prometheus.Counter
	filesFailed     prometheus.Counter
	filesExcluded   prometheus.Counter
	filesBinary     prometheus.Counter

	entitiesExtracted prometheus.Counter
	edgesExtracted    prometheus.Counter
	edgesUnresolved   prometheus.Counter
	edgesResolved     prometheus.Counter

	batchesSent    prometheus.Counter
	batchRetries   prometheus.Counter
	chunkFailures  prometheus.Counter

	parseDuration  prometheus.Histogram
	commitDuration prometheus.Histogram
	totalDuration  prometheus.Histogram
}

var ingMetrics metricsIngest

func (m *metricsIngest) init() {
	m.once.Do(func() {
		m.filesDiscovered = prometheus.NewCounter(prometheus.CounterOpts{Name: "isograph_ingest_files_discovered_total", Help: "Files seen during directory discovery"})
		m.filesParsed = prometheus.NewCounter(prometheus.CounterOpts{Name: "isograph_ingest_files_parsed_total", Help: "Files successfully parsed"})
		m.filesFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "isograph_ingest_files_failed_total", Help: "Files that failed to parse"})
		m.filesExcluded = prometheus.NewCounter(prometheus.CounterOpts{Name: "isograph_ingest_files_excluded_total", Help: "Files excluded by config"})
		m.filesBinary = prometheus.NewCounter(prometheus.CounterOpts{Name: "isograph_ingest_files_binary_total", Help: "Files classified as binary"})

		m.entitiesExtracted = prometheus.NewCounter(prometheus.CounterOpts{Name: "isograph_ingest_entities_extracted_total", Help: "Entities extracted across all files"})
		m.edgesExtracted = prometheus.NewCounter(prometheus.CounterOpts{Name: "isograph_ingest_edges_extracted_total", Help: "Dependency edges extracted"})
		m.edgesUnresolved = prometheus.NewCounter(prometheus.CounterOpts{Name: "isograph_ingest_edges_unresolved_total", Help: "Edges left pointing at an unresolved placeholder"})
		m.edgesResolved = prometheus.NewCounter(prometheus.CounterOpts{Name: "isograph_ingest_edges_resolved_total", Help: "Edges resolved to a concrete entity during consolidation"})

		m.batchesSent = prometheus.NewCounter(prometheus.CounterOpts{Name: "isograph_ingest_batches_sent_total", Help: "Store write batches sent"})
		m.batchRetries = prometheus.NewCounter(prometheus.CounterOpts{Name: "isograph_ingest_batch_retries_total", Help: "Store write batches retried"})
		m.chunkFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "isograph_ingest_chunk_failures_total", Help: "Chunk writes that failed the run"})

		m.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "isograph_ingest_parse_duration_seconds", Help: "Phase A parse duration"})
		m.commitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "isograph_ingest_commit_duration_seconds", Help: "Phase B commit duration"})
		m.totalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "isograph_ingest_total_duration_seconds", Help: "Total run duration"})

		_ = prometheus.Register(prometheus.NewCounterFunc(prometheus.CounterOpts{Name: "isograph_ingest_build_info", Help: "Static build marker, always 1"}, func() float64 { return 1 }))
		for _, c := range []prometheus.Collector{
			m.filesDiscovered, m.filesParsed, m.filesFailed, m.filesExcluded, m.filesBinary,
			m.entitiesExtracted, m.edgesExtracted, m.edgesUnresolved, m.edgesResolved,
			m.batchesSent, m.batchRetries, m.chunkFailures,
			m.parseDuration, m.commitDuration, m.totalDuration,
		} {
			_ = prometheus.Register(c)
		}
	})
}
