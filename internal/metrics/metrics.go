// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "rmctl"

// Failure reasons used as the reason label of image_fetch_failures_total.
const (
	ReasonInvalidURL = "invalid_url"
	ReasonTransport  = "transport"
	ReasonStatus     = "status"
	ReasonDecode     = "decode"
)

// Metrics wraps the prometheus collectors for image and character traffic. A
// nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	fetchFailures     *prometheus.CounterVec
	fetchBytes        prometheus.Counter
	fetchDuration     prometheus.Histogram
	characterRequests *prometheus.CounterVec
}

// Sample is a single flattened metric value.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// New builds a Metrics backed by its own registry so tests and commands never
// share state through the prometheus default registerer.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_cache_hits_total",
			Help:      "Image lookups served from the image store",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_cache_misses_total",
			Help:      "Image lookups that required a network fetch",
		}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_fetch_failures_total",
			Help:      "Image fetches that produced no image",
		}, []string{"reason"}),
		fetchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_fetch_bytes_total",
			Help:      "Raw image bytes downloaded",
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_fetch_duration_seconds",
			Help:      "Duration of image network round trips",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		characterRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "character_requests_total",
			Help:      "Character API page requests by HTTP status",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		m.cacheHits,
		m.cacheMisses,
		m.fetchFailures,
		m.fetchBytes,
		m.fetchDuration,
		m.characterRequests,
	)

	return m
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// FetchFailed records a failed image fetch with one of the Reason* values.
func (m *Metrics) FetchFailed(reason string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(reason).Inc()
}

// FetchDone records a completed network round trip, successful or not.
func (m *Metrics) FetchDone(bytes int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fetchBytes.Add(float64(bytes))
	m.fetchDuration.Observe(elapsed.Seconds())
}

// CharacterRequest records one character API page request. status is the
// HTTP status code text, or "error" for transport failures.
func (m *Metrics) CharacterRequest(status string) {
	if m == nil {
		return
	}
	m.characterRequests.WithLabelValues(status).Inc()
}

// Snapshot gathers the registry and flattens it into samples sorted by name
// and labels. Histograms contribute _count and _sum samples.
func (m *Metrics) Snapshot() []Sample {
	if m == nil {
		return nil
	}

	families, err := m.registry.Gather()
	if err != nil {
		log.WithError(err).Warn("failed to gather metrics")
		return nil
	}

	var samples []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			labels := labelString(metric.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				samples = append(samples, Sample{mf.GetName(), labels, metric.GetCounter().GetValue()})
			case dto.MetricType_GAUGE:
				samples = append(samples, Sample{mf.GetName(), labels, metric.GetGauge().GetValue()})
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				samples = append(samples,
					Sample{mf.GetName() + "_count", labels, float64(h.GetSampleCount())},
					Sample{mf.GetName() + "_sum", labels, h.GetSampleSum()},
				)
			default:
				log.Debugf("skipping metric %s of type %s", mf.GetName(), mf.GetType())
			}
		}
	}

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Name == samples[j].Name {
			return samples[i].Labels < samples[j].Labels
		}
		return samples[i].Name < samples[j].Name
	})

	return samples
}

func labelString(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	return strings.Join(parts, ",")
}
