// Copyright 2025 The framed Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/framed/framed/common"
	"github.com/framed/framed/exporter"
	"github.com/framed/framed/internal/labels"
)

func init() {
	exporter.Register(common.RecordMetrics, New)
}

var labelNames = []string{"format", "source"}

// Sinker 将解析打点增量累加至 prometheus 指标
//
// 指标随 server 的 /metrics 端点对外暴露 本身不做远端上报
type Sinker struct {
	frames             *prometheus.CounterVec
	bytesRead          *prometheus.CounterVec
	nonDataBytes       *prometheus.CounterVec
	checksumMismatches *prometheus.CounterVec
	malformedHeaders   *prometheus.CounterVec
	truncations        *prometheus.CounterVec
	particles          *prometheus.CounterVec
	decodeFailures     *prometheus.CounterVec
}

func New(conf exporter.Config) (exporter.Sinker, error) {
	counter := func(name, help string) *prometheus.CounterVec {
		cv := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: common.App,
			Name:      name,
			Help:      help,
		}, labelNames)
		prometheus.MustRegister(cv)
		return cv
	}

	return &Sinker{
		frames:             counter("frames_total", "Valid frames extracted"),
		bytesRead:          counter("bytes_read_total", "Bytes consumed from sources"),
		nonDataBytes:       counter("non_data_bytes_total", "Bytes outside any valid frame"),
		checksumMismatches: counter("checksum_mismatch_total", "Frames rejected by checksum"),
		malformedHeaders:   counter("malformed_header_total", "Frames rejected by header shape"),
		truncations:        counter("truncation_total", "Incomplete frames at end of source"),
		particles:          counter("particles_total", "Particles decoded from frames"),
		decodeFailures:     counter("decode_failures_total", "Frames the field decoder rejected"),
	}, nil
}

func (s *Sinker) Name() common.RecordType {
	return common.RecordMetrics
}

func (s *Sinker) Sink(data any) error {
	md, ok := data.(*common.MetricsData)
	if !ok {
		return nil
	}

	lbs := labels.Labels{
		{Name: "format", Value: md.Format},
		{Name: "source", Value: md.Source},
	}.Sorted()
	values := lbs.Values()

	s.frames.WithLabelValues(values...).Add(float64(md.Frames))
	s.bytesRead.WithLabelValues(values...).Add(float64(md.BytesRead))
	s.nonDataBytes.WithLabelValues(values...).Add(float64(md.NonDataBytes))
	s.checksumMismatches.WithLabelValues(values...).Add(float64(md.ChecksumMismatches))
	s.malformedHeaders.WithLabelValues(values...).Add(float64(md.MalformedHeaders))
	s.truncations.WithLabelValues(values...).Add(float64(md.Truncations))
	s.particles.WithLabelValues(values...).Add(float64(md.Particles))
	s.decodeFailures.WithLabelValues(values...).Add(float64(md.DecodeFailures))
	return nil
}

func (s *Sinker) Close() {
	prometheus.Unregister(s.frames)
	prometheus.Unregister(s.bytesRead)
	prometheus.Unregister(s.nonDataBytes)
	prometheus.Unregister(s.checksumMismatches)
	prometheus.Unregister(s.malformedHeaders)
	prometheus.Unregister(s.truncations)
	prometheus.Unregister(s.particles)
	prometheus.Unregister(s.decodeFailures)
}
