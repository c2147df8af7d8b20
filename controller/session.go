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

package controller

import (
	"time"

	"github.com/pkg/errors"

	"github.com/framed/framed/common"
	"github.com/framed/framed/format"
	"github.com/framed/framed/frame"
	"github.com/framed/framed/logger"
	"github.com/framed/framed/particle"
	"github.com/framed/framed/source"
)

// session 一条来源的完整解析过程
//
// 独占 source / stream / decoder 运行在单个 worker 中 无共享可变状态
type session struct {
	src        source.Source
	formatName string
	stream     *frame.Stream
	dec        format.Decoder
	batch      int

	last       frame.Stats
	particles  uint64
	decodeFail uint64

	totalParticles  uint64
	totalDecodeFail uint64
}

func newSession(cfg SourceConfig, src source.Source, batch, readN int) (*session, error) {
	f, err := format.Get(cfg.Format)
	if err != nil {
		return nil, err
	}

	sess := &session{
		src:        src,
		formatName: cfg.Format,
		batch:      batch,
	}

	stream, err := frame.NewStream(f.FrameConfig(cfg.Options), src,
		frame.WithReadBlockSize(readN),
		frame.WithDiagnosticFunc(sess.onDiagnostic),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "source (%s)", src.Name())
	}

	dec, err := f.NewDecoder(cfg.Options)
	if err != nil {
		return nil, errors.Wrapf(err, "source (%s)", src.Name())
	}

	sess.stream = stream
	sess.dec = dec
	return sess, nil
}

// onDiagnostic 不成帧区域只打点与记日志 不进入数据通路
func (s *session) onDiagnostic(d frame.Diagnostic) {
	handledDiagnostics.WithLabelValues(s.formatName, d.Kind.String()).Inc()
	logger.Debugf("source (%s) %s region [%d, %d) %d bytes",
		s.src.Name(), d.Kind, d.Start, d.End, d.Len())
}

// run 拉取并解码整条来源 产出经 sink 投递
//
// source 耗尽后投递最终的打点增量 解码失败只计数 不中断会话
func (s *session) run(sink func(*common.Record)) error {
	defer s.close()

	for !s.stream.Exhausted() {
		frames, err := s.stream.Next(s.batch)
		if len(frames) > 0 {
			s.decodeFrames(frames, sink)
		}
		if err != nil {
			s.flushMetrics(sink)
			return errors.Wrapf(err, "source (%s)", s.src.Name())
		}
	}

	s.flushMetrics(sink)
	return nil
}

func (s *session) decodeFrames(frames []*frame.Frame, sink func(*common.Record)) {
	now := time.Now()

	var batch []*particle.Particle
	for _, fr := range frames {
		particles, err := s.dec.Decode(fr, now)
		if err != nil {
			s.decodeFail++
			s.totalDecodeFail++
			logger.Warnf("source (%s) decode frame at (%d) failed: %v", s.src.Name(), fr.Start, err)
			continue
		}
		for _, p := range particles {
			p.Session = s.src.ID()
			p.Source = s.src.Name()
		}
		batch = append(batch, particles...)
	}

	if len(batch) == 0 {
		return
	}
	s.particles += uint64(len(batch))
	s.totalParticles += uint64(len(batch))
	sink(&common.Record{RecordType: common.RecordParticles, Data: batch})
}

// flushMetrics 投递自上次以来的打点增量
func (s *session) flushMetrics(sink func(*common.Record)) {
	stats := s.stream.Stats()
	delta := &common.MetricsData{
		Session: s.src.ID(),
		Source:  s.src.Name(),
		Format:  s.formatName,

		Frames:             stats.Frames - s.last.Frames,
		BytesRead:          stats.BytesRead - s.last.BytesRead,
		NonDataBytes:       stats.NonDataBytes - s.last.NonDataBytes,
		ChecksumMismatches: stats.ChecksumMismatches - s.last.ChecksumMismatches,
		MalformedHeaders:   stats.MalformedHeaders - s.last.MalformedHeaders,
		Truncations:        stats.Truncations - s.last.Truncations,
		Particles:          s.particles,
		DecodeFailures:     s.decodeFail,
	}
	s.last = stats
	s.particles = 0
	s.decodeFail = 0

	sink(&common.Record{RecordType: common.RecordMetrics, Data: delta})
}

// summary 会话终览 用于 /stats 端点
func (s *session) summary() sessionSummary {
	stats := s.stream.Stats()
	return sessionSummary{
		Session:            s.src.ID(),
		Source:             s.src.Name(),
		Format:             s.formatName,
		Frames:             stats.Frames,
		BytesRead:          stats.BytesRead,
		NonDataBytes:       stats.NonDataBytes,
		ChecksumMismatches: stats.ChecksumMismatches,
		MalformedHeaders:   stats.MalformedHeaders,
		Truncations:        stats.Truncations,
		Particles:          s.totalParticles,
		DecodeFailures:     s.totalDecodeFail,
	}
}

func (s *session) close() {
	s.dec.Free()
	if err := s.src.Close(); err != nil {
		logger.Warnf("close source (%s) failed: %v", s.src.Name(), err)
	}
}
