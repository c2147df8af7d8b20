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

package particles

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/golang/snappy"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/framed/framed/common"
	"github.com/framed/framed/exporter"
	"github.com/framed/framed/internal/bufpool"
	"github.com/framed/framed/internal/json"
	"github.com/framed/framed/particle"
)

func init() {
	exporter.Register(common.RecordParticles, New)
}

// Sinker 将 particle 记录落盘
//
// 默认 JSON lines 开启压缩后为 u32 LE 长度前缀的 snappy 块流
type Sinker struct {
	wr       io.WriteCloser
	encoder  json.Encoder
	compress bool
	cfg      *exporter.ParticlesConfig
}

func New(conf exporter.Config) (exporter.Sinker, error) {
	cfg := &conf.Particles
	cfg.Validate()

	var wr io.WriteCloser
	switch {
	case cfg.Console:
		wr = os.Stdout
	default:
		wr = &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			LocalTime:  true,
		}
	}

	return &Sinker{
		wr:       wr,
		cfg:      cfg,
		compress: cfg.Compress,
		encoder:  json.NewEncoder(wr),
	}, nil
}

func (s *Sinker) Name() common.RecordType {
	return common.RecordParticles
}

func (s *Sinker) Sink(data any) error {
	particles, ok := data.([]*particle.Particle)
	if !ok {
		return nil
	}

	for _, p := range particles {
		if !s.compress {
			if err := s.encoder.Encode(p); err != nil {
				return err
			}
			continue
		}
		if err := s.sinkCompressed(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sinker) sinkCompressed(p *particle.Particle) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}

	// 长度前缀与块体拼在一起单次写出 避免轮转撕裂块边界
	buf := bufpool.Acquire()
	defer bufpool.Release(buf)

	block := snappy.Encode(nil, b)
	var head [4]byte
	binary.LittleEndian.PutUint32(head[:], uint32(len(block)))
	buf.Write(head[:])
	buf.Write(block)

	_, err = s.wr.Write(buf.Bytes())
	return err
}

func (s *Sinker) Close() {
	s.wr.Close()
}
