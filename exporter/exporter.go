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

package exporter

import (
	"github.com/framed/framed/common"
	"github.com/framed/framed/confengine"
	"github.com/framed/framed/logger"
)

// Exporter 按 record 类型将数据分发至对应 Sinker
type Exporter struct {
	conf Config

	particlesSinker Sinker
	metricsSinker   Sinker
}

func New(conf *confengine.Config) (*Exporter, error) {
	var cfg Config
	if conf.Has("exporter") {
		if err := conf.UnpackChild("exporter", &cfg); err != nil {
			return nil, err
		}
	}

	var err error
	var particlesSinker Sinker
	if cfg.Particles.Enabled {
		f := Get(common.RecordParticles)
		if particlesSinker, err = f(cfg); err != nil {
			return nil, err
		}
	}

	var metricsSinker Sinker
	if cfg.Metrics.Enabled {
		f := Get(common.RecordMetrics)
		if metricsSinker, err = f(cfg); err != nil {
			return nil, err
		}
	}

	return &Exporter{
		conf:            cfg,
		particlesSinker: particlesSinker,
		metricsSinker:   metricsSinker,
	}, nil
}

func (e *Exporter) Close() {
	if e.conf.Particles.Enabled {
		e.particlesSinker.Close()
	}
	if e.conf.Metrics.Enabled {
		e.metricsSinker.Close()
	}
}

// Export 同步写入 record 写失败只记录日志 不向上游反馈
func (e *Exporter) Export(record *common.Record) {
	switch record.RecordType {
	case common.RecordParticles:
		if !e.conf.Particles.Enabled {
			return
		}
		if err := e.particlesSinker.Sink(record.Data); err != nil {
			logger.Errorf("sink particles failed: %v", err)
		}

	case common.RecordMetrics:
		if !e.conf.Metrics.Enabled {
			return
		}
		if err := e.metricsSinker.Sink(record.Data); err != nil {
			logger.Errorf("sink metrics failed: %v", err)
		}
	}
}
