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

type Config struct {
	Particles ParticlesConfig `config:"particles"`
	Metrics   MetricsConfig   `config:"metrics"`
}

type ParticlesConfig struct {
	Enabled    bool   `config:"enabled"`
	Console    bool   `config:"console"`
	Filename   string `config:"filename"`
	MaxSize    int    `config:"maxSize"`
	MaxBackups int    `config:"maxBackups"`
	MaxAge     int    `config:"maxAge"`

	// Compress 写入 snappy 块流 每条记录长度前缀 + 压缩块
	Compress bool `config:"compress"`
}

func (pc *ParticlesConfig) Validate() {
	if pc.Filename == "" {
		pc.Filename = "particles.log"
	}
	if pc.MaxSize <= 0 {
		pc.MaxSize = 100
	}
	if pc.MaxAge <= 0 {
		pc.MaxAge = 7
	}
	if pc.MaxBackups <= 0 {
		pc.MaxBackups = 10
	}
}

type MetricsConfig struct {
	Enabled bool `config:"enabled"`
}
