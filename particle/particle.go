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

package particle

// Particle 一条解码完成的仪器数据记录
//
// 由格式解码器从校验通过的帧载荷构建 字段名与值的数据字典
// 归各格式所有 本结构只约定统一的外层元信息
type Particle struct {
	// Session 来源解析会话 ID
	Session string `json:"session,omitempty"`

	// Source 来源名称 通常为文件路径
	Source string `json:"source,omitempty"`

	// Format 帧格式名称
	Format string `json:"format"`

	// Type 记录类别名称
	Type string `json:"type"`

	// Timestamp 仪器时间 NTP 纪元秒 解码器无法得到时为 0
	Timestamp float64 `json:"timestamp,omitempty"`

	// Offset 帧在字节流中的起始偏移
	Offset int `json:"offset"`

	// Fields 解码出的命名值
	Fields map[string]any `json:"fields"`
}

// New 创建空 Particle
func New(format, typ string) *Particle {
	return &Particle{
		Format: format,
		Type:   typ,
		Fields: make(map[string]any),
	}
}

// Set 写入一个命名值
func (p *Particle) Set(name string, value any) *Particle {
	p.Fields[name] = value
	return p
}
