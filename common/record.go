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

package common

// RecordType 导出数据的类别
type RecordType string

const (
	// RecordParticles 解码完成的仪器数据记录
	RecordParticles RecordType = "particles"

	// RecordMetrics 解析过程打点数据
	RecordMetrics RecordType = "metrics"
)

// Record 是在 pipeline / exporter 之间流转的统一载体
//
// Data 为各类型的具体对象 使用方按 RecordType 断言
type Record struct {
	RecordType RecordType
	Data       any
}

// MetricsData 一条来源会话的解析打点增量
//
// controller 周期性汇总后投递 exporter 累加至 prometheus 指标
type MetricsData struct {
	Session string
	Source  string
	Format  string

	Frames             uint64
	BytesRead          uint64
	NonDataBytes       uint64
	ChecksumMismatches uint64
	MalformedHeaders   uint64
	Truncations        uint64
	Particles          uint64
	DecodeFailures     uint64
}
