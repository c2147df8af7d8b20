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

package frame

// Header 候选帧的头部元信息
//
// 由 Scanner 在候选偏移处临时构造 校验失败即丢弃
type Header struct {
	// TypeID 数值型记录类别 无类别字段的格式恒为 0
	TypeID uint32

	// TypeCode ASCII 型仪器类别码 如 SIO 头部的两字母码
	TypeCode string

	// Declared 头部声明的长度字段原始值 单位由格式定义
	Declared int

	// Checksum 头部内声明的校验值 校验字段位于帧尾的格式为 0
	Checksum uint32

	// Timestamp 头部内嵌的时间戳字节 原样保留给字段解码器
	Timestamp []byte
}

// Frame 校验通过的完整帧
//
// Payload 在产出时已从 Accumulator 拷出 不随 buffer 回收失效
// Start/End 为相对字节流起点的绝对偏移 End 为开区间
type Frame struct {
	Header  Header
	Payload []byte
	Start   int
	End     int
}

// DiagKind 诊断类别
type DiagKind uint8

const (
	// DiagNonData 从未匹配任何帧头的字节区域
	DiagNonData DiagKind = iota

	// DiagChecksumMismatch 计算校验值与声明值不一致
	DiagChecksumMismatch

	// DiagMalformedHeader 声明长度不合理或缺失结尾标记
	DiagMalformedHeader

	// DiagTruncation source 耗尽时仍有未集齐的候选帧
	DiagTruncation
)

func (k DiagKind) String() string {
	switch k {
	case DiagNonData:
		return "non_data"
	case DiagChecksumMismatch:
		return "checksum_mismatch"
	case DiagMalformedHeader:
		return "malformed_header"
	case DiagTruncation:
		return "truncation"
	}
	return "unknown"
}

// Diagnostic 一段未能成帧的字节区域 仅用于上报 不参与解码
type Diagnostic struct {
	Kind  DiagKind
	Start int
	End   int
}

// Len 返回区域字节数
func (d Diagnostic) Len() int {
	return d.End - d.Start
}

// DiagnosticFunc 诊断回调 由调用方在构造 Stream 时提供
//
// 回调不允许阻塞 也不允许修改流的状态
type DiagnosticFunc func(Diagnostic)
