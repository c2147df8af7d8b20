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

import (
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/framed/framed/frame/checksum"
)

// FieldEncoding 头部字段的编码方式
type FieldEncoding uint8

const (
	// FieldNone 字段不存在
	FieldNone FieldEncoding = iota

	// FieldBinaryLE 小端二进制整数
	FieldBinaryLE

	// FieldBinaryBE 大端二进制整数
	FieldBinaryBE

	// FieldASCIIHex ASCII 十六进制编码整数
	FieldASCIIHex

	// FieldBytes 原样字节 不做数值解析
	FieldBytes
)

// Field 头部中一个定长字段的位置与编码
//
// Off 为相对帧起始（sync 首字节）的偏移 负值表示相对帧末尾
type Field struct {
	Off int
	Len int
	Enc FieldEncoding
}

func (f Field) exists() bool {
	return f.Enc != FieldNone && f.Len > 0
}

// Coverage 校验和的计算范围
type Coverage uint8

const (
	// CoverPayload 仅覆盖载荷区
	CoverPayload Coverage = iota

	// CoverFrame 从帧起始覆盖至校验字段之前
	CoverFrame
)

// Config 描述一种帧格式的全部结构信息
//
// 同一段扫描/校验/重同步逻辑被各仪器格式复用
// 差异全部收敛在 Config 中 而非每种格式手写一个 sieve
type Config struct {
	// Name 格式名称
	Name string

	// Sync 帧起始标记 1–2 字节
	Sync []byte

	// HeaderLen 头部总字节数 含 Sync 载荷紧随其后
	HeaderLen int

	// TypeField 记录类别字段 可缺省
	TypeField Field

	// LengthField 声明长度字段 必填
	LengthField Field

	// ChecksumField 声明校验值字段 Off 为负时位于帧尾
	ChecksumField Field

	// TimeField 头部内嵌时间戳字段 可缺省 原样传递
	TimeField Field

	// LengthUnit 声明长度的单位字节数 Nortek 系以 16-bit word 计
	LengthUnit int

	// LengthIncludesHeader 声明长度是否已包含头部
	LengthIncludesHeader bool

	// LengthIncludesTrailer 声明长度是否已包含结尾区
	LengthIncludesTrailer bool

	// Trailer 固定结尾标记 如 SIO 的 0x03 可缺省
	Trailer []byte

	// TrailerNextSync 以下一个 Sync 紧随帧尾作为成帧确认
	//
	// source 耗尽时最后一帧允许缺少该确认
	TrailerNextSync bool

	// MaxFrameLen 单帧长度上限 超出即判定为头部损坏
	MaxFrameLen int

	// Preamble 文件级固定头部字节数 扫描开始前一次性跳过
	Preamble int

	// Checksum 校验算法 nil 表示该格式无校验
	Checksum checksum.Algorithm

	// Coverage 校验范围
	Coverage Coverage

	// ValidateHeader 额外的头部形状检查 如 SIO 的 ASCII 字段类别
	// 返回 false 时该偏移不构成候选帧
	ValidateHeader func(hdr []byte) bool
}

func newConfigError(format string, args ...any) error {
	format = "frame/config: " + format
	return errors.Errorf(format, args...)
}

// Validate 检查配置自洽性
//
// 配置错误是本子系统唯一的致命错误 必须在读入任何字节前暴露
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.Name == "" {
		errs = multierror.Append(errs, newConfigError("empty format name"))
	}
	if len(c.Sync) < 1 || len(c.Sync) > 2 {
		errs = multierror.Append(errs, newConfigError("sync marker must be 1-2 bytes, got (%d)", len(c.Sync)))
	}
	if c.HeaderLen < len(c.Sync) {
		errs = multierror.Append(errs, newConfigError("header length (%d) shorter than sync marker", c.HeaderLen))
	}
	if !c.LengthField.exists() {
		errs = multierror.Append(errs, newConfigError("length field is required"))
	}
	if c.LengthUnit <= 0 {
		errs = multierror.Append(errs, newConfigError("length unit must be positive, got (%d)", c.LengthUnit))
	}
	if c.MaxFrameLen <= c.HeaderLen+c.trailerLen() {
		errs = multierror.Append(errs, newConfigError("max frame length (%d) cannot hold header and trailer", c.MaxFrameLen))
	}
	if c.TrailerNextSync && len(c.Trailer) > 0 {
		errs = multierror.Append(errs, newConfigError("trailer marker and next-sync confirmation are exclusive"))
	}

	for _, f := range []struct {
		name  string
		field Field
	}{
		{"type", c.TypeField},
		{"length", c.LengthField},
		{"checksum", c.ChecksumField},
		{"time", c.TimeField},
	} {
		if !f.field.exists() {
			continue
		}
		if f.field.Off >= 0 && f.field.Off+f.field.Len > c.HeaderLen {
			errs = multierror.Append(errs, newConfigError("%s field exceeds header bounds", f.name))
		}
	}

	if c.Checksum != nil {
		if !c.ChecksumField.exists() {
			errs = multierror.Append(errs, newConfigError("checksum algorithm set but no checksum field"))
		} else if bits := fieldBits(c.ChecksumField); bits < c.Checksum.Width() {
			// 字段位宽必须能够承载算法输出
			errs = multierror.Append(errs, newConfigError(
				"checksum width (%d) wider than field can represent (%d)", c.Checksum.Width(), bits))
		}
	}
	return errs.ErrorOrNil()
}

// fieldBits 返回字段能表示的位数
func fieldBits(f Field) int {
	switch f.Enc {
	case FieldASCIIHex:
		return f.Len * 4
	default:
		return f.Len * 8
	}
}

// trailerLen 帧尾区字节数 固定结尾标记与帧尾校验字段之和
func (c *Config) trailerLen() int {
	n := len(c.Trailer)
	if c.ChecksumField.exists() && c.ChecksumField.Off < 0 {
		n += c.ChecksumField.Len
	}
	return n
}

// frameLen 由声明长度推导完整帧字节数 含头部与结尾区
func (c *Config) frameLen(declared int) int {
	n := declared * c.LengthUnit
	if !c.LengthIncludesHeader {
		n += c.HeaderLen
	}
	if !c.LengthIncludesTrailer {
		n += c.trailerLen()
	}
	return n
}

// parseUint 按字段编码解析无符号整数 至多 8 字节
func parseUint(b []byte, enc FieldEncoding) (uint64, bool) {
	switch enc {
	case FieldBinaryLE:
		var v uint64
		for i := len(b) - 1; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
		return v, len(b) <= 8
	case FieldBinaryBE:
		var v uint64
		for _, c := range b {
			v = v<<8 | uint64(c)
		}
		return v, len(b) <= 8
	case FieldASCIIHex:
		v, err := strconv.ParseUint(string(b), 16, 64)
		return v, err == nil
	}
	return 0, false
}
