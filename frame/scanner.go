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
	"bytes"
)

// Candidate 一个可能的帧起点
//
// HeaderOK 为 false 表示窗口内字节尚不足以解析完整头部
// 由 Validator 判定为 Incomplete 等待更多数据
type Candidate struct {
	Start    int
	HeaderOK bool
	Header   Header
}

// Scanner 在窗口内定位候选帧头并提取声明字段
//
// Scanner 只做头部形状识别 不做校验和确认
// sync 字节可能出现在任意载荷内部 首个结构性匹配未必正确
// 成帧与否以 Validator 为准
type Scanner struct {
	cfg *Config
}

func NewScanner(cfg *Config) *Scanner {
	return &Scanner{cfg: cfg}
}

// Scan 从绝对偏移 from 起寻找下一个候选帧头
//
// 窗口内不存在完整 sync 时返回 nil 不会越过窗口末尾做任何推测读取
// 形状检查或字段解析失败的 sync 直接跳过 继续向后搜索
func (s *Scanner) Scan(win []byte, base, from int) *Candidate {
	idx := from - base
	if idx < 0 || idx > len(win) {
		return nil
	}

	for {
		i := bytes.Index(win[idx:], s.cfg.Sync)
		if i < 0 {
			return nil
		}
		start := idx + i

		// 头部字节未集齐 不在此处判定成败
		if len(win)-start < s.cfg.HeaderLen {
			return &Candidate{Start: base + start}
		}

		hdr := win[start : start+s.cfg.HeaderLen]
		if s.cfg.ValidateHeader != nil && !s.cfg.ValidateHeader(hdr) {
			idx = start + 1
			continue
		}

		h, ok := s.parseHeader(hdr)
		if !ok {
			idx = start + 1
			continue
		}
		return &Candidate{Start: base + start, HeaderOK: true, Header: h}
	}
}

// parseHeader 从完整头部字节中提取声明字段
func (s *Scanner) parseHeader(hdr []byte) (Header, bool) {
	var h Header

	f := s.cfg.LengthField
	v, ok := parseUint(hdr[f.Off:f.Off+f.Len], f.Enc)
	if !ok {
		return h, false
	}
	h.Declared = int(v)

	if f := s.cfg.TypeField; f.exists() {
		if f.Enc == FieldBytes {
			h.TypeCode = string(hdr[f.Off : f.Off+f.Len])
		} else {
			v, ok := parseUint(hdr[f.Off:f.Off+f.Len], f.Enc)
			if !ok {
				return h, false
			}
			h.TypeID = uint32(v)
		}
	}

	// 位于帧尾的校验字段由 Validator 在成帧边界确定后读取
	if f := s.cfg.ChecksumField; f.exists() && f.Off >= 0 {
		v, ok := parseUint(hdr[f.Off:f.Off+f.Len], f.Enc)
		if !ok {
			return h, false
		}
		h.Checksum = uint32(v)
	}

	if f := s.cfg.TimeField; f.exists() {
		h.Timestamp = bytes.Clone(hdr[f.Off : f.Off+f.Len])
	}
	return h, true
}
