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

	"github.com/framed/framed/frame/checksum"
)

// OutcomeKind 校验结论
type OutcomeKind uint8

const (
	// OutcomeIncomplete 窗口字节不足 等待更多输入
	OutcomeIncomplete OutcomeKind = iota

	// OutcomeValid 校验通过 候选晋升为完整帧
	OutcomeValid

	// OutcomeInvalid 候选被否决 触发重同步
	OutcomeInvalid
)

// Reason 否决原因 区分校验不符与头部损坏 两者均可恢复
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonChecksumMismatch
	ReasonMalformedHeader
)

// Outcome 一次校验的结论
//
// End 仅在 Valid 时有效 为帧结束的绝对偏移 开区间
type Outcome struct {
	Kind   OutcomeKind
	Reason Reason
	End    int
}

// Validator 判定候选帧的完整性与合法性
//
// 对任何畸形输入都不允许 panic 所有异常条件都是普通的 Invalid 结论
type Validator struct {
	cfg *Config
}

func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// Validate 校验候选帧
//
// exhausted 表示 source 已经结束 影响两处判定
// - next-sync 确认在 EOF 处豁免 文件的最后一帧之后不会再有 sync
// - Incomplete 在 EOF 处升级为截断 由调用方上报
func (v *Validator) Validate(win []byte, base int, cand *Candidate, exhausted bool) Outcome {
	if !cand.HeaderOK {
		return Outcome{Kind: OutcomeIncomplete}
	}

	cfg := v.cfg
	total := cfg.frameLen(cand.Header.Declared)
	if total <= cfg.HeaderLen+cfg.trailerLen() || total > cfg.MaxFrameLen {
		return Outcome{Kind: OutcomeInvalid, Reason: ReasonMalformedHeader}
	}

	start := cand.Start - base
	if start+total > len(win) {
		return Outcome{Kind: OutcomeIncomplete}
	}
	if cfg.TrailerNextSync && !exhausted && start+total+len(cfg.Sync) > len(win) {
		return Outcome{Kind: OutcomeIncomplete}
	}

	fr := win[start : start+total]

	if len(cfg.Trailer) > 0 && !bytes.HasSuffix(fr, cfg.Trailer) {
		return Outcome{Kind: OutcomeInvalid, Reason: ReasonMalformedHeader}
	}
	if cfg.TrailerNextSync && start+total+len(cfg.Sync) <= len(win) {
		if !bytes.HasPrefix(win[start+total:], cfg.Sync) {
			return Outcome{Kind: OutcomeInvalid, Reason: ReasonMalformedHeader}
		}
	}

	if cfg.Checksum != nil {
		declared := cand.Header.Checksum
		if f := cfg.ChecksumField; f.Off < 0 {
			off := total + f.Off
			dv, ok := parseUint(fr[off:off+f.Len], f.Enc)
			if !ok {
				return Outcome{Kind: OutcomeInvalid, Reason: ReasonMalformedHeader}
			}
			declared = uint32(dv)
		}

		body := fr[cfg.HeaderLen : total-cfg.trailerLen()]
		if cfg.Coverage == CoverFrame {
			body = fr[:total-cfg.trailerLen()]
		}
		if !checksum.Verify(cfg.Checksum, body, declared) {
			return Outcome{Kind: OutcomeInvalid, Reason: ReasonChecksumMismatch}
		}
	}

	return Outcome{Kind: OutcomeValid, End: cand.Start + total}
}
