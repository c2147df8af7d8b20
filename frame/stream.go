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
	"io"

	"github.com/pkg/errors"

	"github.com/framed/framed/common"
	"github.com/framed/framed/logger"
)

func newError(format string, args ...any) error {
	format = "frame/stream: " + format
	return errors.Errorf(format, args...)
}

// ErrConfiguration 格式配置不自洽 构造期即失败 不读取任何字节
var ErrConfiguration = newError("invalid configuration")

// Source 字节来源
//
// Read 返回至多 max 字节 数据结束时返回 io.EOF
// 允许与字节一同返回 io.EOF
type Source interface {
	Read(max int) ([]byte, error)
}

// Stats Stream 的累计打点数据
type Stats struct {
	Frames             uint64
	BytesRead          uint64
	NonDataBytes       uint64
	ChecksumMismatches uint64
	MalformedHeaders   uint64
	Truncations        uint64
}

// Option Stream 可选参数
type Option func(*Stream)

// WithDiagnosticFunc 设置诊断回调
func WithDiagnosticFunc(f DiagnosticFunc) Option {
	return func(s *Stream) { s.diagFn = f }
}

// WithReadBlockSize 设置单次 source read 的字节数
func WithReadBlockSize(n int) Option {
	return func(s *Stream) {
		if n > 0 {
			s.readN = n
		}
	}
}

// Stream 帧提取的编排器
//
// 状态机 Scanning → {Validating → (Emitting | Resyncing)} → Scanning
// 终态为 Exhausted 此后不再产出任何帧 且不可重启
//
// 单条 Stream 独占其 Accumulator 与游标 无任何共享可变状态
// 同步拉取式 仅在需要更多字节或配额满足时将控制权交还调用方
type Stream struct {
	cfg Config
	src Source

	acc       *Accumulator
	scanner   *Scanner
	validator *Validator
	diagFn    DiagnosticFunc
	readN     int

	// cursor 下一次扫描的绝对偏移 单调不减
	cursor int

	// regionStart 当前未成帧区域的起点 与相邻被否决字节合并上报
	regionStart  int
	regionReason Reason

	preambleDone bool
	exhausted    bool
	bufWarned    bool
	stats        Stats
}

// NewStream 创建帧提取流
//
// 配置错误是唯一的致命错误 在此处立即返回
func NewStream(cfg Config, src Source, opts ...Option) (*Stream, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(ErrConfiguration, err.Error())
	}

	s := &Stream{
		cfg:   cfg,
		src:   src,
		acc:   NewAccumulator(),
		readN: 1024,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scanner = NewScanner(&s.cfg)
	s.validator = NewValidator(&s.cfg)
	return s, nil
}

// Next 拉取至多 n 帧
//
// source 耗尽时返回不足 n 帧 此后每次调用返回空
// 帧严格按 start offset 升序产出 跨越重同步事件依然有序
func (s *Stream) Next(n int) ([]*Frame, error) {
	if n <= 0 {
		return nil, nil
	}

	var out []*Frame
	for len(out) < n && !s.exhausted {
		fr, err := s.step()
		if err != nil {
			return out, err
		}
		if fr != nil {
			out = append(out, fr)
		}
	}
	return out, nil
}

// Exhausted 返回流是否已经终结
func (s *Stream) Exhausted() bool {
	return s.exhausted
}

// Stats 返回累计打点数据
func (s *Stream) Stats() Stats {
	return s.stats
}

// step 推进状态机直至产出一帧或进入终态
func (s *Stream) step() (*Frame, error) {
	for !s.exhausted {
		if !s.preambleDone {
			ok, err := s.skipPreamble()
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}

		win, base := s.acc.Window(), s.acc.Base()

		cand := s.scanner.Scan(win, base, s.cursor)
		if cand == nil {
			if !s.acc.EOF() {
				// 窗口尾部可能存着半截 sync 保留最后 len(Sync)-1 字节
				if end := s.acc.End() - (len(s.cfg.Sync) - 1); end > s.cursor {
					s.cursor = end
				}
				if err := s.refill(); err != nil {
					return nil, err
				}
				continue
			}
			// 终态 收尾未匹配区域
			s.flushRegion(s.acc.End())
			s.exhausted = true
			return nil, nil
		}

		outcome := s.validator.Validate(win, base, cand, s.acc.EOF())
		switch outcome.Kind {
		case OutcomeIncomplete:
			if !s.acc.EOF() {
				s.cursor = nextOffset(outcome, cand)
				if err := s.refill(); err != nil {
					return nil, err
				}
				continue
			}
			// EOF 处未集齐的候选按截断上报一次 不影响此前产出的帧
			s.flushRegion(cand.Start)
			s.report(Diagnostic{Kind: DiagTruncation, Start: cand.Start, End: s.acc.End()})
			s.stats.Truncations++
			s.exhausted = true
			return nil, nil

		case OutcomeInvalid:
			s.noteReason(outcome.Reason)
			s.cursor = nextOffset(outcome, cand)
			continue

		default: // OutcomeValid
			s.flushRegion(cand.Start)
			fr := s.emit(win, base, cand, outcome)
			s.cursor = nextOffset(outcome, cand)
			s.regionStart = s.cursor
			s.regionReason = ReasonNone
			// 载荷已拷出 之前的字节可以回收
			if err := s.acc.AdvanceConsumed(s.cursor); err != nil {
				return nil, err
			}
			return fr, nil
		}
	}
	return nil, nil
}

// skipPreamble 消费文件级固定头部
func (s *Stream) skipPreamble() (bool, error) {
	if s.cfg.Preamble <= 0 {
		s.preambleDone = true
		return true, nil
	}

	if s.acc.End() < s.cfg.Preamble {
		if s.acc.EOF() {
			// 连文件头都不完整
			s.report(Diagnostic{Kind: DiagTruncation, Start: 0, End: s.acc.End()})
			s.stats.Truncations++
			s.exhausted = true
			return false, nil
		}
		if err := s.refill(); err != nil {
			return false, err
		}
		return false, nil
	}

	s.cursor = s.cfg.Preamble
	s.regionStart = s.cfg.Preamble
	s.preambleDone = true
	return true, s.acc.AdvanceConsumed(s.cfg.Preamble)
}

// refill 向 source 请求下一批字节
func (s *Stream) refill() error {
	// 游标之前的字节不再参与扫描 先回收
	if err := s.acc.AdvanceConsumed(s.cursor); err != nil {
		return err
	}

	b, err := s.src.Read(s.readN)
	if len(b) > 0 {
		s.acc.Append(b)
		s.stats.BytesRead += uint64(len(b))
	}
	if !s.bufWarned && s.acc.End()-s.acc.Base() > common.MaxBufferSize {
		s.bufWarned = true
		logger.Warnf("format (%s) window exceeds (%d) bytes, scan cursor barely advancing", s.cfg.Name, common.MaxBufferSize)
	}
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		s.acc.MarkEOF()
	default:
		return newError("source read failed: %v", err)
	}
	return nil
}

// emit 将校验通过的候选晋升为 Frame 载荷立即拷出
func (s *Stream) emit(win []byte, base int, cand *Candidate, o Outcome) *Frame {
	start := cand.Start - base
	total := o.End - cand.Start
	payload := win[start+s.cfg.HeaderLen : start+total-s.cfg.trailerLen()]

	s.stats.Frames++
	return &Frame{
		Header:  cand.Header,
		Payload: bytes.Clone(payload),
		Start:   cand.Start,
		End:     o.End,
	}
}

// noteReason 记录否决原因 同一连续区域取最强者合并上报
func (s *Stream) noteReason(r Reason) {
	switch r {
	case ReasonChecksumMismatch:
		s.regionReason = ReasonChecksumMismatch
	case ReasonMalformedHeader:
		if s.regionReason == ReasonNone {
			s.regionReason = ReasonMalformedHeader
		}
	}
}

// flushRegion 上报 [regionStart, end) 的未成帧区域
//
// 相邻被否决字节合并成一个诊断 而非逐字节上报
func (s *Stream) flushRegion(end int) {
	if end <= s.regionStart {
		return
	}

	kind := DiagNonData
	switch s.regionReason {
	case ReasonChecksumMismatch:
		kind = DiagChecksumMismatch
		s.stats.ChecksumMismatches++
	case ReasonMalformedHeader:
		kind = DiagMalformedHeader
		s.stats.MalformedHeaders++
	}
	s.stats.NonDataBytes += uint64(end - s.regionStart)

	s.report(Diagnostic{Kind: kind, Start: s.regionStart, End: end})
	s.regionStart = end
	s.regionReason = ReasonNone
}

func (s *Stream) report(d Diagnostic) {
	if s.diagFn != nil {
		s.diagFn(d)
	}
}
