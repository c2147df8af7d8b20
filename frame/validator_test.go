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
	"testing"

	"github.com/stretchr/testify/assert"
)

func scanOne(t *testing.T, cfg *Config, win []byte) *Candidate {
	cand := NewScanner(cfg).Scan(win, 0, 0)
	assert.NotNil(t, cand)
	return cand
}

func TestValidatorValidate(t *testing.T) {
	cfg := testConfig()
	validator := NewValidator(&cfg)

	t.Run("Valid", func(t *testing.T) {
		win := buildFrame(1, []byte("hello"))
		o := validator.Validate(win, 0, scanOne(t, &cfg, win), false)
		assert.Equal(t, OutcomeValid, o.Kind)
		assert.Equal(t, len(win), o.End)
	})

	t.Run("IncompleteHeader", func(t *testing.T) {
		win := []byte{0xA5, 0x5A, 0x01}
		o := validator.Validate(win, 0, scanOne(t, &cfg, win), false)
		assert.Equal(t, OutcomeIncomplete, o.Kind)
	})

	t.Run("IncompleteBody", func(t *testing.T) {
		win := buildFrame(1, []byte("hello"))[:9]
		o := validator.Validate(win, 0, scanOne(t, &cfg, win), false)
		assert.Equal(t, OutcomeIncomplete, o.Kind)
	})

	t.Run("ChecksumMismatch", func(t *testing.T) {
		win := buildFrame(1, []byte("hello"))
		win[7] ^= 0x01 // 污染载荷
		o := validator.Validate(win, 0, scanOne(t, &cfg, win), false)
		assert.Equal(t, OutcomeInvalid, o.Kind)
		assert.Equal(t, ReasonChecksumMismatch, o.Reason)
	})

	t.Run("DeclaredTooLarge", func(t *testing.T) {
		win := buildFrame(1, []byte("hello"))
		win[3], win[4] = 0xFF, 0xFF
		o := validator.Validate(win, 0, scanOne(t, &cfg, win), false)
		assert.Equal(t, OutcomeInvalid, o.Kind)
		assert.Equal(t, ReasonMalformedHeader, o.Reason)
	})

	t.Run("DeclaredZero", func(t *testing.T) {
		// 连校验字段都放不下 直接否决
		win := buildFrame(1, []byte("hello"))
		win[3], win[4] = 0x00, 0x00
		o := validator.Validate(win, 0, scanOne(t, &cfg, win), false)
		assert.Equal(t, OutcomeInvalid, o.Kind)
		assert.Equal(t, ReasonMalformedHeader, o.Reason)
	})
}

func TestValidatorTrailer(t *testing.T) {
	cfg := testConfig()
	cfg.Checksum = nil
	cfg.ChecksumField = Field{}
	cfg.Trailer = []byte{0x03}
	validator := NewValidator(&cfg)

	build := func(payload []byte) []byte {
		fr := []byte{0xA5, 0x5A, 0x01, 0x00, byte(len(payload))}
		fr = append(fr, payload...)
		return append(fr, 0x03)
	}

	t.Run("Valid", func(t *testing.T) {
		win := build([]byte("data"))
		o := validator.Validate(win, 0, scanOne(t, &cfg, win), false)
		assert.Equal(t, OutcomeValid, o.Kind)
	})

	t.Run("MissingTrailer", func(t *testing.T) {
		win := build([]byte("data"))
		win[len(win)-1] = 0x00
		o := validator.Validate(win, 0, scanOne(t, &cfg, win), false)
		assert.Equal(t, OutcomeInvalid, o.Kind)
		assert.Equal(t, ReasonMalformedHeader, o.Reason)
	})
}

func TestValidatorNextSync(t *testing.T) {
	cfg := testConfig()
	cfg.Checksum = nil
	cfg.ChecksumField = Field{}
	cfg.TrailerNextSync = true
	cfg.LengthIncludesHeader = true
	cfg.LengthIncludesTrailer = true
	validator := NewValidator(&cfg)

	// 声明长度为整帧字节数
	build := func(payload []byte) []byte {
		fr := []byte{0xA5, 0x5A, 0x01, 0x00, byte(5 + len(payload))}
		return append(fr, payload...)
	}

	first := build([]byte("aaaa"))

	t.Run("ConfirmedByNextSync", func(t *testing.T) {
		win := append(append([]byte{}, first...), build([]byte("bb"))...)
		o := validator.Validate(win, 0, scanOne(t, &cfg, win), false)
		assert.Equal(t, OutcomeValid, o.Kind)
		assert.Equal(t, len(first), o.End)
	})

	t.Run("AwaitingNextSync", func(t *testing.T) {
		o := validator.Validate(first, 0, scanOne(t, &cfg, first), false)
		assert.Equal(t, OutcomeIncomplete, o.Kind)
	})

	t.Run("ExemptAtEOF", func(t *testing.T) {
		// source 耗尽时最后一帧不再等待确认
		o := validator.Validate(first, 0, scanOne(t, &cfg, first), true)
		assert.Equal(t, OutcomeValid, o.Kind)
	})

	t.Run("NotFollowedBySync", func(t *testing.T) {
		win := append(append([]byte{}, first...), []byte{0x00, 0x00}...)
		o := validator.Validate(win, 0, scanOne(t, &cfg, win), false)
		assert.Equal(t, OutcomeInvalid, o.Kind)
		assert.Equal(t, ReasonMalformedHeader, o.Reason)
	})
}
