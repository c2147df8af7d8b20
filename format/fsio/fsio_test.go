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

package fsio

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/framed/framed/frame"
	"github.com/framed/framed/frame/checksum"
	"github.com/framed/framed/internal/epoch"
)

type sliceSource struct {
	data []byte
	pos  int
}

func (s *sliceSource) Read(max int) ([]byte, error) {
	if s.pos >= len(s.data) {
		return nil, io.EOF
	}
	n := max
	if rem := len(s.data) - s.pos; rem < n {
		n = rem
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// refChecksum 按主控固件的算法独立实现 种子全一 多项式 0x8408 最终取反
//
// 刻意不复用 checksum 包 保证构造侧与校验侧不会一起漂移
func refChecksum(b []byte) uint32 {
	crc := uint32(65535)
	for _, c := range b {
		crc ^= uint32(c)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0x8408
			} else {
				crc >>= 1
			}
		}
	}
	return ^crc & 0xFFFF
}

// buildBlock 构造一个完整的 SIO 主控块
func buildBlock(id string, sec uint32, block int, payload []byte) []byte {
	sum := refChecksum(payload)

	b := []byte{0x01}
	b = append(b, id...)
	b = append(b, "1234502"...)
	b = append(b, '_')
	b = append(b, fmt.Sprintf("%04X", len(payload))...)
	b = append(b, 'D')
	b = append(b, fmt.Sprintf("%08X", sec)...)
	b = append(b, '_')
	b = append(b, fmt.Sprintf("%02X", block)...)
	b = append(b, '_')
	b = append(b, fmt.Sprintf("%04X", sum)...)
	b = append(b, 0x02)
	b = append(b, payload...)
	return append(b, 0x03)
}

func TestDecode(t *testing.T) {
	const sec = 0x4E8E6A00
	payload := []byte("raw instrument record")
	data := buildBlock("CT", sec, 1, payload)

	stream, err := frame.NewStream(NewConfig(nil), &sliceSource{data: data})
	assert.NoError(t, err)

	frames, err := stream.Next(4)
	assert.NoError(t, err)
	assert.Len(t, frames, 1)
	assert.Equal(t, "CT", frames[0].Header.TypeCode)
	assert.Equal(t, payload, frames[0].Payload)

	dec, err := NewDecoder(nil)
	assert.NoError(t, err)
	defer dec.Free()

	particles, err := dec.Decode(frames[0], time.Now())
	assert.NoError(t, err)
	assert.Len(t, particles, 1)

	p := particles[0]
	assert.Equal(t, "sio", p.Format)
	assert.Equal(t, "sio_block", p.Type)
	assert.Equal(t, epoch.FromPosix(sec), p.Timestamp)
	assert.Equal(t, "CT", p.Fields["instrument_id"])
	assert.Equal(t, len(payload), p.Fields["data_length"])
	assert.Equal(t, uint64(sec), p.Fields["controller_timestamp"])
	assert.Equal(t, payload, p.Fields["data"])
}

func TestStream(t *testing.T) {
	// 块间噪声含 0x01 字节 形状检查挡掉伪候选
	b0 := buildBlock("AD", 0x50000000, 1, []byte("first"))
	b1 := buildBlock("PH", 0x50000010, 2, []byte("second"))

	var data []byte
	data = append(data, b0...)
	data = append(data, 0x01, 0x00, 0xFF)
	data = append(data, b1...)

	stream, err := frame.NewStream(NewConfig(nil), &sliceSource{data: data})
	assert.NoError(t, err)

	frames, err := stream.Next(4)
	assert.NoError(t, err)
	assert.Len(t, frames, 2)
	assert.Equal(t, "AD", frames[0].Header.TypeCode)
	assert.Equal(t, "PH", frames[1].Header.TypeCode)
	assert.Equal(t, len(b0)+3, frames[1].Start)

	stats := stream.Stats()
	assert.Equal(t, uint64(3), stats.NonDataBytes)
}

// TestChecksumSeed 校验种子必须与主控固件一致
//
// 使用注册表默认种子写入校验值的块应当被否决
func TestChecksumSeed(t *testing.T) {
	payload := []byte("raw instrument record")
	assert.Equal(t, refChecksum(payload), NewConfig(nil).Checksum.Compute(payload))

	wrong := buildBlock("CT", 0x4E8E6A00, 1, payload)
	sum := checksum.NewXorShift16(0).Compute(payload)
	copy(wrong[offChecksum:], fmt.Sprintf("%04X", sum))

	stream, err := frame.NewStream(NewConfig(nil), &sliceSource{data: wrong})
	assert.NoError(t, err)

	frames, err := stream.Next(4)
	assert.NoError(t, err)
	assert.Empty(t, frames)
	assert.Equal(t, uint64(1), stream.Stats().ChecksumMismatches)
}

func TestValidateHeader(t *testing.T) {
	hdr := buildBlock("CT", 0x50000000, 1, []byte("x"))[:headerLen]
	assert.True(t, validateHeader(hdr))

	tests := []struct {
		name   string
		mutate func([]byte)
	}{
		{name: "MissingEndMarker", mutate: func(h []byte) { h[32] = 0x00 }},
		{name: "MissingSpacer", mutate: func(h []byte) { h[10] = 'x' }},
		{name: "LowercaseID", mutate: func(h []byte) { h[1] = 'c' }},
		{name: "NonDigitController", mutate: func(h []byte) { h[5] = 'A' }},
		{name: "NonHexLength", mutate: func(h []byte) { h[12] = 'Z' }},
		{name: "NonHexTimestamp", mutate: func(h []byte) { h[20] = '~' }},
		{name: "NonAlnumFlag", mutate: func(h []byte) { h[offFlag] = '*' }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := append([]byte(nil), hdr...)
			tt.mutate(h)
			assert.False(t, validateHeader(h))
		})
	}
}

func TestDecodeBadTimestamp(t *testing.T) {
	dec, err := NewDecoder(nil)
	assert.NoError(t, err)

	fr := &frame.Frame{Header: frame.Header{Timestamp: []byte("zzzzzzzz")}}
	_, err = dec.Decode(fr, time.Now())
	assert.Error(t, err)
}
