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

package fwvs

import (
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/framed/framed/frame"
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

// buildRecord 以数据块列表构造一条 WVS 记录 记录大小含一切
func buildRecord(blocks ...[]byte) []byte {
	body := make([]byte, headerLen+len(blocks)*4)
	body[0], body[1] = 0x7F, 0x7A
	body[11] = byte(len(blocks))
	off := len(body)
	for i, block := range blocks {
		binary.LittleEndian.PutUint32(body[headerLen+i*4:], uint32(off))
		off += len(block)
	}
	for _, block := range blocks {
		body = append(body, block...)
	}
	binary.LittleEndian.PutUint32(body[4:], uint32(len(body)))
	return body
}

func fixedBlock() []byte {
	b := make([]byte, 20)
	binary.LittleEndian.PutUint16(b, blockFixedLeader)
	binary.LittleEndian.PutUint16(b[6:], 1024)
	binary.LittleEndian.PutUint16(b[8:], 50)
	binary.LittleEndian.PutUint16(b[12:], 400)
	b[19] = 4
	return b
}

func waveParamsBlock() []byte {
	b := make([]byte, 17)
	binary.LittleEndian.PutUint16(b, blockWaveParameters)
	binary.LittleEndian.PutUint16(b[2:], uint16(int16(125)))
	binary.LittleEndian.PutUint16(b[4:], uint16(int16(80)))
	binary.LittleEndian.PutUint16(b[6:], uint16(int16(270)))
	binary.LittleEndian.PutUint16(b[9:], uint16(int16(130)))
	binary.LittleEndian.PutUint16(b[11:], uint16(int16(85)))
	binary.LittleEndian.PutUint16(b[13:], uint16(int16(265)))
	binary.LittleEndian.PutUint16(b[15:], uint16(int16(180)))
	return b
}

func variableBlock() []byte {
	b := make([]byte, 162)
	binary.LittleEndian.PutUint16(b, blockVariableLeader)
	copy(b[2:], []byte{20, 14, 7, 29, 11, 30, 45, 50})
	binary.LittleEndian.PutUint16(b[158:], 1500)
	binary.LittleEndian.PutUint16(b[160:], 2150)
	return b
}

func spectrumBlock(bins []int32) []byte {
	b := make([]byte, 4+len(bins)*4)
	binary.LittleEndian.PutUint16(b, blockVelocitySpectrum)
	binary.LittleEndian.PutUint16(b[2:], uint16(len(bins)))
	for i, v := range bins {
		binary.LittleEndian.PutUint32(b[4+i*4:], uint32(v))
	}
	return b
}

func TestDecode(t *testing.T) {
	// 本格式无校验 以下一条记录的 sync 确认成帧 末条在 EOF 处豁免
	r0 := buildRecord(fixedBlock(), waveParamsBlock())
	r1 := buildRecord(variableBlock(), spectrumBlock([]int32{100, -200, 300}))
	data := append(append([]byte{}, r0...), r1...)

	stream, err := frame.NewStream(NewConfig(nil), &sliceSource{data: data})
	assert.NoError(t, err)

	frames, err := stream.Next(4)
	assert.NoError(t, err)
	assert.Len(t, frames, 2)
	assert.Equal(t, len(r0), frames[1].Start)

	dec, err := NewDecoder(nil)
	assert.NoError(t, err)
	defer dec.Free()

	now := time.Now()
	particles, err := dec.Decode(frames[0], now)
	assert.NoError(t, err)
	assert.Len(t, particles, 1)

	p := particles[0]
	assert.Equal(t, "wvs", p.Format)
	assert.Equal(t, "wvs_record", p.Type)
	assert.Equal(t, len(r0), p.Fields["record_size"])
	assert.Equal(t, 2, p.Fields["num_data_types"])

	// 无可变 leader 时间取读取时刻
	assert.Equal(t, epoch.FromTime(now), p.Timestamp)
	assert.Equal(t, uint16(1024), p.Fields["samples_per_burst"])
	assert.Equal(t, uint16(400), p.Fields["bin_size"])
	assert.Equal(t, 4, p.Fields["num_beams"])
	assert.Equal(t, int16(125), p.Fields["wave_hs1"])
	assert.Equal(t, int16(270), p.Fields["wave_dp1"])
	assert.Equal(t, int16(130), p.Fields["wave_hs2"])
	assert.Equal(t, int16(180), p.Fields["wave_dm"])

	particles, err = dec.Decode(frames[1], now)
	assert.NoError(t, err)
	p = particles[0]

	clock := time.Date(2014, 7, 29, 11, 30, 45, 50*1e7, time.UTC)
	assert.Equal(t, epoch.FromTime(clock), p.Timestamp)
	assert.Equal(t, clock.Format(time.RFC3339), p.Fields["start_time"])
	assert.Equal(t, uint16(1500), p.Fields["avg_sound_speed"])
	assert.Equal(t, uint16(2150), p.Fields["avg_temperature"])
	assert.Equal(t, 3, p.Fields["vspec_num_freq"])
	assert.Equal(t, []int{100, -200, 300}, p.Fields["vspec_dat"])
}

func TestStreamFalseLength(t *testing.T) {
	// 声明长度指向非 sync 位置 下一 sync 确认机制否决该候选
	bad := buildRecord(fixedBlock())
	binary.LittleEndian.PutUint32(bad[4:], uint32(len(bad)-3))
	good := buildRecord(waveParamsBlock())
	data := append(append([]byte{}, bad...), good...)

	stream, err := frame.NewStream(NewConfig(nil), &sliceSource{data: data})
	assert.NoError(t, err)

	frames, err := stream.Next(4)
	assert.NoError(t, err)
	assert.Len(t, frames, 1)
	assert.Equal(t, len(bad), frames[0].Start)
	assert.Equal(t, uint64(1), stream.Stats().MalformedHeaders)
}

func TestDecodeErrors(t *testing.T) {
	dec, err := NewDecoder(nil)
	assert.NoError(t, err)

	t.Run("TruncatedOffsetTable", func(t *testing.T) {
		fr := &frame.Frame{
			Header:  frame.Header{TypeID: 2},
			Payload: []byte{0, 0, 0, 0},
		}
		_, err := dec.Decode(fr, time.Now())
		assert.Error(t, err)
	})

	t.Run("TruncatedSpectrum", func(t *testing.T) {
		block := spectrumBlock([]int32{1, 2, 3})[:8]
		binary.LittleEndian.PutUint16(block[2:], 3)
		data := buildRecord(block)

		fr := &frame.Frame{
			Header:  frame.Header{TypeID: 1},
			Payload: data[headerLen:],
		}
		_, err := dec.Decode(fr, time.Now())
		assert.Error(t, err)
	})
}
