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

package fvelpt

import (
	"encoding/binary"
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

// u16 converts a signed value to its two's-complement uint16 encoding.
func u16(v int16) uint16 { return uint16(v) }

// buildRecord 构造一条 Nortek 记录 大小按 16-bit word 声明
func buildRecord(typ byte, payload []byte) []byte {
	total := headerLen + len(payload) + 2
	fr := []byte{0xA5, typ, 0, 0}
	binary.LittleEndian.PutUint16(fr[2:], uint16(total/2))
	fr = append(fr, payload...)

	sum := checksum.NewWordSum16(0).Compute(fr)
	return append(fr, byte(sum), byte(sum>>8))
}

// velocityPayload 36 字节采样载荷 2016-09-26 11:26:16
func velocityPayload() []byte {
	b := make([]byte, 36)
	copy(b, []byte{0x26, 0x16, 0x26, 0x11, 0x16, 0x09}) // BCD 分 秒 日 时 年 月
	binary.LittleEndian.PutUint16(b[6:], 0)             // error_code
	binary.LittleEndian.PutUint16(b[8:], 100)           // analog1
	binary.LittleEndian.PutUint16(b[10:], 138)          // battery_voltage
	binary.LittleEndian.PutUint16(b[12:], 15000)        // sound_speed_analog2
	binary.LittleEndian.PutUint16(b[14:], uint16(int16(2715)))
	binary.LittleEndian.PutUint16(b[16:], u16(-32))
	binary.LittleEndian.PutUint16(b[18:], uint16(int16(14)))
	b[20] = 1    // pressure MSB
	b[21] = 0x48 // status
	binary.LittleEndian.PutUint16(b[22:], 0x0203) // pressure LSW
	binary.LittleEndian.PutUint16(b[24:], uint16(int16(2150)))
	binary.LittleEndian.PutUint16(b[26:], u16(-101))
	binary.LittleEndian.PutUint16(b[28:], uint16(int16(77)))
	binary.LittleEndian.PutUint16(b[30:], uint16(int16(203)))
	b[32], b[33], b[34] = 130, 131, 132 // amplitudes
	return b
}

func TestDecodeVelocity(t *testing.T) {
	data := buildRecord(recordVelocity, velocityPayload())

	stream, err := frame.NewStream(NewConfig(nil), &sliceSource{data: data})
	assert.NoError(t, err)

	frames, err := stream.Next(4)
	assert.NoError(t, err)
	assert.Len(t, frames, 1)
	assert.Equal(t, uint32(recordVelocity), frames[0].Header.TypeID)
	assert.Equal(t, len(data), frames[0].End)

	dec, err := NewDecoder(nil)
	assert.NoError(t, err)
	defer dec.Free()

	particles, err := dec.Decode(frames[0], time.Now())
	assert.NoError(t, err)
	assert.Len(t, particles, 1)

	p := particles[0]
	assert.Equal(t, "velpt", p.Format)
	assert.Equal(t, "velpt_velocity_data", p.Type)

	clock := time.Date(2016, 9, 26, 11, 26, 16, 0, time.UTC)
	assert.Equal(t, epoch.FromTime(clock), p.Timestamp)

	assert.Equal(t, uint16(0), p.Fields["error_code"])
	assert.Equal(t, uint16(138), p.Fields["battery_voltage"])
	assert.Equal(t, int16(2715), p.Fields["heading"])
	assert.Equal(t, int16(-32), p.Fields["pitch"])
	assert.Equal(t, int16(14), p.Fields["roll"])
	assert.Equal(t, uint8(0x48), p.Fields["status"])
	assert.Equal(t, uint32(0x010203), p.Fields["pressure"])
	assert.Equal(t, int16(2150), p.Fields["temperature"])
	assert.Equal(t, int16(-101), p.Fields["velocity_beam1"])
	assert.Equal(t, int16(77), p.Fields["velocity_beam2"])
	assert.Equal(t, int16(203), p.Fields["velocity_beam3"])
	assert.Equal(t, uint8(130), p.Fields["amplitude_beam1"])
	assert.Equal(t, uint8(132), p.Fields["amplitude_beam3"])
}

func TestDecodeDiagnostics(t *testing.T) {
	dec, err := NewDecoder(nil)
	assert.NoError(t, err)

	t.Run("Header", func(t *testing.T) {
		payload := make([]byte, 32)
		binary.LittleEndian.PutUint16(payload[0:], 20)
		binary.LittleEndian.PutUint16(payload[2:], 1)
		payload[4], payload[5], payload[6], payload[7] = 30, 31, 32, 33

		fr := &frame.Frame{
			Header:  frame.Header{TypeID: recordDiagnosticsHeader},
			Payload: payload,
		}
		particles, err := dec.Decode(fr, time.Now())
		assert.NoError(t, err)
		assert.Len(t, particles, 1)
		assert.Equal(t, "velpt_diagnostics_header", particles[0].Type)
		assert.Equal(t, uint16(20), particles[0].Fields["records_to_follow"])
		assert.Equal(t, byte(33), particles[0].Fields["noise_amplitude_beam4"])
	})

	t.Run("Data", func(t *testing.T) {
		fr := &frame.Frame{
			Header:  frame.Header{TypeID: recordDiagnosticsData},
			Payload: velocityPayload(),
		}
		particles, err := dec.Decode(fr, time.Now())
		assert.NoError(t, err)
		assert.Len(t, particles, 1)
		assert.Equal(t, "velpt_diagnostics_data", particles[0].Type)
	})

	t.Run("UnknownType", func(t *testing.T) {
		fr := &frame.Frame{Header: frame.Header{TypeID: 0x42}}
		particles, err := dec.Decode(fr, time.Now())
		assert.NoError(t, err)
		assert.Nil(t, particles)
	})

	t.Run("Truncated", func(t *testing.T) {
		fr := &frame.Frame{
			Header:  frame.Header{TypeID: recordVelocity},
			Payload: make([]byte, 10),
		}
		_, err := dec.Decode(fr, time.Now())
		assert.Error(t, err)
	})
}

func TestStream(t *testing.T) {
	// 连续多条记录 word 计长保证边界对齐
	var data []byte
	for i := 0; i < 3; i++ {
		data = append(data, buildRecord(recordVelocity, velocityPayload())...)
	}

	stream, err := frame.NewStream(NewConfig(nil), &sliceSource{data: data})
	assert.NoError(t, err)

	frames, err := stream.Next(8)
	assert.NoError(t, err)
	assert.Len(t, frames, 3)
	assert.Equal(t, uint64(0), stream.Stats().NonDataBytes)
}
