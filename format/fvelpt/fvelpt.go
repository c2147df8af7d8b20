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
	"time"

	"github.com/pkg/errors"

	"github.com/framed/framed/common"
	"github.com/framed/framed/format"
	"github.com/framed/framed/frame"
	"github.com/framed/framed/frame/checksum"
	"github.com/framed/framed/internal/epoch"
	"github.com/framed/framed/internal/zerocopy"
	"github.com/framed/framed/particle"
)

func init() {
	format.Register(format.Format{
		Name:        "velpt",
		FrameConfig: NewConfig,
		NewDecoder:  NewDecoder,
	})
}

// Nortek 记录头部 4 字节
//
// 0xA5 + 记录类别(1) + 记录大小(u16 LE 以 16-bit word 计 含头部与校验)
// 记录内数值均为小端 校验为帧首至校验字段前的 16-bit 字和
const headerLen = 4

// 记录类别
const (
	recordVelocity          = 0x01
	recordDiagnosticsHeader = 0x06
	recordDiagnosticsData   = 0x80
)

func newError(f string, args ...any) error {
	return errors.Errorf("format/fvelpt: "+f, args...)
}

// NewConfig 返回 Nortek 记录的帧结构定义
func NewConfig(opts common.Options) frame.Config {
	return frame.Config{
		Name:                  "velpt",
		Sync:                  []byte{0xA5},
		HeaderLen:             headerLen,
		TypeField:             frame.Field{Off: 1, Len: 1, Enc: frame.FieldBinaryLE},
		LengthField:           frame.Field{Off: 2, Len: 2, Enc: frame.FieldBinaryLE},
		ChecksumField:         frame.Field{Off: -2, Len: 2, Enc: frame.FieldBinaryLE},
		LengthUnit:            2,
		LengthIncludesHeader:  true,
		LengthIncludesTrailer: true,
		MaxFrameLen:           0xFFFF * 2,
		Checksum:              checksum.NewWordSum16(0),
		Coverage:              frame.CoverFrame,
	}
}

type decoder struct{}

// NewDecoder 创建 Nortek 记录解码器
func NewDecoder(opts common.Options) (format.Decoder, error) {
	return &decoder{}, nil
}

// Decode 实现 format.Decoder 接口
//
// velocity 与 diagnostics data 记录同布局 只是类别与语义不同
func (d *decoder) Decode(fr *frame.Frame, t time.Time) ([]*particle.Particle, error) {
	switch fr.Header.TypeID {
	case recordVelocity:
		return decodeSample(fr, "velpt_velocity_data")
	case recordDiagnosticsData:
		return decodeSample(fr, "velpt_diagnostics_data")
	case recordDiagnosticsHeader:
		return decodeDiagHeader(fr, t)
	}
	return nil, nil // 未知类别 帧本身合法 原样丢弃
}

func (d *decoder) Free() {}

// decodeSample 速度/诊断采样记录
//
// 字段顺序固定 顺序消费载荷即可 出错只可能是载荷长度不足
func decodeSample(fr *frame.Frame, typ string) ([]*particle.Particle, error) {
	r := zerocopy.NewReader(fr.Payload)
	if r.Remaining() < 35 {
		return nil, newError("%s record truncated: (%d) bytes", typ, r.Remaining())
	}

	clock, _ := r.Read(6)
	u16 := func() uint16 {
		b, _ := r.Read(2)
		return binary.LittleEndian.Uint16(b)
	}
	u8 := func() uint8 {
		b, _ := r.Read(1)
		return b[0]
	}

	p := particle.New("velpt", typ)
	p.Offset = fr.Start
	p.Timestamp = clockTimestamp(clock)

	p.Set("error_code", u16())
	p.Set("analog1", u16())
	p.Set("battery_voltage", u16())
	p.Set("sound_speed_analog2", u16())
	p.Set("heading", int16(u16()))
	p.Set("pitch", int16(u16()))
	p.Set("roll", int16(u16()))

	pressureMSB := u8()
	p.Set("status", u8())
	pressureLSW := u16()
	p.Set("pressure", uint32(pressureMSB)<<16|uint32(pressureLSW))

	p.Set("temperature", int16(u16()))
	p.Set("velocity_beam1", int16(u16()))
	p.Set("velocity_beam2", int16(u16()))
	p.Set("velocity_beam3", int16(u16()))
	p.Set("amplitude_beam1", u8())
	p.Set("amplitude_beam2", u8())
	p.Set("amplitude_beam3", u8())
	return []*particle.Particle{p}, nil
}

// decodeDiagHeader 诊断序列头部 预告后续诊断记录条数
func decodeDiagHeader(fr *frame.Frame, t time.Time) ([]*particle.Particle, error) {
	b := fr.Payload
	if len(b) < 8 {
		return nil, newError("diagnostics header truncated: (%d) bytes", len(b))
	}

	p := particle.New("velpt", "velpt_diagnostics_header")
	p.Offset = fr.Start
	p.Timestamp = epoch.FromTime(t)
	p.Set("records_to_follow", binary.LittleEndian.Uint16(b[0:]))
	p.Set("cell_number_diagnostics", binary.LittleEndian.Uint16(b[2:]))
	p.Set("noise_amplitude_beam1", b[4])
	p.Set("noise_amplitude_beam2", b[5])
	p.Set("noise_amplitude_beam3", b[6])
	p.Set("noise_amplitude_beam4", b[7])
	return []*particle.Particle{p}, nil
}

// clockTimestamp BCD 时钟转 NTP 纪元秒 年为两位数 2000 年起算
func clockTimestamp(clock []byte) float64 {
	bcd := func(b byte) int {
		return int(b>>4)*10 + int(b&0x0F)
	}
	ts := time.Date(2000+bcd(clock[4]), time.Month(bcd(clock[5])), bcd(clock[2]),
		bcd(clock[3]), bcd(clock[0]), bcd(clock[1]), 0, time.UTC)
	return epoch.FromTime(ts)
}
