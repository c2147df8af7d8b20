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
	"time"

	"github.com/pkg/errors"

	"github.com/framed/framed/common"
	"github.com/framed/framed/format"
	"github.com/framed/framed/frame"
	"github.com/framed/framed/internal/epoch"
	"github.com/framed/framed/particle"
)

func init() {
	format.Register(format.Format{
		Name:        "wvs",
		FrameConfig: NewConfig,
		NewDecoder:  NewDecoder,
	})
}

// WVS 波浪谱记录头部 12 字节
//
// 0x7F 0x7A + 备用(2) + 记录总字节数(u32 LE 含头部) + 备用(3) + 数据块数(1)
// 随后为 u32 LE 偏移表 各偏移相对记录起始
//
// 本格式无校验字段 以下一条记录的 sync 紧随其后作为成帧确认
const headerLen = 12

// 数据块类别 各块首 2 字节为 i16 LE 类别值
const (
	blockFixedLeader      = 1
	blockVariableLeader   = 2
	blockVelocitySpectrum = 7
	blockWaveParameters   = 11
)

func newError(f string, args ...any) error {
	return errors.Errorf("format/fwvs: "+f, args...)
}

// NewConfig 返回 WVS 记录的帧结构定义
func NewConfig(opts common.Options) frame.Config {
	return frame.Config{
		Name:                  "wvs",
		Sync:                  []byte{0x7F, 0x7A},
		HeaderLen:             headerLen,
		TypeField:             frame.Field{Off: 11, Len: 1, Enc: frame.FieldBinaryLE},
		LengthField:           frame.Field{Off: 4, Len: 4, Enc: frame.FieldBinaryLE},
		LengthUnit:            1,
		LengthIncludesHeader:  true,
		LengthIncludesTrailer: true,
		TrailerNextSync:       true,
		MaxFrameLen:           1 << 20,
	}
}

type decoder struct{}

// NewDecoder 创建 WVS 记录解码器
func NewDecoder(opts common.Options) (format.Decoder, error) {
	return &decoder{}, nil
}

// Decode 实现 format.Decoder 接口
func (d *decoder) Decode(fr *frame.Frame, t time.Time) ([]*particle.Particle, error) {
	rel := func(off int) ([]byte, error) {
		if off < headerLen || off > headerLen+len(fr.Payload) {
			return nil, newError("block offset (%d) out of bounds", off)
		}
		return fr.Payload[off-headerLen:], nil
	}

	numTypes := int(fr.Header.TypeID)
	if len(fr.Payload) < numTypes*4 {
		return nil, newError("offset table truncated: want (%d) entries", numTypes)
	}

	p := particle.New("wvs", "wvs_record")
	p.Offset = fr.Start
	p.Timestamp = epoch.FromTime(t)
	p.Set("record_size", fr.Header.Declared)
	p.Set("num_data_types", numTypes)

	for i := 0; i < numTypes; i++ {
		off := int(binary.LittleEndian.Uint32(fr.Payload[i*4:]))
		block, err := rel(off)
		if err != nil {
			return nil, err
		}
		if len(block) < 2 {
			return nil, newError("block at offset (%d) too short", off)
		}

		switch int16(binary.LittleEndian.Uint16(block)) {
		case blockFixedLeader:
			if err := decodeFixed(p, block); err != nil {
				return nil, err
			}
		case blockVariableLeader:
			if err := decodeVariable(p, block); err != nil {
				return nil, err
			}
		case blockVelocitySpectrum:
			if err := decodeSpectrum(p, block); err != nil {
				return nil, err
			}
		case blockWaveParameters:
			if err := decodeWaveParams(p, block); err != nil {
				return nil, err
			}
		}
	}
	return []*particle.Particle{p}, nil
}

func (d *decoder) Free() {}

// decodeFixed 固定 leader 采样配置
func decodeFixed(p *particle.Particle, b []byte) error {
	if len(b) < 20 {
		return newError("fixed leader truncated: (%d) bytes", len(b))
	}
	p.Set("samples_per_burst", binary.LittleEndian.Uint16(b[6:]))
	p.Set("time_between_samples", binary.LittleEndian.Uint16(b[8:]))
	p.Set("bin_size", binary.LittleEndian.Uint16(b[12:]))
	p.Set("num_beams", int(b[19]))
	return nil
}

// decodeVariable 可变 leader 起止时间与平均环境量
//
// start time 为 8 字节 世纪 年 月 日 时 分 秒 百分秒
func decodeVariable(p *particle.Particle, b []byte) error {
	if len(b) < 162 {
		return newError("variable leader truncated: (%d) bytes", len(b))
	}

	st := b[2:10]
	clock := time.Date(int(st[0])*100+int(st[1]), time.Month(st[2]), int(st[3]),
		int(st[4]), int(st[5]), int(st[6]), int(st[7])*1e7, time.UTC)
	p.Timestamp = epoch.FromTime(clock)
	p.Set("start_time", clock.Format(time.RFC3339))

	p.Set("avg_sound_speed", binary.LittleEndian.Uint16(b[158:]))
	p.Set("avg_temperature", binary.LittleEndian.Uint16(b[160:]))
	return nil
}

// decodeSpectrum 速度谱 i32 LE 数组 长度由首部计数给出
func decodeSpectrum(p *particle.Particle, b []byte) error {
	if len(b) < 4 {
		return newError("velocity spectrum truncated: (%d) bytes", len(b))
	}
	n := int(binary.LittleEndian.Uint16(b[2:]))
	if len(b) < 4+n*4 {
		return newError("velocity spectrum truncated: want (%d) bins", n)
	}

	dat := make([]int, 0, n)
	for i := 0; i < n; i++ {
		dat = append(dat, int(int32(binary.LittleEndian.Uint32(b[4+i*4:]))))
	}
	p.Set("vspec_num_freq", n)
	p.Set("vspec_dat", dat)
	return nil
}

// decodeWaveParams 波浪参数 两组 Hs/Tp/Dp 与平均方向 字段非对齐
func decodeWaveParams(p *particle.Particle, b []byte) error {
	if len(b) < 17 {
		return newError("wave parameters truncated: (%d) bytes", len(b))
	}
	p.Set("wave_hs1", int16(binary.LittleEndian.Uint16(b[2:])))
	p.Set("wave_tp1", int16(binary.LittleEndian.Uint16(b[4:])))
	p.Set("wave_dp1", int16(binary.LittleEndian.Uint16(b[6:])))
	p.Set("wave_hs2", int16(binary.LittleEndian.Uint16(b[9:])))
	p.Set("wave_tp2", int16(binary.LittleEndian.Uint16(b[11:])))
	p.Set("wave_dp2", int16(binary.LittleEndian.Uint16(b[13:])))
	p.Set("wave_dm", int16(binary.LittleEndian.Uint16(b[15:])))
	return nil
}
