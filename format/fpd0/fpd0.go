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

package fpd0

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"

	"github.com/framed/framed/common"
	"github.com/framed/framed/format"
	"github.com/framed/framed/frame"
	"github.com/framed/framed/frame/checksum"
	"github.com/framed/framed/internal/epoch"
	"github.com/framed/framed/particle"
)

func init() {
	format.Register(format.Format{
		Name:        "pd0",
		FrameConfig: NewConfig,
		NewDecoder:  NewDecoder,
	})
}

// PD0 ensemble 头部 6 字节
//
// 0x7F 0x7F + 总字节数(u16 LE 含头部不含校验) + 备用(1) + 数据块数(1)
// 随后为 u16 LE 偏移表 各偏移相对 ensemble 起始
const headerLen = 6

// 数据块类别
const (
	blockFixedLeader    = 0x0000
	blockVariableLeader = 0x0080
	blockVelocity       = 0x0100
	blockEchoIntensity  = 0x0300
)

func newError(f string, args ...any) error {
	return errors.Errorf("format/fpd0: "+f, args...)
}

// NewConfig 返回 PD0 ensemble 的帧结构定义
func NewConfig(opts common.Options) frame.Config {
	return frame.Config{
		Name:                 "pd0",
		Sync:                 []byte{0x7F, 0x7F},
		HeaderLen:            headerLen,
		TypeField:            frame.Field{Off: 5, Len: 1, Enc: frame.FieldBinaryLE},
		LengthField:          frame.Field{Off: 2, Len: 2, Enc: frame.FieldBinaryLE},
		ChecksumField:        frame.Field{Off: -2, Len: 2, Enc: frame.FieldBinaryLE},
		LengthUnit:           1,
		LengthIncludesHeader: true,
		MaxFrameLen:          0xFFFF + 2,
		Checksum:             checksum.ModSum16{},
		Coverage:             frame.CoverFrame,
	}
}

type decoder struct{}

// NewDecoder 创建 PD0 ensemble 解码器
func NewDecoder(opts common.Options) (format.Decoder, error) {
	return &decoder{}, nil
}

// Decode 实现 format.Decoder 接口
//
// 按偏移表遍历数据块 只解码已知类别 未知类别原样跳过
func (d *decoder) Decode(fr *frame.Frame, t time.Time) ([]*particle.Particle, error) {
	// 偏移表各项相对 ensemble 起始 载荷相对其偏移 headerLen
	rel := func(off int) ([]byte, error) {
		if off < headerLen || off > headerLen+len(fr.Payload) {
			return nil, newError("block offset (%d) out of bounds", off)
		}
		return fr.Payload[off-headerLen:], nil
	}

	numTypes := int(fr.Header.TypeID)
	if len(fr.Payload) < numTypes*2 {
		return nil, newError("offset table truncated: want (%d) entries", numTypes)
	}

	p := particle.New("pd0", "adcp_pd0_ensemble")
	p.Offset = fr.Start
	p.Timestamp = epoch.FromTime(t)
	p.Set("num_data_types", numTypes)

	var numBeams, numCells int
	for i := 0; i < numTypes; i++ {
		off := int(binary.LittleEndian.Uint16(fr.Payload[i*2:]))
		block, err := rel(off)
		if err != nil {
			return nil, err
		}
		if len(block) < 2 {
			return nil, newError("block at offset (%d) too short", off)
		}

		switch binary.LittleEndian.Uint16(block) {
		case blockFixedLeader:
			if err := decodeFixed(p, block, &numBeams, &numCells); err != nil {
				return nil, err
			}
		case blockVariableLeader:
			if err := decodeVariable(p, block); err != nil {
				return nil, err
			}
		case blockVelocity:
			if err := decodeCells(p, "velocity", block, numBeams, numCells, 2); err != nil {
				return nil, err
			}
		case blockEchoIntensity:
			if err := decodeCells(p, "echo_intensity", block, numBeams, numCells, 1); err != nil {
				return nil, err
			}
		}
	}
	return []*particle.Particle{p}, nil
}

func (d *decoder) Free() {}

// decodeFixed 固定 leader 仪器配置信息
func decodeFixed(p *particle.Particle, b []byte, numBeams, numCells *int) error {
	if len(b) < 14 {
		return newError("fixed leader truncated: (%d) bytes", len(b))
	}

	*numBeams = int(b[8])
	*numCells = int(b[9])

	p.Set("firmware_version", int(b[2]))
	p.Set("firmware_revision", int(b[3]))
	p.Set("system_configuration", binary.LittleEndian.Uint16(b[4:]))
	p.Set("num_beams", *numBeams)
	p.Set("num_cells", *numCells)
	p.Set("pings_per_ensemble", binary.LittleEndian.Uint16(b[10:]))
	p.Set("depth_cell_length", binary.LittleEndian.Uint16(b[12:]))
	return nil
}

// decodeVariable 可变 leader 本 ensemble 的采样状态
func decodeVariable(p *particle.Particle, b []byte) error {
	if len(b) < 28 {
		return newError("variable leader truncated: (%d) bytes", len(b))
	}

	p.Set("ensemble_number", binary.LittleEndian.Uint16(b[2:]))
	p.Set("speed_of_sound", binary.LittleEndian.Uint16(b[14:]))
	p.Set("depth_of_transducer", binary.LittleEndian.Uint16(b[16:]))
	p.Set("heading", binary.LittleEndian.Uint16(b[18:]))
	p.Set("pitch", int16(binary.LittleEndian.Uint16(b[20:])))
	p.Set("roll", int16(binary.LittleEndian.Uint16(b[22:])))
	p.Set("salinity", binary.LittleEndian.Uint16(b[24:]))
	p.Set("temperature", int16(binary.LittleEndian.Uint16(b[26:])))

	// Y2K 实时时钟在尾部 世纪与年分存 旧固件可能缺失
	if len(b) >= 65 {
		year := int(b[57])*100 + int(b[58])
		clock := time.Date(year, time.Month(b[59]), int(b[60]),
			int(b[61]), int(b[62]), int(b[63]), int(b[64])*1e7, time.UTC)
		p.Timestamp = epoch.FromTime(clock)
		p.Set("real_time_clock", clock.Format(time.RFC3339))
	}
	return nil
}

// decodeCells 逐深度单元数据块 velocity 为 int16 其余为单字节
func decodeCells(p *particle.Particle, name string, b []byte, numBeams, numCells, width int) error {
	want := 2 + numBeams*numCells*width
	if numBeams == 0 || numCells == 0 {
		return newError("%s block before fixed leader", name)
	}
	if len(b) < want {
		return newError("%s block truncated: want (%d) got (%d)", name, want, len(b))
	}

	cells := make([]int, 0, numBeams*numCells)
	for i := 0; i < numBeams*numCells; i++ {
		if width == 2 {
			cells = append(cells, int(int16(binary.LittleEndian.Uint16(b[2+i*2:]))))
		} else {
			cells = append(cells, int(b[2+i]))
		}
	}
	p.Set(name, cells)
	return nil
}
