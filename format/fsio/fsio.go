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
	"strconv"
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
		Name:        "sio",
		FrameConfig: NewConfig,
		NewDecoder:  NewDecoder,
	})
}

// SIO 主控块 ASCII 头部布局 共 33 字节
//
// 0x01 + 仪器类别(2) + 控制器编号(5) + 感应编号(2) + '_' +
// 数据字节数(4 hex) + 处理标记(1) + POSIX 时间戳(8 hex) + '_' +
// 块编号(2 hex) + '_' + 校验值(4 hex) + 0x02
const (
	headerLen = 33

	offType     = 1
	offLength   = 11
	offFlag     = 15
	offTime     = 16
	offChecksum = 28
)

// NewConfig 返回 SIO 主控块的帧结构定义
func NewConfig(opts common.Options) frame.Config {
	return frame.Config{
		Name:          "sio",
		Sync:          []byte{0x01},
		HeaderLen:     headerLen,
		TypeField:     frame.Field{Off: offType, Len: 2, Enc: frame.FieldBytes},
		LengthField:   frame.Field{Off: offLength, Len: 4, Enc: frame.FieldASCIIHex},
		ChecksumField: frame.Field{Off: offChecksum, Len: 4, Enc: frame.FieldASCIIHex},
		TimeField:     frame.Field{Off: offTime, Len: 8, Enc: frame.FieldBytes},
		LengthUnit:    1,
		Trailer:       []byte{0x03},
		MaxFrameLen:   headerLen + 0xFFFF + 1,
		// 主控固件以全一值起算 不是注册表里的默认种子
		Checksum:      checksum.NewXorShift16(0xFFFF),
		Coverage:      frame.CoverPayload,
		ValidateHeader: func(hdr []byte) bool {
			return validateHeader(hdr)
		},
	}
}

// validateHeader 按头部各字段的字符类别做形状检查
//
// sync 字节在二进制载荷里很常见 不做形状检查会产生大量伪候选
func validateHeader(hdr []byte) bool {
	if hdr[headerLen-1] != 0x02 {
		return false
	}
	if hdr[10] != '_' || hdr[24] != '_' || hdr[27] != '_' {
		return false
	}
	for _, c := range hdr[offType : offType+2] {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	for _, c := range hdr[3:10] {
		if c < '0' || c > '9' {
			return false
		}
	}
	if !isAlnum(hdr[offFlag]) {
		return false
	}
	for _, span := range [][2]int{{offLength, 4}, {offTime, 8}, {25, 2}, {offChecksum, 4}} {
		for _, c := range hdr[span[0] : span[0]+span[1]] {
			if !isHex(c) {
				return false
			}
		}
	}
	return true
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

type decoder struct{}

// NewDecoder 创建 SIO 主控块解码器
func NewDecoder(opts common.Options) (format.Decoder, error) {
	return &decoder{}, nil
}

// Decode 实现 format.Decoder 接口
//
// SIO 块是容器 载荷为下级仪器的原始记录 此处只还原块级元信息
func (d *decoder) Decode(fr *frame.Frame, t time.Time) ([]*particle.Particle, error) {
	sec, err := strconv.ParseUint(string(fr.Header.Timestamp), 16, 64)
	if err != nil {
		return nil, errors.Wrap(err, "decode sio controller timestamp")
	}

	p := particle.New("sio", "sio_block")
	p.Timestamp = epoch.FromPosix(float64(sec))
	p.Offset = fr.Start
	p.Set("instrument_id", fr.Header.TypeCode)
	p.Set("data_length", fr.Header.Declared)
	p.Set("controller_timestamp", sec)
	p.Set("data", fr.Payload)
	return []*particle.Particle{p}, nil
}

func (d *decoder) Free() {}
