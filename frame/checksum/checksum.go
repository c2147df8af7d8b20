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

package checksum

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Algorithm 校验和算法定义
//
// 各仪器格式使用的校验算法不同 但均为字节序列上的纯函数
// 实现必须无状态 可被多条 frame.Stream 并发调用
type Algorithm interface {
	// Name 返回算法名称 可用于配置文件引用
	Name() string

	// Width 返回校验值位宽 8/16/32
	Width() int

	// Compute 计算 b 的校验值 返回值按 Width 截断
	Compute(b []byte) uint32
}

// Verify 按位宽掩码比较计算值与声明值
func Verify(alg Algorithm, b []byte, declared uint32) bool {
	mask := widthMask(alg.Width())
	return alg.Compute(b)&mask == declared&mask
}

func widthMask(width int) uint32 {
	if width >= 32 {
		return ^uint32(0)
	}
	return uint32(1)<<width - 1
}

const (
	// SeedXorShift16 移位异或校验的初始值
	SeedXorShift16 = 0xB58C

	// SeedWordSum16 Nortek 系仪器字和校验的基值
	SeedWordSum16 = 0xB58C

	// polyXorShift16 移位异或校验的反射多项式
	polyXorShift16 = 0x8408
)

// XorShift16 16 位滚动移位异或校验
//
// 逐字节异或进累加器 每字节做 8 轮右移
// 最低位为 1 时异或多项式 最终结果按位取反后对 65536 取模
type XorShift16 struct {
	Seed uint16
}

// NewXorShift16 创建移位异或校验 seed 为 0 时使用默认初始值
func NewXorShift16(seed uint16) XorShift16 {
	if seed == 0 {
		seed = SeedXorShift16
	}
	return XorShift16{Seed: seed}
}

func (x XorShift16) Name() string { return "xorshift16" }

func (x XorShift16) Width() int { return 16 }

func (x XorShift16) Compute(b []byte) uint32 {
	crc := uint32(x.Seed)
	for _, c := range b {
		crc ^= uint32(c)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ polyXorShift16
			} else {
				crc >>= 1
			}
		}
	}
	return ^crc & 0xFFFF
}

// crc32Poly 标准反射多项式
const crc32Poly = 0xEDB88320

// crc32Table 进程级只读查表 初始化后不再修改
var crc32Table = func() [256]uint32 {
	var table [256]uint32
	for i := range table {
		crc := uint32(i)
		for j := 0; j < 8; j++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ crc32Poly
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
	return table
}()

// CRC32 查表式 CRC-32 校验
type CRC32 struct{}

func (CRC32) Name() string { return "crc32" }

func (CRC32) Width() int { return 32 }

func (CRC32) Compute(b []byte) uint32 {
	crc := ^uint32(0)
	for _, c := range b {
		crc = crc32Table[byte(crc)^c] ^ (crc >> 8)
	}
	return ^crc
}

// ModSum8 字节和对 256 取模
type ModSum8 struct{}

func (ModSum8) Name() string { return "modsum8" }

func (ModSum8) Width() int { return 8 }

func (ModSum8) Compute(b []byte) uint32 {
	var sum uint32
	for _, c := range b {
		sum += uint32(c)
	}
	return sum & 0xFF
}

// ModSum16 字节和对 65536 取模
type ModSum16 struct {
	Seed uint16
}

func (m ModSum16) Name() string { return "modsum16" }

func (m ModSum16) Width() int { return 16 }

func (m ModSum16) Compute(b []byte) uint32 {
	sum := uint32(m.Seed)
	for _, c := range b {
		sum += uint32(c)
	}
	return sum & 0xFFFF
}

// WordSum16 小端 16 位字和对 65536 取模
//
// 奇数长度时末尾单字节按低位参与求和
type WordSum16 struct {
	Seed uint16
}

// NewWordSum16 创建字和校验 seed 为 0 时使用默认基值
func NewWordSum16(seed uint16) WordSum16 {
	if seed == 0 {
		seed = SeedWordSum16
	}
	return WordSum16{Seed: seed}
}

func (w WordSum16) Name() string { return "wordsum16" }

func (w WordSum16) Width() int { return 16 }

func (w WordSum16) Compute(b []byte) uint32 {
	sum := uint32(w.Seed)
	n := len(b) &^ 1
	for i := 0; i < n; i += 2 {
		sum += uint32(binary.LittleEndian.Uint16(b[i : i+2]))
	}
	if len(b)&1 != 0 {
		sum += uint32(b[len(b)-1])
	}
	return sum & 0xFFFF
}

// New 按名称创建算法实例
func New(name string) (Algorithm, error) {
	switch name {
	case "xorshift16":
		return NewXorShift16(0), nil
	case "crc32":
		return CRC32{}, nil
	case "modsum8":
		return ModSum8{}, nil
	case "modsum16":
		return ModSum16{}, nil
	case "wordsum16":
		return NewWordSum16(0), nil
	}
	return nil, errors.Errorf("checksum: unknown algorithm (%s)", name)
}
