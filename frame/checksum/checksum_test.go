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
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXorShift16(t *testing.T) {
	alg := NewXorShift16(0)
	assert.Equal(t, "xorshift16", alg.Name())
	assert.Equal(t, 16, alg.Width())

	// 空输入时累加器保持初始值 结果为取反后的低 16 位
	assert.Equal(t, uint32(^uint16(SeedXorShift16)), alg.Compute(nil))

	// 结果始终在 16 位范围内
	b := []byte("the quick brown fox")
	assert.LessOrEqual(t, alg.Compute(b), uint32(0xFFFF))

	// 不同 seed 产生不同结果
	other := NewXorShift16(0xFFFF)
	assert.NotEqual(t, alg.Compute(b), other.Compute(b))
}

func TestCRC32MatchesIEEE(t *testing.T) {
	alg := CRC32{}
	tests := [][]byte{
		nil,
		[]byte{0x00},
		[]byte("123456789"),
		[]byte("instrument byte stream"),
	}
	for _, b := range tests {
		assert.Equal(t, crc32.ChecksumIEEE(b), alg.Compute(b))
	}
}

func TestModSum(t *testing.T) {
	assert.Equal(t, uint32(6), ModSum8{}.Compute([]byte{1, 2, 3}))
	assert.Equal(t, uint32((250+250+250)&0xFF), ModSum8{}.Compute([]byte{250, 250, 250}))

	assert.Equal(t, uint32(6), ModSum16{}.Compute([]byte{1, 2, 3}))
	assert.Equal(t, uint32(0x0105), ModSum16{Seed: 0x0100}.Compute([]byte{5}))
}

func TestWordSum16(t *testing.T) {
	alg := NewWordSum16(0)

	// 小端字序求和 基值参与
	assert.Equal(t, uint32(SeedWordSum16+1), alg.Compute([]byte{0x01, 0x00}))
	assert.Equal(t, uint32(SeedWordSum16+0x0100), alg.Compute([]byte{0x00, 0x01}))

	// 奇数长度时末尾单字节按低位参与
	assert.Equal(t, uint32(SeedWordSum16+3), alg.Compute([]byte{0x01, 0x00, 0x02}))

	// 溢出对 65536 取模
	sum := NewWordSum16(0xFFFF).Compute([]byte{0x02, 0x00})
	assert.Equal(t, uint32(1), sum)
}

func TestVerify(t *testing.T) {
	algs := []Algorithm{
		NewXorShift16(0),
		CRC32{},
		ModSum8{},
		ModSum16{},
		NewWordSum16(0),
	}

	b := []byte{0x10, 0x20, 0x30, 0x40, 0x55}
	for _, alg := range algs {
		declared := alg.Compute(b)
		assert.True(t, Verify(alg, b, declared), alg.Name())

		// 任意单字节翻转必须被察觉
		corrupted := append([]byte(nil), b...)
		corrupted[2] ^= 0x01
		assert.False(t, Verify(alg, corrupted, declared), alg.Name())
	}

	// 声明值仅低位有效 高位忽略
	assert.True(t, Verify(ModSum8{}, []byte{1}, 0xFF01))
}

func TestNew(t *testing.T) {
	names := []string{"xorshift16", "crc32", "modsum8", "modsum16", "wordsum16"}
	for _, name := range names {
		alg, err := New(name)
		assert.NoError(t, err)
		assert.Equal(t, name, alg.Name())
	}

	_, err := New("unknown")
	assert.Error(t, err)
}
