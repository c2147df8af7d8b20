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

package zerocopy

import (
	"io"
)

// Reader ZeroCopy-API
//
// Read 零拷贝方式读取至多 n 字节 调用方不允许修改返回的字节
type Reader interface {
	Read(n int) ([]byte, error)
}

// NewReader 在 p 上创建零拷贝 Reader
//
// 字段解码器通过此接口顺序消费帧载荷 避免重复切片拷贝
func NewReader(p []byte) *SliceReader {
	return &SliceReader{b: p}
}

type SliceReader struct {
	r int
	b []byte
}

// Read 实现 Reader 接口
func (sr *SliceReader) Read(n int) ([]byte, error) {
	if sr.r == len(sr.b) {
		return nil, io.EOF
	}

	if sr.r+n >= len(sr.b) {
		b := sr.b[sr.r:]
		sr.r = len(sr.b)
		return b, nil
	}

	b := sr.b[sr.r : sr.r+n]
	sr.r += n
	return b, nil
}

// Remaining 返回尚未读取的字节数
func (sr *SliceReader) Remaining() int {
	return len(sr.b) - sr.r
}

// Skip 跳过 n 字节 超出范围时返回 io.EOF
func (sr *SliceReader) Skip(n int) error {
	if sr.r+n > len(sr.b) {
		sr.r = len(sr.b)
		return io.EOF
	}
	sr.r += n
	return nil
}
