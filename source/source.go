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

package source

import (
	"io"

	"github.com/google/uuid"

	"github.com/framed/framed/frame"
)

// Source 一条字节来源会话
//
// 在 frame.Source 之上附加会话元信息 每次打开分配独立的会话 ID
// 同一文件被重复投递时 两次解析互不影响
type Source interface {
	frame.Source

	// ID 会话唯一标识
	ID() string

	// Name 来源名称 通常为文件路径
	Name() string

	// Close 关闭来源并释放句柄
	Close() error
}

// NewReader 将任意 io.Reader 包装为 Source
//
// 读到的字节数可能少于 max 由底层 Reader 决定
func NewReader(name string, r io.Reader) Source {
	return &readerSource{
		id:   uuid.New().String(),
		name: name,
		r:    r,
	}
}

type readerSource struct {
	id   string
	name string
	r    io.Reader
	buf  []byte
}

func (rs *readerSource) ID() string { return rs.id }

func (rs *readerSource) Name() string { return rs.name }

// Read 实现 frame.Source 接口
func (rs *readerSource) Read(max int) ([]byte, error) {
	if cap(rs.buf) < max {
		rs.buf = make([]byte, max)
	}

	n, err := rs.r.Read(rs.buf[:max])
	if n <= 0 {
		return nil, err
	}
	return rs.buf[:n], err
}

func (rs *readerSource) Close() error {
	if c, ok := rs.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
