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

package frame

import (
	"github.com/pkg/errors"
)

// Accumulator 承接 source 分批读入的字节并维护扫描窗口
//
// 窗口偏移始终相对字节流起点 丢弃已消费前缀不会使
// 已记录的 Frame / Diagnostic 偏移失效
//
// 单个 Accumulator 归属单条 Stream 不允许并发访问
type Accumulator struct {
	base int
	buf  []byte
	eof  bool
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Append 追加一批新读入的字节
func (a *Accumulator) Append(b []byte) {
	a.buf = append(a.buf, b...)
}

// Window 返回当前持有的完整窗口 只读
func (a *Accumulator) Window() []byte {
	return a.buf
}

// Base 窗口首字节的绝对偏移
func (a *Accumulator) Base() int {
	return a.base
}

// End 窗口末尾的绝对偏移 开区间
func (a *Accumulator) End() int {
	return a.base + len(a.buf)
}

// AdvanceConsumed 将 to 之前的字节标记为可回收
//
// 回退或越过窗口末尾属于调用方编程错误
// 调用之后此前从 Window 借出的切片视图全部失效
func (a *Accumulator) AdvanceConsumed(to int) error {
	if to < a.base || to > a.End() {
		return errors.Errorf("frame/accumulator: advance to (%d) out of window [%d, %d]", to, a.base, a.End())
	}
	if to == a.base {
		return nil
	}

	n := copy(a.buf, a.buf[to-a.base:])
	a.buf = a.buf[:n]
	a.base = to
	return nil
}

// MarkEOF 标记 source 已经结束
func (a *Accumulator) MarkEOF() {
	a.eof = true
}

// EOF 返回 source 是否已经结束
func (a *Accumulator) EOF() bool {
	return a.eof
}
