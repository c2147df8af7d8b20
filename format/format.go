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

package format

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/framed/framed/common"
	"github.com/framed/framed/frame"
	"github.com/framed/framed/particle"
)

// Decoder 字段解码器定义
//
// 所有格式解码器都需实现本接口 输入为已通过校验的帧
// 不允许修改帧载荷的任何字节 如有修改需求请先 copy 一份
//
// 解码失败是可恢复错误 与帧校验失败严格区分 永远发生在其之后
type Decoder interface {
	// Decode 将帧载荷解码为 particle 记录
	//
	// t 为该帧被读取的时间 单帧可能解出多条记录
	Decode(fr *frame.Frame, t time.Time) ([]*particle.Particle, error)

	// Free 释放持有的资源
	Free()
}

// CreateDecoderFunc 解码器构造函数
type CreateDecoderFunc func(opts common.Options) (Decoder, error)

// Format 一种已注册的帧格式 绑定帧结构定义与字段解码器
type Format struct {
	// Name 格式名称 配置文件以此引用
	Name string

	// FrameConfig 返回该格式的帧结构定义
	FrameConfig func(opts common.Options) frame.Config

	// NewDecoder 创建该格式的字段解码器
	NewDecoder CreateDecoderFunc
}

var formatFactory = map[string]Format{}

// Register 注册格式 由各格式包的 init 调用
func Register(f Format) {
	formatFactory[f.Name] = f
}

// Get 按名称检索已注册格式
func Get(name string) (Format, error) {
	f, ok := formatFactory[name]
	if !ok {
		return Format{}, errors.Errorf("format factory (%s) not found", name)
	}
	return f, nil
}

// Names 返回全部已注册格式名称 按字典序
func Names() []string {
	names := make([]string, 0, len(formatFactory))
	for name := range formatFactory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
