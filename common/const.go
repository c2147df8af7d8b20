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

package common

const (
	// App 应用程序名称
	App = "framed"

	// Version 应用程序版本
	Version = "v0.0.1"

	// ReadBlockSize 默认单次 source read 的字节数
	//
	// 仪器数据文件可能达到数十 MB 一次性载入会造成不必要的内存压力
	// 以固定大小分批读取 要求 frame.Stream 支持跨批次拼帧
	ReadBlockSize = 1024

	// MaxBufferSize Accumulator 预警水位
	//
	// 超过该水位说明 scan 长时间未能推进 consumed 边界
	// 仅打日志提示 不会阻断解析
	MaxBufferSize = 65535
)
