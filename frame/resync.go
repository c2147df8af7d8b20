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

// nextOffset 重同步策略 决定下一次扫描的游标位置
//
// - Valid 越过整帧继续
// - Invalid 仅前进一个字节 sync 值合法地出现在噪声或他帧载荷内时
//   不会整段跳过附近真实的帧起点 最坏情况为 O(窗口长度) 次重扫
// - Incomplete 原地等待更多字节 source 耗尽时的终态由调用方处理
func nextOffset(o Outcome, cand *Candidate) int {
	switch o.Kind {
	case OutcomeValid:
		return o.End
	case OutcomeInvalid:
		return cand.Start + 1
	}
	return cand.Start
}
