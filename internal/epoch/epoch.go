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

package epoch

import (
	"time"
)

// ntpDelta 1900-01-01 至 1970-01-01 的秒数
const ntpDelta = 2208988800

// FromPosix POSIX 秒转 NTP 纪元秒
func FromPosix(sec float64) float64 {
	return sec + ntpDelta
}

// ToPosix NTP 纪元秒转 POSIX 秒
func ToPosix(sec float64) float64 {
	return sec - ntpDelta
}

// FromTime time.Time 转 NTP 纪元秒
func FromTime(t time.Time) float64 {
	return FromPosix(float64(t.UnixNano()) / float64(time.Second))
}
