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
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// OpenFile 打开单个文件来源
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open source file")
	}
	return NewReader(path, f), nil
}

// Glob 枚举匹配 pattern 的全部文件来源 按路径排序
//
// 目录与不可打开的文件跳过 全部无法打开时返回首个错误
func Glob(pattern string) ([]Source, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrap(err, "glob source pattern")
	}
	sort.Strings(paths)

	var firstErr error
	var sources []Source
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil || fi.IsDir() {
			continue
		}
		src, err := OpenFile(path)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sources = append(sources, src)
	}

	if len(sources) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return sources, nil
}
