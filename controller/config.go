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

package controller

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/framed/framed/common"
	"github.com/framed/framed/format"
)

// SourceConfig 一组待解析的数据来源
type SourceConfig struct {
	// Format 帧格式名称 须为已注册格式
	Format string `config:"format"`

	// Path 文件路径 支持 glob
	Path string `config:"path"`

	// Options 透传给格式的附加参数
	Options map[string]any `config:"options"`
}

type Config struct {
	Sources []SourceConfig `config:"sources"`

	// Workers 解析并发度 默认为 CPU 核数
	Workers int `config:"workers"`

	// Batch 单次向 frame.Stream 拉取的帧数
	Batch int `config:"batch"`

	// ReadBlockSize 单次 source read 的字节数
	ReadBlockSize int `config:"readBlockSize"`
}

func (c *Config) Validate() error {
	var errs *multierror.Error
	for i, src := range c.Sources {
		if src.Path == "" {
			errs = multierror.Append(errs, errors.Errorf("sources[%d]: empty path", i))
		}
		if _, err := format.Get(src.Format); err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "sources[%d]", i))
		}
	}

	if c.Workers <= 0 {
		c.Workers = common.Concurrency()
	}
	if c.Batch <= 0 {
		c.Batch = 64
	}
	if c.ReadBlockSize <= 0 {
		c.ReadBlockSize = common.ReadBlockSize
	}
	return errs.ErrorOrNil()
}
