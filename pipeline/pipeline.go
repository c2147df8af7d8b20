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

package pipeline

import (
	"github.com/framed/framed/common"
	"github.com/framed/framed/confengine"
	"github.com/framed/framed/processor"
)

type Config struct {
	Name       string   `config:"name"`
	Processors []string `config:"processors"`
}

type Configs []Config

// Pipeline 将 record 依次交由配置的 processor 链处理
//
// processor 返回 nil 即丢弃 错误同样按丢弃处理 不中断链路
type Pipeline struct {
	configs Configs
	psmgr   *processor.Manager
}

func New(conf *confengine.Config) (*Pipeline, error) {
	configs, err := loadPipeline(conf)
	if err != nil {
		return nil, err
	}

	psmgr, err := processor.NewManager(conf)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		configs: configs,
		psmgr:   psmgr,
	}, nil
}

// Range 处理 src 并将处理结果逐条交给 f
//
// 未配置任何 pipeline 时 src 原样传递
func (p *Pipeline) Range(src *common.Record, f func(dst *common.Record)) {
	if len(p.configs) == 0 {
		f(src)
		return
	}

	for i := 0; i < len(p.configs); i++ {
		record := src
		for _, name := range p.configs[i].Processors {
			ps, ok := p.psmgr.Get(name)
			if !ok {
				continue
			}
			r, err := ps.Process(record)
			if err != nil || r == nil {
				record = nil
				break
			}
			record = r
		}
		if record != nil {
			f(record)
		}
	}
}

// Clean 清理全部 processor 状态
func (p *Pipeline) Clean() {
	p.psmgr.Clean()
}

func loadPipeline(conf *confengine.Config) (Configs, error) {
	if !conf.Has("pipeline") {
		return nil, nil
	}

	var configs Configs
	if err := conf.UnpackChild("pipeline", &configs); err != nil {
		return nil, err
	}
	return configs, nil
}
