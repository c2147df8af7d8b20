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

package dedupe

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/framed/framed/common"
	"github.com/framed/framed/internal/json"
	"github.com/framed/framed/internal/mapstructure"
	"github.com/framed/framed/particle"
	"github.com/framed/framed/processor"
)

func init() {
	processor.Register("dedupe", New)
}

const defaultWindow = 4096

type Config struct {
	// Window 去重窗口 记录最近 N 条指纹
	Window int `mapstructure:"window"`
}

func (c *Config) Validate() {
	if c.Window <= 0 {
		c.Window = defaultWindow
	}
}

// Dedupe 丢弃重复的 particle 记录
//
// 同一份文件被重复投递或仪器重传块时 会解出完全相同的记录
// 指纹为 format/type/timestamp/fields 规范化编码后的 xxhash
// 窗口满后按写入顺序淘汰最旧指纹
//
// 多条会话共用同一实例 指纹表由锁保护
type Dedupe struct {
	mut    sync.Mutex
	window int
	seen   map[uint64]struct{}
	ring   []uint64
	next   int
}

func New(conf map[string]any) (processor.Processor, error) {
	var cfg Config
	if err := mapstructure.Decode(conf, &cfg); err != nil {
		return nil, err
	}
	cfg.Validate()

	return &Dedupe{
		window: cfg.Window,
		seen:   make(map[uint64]struct{}, cfg.Window),
		ring:   make([]uint64, cfg.Window),
	}, nil
}

func (d *Dedupe) Name() string {
	return "dedupe"
}

// Process 实现 processor.Processor 接口
//
// 仅作用于 particles 数据 其余类型原样透传
func (d *Dedupe) Process(record *common.Record) (*common.Record, error) {
	if record.RecordType != common.RecordParticles {
		return record, nil
	}

	particles, ok := record.Data.([]*particle.Particle)
	if !ok {
		return record, nil
	}

	d.mut.Lock()
	defer d.mut.Unlock()

	kept := particles[:0]
	for _, p := range particles {
		h, err := fingerprint(p)
		if err != nil {
			kept = append(kept, p)
			continue
		}
		if _, dup := d.seen[h]; dup {
			continue
		}
		d.remember(h)
		kept = append(kept, p)
	}

	if len(kept) == 0 {
		return nil, nil
	}
	return &common.Record{RecordType: common.RecordParticles, Data: kept}, nil
}

func (d *Dedupe) Clean() {
	d.mut.Lock()
	defer d.mut.Unlock()

	d.seen = make(map[uint64]struct{}, d.window)
	d.next = 0
}

func (d *Dedupe) remember(h uint64) {
	if len(d.seen) >= d.window {
		delete(d.seen, d.ring[d.next])
	}
	d.ring[d.next] = h
	d.next = (d.next + 1) % d.window
	d.seen[h] = struct{}{}
}

// fingerprint 计算记录指纹 不含 Source/Session/Offset
//
// 同一记录从不同文件或不同偏移再次出现时依然判定为重复
func fingerprint(p *particle.Particle) (uint64, error) {
	b, err := json.Marshal(struct {
		Format    string         `json:"format"`
		Type      string         `json:"type"`
		Timestamp float64        `json:"timestamp"`
		Fields    map[string]any `json:"fields"`
	}{p.Format, p.Type, p.Timestamp, p.Fields})
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(b), nil
}
