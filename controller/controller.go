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
	"context"
	"net/http"
	"sync"

	"github.com/pkg/errors"

	"github.com/framed/framed/common"
	"github.com/framed/framed/confengine"
	"github.com/framed/framed/exporter"
	"github.com/framed/framed/internal/rescue"
	"github.com/framed/framed/logger"
	"github.com/framed/framed/pipeline"
	"github.com/framed/framed/server"
	"github.com/framed/framed/source"
)

type job struct {
	cfg SourceConfig
	src source.Source
}

// Controller 编排来源枚举 → 帧提取 → 解码 → pipeline → exporter 全链路
type Controller struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cfg       Config
	buildInfo common.BuildInfo

	pl  *pipeline.Pipeline
	exp *exporter.Exporter
	svr *server.Server

	jobs chan job
	wg   sync.WaitGroup

	mut       sync.Mutex
	done      map[string]struct{}
	summaries []sessionSummary
}

func setupLogger(conf *confengine.Config) error {
	var opts logger.Options
	if conf.Has("logger") {
		if err := conf.UnpackChild("logger", &opts); err != nil {
			return err
		}
	}

	if opts.Filename == "" {
		opts.Filename = "framed.log"
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 10
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 7
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = 100
	}

	logger.SetOptions(opts)
	return nil
}

func New(conf *confengine.Config, buildInfo common.BuildInfo) (*Controller, error) {
	if err := setupLogger(conf); err != nil {
		return nil, err
	}

	exp, err := exporter.New(conf)
	if err != nil {
		return nil, err
	}

	pl, err := pipeline.New(conf)
	if err != nil {
		return nil, err
	}

	svr, err := server.New(conf)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := conf.UnpackChild("controller", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		ctx:       ctx,
		cancel:    cancel,
		cfg:       cfg,
		buildInfo: buildInfo,
		pl:        pl,
		exp:       exp,
		svr:       svr,
		jobs:      make(chan job, cfg.Workers),
		done:      make(map[string]struct{}),
	}, nil
}

func (c *Controller) Start() error {
	c.setupServer()

	for i := 0; i < c.cfg.Workers; i++ {
		go c.consumeJobs()
	}

	if c.svr != nil {
		go func() {
			if err := c.svr.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("failed to start server: %v", err)
			}
		}()
	}

	return c.enqueueSources()
}

// Wait 阻塞至当前已入队的来源全部解析完成
func (c *Controller) Wait() {
	c.wg.Wait()
}

// enqueueSources 枚举配置的来源并入队 已处理过的路径跳过
func (c *Controller) enqueueSources() error {
	for _, sc := range c.cfg.Sources {
		sources, err := source.Glob(sc.Path)
		if err != nil {
			return err
		}

		for _, src := range sources {
			if !c.markDone(src.Name()) {
				src.Close()
				continue
			}
			c.wg.Add(1)
			select {
			case c.jobs <- job{cfg: sc, src: src}:
			case <-c.ctx.Done():
				c.wg.Done()
				src.Close()
				return nil
			}
		}
	}
	return nil
}

// markDone 记录路径已被受理 重复出现时返回 false
func (c *Controller) markDone(path string) bool {
	c.mut.Lock()
	defer c.mut.Unlock()

	if _, ok := c.done[path]; ok {
		return false
	}
	c.done[path] = struct{}{}
	return true
}

func (c *Controller) consumeJobs() {
	for {
		select {
		case j := <-c.jobs:
			c.handleJob(j)
			c.wg.Done()

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Controller) handleJob(j job) {
	defer rescue.HandleCrash()

	activeSessions.Inc()
	defer activeSessions.Dec()

	sess, err := newSession(j.cfg, j.src, c.cfg.Batch, c.cfg.ReadBlockSize)
	if err != nil {
		j.src.Close()
		logger.Errorf("create session for (%s) failed: %v", j.src.Name(), err)
		return
	}

	logger.Infof("session (%s) parsing (%s) as format (%s)", j.src.ID(), j.src.Name(), j.cfg.Format)
	if err := sess.run(c.sinkRecord); err != nil {
		logger.Errorf("session (%s) failed: %v", j.src.ID(), err)
	}

	handledSessions.WithLabelValues(j.cfg.Format).Inc()
	c.appendSummary(sess.summary())
}

// sinkRecord particles 数据经 pipeline 处理后导出 其余类型直接导出
func (c *Controller) sinkRecord(record *common.Record) {
	if record.RecordType != common.RecordParticles {
		c.exp.Export(record)
		return
	}
	c.pl.Range(record, func(dst *common.Record) {
		c.exp.Export(dst)
	})
}

func (c *Controller) appendSummary(s sessionSummary) {
	c.mut.Lock()
	defer c.mut.Unlock()
	c.summaries = append(c.summaries, s)
}

// Reload 重载配置
//
// 仅重新枚举来源 新出现的文件会被入队 进行中的会话不受影响
func (c *Controller) Reload(conf *confengine.Config) error {
	var cfg Config
	if err := conf.UnpackChild("controller", &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.mut.Lock()
	c.cfg.Sources = cfg.Sources
	c.mut.Unlock()
	return c.enqueueSources()
}

func (c *Controller) Stop() {
	c.cancel()
	if c.svr != nil {
		c.svr.Close()
	}
	c.pl.Clean()
	c.exp.Close()
}
