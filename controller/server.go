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
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/framed/framed/common"
	"github.com/framed/framed/format"
	"github.com/framed/framed/internal/json"
	"github.com/framed/framed/internal/sigs"
	"github.com/framed/framed/logger"
)

// sessionSummary 已完成会话的终览
type sessionSummary struct {
	Session            string `json:"session"`
	Source             string `json:"source"`
	Format             string `json:"format"`
	Frames             uint64 `json:"frames"`
	BytesRead          uint64 `json:"bytes_read"`
	NonDataBytes       uint64 `json:"non_data_bytes"`
	ChecksumMismatches uint64 `json:"checksum_mismatches"`
	MalformedHeaders   uint64 `json:"malformed_headers"`
	Truncations        uint64 `json:"truncations"`
	Particles          uint64 `json:"particles"`
	DecodeFailures     uint64 `json:"decode_failures"`
}

func (c *Controller) setupServer() {
	if c.svr == nil {
		return
	}

	// Admin Routes
	c.svr.RegisterPostRoute("/-/logger", c.routeLogger)
	c.svr.RegisterPostRoute("/-/reload", c.routeReload)

	// Info Routes
	c.svr.RegisterGetRoute("/buildinfo", c.routeBuildInfo)
	c.svr.RegisterGetRoute("/formats", c.routeFormats)
	c.svr.RegisterGetRoute("/sessions", c.routeSessions)

	// Metrics Routes
	c.svr.RegisterGetRoute("/metrics", c.routeMetrics)
}

func (c *Controller) recordMetrics() {
	uptime.Set(float64(time.Now().Unix() - common.Started()))
	buildInfo.WithLabelValues(c.buildInfo.Version, c.buildInfo.GitHash, c.buildInfo.Time).Inc()
}

func (c *Controller) routeMetrics(w http.ResponseWriter, r *http.Request) {
	c.recordMetrics()
	promhttp.Handler().ServeHTTP(w, r)
}

func (c *Controller) routeBuildInfo(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(c.buildInfo)
}

func (c *Controller) routeFormats(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(format.Names())
}

func (c *Controller) routeSessions(w http.ResponseWriter, r *http.Request) {
	c.mut.Lock()
	summaries := make([]sessionSummary, len(c.summaries))
	copy(summaries, c.summaries)
	c.mut.Unlock()

	json.NewEncoder(w).Encode(summaries)
}

func (c *Controller) routeLogger(w http.ResponseWriter, r *http.Request) {
	level := r.FormValue("level")
	logger.SetLoggerLevel(level)
	w.Write([]byte(`{"status": "success"}`))
}

func (c *Controller) routeReload(w http.ResponseWriter, r *http.Request) {
	if err := sigs.SelfReload(); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}
}
