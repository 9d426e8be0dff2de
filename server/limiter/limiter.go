/*
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package limiter

import (
	"sync"

	"github.com/CeresDB/ceresids/server/config"
	"golang.org/x/time/rate"
)

// FlowLimiter bounds the rate of the produce requests served by one server.
type FlowLimiter struct {
	l *rate.Limiter
	// RWMutex is used to protect following fields.
	lock sync.RWMutex
	// limit is the rate of tokens refilled per second.
	limit int
	// burst is the maximum number of tokens.
	burst int
	// enable is used to control the switch of the limiter.
	enable bool
}

func NewFlowLimiter(cfg config.LimiterConfig) *FlowLimiter {
	return &FlowLimiter{
		l:      rate.NewLimiter(rate.Limit(cfg.Limit), cfg.Burst),
		lock:   sync.RWMutex{},
		limit:  cfg.Limit,
		burst:  cfg.Burst,
		enable: cfg.Enable,
	}
}

// Allow takes one token, and tells whether the request can be served now.
func (f *FlowLimiter) Allow() bool {
	f.lock.RLock()
	defer f.lock.RUnlock()

	if !f.enable {
		return true
	}
	return f.l.Allow()
}

func (f *FlowLimiter) UpdateLimiter(cfg config.LimiterConfig) error {
	if cfg.Enable && (cfg.Limit <= 0 || cfg.Burst <= 0) {
		return config.ErrInvalidLimiterConfig.WithCausef("limit:%d, burst:%d", cfg.Limit, cfg.Burst)
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	f.l.SetLimit(rate.Limit(cfg.Limit))
	f.l.SetBurst(cfg.Burst)
	f.limit = cfg.Limit
	f.burst = cfg.Burst
	f.enable = cfg.Enable
	return nil
}

func (f *FlowLimiter) GetConfig() config.LimiterConfig {
	f.lock.RLock()
	defer f.lock.RUnlock()

	return config.LimiterConfig{
		Limit:  f.limit,
		Burst:  f.burst,
		Enable: f.enable,
	}
}
