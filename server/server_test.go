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

package server

import (
	"context"
	"testing"

	"github.com/CeresDB/ceresids/server/config"
	"github.com/CeresDB/ceresids/server/period"
	"github.com/CeresDB/ceresids/server/status"
	"github.com/CeresDB/ceresids/server/storage"
	"github.com/stretchr/testify/require"
	"github.com/tikv/pd/pkg/tempurl"
)

func newTestConfig(t *testing.T) *config.Config {
	re := require.New(t)
	parser, err := config.MakeConfigParser()
	re.NoError(err)

	dir := t.TempDir()
	cfg, err := parser.Parse([]string{
		"--node-name", "test-node",
		"--data-dir", dir,
		"--client-urls", tempurl.Alloc(),
		"--peer-urls", tempurl.Alloc(),
		"--log-level", "error",
	})
	re.NoError(err)
	re.NoError(cfg.ValidateAndAdjust())
	return cfg
}

func TestServerRunAndProduce(t *testing.T) {
	re := require.New(t)
	ctx := context.Background()

	srv, err := CreateServer(newTestConfig(t))
	re.NoError(err)
	re.Equal(status.StatusWaiting, srv.Status())

	re.NoError(srv.Run(ctx))
	defer srv.Close()
	re.Equal(status.StatusRunning, srv.Status())

	m := srv.Manager()
	re.NoError(m.CreateIder(ctx, storage.Ider{IDCode: "order", PeriodType: period.None, Factor: 1}))
	infos, err := m.Produce(ctx, "order", 10)
	re.NoError(err)
	re.Len(infos, 1)
	re.Equal(int64(0), infos[0].StartID)
	re.Equal(int64(10), infos[0].Amount)

	flowLimiter, err := srv.GetFlowLimiter()
	re.NoError(err)
	re.True(flowLimiter.GetConfig().Enable)

	srv.Close()
	re.True(srv.IsClosed())
	re.Equal(status.Terminated, srv.Status())
}

func TestServerUpdateFlowLimiter(t *testing.T) {
	re := require.New(t)

	srv, err := CreateServer(newTestConfig(t))
	re.NoError(err)

	updated := config.LimiterConfig{Limit: 1, Burst: 1, Enable: true}
	re.NoError(srv.UpdateFlowLimiter(updated))
	flowLimiter, err := srv.GetFlowLimiter()
	re.NoError(err)
	re.Equal(updated, flowLimiter.GetConfig())
	re.True(flowLimiter.Allow())
	re.False(flowLimiter.Allow())

	err = srv.UpdateFlowLimiter(config.LimiterConfig{Limit: 0, Burst: 1, Enable: true})
	re.ErrorIs(err, config.ErrInvalidLimiterConfig)
	re.Equal(updated, flowLimiter.GetConfig())
}
