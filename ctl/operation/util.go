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

package operation

import (
	"context"
	"strings"
	"time"

	"github.com/CeresDB/ceresids/server/config"
	"github.com/CeresDB/ceresids/server/etcdutil"
	"github.com/CeresDB/ceresids/server/limiter"
	"github.com/CeresDB/ceresids/server/producer"
	"github.com/CeresDB/ceresids/server/storage"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	dialTimeout    = 3 * time.Second
	requestTimeout = 10 * time.Second
)

func tableWriter(headers []string) table.Writer {
	header := table.Row{}
	for _, s := range headers {
		header = append(header, s)
	}
	t := table.NewWriter()
	t.AppendHeader(header)
	return t
}

// withManager connects to the etcd configured by the root flags and serves fn with a manager of the stored iders.
func withManager(fn func(ctx context.Context, m *producer.Manager) error) error {
	endpoints := strings.Split(viper.GetString(RootEtcdEndpoints), ",")
	client, err := etcdutil.NewClient(endpoints, dialTimeout)
	if err != nil {
		return err
	}
	defer client.Close()

	s := storage.NewStorageWithEtcdBackend(client, viper.GetString(RootPath), storage.Options{
		MaxScanLimit:   0,
		RequestTimeout: requestTimeout,
	})
	// Requests from the ctl are not limited.
	flowLimiter := limiter.NewFlowLimiter(config.LimiterConfig{Limit: 1, Burst: 1, Enable: false})
	m := producer.NewManager(zap.NewNop(), s, producer.DefaultAllocator, flowLimiter, producer.ManagerOptions{
		MaxRetry: 0,
		Clock:    nil,
	})

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return fn(ctx, m)
}

func FormatTimeMilli(milli int64) string {
	return time.UnixMilli(milli).Format("2006-01-02 15:04:05.000")
}
