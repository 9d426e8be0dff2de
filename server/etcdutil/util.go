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

package etcdutil

import (
	"context"
	"time"

	"github.com/CeresDB/ceresids/pkg/log"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// NewClient dials the etcd cluster and blocks until the connection is established or dialTimeout elapses.
func NewClient(endpoints []string, dialTimeout time.Duration) (*clientv3.Client, error) {
	lgc := zap.NewProductionConfig()
	lgc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
		DialOptions: []grpc.DialOption{grpc.WithBlock()},
		LogConfig:   &lgc,
	})
	if err != nil {
		return nil, ErrCreateEtcdClient.WithCausef("endpoints:%v, err:%v", endpoints, err)
	}
	return client, nil
}

// Get returns the only key-value pair stored at key.
func Get(ctx context.Context, kv clientv3.KV, key string) (*mvccpb.KeyValue, error) {
	resp, err := kv.Get(ctx, key)
	if err != nil {
		return nil, ErrEtcdKVGet.WithCause(err)
	}
	if n := len(resp.Kvs); n == 0 {
		return nil, ErrEtcdKVGetNotFound.WithCausef("key:%s", key)
	} else if n > 1 {
		return nil, ErrEtcdKVGetResponse.WithCausef("%v", resp.Kvs)
	}

	return resp.Kvs[0], nil
}

// Scan visits the keys in the range [startKey, endKey) in order, fetching at most batchSize keys per request.
func Scan(ctx context.Context, kv clientv3.KV, startKey, endKey string, batchSize int, do func(item *mvccpb.KeyValue) error) error {
	withRange := clientv3.WithRange(endKey)
	withLimit := clientv3.WithLimit(int64(batchSize))

	// Take a special process for the first batch.
	resp, err := kv.Get(ctx, startKey, withRange, withLimit)
	if err != nil {
		return ErrEtcdKVGet.WithCause(err)
	}

	if len(resp.Kvs) == 0 {
		return nil
	}

	doIfNotEndKey := func(item *mvccpb.KeyValue) error {
		if string(item.Key) == endKey {
			return nil
		}
		return do(item)
	}

	for _, item := range resp.Kvs {
		err := doIfNotEndKey(item)
		if err != nil {
			return err
		}
	}

	lastKeyInPrevBatch := string(resp.Kvs[len(resp.Kvs)-1].Key)
	// The following batches always contain one key in the previous batch, so we have to increment the batchSize to batchSize + 1;
	withLimit = clientv3.WithLimit(int64(batchSize + 1))
	for {
		if lastKeyInPrevBatch == endKey {
			log.Warn("Stop scanning because the end key is reached", zap.String("endKey", endKey))
			return nil
		}
		startKey = lastKeyInPrevBatch

		// Get the keys range [startKey, endKey).
		resp, err := kv.Get(ctx, startKey, withRange, withLimit)
		if err != nil {
			return ErrEtcdKVGet.WithCause(err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if len(resp.Kvs) <= 1 {
			// The only one key is `startKey` which is actually processed already.
			return nil
		}

		// Skip the first key which is processed already.
		for _, item := range resp.Kvs[1:] {
			err := doIfNotEndKey(item)
			if err != nil {
				return err
			}
		}

		// Check whether the keys is exhausted.
		if len(resp.Kvs) < batchSize {
			return nil
		}

		lastKeyInPrevBatch = string(resp.Kvs[len(resp.Kvs)-1].Key)
	}
}
