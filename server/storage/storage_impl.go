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

package storage

import (
	"context"
	"time"

	"github.com/CeresDB/ceresids/pkg/coderr"
	"github.com/CeresDB/ceresids/pkg/log"
	"github.com/CeresDB/ceresids/server/etcdutil"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/clientv3util"
	"go.uber.org/zap"
)

const (
	defaultMaxScanLimit   = 100
	defaultRequestTimeout = 5 * time.Second
)

type Options struct {
	// MaxScanLimit is the max limit of the number of keys in a scan.
	MaxScanLimit int
	// RequestTimeout bounds every request sent to etcd.
	RequestTimeout time.Duration
}

// metaStorageImpl stores the records under rootPath of etcd, each record is encoded by the codec in codec.go.
type metaStorageImpl struct {
	client   clientv3.KV
	rootPath string

	opts Options
}

func newMetaStorageImpl(client clientv3.KV, rootPath string, opts Options) *metaStorageImpl {
	if opts.MaxScanLimit <= 0 {
		opts.MaxScanLimit = defaultMaxScanLimit
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	return &metaStorageImpl{
		client:   client,
		rootPath: rootPath,
		opts:     opts,
	}
}

func (s *metaStorageImpl) CreateIder(ctx context.Context, req CreateIderRequest) error {
	ider := req.Ider
	if err := ider.Validate(); err != nil {
		return err
	}

	iderKey := makeIderKey(s.rootPath, ider.IDCode)
	opPuts := make([]clientv3.Op, 0, ider.Factor+1)
	opPuts = append(opPuts, clientv3.OpPut(iderKey, string(encodeIder(ider))))
	for index := int64(0); index < ider.Factor; index++ {
		p := Producer{
			IDCode:        ider.IDCode,
			Index:         index,
			CurrentPeriod: req.InitialPeriod,
			CurrentID:     index,
		}
		opPuts = append(opPuts, clientv3.OpPut(makeProducerKey(s.rootPath, ider.IDCode, index), string(encodeProducer(p))))
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	resp, err := s.client.Txn(ctx).
		If(clientv3util.KeyMissing(iderKey)).
		Then(opPuts...).
		Commit()
	if err != nil {
		return ErrMetaCreateIder.WithCause(err)
	}
	if !resp.Succeeded {
		return ErrIderExists.WithCausef("idCode:%s", ider.IDCode)
	}

	log.Info("ider created", zap.String("idCode", ider.IDCode), zap.Int64("factor", ider.Factor),
		zap.Int64("maxId", ider.MaxID), zap.String("periodType", ider.PeriodType.String()))
	return nil
}

func (s *metaStorageImpl) GetIder(ctx context.Context, idCode string) (Ider, error) {
	if err := validateIDCode(idCode); err != nil {
		return Ider{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	item, err := etcdutil.Get(ctx, s.client, makeIderKey(s.rootPath, idCode))
	if err != nil {
		if coderr.Is(err, coderr.NotFound) {
			return Ider{}, ErrIderNotFound.WithCausef("idCode:%s", idCode)
		}
		return Ider{}, err
	}
	return decodeIder(item.Value)
}

func (s *metaStorageImpl) ListIders(ctx context.Context) ([]Ider, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	iders := make([]Ider, 0)
	prefix := makeIderPrefix(s.rootPath)
	err := etcdutil.Scan(ctx, s.client, prefix, clientv3.GetPrefixRangeEnd(prefix), s.opts.MaxScanLimit, func(item *mvccpb.KeyValue) error {
		ider, err := decodeIder(item.Value)
		if err != nil {
			return err
		}
		iders = append(iders, ider)
		return nil
	})
	if err != nil {
		return nil, ErrMetaListIders.WithCause(err)
	}
	return iders, nil
}

func (s *metaStorageImpl) DeleteIder(ctx context.Context, idCode string) error {
	if err := validateIDCode(idCode); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	iderKey := makeIderKey(s.rootPath, idCode)
	resp, err := s.client.Txn(ctx).
		If(clientv3util.KeyExists(iderKey)).
		Then(
			clientv3.OpDelete(iderKey),
			clientv3.OpDelete(makeProducerPrefix(s.rootPath, idCode), clientv3.WithPrefix()),
		).
		Commit()
	if err != nil {
		return ErrMetaDeleteIder.WithCause(err)
	}
	if !resp.Succeeded {
		return ErrIderNotFound.WithCausef("idCode:%s", idCode)
	}

	log.Info("ider deleted", zap.String("idCode", idCode))
	return nil
}

func (s *metaStorageImpl) GetProducer(ctx context.Context, idCode string, index int64) (Producer, error) {
	if err := validateIDCode(idCode); err != nil {
		return Producer{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	item, err := etcdutil.Get(ctx, s.client, makeProducerKey(s.rootPath, idCode, index))
	if err != nil {
		if coderr.Is(err, coderr.NotFound) {
			return Producer{}, ErrProducerNotFound.WithCausef("idCode:%s, index:%d", idCode, index)
		}
		return Producer{}, err
	}
	return decodeProducerItem(item)
}

func (s *metaStorageImpl) ListProducers(ctx context.Context, idCode string) ([]Producer, error) {
	if err := validateIDCode(idCode); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	producers := make([]Producer, 0)
	prefix := makeProducerPrefix(s.rootPath, idCode)
	err := etcdutil.Scan(ctx, s.client, prefix, clientv3.GetPrefixRangeEnd(prefix), s.opts.MaxScanLimit, func(item *mvccpb.KeyValue) error {
		p, err := decodeProducerItem(item)
		if err != nil {
			return err
		}
		producers = append(producers, p)
		return nil
	})
	if err != nil {
		return nil, ErrMetaListProducers.WithCause(err)
	}
	return producers, nil
}

func (s *metaStorageImpl) PutProducer(ctx context.Context, req PutProducerRequest) (int64, error) {
	p := req.Producer
	if err := validateIDCode(p.IDCode); err != nil {
		return 0, err
	}
	if p.Index < 0 || p.CurrentID < 0 {
		return 0, ErrInvalidProducer.WithCausef("%s", p)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	producerKey := makeProducerKey(s.rootPath, p.IDCode, p.Index)
	resp, err := s.client.Txn(ctx).
		If(
			clientv3util.KeyExists(makeIderKey(s.rootPath, p.IDCode)),
			clientv3.Compare(clientv3.ModRevision(producerKey), "=", req.LatestRevision),
		).
		Then(clientv3.OpPut(producerKey, string(encodeProducer(p)))).
		Commit()
	if err != nil {
		return 0, ErrMetaPutProducer.WithCause(err)
	}
	if !resp.Succeeded {
		return 0, ErrProducerConflict.WithCausef("idCode:%s, index:%d, latestRevision:%d", p.IDCode, p.Index, req.LatestRevision)
	}

	return resp.Header.Revision, nil
}

func decodeProducerItem(item *mvccpb.KeyValue) (Producer, error) {
	p, err := decodeProducer(item.Value)
	if err != nil {
		return Producer{}, err
	}
	p.Revision = item.ModRevision
	return p, nil
}
