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
	"testing"
	"time"

	"github.com/CeresDB/ceresids/pkg/coderr"
	"github.com/CeresDB/ceresids/server/etcdutil"
	"github.com/CeresDB/ceresids/server/period"
	"github.com/stretchr/testify/require"
)

const (
	defaultRootPath = "/ceresids"
	testIDCode      = "order"
)

func newTestStorage(t *testing.T) (Storage, func()) {
	_, client, closeSrv := etcdutil.PrepareEtcdServerAndClient(t)
	s := NewStorageWithEtcdBackend(client, defaultRootPath, Options{
		MaxScanLimit:   2,
		RequestTimeout: 5 * time.Second,
	})
	return s, closeSrv
}

func newTestIder(idCode string, factor int64) Ider {
	return Ider{
		IDCode:     idCode,
		IDName:     "test ider",
		PeriodType: period.Day,
		Factor:     factor,
		MaxID:      100 * factor,
		MaxAmount:  0,
		CreatedAt:  uint64(time.Now().UnixMilli()),
	}
}

func TestCreateAndGetIder(t *testing.T) {
	re := require.New(t)
	s, closeSrv := newTestStorage(t)
	defer closeSrv()

	ctx := context.Background()
	initial, err := period.Of(period.Day, time.Date(2023, 3, 5, 10, 0, 0, 0, time.UTC))
	re.NoError(err)

	ider := newTestIder(testIDCode, 3)
	re.NoError(s.CreateIder(ctx, CreateIderRequest{Ider: ider, InitialPeriod: initial}))

	got, err := s.GetIder(ctx, testIDCode)
	re.NoError(err)
	re.Equal(ider, got)

	err = s.CreateIder(ctx, CreateIderRequest{Ider: ider, InitialPeriod: initial})
	re.ErrorIs(err, ErrIderExists)
	re.True(coderr.Is(err, coderr.IderAlreadyExists))

	producers, err := s.ListProducers(ctx, testIDCode)
	re.NoError(err)
	re.Len(producers, 3)
	for i, p := range producers {
		re.Equal(int64(i), p.Index)
		re.Equal(int64(i), p.CurrentID)
		re.True(initial.Equal(p.CurrentPeriod))
		re.Positive(p.Revision)
	}

	_, err = s.GetIder(ctx, "missing")
	re.ErrorIs(err, ErrIderNotFound)
}

func TestCreateInvalidIder(t *testing.T) {
	re := require.New(t)
	s, closeSrv := newTestStorage(t)
	defer closeSrv()

	ctx := context.Background()
	ider := newTestIder(testIDCode, 3)
	ider.MaxID = 100
	err := s.CreateIder(ctx, CreateIderRequest{Ider: ider, InitialPeriod: period.Zero})
	re.ErrorIs(err, ErrInvalidIder)

	ider = newTestIder("bad/code", 1)
	err = s.CreateIder(ctx, CreateIderRequest{Ider: ider, InitialPeriod: period.Zero})
	re.ErrorIs(err, ErrInvalidIder)

	ider = newTestIder(testIDCode, MaxFactor+1)
	err = s.CreateIder(ctx, CreateIderRequest{Ider: ider, InitialPeriod: period.Zero})
	re.ErrorIs(err, ErrInvalidIder)

	iders, err := s.ListIders(ctx)
	re.NoError(err)
	re.Empty(iders)
}

func TestListAndDeleteIders(t *testing.T) {
	re := require.New(t)
	s, closeSrv := newTestStorage(t)
	defer closeSrv()

	ctx := context.Background()
	codes := []string{"a", "b", "c", "d", "e"}
	for _, code := range codes {
		re.NoError(s.CreateIder(ctx, CreateIderRequest{Ider: newTestIder(code, 2), InitialPeriod: period.Zero}))
	}

	iders, err := s.ListIders(ctx)
	re.NoError(err)
	re.Len(iders, len(codes))
	for i, ider := range iders {
		re.Equal(codes[i], ider.IDCode)
	}

	re.NoError(s.DeleteIder(ctx, "c"))
	re.ErrorIs(s.DeleteIder(ctx, "c"), ErrIderNotFound)

	iders, err = s.ListIders(ctx)
	re.NoError(err)
	re.Len(iders, len(codes)-1)

	producers, err := s.ListProducers(ctx, "c")
	re.NoError(err)
	re.Empty(producers)

	// Producers of the neighbours are kept.
	producers, err = s.ListProducers(ctx, "b")
	re.NoError(err)
	re.Len(producers, 2)
}

func TestPutProducer(t *testing.T) {
	re := require.New(t)
	s, closeSrv := newTestStorage(t)
	defer closeSrv()

	ctx := context.Background()
	re.NoError(s.CreateIder(ctx, CreateIderRequest{Ider: newTestIder(testIDCode, 2), InitialPeriod: period.Zero}))

	p, err := s.GetProducer(ctx, testIDCode, 1)
	re.NoError(err)
	re.Equal(int64(1), p.CurrentID)

	stale := p.Revision
	p.CurrentID = 7
	rev, err := s.PutProducer(ctx, PutProducerRequest{Producer: p, LatestRevision: p.Revision})
	re.NoError(err)
	re.Greater(rev, stale)

	got, err := s.GetProducer(ctx, testIDCode, 1)
	re.NoError(err)
	re.Equal(int64(7), got.CurrentID)
	re.Equal(rev, got.Revision)

	// The revision has moved on, the put with the stale one must fail.
	p.CurrentID = 9
	_, err = s.PutProducer(ctx, PutProducerRequest{Producer: p, LatestRevision: stale})
	re.ErrorIs(err, ErrProducerConflict)
	re.True(coderr.Is(err, coderr.Conflict))

	got, err = s.GetProducer(ctx, testIDCode, 1)
	re.NoError(err)
	re.Equal(int64(7), got.CurrentID)

	_, err = s.GetProducer(ctx, testIDCode, 5)
	re.ErrorIs(err, ErrProducerNotFound)

	// A producer of a deleted ider can't be put back.
	re.NoError(s.DeleteIder(ctx, testIDCode))
	_, err = s.PutProducer(ctx, PutProducerRequest{Producer: got, LatestRevision: 0})
	re.ErrorIs(err, ErrProducerConflict)
}
