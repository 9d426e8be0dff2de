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

package producer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CeresDB/ceresids/pkg/coderr"
	"github.com/CeresDB/ceresids/server/limiter"
	"github.com/CeresDB/ceresids/server/period"
	"github.com/CeresDB/ceresids/server/storage"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultMaxRetry = 3

type ManagerOptions struct {
	// MaxRetry is the max rounds of a produce when the producer is modified concurrently.
	MaxRetry int
	// Clock decides the current period. time.Now is used if it is nil.
	Clock func() time.Time
}

// Manager issues ids of the stored iders.
//
// Producers of one ider are served in round robin. A producer is advanced by one goroutine at a
// time in this process, and the etcd revision check rejects the writes racing with other processes.
type Manager struct {
	logger    *zap.Logger
	storage   storage.Storage
	allocator *Allocator
	limiter   *limiter.FlowLimiter
	clock     func() time.Time
	maxRetry  int

	// lanes holds the round robin counter of every ider, keyed by id code.
	lanes cmap.ConcurrentMap[string, uint64]
	// locks holds the mutex of every producer, keyed by id code and index. Entries are never removed.
	locks cmap.ConcurrentMap[string, *sync.Mutex]
}

func NewManager(logger *zap.Logger, storage storage.Storage, allocator *Allocator, flowLimiter *limiter.FlowLimiter, opts ManagerOptions) *Manager {
	if opts.MaxRetry <= 0 {
		opts.MaxRetry = defaultMaxRetry
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Manager{
		logger:    logger,
		storage:   storage,
		allocator: allocator,
		limiter:   flowLimiter,
		clock:     opts.Clock,
		maxRetry:  opts.MaxRetry,
		lanes:     cmap.New[uint64](),
		locks:     cmap.New[*sync.Mutex](),
	}
}

// CreateIder stores the ider with its producers starting at the current period.
func (m *Manager) CreateIder(ctx context.Context, ider storage.Ider) error {
	if err := ider.Validate(); err != nil {
		return err
	}

	now := m.clock()
	initial, err := period.Of(ider.PeriodType, now)
	if err != nil {
		return errors.WithMessagef(err, "initial period of ider, idCode:%s", ider.IDCode)
	}
	if ider.CreatedAt == 0 {
		ider.CreatedAt = uint64(now.UnixMilli())
	}

	return m.storage.CreateIder(ctx, storage.CreateIderRequest{Ider: ider, InitialPeriod: initial})
}

func (m *Manager) GetIder(ctx context.Context, idCode string) (storage.Ider, error) {
	return m.storage.GetIder(ctx, idCode)
}

func (m *Manager) ListIders(ctx context.Context) ([]storage.Ider, error) {
	return m.storage.ListIders(ctx)
}

func (m *Manager) DeleteIder(ctx context.Context, idCode string) error {
	if err := m.storage.DeleteIder(ctx, idCode); err != nil {
		return err
	}

	// The mutexes of the producers are kept: a produce may still hold one, and an ider created again
	// under the same id code must be served under the same mutexes.
	m.lanes.Remove(idCode)
	return nil
}

// Producers returns the producers of the ider sorted from the most behind to the most ahead.
func (m *Manager) Producers(ctx context.Context, idCode string) ([]storage.Producer, error) {
	producers, err := m.storage.ListProducers(ctx, idCode)
	if err != nil {
		return nil, err
	}
	if err := SortProducers(producers); err != nil {
		return nil, err
	}
	return producers, nil
}

// Produce issues amount ids of the ider.
func (m *Manager) Produce(ctx context.Context, idCode string, amount int64) ([]IdsInfo, error) {
	if !m.limiter.Allow() {
		return nil, ErrFlowLimited.WithCausef("idCode:%s", idCode)
	}

	ider, err := m.storage.GetIder(ctx, idCode)
	if err != nil {
		return nil, err
	}
	if ider.MaxAmount > 0 && amount > ider.MaxAmount {
		return nil, ErrAmountExceeded.WithCausef("idCode:%s, amount:%d, maxAmount:%d", idCode, amount, ider.MaxAmount)
	}
	if amount == 0 {
		return []IdsInfo{}, nil
	}

	index := m.nextLane(ider)
	lock := m.lockOf(idCode, index)
	lock.Lock()
	defer lock.Unlock()

	var prev *storage.Producer
	for i := 0; i < m.maxRetry; i++ {
		infos, loaded, err := m.tryProduce(ctx, ider, index, amount, prev)
		if err == nil {
			return infos, nil
		}

		code, ok := coderr.GetCauseCode(err)
		if !ok || !code.Retryable() || loaded == nil {
			return nil, err
		}
		m.logger.Warn("producer modified concurrently, retry produce", zap.String("idCode", idCode),
			zap.Int64("index", index), zap.Int("round", i), zap.Error(err))
		prev = loaded
	}

	return nil, storage.ErrProducerConflict.WithCausef("retry exhausted, idCode:%s, index:%d, maxRetry:%d", idCode, index, m.maxRetry)
}

// tryProduce runs one round of load, allocate and save. The loaded producer is returned for the
// next round to check that the producer never moves backwards.
func (m *Manager) tryProduce(ctx context.Context, ider storage.Ider, index, amount int64, prev *storage.Producer) ([]IdsInfo, *storage.Producer, error) {
	loaded, err := m.storage.GetProducer(ctx, ider.IDCode, index)
	if err != nil {
		return nil, nil, err
	}

	if prev != nil {
		c, err := Compare(&loaded, prev)
		if err != nil {
			return nil, nil, err
		}
		if c < 0 {
			m.logger.Error("producer moved backwards", zap.Stringer("prev", prev), zap.Stringer("loaded", loaded))
			return nil, nil, ErrProducerRegressed.WithCausef("prev:%s, loaded:%s", prev, loaded)
		}
	}

	next := loaded
	if err := m.catchUp(ider, &next); err != nil {
		return nil, nil, err
	}
	infos, err := m.allocator.Produce(ider, &next, amount)
	if err != nil {
		return nil, nil, err
	}

	revision, err := m.storage.PutProducer(ctx, storage.PutProducerRequest{Producer: next, LatestRevision: loaded.Revision})
	if err != nil {
		return nil, &loaded, err
	}

	m.logger.Debug("ids produced", zap.String("idCode", ider.IDCode), zap.Int64("index", index),
		zap.Int64("amount", amount), zap.Int("batches", len(infos)), zap.Int64("revision", revision))
	return infos, &loaded, nil
}

// catchUp moves a producer left in a past period to the start of the current one.
func (m *Manager) catchUp(ider storage.Ider, p *storage.Producer) error {
	if ider.PeriodType == period.None {
		return nil
	}

	current, err := period.Of(ider.PeriodType, m.clock())
	if err != nil {
		return errors.WithMessagef(err, "current period of ider, idCode:%s", ider.IDCode)
	}
	if current.After(p.CurrentPeriod) {
		m.logger.Info("producer catches up with the current period", zap.Stringer("producer", p),
			zap.Stringer("period", current))
		p.CurrentPeriod = current
		p.CurrentID = p.Index
	}
	return nil
}

func (m *Manager) nextLane(ider storage.Ider) int64 {
	counter := m.lanes.Upsert(ider.IDCode, 0, func(exist bool, valueInMap uint64, newValue uint64) uint64 {
		if exist {
			return valueInMap + 1
		}
		return newValue
	})
	return int64(counter % uint64(ider.Factor))
}

func (m *Manager) lockOf(idCode string, index int64) *sync.Mutex {
	return m.locks.Upsert(lockKey(idCode, index), nil, func(exist bool, valueInMap *sync.Mutex, _ *sync.Mutex) *sync.Mutex {
		if exist {
			return valueInMap
		}
		return &sync.Mutex{}
	})
}

func lockKey(idCode string, index int64) string {
	return fmt.Sprintf("%s/%d", idCode, index)
}
