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
	"sync"
	"time"

	"github.com/CeresDB/ceresids/pkg/log"
	"github.com/CeresDB/ceresids/server/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultInspectInterval = time.Second * 30
	inspectConcurrency     = 8
)

// ProducerLister provides the iders and producers for Inspector to check.
type ProducerLister interface {
	ListIders(ctx context.Context) ([]storage.Ider, error)
	ListProducers(ctx context.Context, idCode string) ([]storage.Producer, error)
}

// Regression is a producer found behind the snapshot taken by a previous inspection.
type Regression struct {
	Prev    storage.Producer
	Current storage.Producer
}

// snapshot is a producer observed by an inspection, with the creation time of its ider telling
// a recreated ider apart.
type snapshot struct {
	iderCreatedAt uint64
	producer      storage.Producer
}

// Inspector checks periodically that no producer moves backwards, which means some ids may be issued twice.
type Inspector struct {
	logger   *zap.Logger
	lister   ProducerLister
	interval time.Duration

	lock sync.Mutex
	// snapshots holds the producers observed by the last inspection, keyed by id code and index.
	snapshots map[string]snapshot

	starter sync.Once
	// After `Start` is called, the following fields will be initialized
	stopCtx     context.Context
	bgJobCancel context.CancelFunc
	bgJobDone   chan struct{}
}

func NewInspector(logger *zap.Logger, lister ProducerLister, interval time.Duration) *Inspector {
	if interval <= 0 {
		interval = defaultInspectInterval
	}
	return &Inspector{
		logger:      logger,
		lister:      lister,
		interval:    interval,
		lock:        sync.Mutex{},
		snapshots:   make(map[string]snapshot),
		starter:     sync.Once{},
		stopCtx:     nil,
		bgJobCancel: nil,
		bgJobDone:   nil,
	}
}

func (i *Inspector) Start(ctx context.Context) error {
	started := false
	i.starter.Do(func() {
		log.Info("producer inspector start", zap.Duration("interval", i.interval))
		started = true
		i.stopCtx, i.bgJobCancel = context.WithCancel(ctx)
		i.bgJobDone = make(chan struct{})
		go func() {
			defer close(i.bgJobDone)
			for {
				t := time.NewTimer(i.interval)
				select {
				case <-i.stopCtx.Done():
					i.logger.Info("producer inspector is stopped, cancel the bg inspecting")
					if !t.Stop() {
						<-t.C
					}
					return
				case <-t.C:
				}

				if _, err := i.Inspect(i.stopCtx); err != nil {
					i.logger.Warn("inspect producers failed", zap.Error(err))
				}
			}
		}()
	})

	if !started {
		return ErrStartAgain
	}

	return nil
}

// Stop cancels the bg inspecting and waits for it to exit.
func (i *Inspector) Stop(_ context.Context) error {
	if i.bgJobCancel == nil {
		return ErrStopNotStart
	}

	i.bgJobCancel()
	<-i.bgJobDone
	return nil
}

// Inspect compares all the producers with the snapshots of the last inspection and returns the
// producers found behind. Snapshots of deleted iders are dropped, and producers of a recreated
// ider are not compared with the ones before.
func (i *Inspector) Inspect(ctx context.Context) ([]Regression, error) {
	iders, err := i.lister.ListIders(ctx)
	if err != nil {
		return nil, err
	}

	producersOfIders := make([][]storage.Producer, len(iders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(inspectConcurrency)
	for idx, ider := range iders {
		idx, idCode := idx, ider.IDCode
		g.Go(func() error {
			producers, err := i.lister.ListProducers(gctx, idCode)
			if err != nil {
				return err
			}
			producersOfIders[idx] = producers
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	i.lock.Lock()
	defer i.lock.Unlock()

	// In most cases, there is no regression so don't pre-allocate the memory.
	regressions := make([]Regression, 0)
	snapshots := make(map[string]snapshot, len(i.snapshots))
	for idx, producers := range producersOfIders {
		ider := iders[idx]
		for _, p := range producers {
			if p.CurrentID%ider.Factor != p.Index {
				i.logger.Warn("producer left its lane", zap.Stringer("producer", p), zap.Int64("factor", ider.Factor))
			}

			key := lockKey(p.IDCode, p.Index)
			prev, ok := i.snapshots[key]
			switch {
			case !ok:
			case prev.iderCreatedAt != ider.CreatedAt:
				i.logger.Info("ider recreated, producer starts over", zap.String("idCode", ider.IDCode),
					zap.Uint64("prevCreatedAt", prev.iderCreatedAt), zap.Uint64("createdAt", ider.CreatedAt),
					zap.Stringer("prev", prev.producer), zap.Stringer("current", p))
			default:
				c, err := Compare(&p, &prev.producer)
				if err != nil {
					return nil, err
				}
				if c < 0 {
					i.logger.Error("producer moved backwards", zap.Stringer("prev", prev.producer), zap.Stringer("current", p))
					regressions = append(regressions, Regression{Prev: prev.producer, Current: p})
				}
			}
			snapshots[key] = snapshot{iderCreatedAt: ider.CreatedAt, producer: p}
		}
	}
	i.snapshots = snapshots

	return regressions, nil
}
