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
	"testing"
	"time"

	"github.com/CeresDB/ceresids/server/period"
	"github.com/CeresDB/ceresids/server/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type mockProducerLister struct {
	lock      sync.Mutex
	iders     []storage.Ider
	producers map[string][]storage.Producer
}

func newMockProducerLister() *mockProducerLister {
	return &mockProducerLister{
		lock:      sync.Mutex{},
		iders:     make([]storage.Ider, 0),
		producers: make(map[string][]storage.Producer),
	}
}

func (l *mockProducerLister) put(ider storage.Ider, producers ...storage.Producer) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if _, ok := l.producers[ider.IDCode]; !ok {
		l.iders = append(l.iders, ider)
	}
	l.producers[ider.IDCode] = producers
}

func (l *mockProducerLister) remove(idCode string) {
	l.lock.Lock()
	defer l.lock.Unlock()

	iders := make([]storage.Ider, 0, len(l.iders))
	for _, ider := range l.iders {
		if ider.IDCode != idCode {
			iders = append(iders, ider)
		}
	}
	l.iders = iders
	delete(l.producers, idCode)
}

func (l *mockProducerLister) ListIders(_ context.Context) ([]storage.Ider, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]storage.Ider{}, l.iders...), nil
}

func (l *mockProducerLister) ListProducers(_ context.Context, idCode string) ([]storage.Producer, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]storage.Producer{}, l.producers[idCode]...), nil
}

func TestStartStopInspector(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	re := require.New(t)

	inspector := NewInspector(zap.NewNop(), newMockProducerLister(), time.Millisecond)
	ctx := context.Background()
	re.ErrorIs(inspector.Stop(ctx), ErrStopNotStart)

	re.NoError(inspector.Start(ctx))
	re.ErrorIs(inspector.Start(ctx), ErrStartAgain)

	time.Sleep(10 * time.Millisecond)
	re.NoError(inspector.Stop(ctx))
}

func TestInspect(t *testing.T) {
	re := require.New(t)
	ctx := context.Background()
	lister := newMockProducerLister()
	inspector := NewInspector(zap.NewNop(), lister, time.Hour)

	p0 := mustPeriod(t, period.Day, time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC))
	p1, err := period.Grow(period.Day, p0, 1)
	re.NoError(err)

	order := storage.Ider{IDCode: "order", PeriodType: period.Day, Factor: 2, MaxID: 100}
	user := storage.Ider{IDCode: "user", PeriodType: period.None, Factor: 1}
	lister.put(order,
		storage.Producer{IDCode: "order", Index: 0, CurrentPeriod: p1, CurrentID: 4},
		storage.Producer{IDCode: "order", Index: 1, CurrentPeriod: p0, CurrentID: 9})
	lister.put(user, storage.Producer{IDCode: "user", Index: 0, CurrentPeriod: period.Zero, CurrentID: 100})

	regressions, err := inspector.Inspect(ctx)
	re.NoError(err)
	re.Empty(regressions)

	// Moving forward is fine.
	lister.put(order,
		storage.Producer{IDCode: "order", Index: 0, CurrentPeriod: p1, CurrentID: 6},
		storage.Producer{IDCode: "order", Index: 1, CurrentPeriod: p1, CurrentID: 1})
	regressions, err = inspector.Inspect(ctx)
	re.NoError(err)
	re.Empty(regressions)

	lister.put(user, storage.Producer{IDCode: "user", Index: 0, CurrentPeriod: period.Zero, CurrentID: 50})
	regressions, err = inspector.Inspect(ctx)
	re.NoError(err)
	re.Len(regressions, 1)
	re.Equal(int64(100), regressions[0].Prev.CurrentID)
	re.Equal(int64(50), regressions[0].Current.CurrentID)

	// A recreated ider starts over without being reported.
	lister.remove("user")
	regressions, err = inspector.Inspect(ctx)
	re.NoError(err)
	re.Empty(regressions)
	lister.put(user, storage.Producer{IDCode: "user", Index: 0, CurrentPeriod: period.Zero, CurrentID: 0})
	regressions, err = inspector.Inspect(ctx)
	re.NoError(err)
	re.Empty(regressions)
}

func TestInspectRecreatedIder(t *testing.T) {
	re := require.New(t)
	ctx := context.Background()
	lister := newMockProducerLister()
	inspector := NewInspector(zap.NewNop(), lister, time.Hour)

	user := storage.Ider{IDCode: "user", PeriodType: period.None, Factor: 1, CreatedAt: 1}
	lister.put(user, storage.Producer{IDCode: "user", Index: 0, CurrentPeriod: period.Zero, CurrentID: 100})
	regressions, err := inspector.Inspect(ctx)
	re.NoError(err)
	re.Empty(regressions)

	// Deleted and created again between two inspections.
	lister.remove("user")
	user.CreatedAt = 2
	lister.put(user, storage.Producer{IDCode: "user", Index: 0, CurrentPeriod: period.Zero, CurrentID: 3})
	regressions, err = inspector.Inspect(ctx)
	re.NoError(err)
	re.Empty(regressions)

	// The recreated ider is followed from its own snapshot.
	lister.put(user, storage.Producer{IDCode: "user", Index: 0, CurrentPeriod: period.Zero, CurrentID: 1})
	regressions, err = inspector.Inspect(ctx)
	re.NoError(err)
	re.Len(regressions, 1)
	re.Equal(int64(3), regressions[0].Prev.CurrentID)
}
