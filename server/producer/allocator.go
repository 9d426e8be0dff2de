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
	"math"

	"github.com/CeresDB/ceresids/pkg/assert"
	"github.com/CeresDB/ceresids/server/period"
	"github.com/CeresDB/ceresids/server/storage"
	"github.com/pkg/errors"
)

// MaxPeriodsPerGrow bounds the periods a single advance may span, each of which yields one batch.
const MaxPeriodsPerGrow = 1 << 20

// GrowPeriodFunc advances the period p of type t by n whole periods.
type GrowPeriodFunc func(t period.Type, p period.Period, n int64) (period.Period, error)

// Allocator issues ids by advancing producers.
// It holds no state of its own, callers must make sure a producer is never advanced concurrently.
type Allocator struct {
	grow GrowPeriodFunc
}

func NewAllocator(grow GrowPeriodFunc) *Allocator {
	return &Allocator{grow: grow}
}

// DefaultAllocator grows periods by the calendar.
var DefaultAllocator = NewAllocator(period.Grow)

// Produce issues amount ids from the producer, see Grow for the details.
func (a *Allocator) Produce(ider storage.Ider, p *storage.Producer, amount int64) ([]IdsInfo, error) {
	if err := ider.Validate(); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, ErrInvalidRequest.WithCausef("amount must not be negative, idCode:%s, amount:%d", ider.IDCode, amount)
	}
	if amount > math.MaxInt64/ider.Factor {
		return nil, ErrInvalidRequest.WithCausef("amount overflows, idCode:%s, amount:%d, factor:%d", ider.IDCode, amount, ider.Factor)
	}

	return a.Grow(ider, p, amount*ider.Factor)
}

// Grow advances the producer by length allocation units and returns the batches issued on the way,
// ordered by period and start id. A batch never spans two periods.
//
// Nothing is written to the producer unless the whole advance succeeds.
func (a *Allocator) Grow(ider storage.Ider, p *storage.Producer, length int64) ([]IdsInfo, error) {
	if err := ider.Validate(); err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, ErrInvalidRequest.WithCausef("length must not be negative, idCode:%s, length:%d", ider.IDCode, length)
	}
	if p.IDCode != ider.IDCode {
		return nil, ErrProducerMismatch.WithCausef("ider:%s, producer:%s", ider.IDCode, p.IDCode)
	}
	if p.CurrentID < 0 || (ider.HasMaxID() && p.CurrentID >= ider.MaxID) {
		return nil, storage.ErrInvalidProducer.WithCausef("%s, maxId:%d", p, ider.MaxID)
	}
	if p.CurrentID > math.MaxInt64-length {
		return nil, ErrInvalidRequest.WithCausef("length overflows, %s, length:%d", p, length)
	}

	if length == 0 {
		return []IdsInfo{}, nil
	}

	newCurrentID := p.CurrentID + length
	if !ider.HasMaxID() {
		infos := []IdsInfo{newIdsInfo(ider, p.CurrentPeriod, p.CurrentID, ceilDiv(length, ider.Factor))}
		p.CurrentID = newCurrentID
		return infos, nil
	}

	periods := newCurrentID/ider.MaxID - p.CurrentID/ider.MaxID + 1
	if periods > MaxPeriodsPerGrow {
		return nil, ErrInvalidRequest.WithCausef("request spans too many periods, %s, length:%d, periods:%d, max:%d",
			p, length, periods, MaxPeriodsPerGrow)
	}
	// Growing to the final period first rejects the unreachable periods before any batch is built.
	newPeriod, err := a.grow(ider.PeriodType, p.CurrentPeriod, newCurrentID/ider.MaxID)
	if err != nil {
		return nil, errors.WithMessagef(err, "grow period of producer, %s, newCurrentId:%d", p, newCurrentID)
	}

	infos := make([]IdsInfo, 0, periods)
	anchor := p.CurrentID
	for anchor < newCurrentID {
		boundary := anchor/ider.MaxID*ider.MaxID + ider.MaxID
		amount := ceilDiv(min(boundary, newCurrentID)-anchor, ider.Factor)
		batchPeriod, err := a.grow(ider.PeriodType, p.CurrentPeriod, anchor/ider.MaxID)
		if err != nil {
			return nil, errors.WithMessagef(err, "grow period of batch, %s, anchor:%d", p, anchor)
		}
		infos = append(infos, newIdsInfo(ider, batchPeriod, anchor%ider.MaxID, amount))
		anchor += amount * ider.Factor
	}
	// The lane of the producer is kept across periods, so the anchor lands exactly on the new cursor
	// unless length is not a multiple of the factor.
	assert.Assertf(anchor >= newCurrentID && anchor-newCurrentID < ider.Factor,
		"anchor out of range, anchor:%d, newCurrentId:%d, factor:%d", anchor, newCurrentID, ider.Factor)

	p.CurrentPeriod = newPeriod
	p.CurrentID = newCurrentID % ider.MaxID
	return infos, nil
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}
