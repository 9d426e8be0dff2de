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
	"fmt"
	"strings"

	"github.com/CeresDB/ceresids/server/period"
)

// MaxFactor bounds the number of producers of an ider, all of which are created in a single etcd txn.
const MaxFactor = 100

// Ider is the rule set of a named id space. It is never modified by allocation.
type Ider struct {
	IDCode string
	IDName string
	// PeriodType decides how the id space is carved into periods.
	PeriodType period.Type
	// Factor is the width of one logical id in allocation units, and also the number of producers.
	Factor int64
	// MaxID caps the allocation units in one period. Zero means the id space is unbounded.
	MaxID int64
	// MaxAmount caps the ids issued by a single request. Zero means no cap.
	MaxAmount int64
	CreatedAt uint64
}

func (i Ider) HasMaxID() bool {
	return i.MaxID != 0
}

// Validate checks the ider is usable for allocation.
func (i Ider) Validate() error {
	if err := validateIDCode(i.IDCode); err != nil {
		return err
	}
	if err := i.PeriodType.Validate(); err != nil {
		return ErrInvalidIder.WithCausef("idCode:%s, err:%v", i.IDCode, err)
	}
	if i.Factor <= 0 || i.Factor > MaxFactor {
		return ErrInvalidIder.WithCausef("factor must be in (0, %d], idCode:%s, factor:%d", MaxFactor, i.IDCode, i.Factor)
	}
	if i.MaxID < 0 {
		return ErrInvalidIder.WithCausef("maxId must be positive when set, idCode:%s, maxId:%d", i.IDCode, i.MaxID)
	}
	if i.HasMaxID() {
		if i.MaxID%i.Factor != 0 {
			return ErrInvalidIder.WithCausef("maxId must be a multiple of factor, idCode:%s, maxId:%d, factor:%d", i.IDCode, i.MaxID, i.Factor)
		}
		if i.PeriodType == period.None {
			return ErrInvalidIder.WithCausef("maxId requires a period type other than %s, idCode:%s", period.None, i.IDCode)
		}
	}
	if i.MaxAmount < 0 {
		return ErrInvalidIder.WithCausef("maxAmount must not be negative, idCode:%s, maxAmount:%d", i.IDCode, i.MaxAmount)
	}
	return nil
}

func validateIDCode(idCode string) error {
	if idCode == "" || strings.ContainsAny(idCode, "/ ") {
		return ErrInvalidIder.WithCausef("idCode must be non-empty without '/' or spaces, idCode:%q", idCode)
	}
	return nil
}

// Producer is the allocation cursor of one lane of an ider.
type Producer struct {
	IDCode string
	// Index is the lane of the producer, in [0, Factor).
	Index         int64
	CurrentPeriod period.Period
	// CurrentID is the next unallocated offset within CurrentPeriod, in allocation units.
	CurrentID int64
	// Revision is the etcd mod revision the producer was loaded at, zero if it was never stored.
	Revision int64
}

func (p Producer) String() string {
	return fmt.Sprintf("Producer{idCode:%s, index:%d, period:%s, currentId:%d}", p.IDCode, p.Index, p.CurrentPeriod, p.CurrentID)
}

type CreateIderRequest struct {
	Ider Ider
	// InitialPeriod is the period every producer of the ider starts in.
	InitialPeriod period.Period
}

type PutProducerRequest struct {
	Producer Producer
	// LatestRevision is the revision the producer was loaded at. The put fails if it changed since.
	LatestRevision int64
}
