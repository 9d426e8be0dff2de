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
	"testing"
	"time"

	"github.com/CeresDB/ceresids/server/period"
	"github.com/CeresDB/ceresids/server/storage"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	re := require.New(t)
	p0 := mustPeriod(t, period.Month, time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC))
	p1, err := period.Grow(period.Month, p0, 1)
	re.NoError(err)

	producers := []storage.Producer{
		{IDCode: "order", CurrentPeriod: p0, CurrentID: 10},
		{IDCode: "order", CurrentPeriod: p0, CurrentID: 20},
		{IDCode: "order", CurrentPeriod: p1, CurrentID: 0},
	}

	c, err := Compare(&producers[0], &producers[1])
	re.NoError(err)
	re.Negative(c)
	c, err = Compare(&producers[1], &producers[2])
	re.NoError(err)
	re.Negative(c)

	// Antisymmetric and transitive over all the pairs.
	for i := range producers {
		for j := range producers {
			cij, err := Compare(&producers[i], &producers[j])
			re.NoError(err)
			cji, err := Compare(&producers[j], &producers[i])
			re.NoError(err)
			re.Equal(-cij, cji)
			if i < j {
				re.Negative(cij)
			} else if i == j {
				re.Zero(cij)
			}
		}
	}

	// Periods are ordered by the instant, not by the location they are represented in.
	same := storage.Producer{IDCode: "order", CurrentPeriod: period.FromTime(p0.Start().In(time.FixedZone("UTC+8", 8*3600))), CurrentID: 10}
	c, err = Compare(&producers[0], &same)
	re.NoError(err)
	re.Zero(c)
}

func TestCompareMismatchedIders(t *testing.T) {
	re := require.New(t)
	p1 := storage.Producer{IDCode: "order", CurrentPeriod: period.Zero, CurrentID: 1}
	p2 := storage.Producer{IDCode: "user", CurrentPeriod: period.Zero, CurrentID: 1}

	_, err := Compare(&p1, &p2)
	re.ErrorIs(err, ErrIncomparable)

	err = SortProducers([]storage.Producer{p1, p2})
	re.ErrorIs(err, ErrIncomparable)
}

func TestSortProducers(t *testing.T) {
	re := require.New(t)
	p0 := mustPeriod(t, period.Day, time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC))
	p1, err := period.Grow(period.Day, p0, 1)
	re.NoError(err)

	producers := []storage.Producer{
		{IDCode: "order", Index: 0, CurrentPeriod: p1, CurrentID: 2},
		{IDCode: "order", Index: 1, CurrentPeriod: p0, CurrentID: 7},
		{IDCode: "order", Index: 2, CurrentPeriod: p0, CurrentID: 5},
		{IDCode: "order", Index: 3, CurrentPeriod: p0, CurrentID: 7},
	}
	re.NoError(SortProducers(producers))

	indexes := make([]int64, 0, len(producers))
	for _, p := range producers {
		indexes = append(indexes, p.Index)
	}
	re.Equal([]int64{2, 1, 3, 0}, indexes)

	re.NoError(SortProducers(nil))
}
