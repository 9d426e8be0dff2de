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
	"cmp"
	"slices"

	"github.com/CeresDB/ceresids/server/storage"
)

// Compare orders two producers of the same ider by their period and then by their current id.
// It returns a negative number when p1 is behind p2, zero when they are at the same position and a
// positive number when p1 is ahead of p2.
func Compare(p1, p2 *storage.Producer) (int, error) {
	if p1.IDCode != p2.IDCode {
		return 0, ErrIncomparable.WithCausef("idCode1:%s, idCode2:%s", p1.IDCode, p2.IDCode)
	}

	if c := cmp.Compare(p1.CurrentPeriod.Time(), p2.CurrentPeriod.Time()); c != 0 {
		return c, nil
	}
	return cmp.Compare(p1.CurrentID, p2.CurrentID), nil
}

// SortProducers sorts the producers of one ider from the most behind to the most ahead.
// Producers at the same position keep their relative order.
func SortProducers(producers []storage.Producer) error {
	for i := 1; i < len(producers); i++ {
		if producers[i].IDCode != producers[0].IDCode {
			return ErrIncomparable.WithCausef("idCode1:%s, idCode2:%s", producers[0].IDCode, producers[i].IDCode)
		}
	}

	slices.SortStableFunc(producers, func(a, b storage.Producer) int {
		// All the producers are checked to be comparable.
		c, _ := Compare(&a, &b)
		return c
	})
	return nil
}
