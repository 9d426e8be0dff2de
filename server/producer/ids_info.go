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
	"fmt"
	"strconv"

	"github.com/CeresDB/ceresids/server/period"
	"github.com/CeresDB/ceresids/server/storage"
)

// IdsInfo describes one batch of ids issued in a single period.
// The ids of the batch are StartID, StartID+Factor, ..., StartID+(Amount-1)*Factor.
type IdsInfo struct {
	IDCode     string
	PeriodType period.Type
	Factor     int64
	MaxID      int64

	Period period.Period
	// StartID is the offset of the first id in the period, in allocation units.
	StartID int64
	// Amount is the number of ids in the batch.
	Amount int64
}

func newIdsInfo(ider storage.Ider, p period.Period, startID, amount int64) IdsInfo {
	return IdsInfo{
		IDCode:     ider.IDCode,
		PeriodType: ider.PeriodType,
		Factor:     ider.Factor,
		MaxID:      ider.MaxID,
		Period:     p,
		StartID:    startID,
		Amount:     amount,
	}
}

// IDs expands the batch into the offsets of its ids.
func (i IdsInfo) IDs() []int64 {
	ids := make([]int64, 0, i.Amount)
	for k := int64(0); k < i.Amount; k++ {
		ids = append(ids, i.StartID+k*i.Factor)
	}
	return ids
}

// FormattedIDs renders every id of the batch prefixed with its period, e.g. "2017112700042" for
// an ider of DAY periods and max id 1000. Ids are zero padded to the width of the largest id of a period.
func (i IdsInfo) FormattedIDs() []string {
	prefix := period.Format(i.PeriodType, i.Period)
	width := 0
	if i.MaxID > 0 {
		width = len(strconv.FormatInt(i.MaxID-1, 10))
	}

	ids := i.IDs()
	formatted := make([]string, 0, len(ids))
	for _, id := range ids {
		formatted = append(formatted, fmt.Sprintf("%s%0*d", prefix, width, id))
	}
	return formatted
}

func (i IdsInfo) String() string {
	return fmt.Sprintf("IdsInfo{idCode:%s, period:%s, startId:%d, amount:%d}", i.IDCode, i.Period, i.StartID, i.Amount)
}
