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

package operation

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/CeresDB/ceresids/server/period"
	"github.com/CeresDB/ceresids/server/producer"
	"github.com/jedib0t/go-pretty/v6/table"
)

// ProducersList prints the producers of the ider from the most behind to the most ahead.
func ProducersList(w io.Writer, idCode string) error {
	return withManager(func(ctx context.Context, m *producer.Manager) error {
		ider, err := m.GetIder(ctx, idCode)
		if err != nil {
			return err
		}
		producers, err := m.Producers(ctx, idCode)
		if err != nil {
			return err
		}

		t := tableWriter(producersListHeader)
		for _, p := range producers {
			row := table.Row{p.Index, period.Format(ider.PeriodType, p.CurrentPeriod), p.CurrentID, p.Revision}
			t.AppendRow(row)
		}
		_, err = fmt.Fprintln(w, t.Render())
		return err
	})
}

// Produce issues ids of the ider and prints them.
// The amount is bounded by MaxPrintedAmount since every issued id is printed.
func Produce(w io.Writer, idCode string, amount int64) error {
	if amount > MaxPrintedAmount {
		return ErrAmountTooLarge.WithCausef("idCode:%s, amount:%d, max:%d", idCode, amount, MaxPrintedAmount)
	}

	return withManager(func(ctx context.Context, m *producer.Manager) error {
		infos, err := m.Produce(ctx, idCode, amount)
		if err != nil {
			return err
		}

		t := tableWriter(producedIDsHeader)
		for _, info := range infos {
			row := table.Row{period.Format(info.PeriodType, info.Period), info.StartID, info.Amount, strings.Join(info.FormattedIDs(), ",")}
			t.AppendRow(row)
		}
		_, err = fmt.Fprintln(w, t.Render())
		return err
	})
}
