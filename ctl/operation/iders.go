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

	"github.com/CeresDB/ceresids/server/period"
	"github.com/CeresDB/ceresids/server/producer"
	"github.com/CeresDB/ceresids/server/storage"
	"github.com/jedib0t/go-pretty/v6/table"
)

type CreateIderArgs struct {
	IDCode     string
	IDName     string
	PeriodType string
	Factor     int64
	MaxID      int64
	MaxAmount  int64
}

func IderCreate(w io.Writer, args CreateIderArgs) error {
	periodType, err := period.ParseType(args.PeriodType)
	if err != nil {
		return err
	}
	ider := storage.Ider{
		IDCode:     args.IDCode,
		IDName:     args.IDName,
		PeriodType: periodType,
		Factor:     args.Factor,
		MaxID:      args.MaxID,
		MaxAmount:  args.MaxAmount,
		CreatedAt:  0,
	}

	return withManager(func(ctx context.Context, m *producer.Manager) error {
		if err := m.CreateIder(ctx, ider); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "ider %s created\n", ider.IDCode)
		return err
	})
}

func IdersList(w io.Writer) error {
	return withManager(func(ctx context.Context, m *producer.Manager) error {
		iders, err := m.ListIders(ctx)
		if err != nil {
			return err
		}
		return renderIders(w, iders)
	})
}

func IderGet(w io.Writer, idCode string) error {
	return withManager(func(ctx context.Context, m *producer.Manager) error {
		ider, err := m.GetIder(ctx, idCode)
		if err != nil {
			return err
		}
		return renderIders(w, []storage.Ider{ider})
	})
}

func IderDelete(w io.Writer, idCode string) error {
	return withManager(func(ctx context.Context, m *producer.Manager) error {
		if err := m.DeleteIder(ctx, idCode); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "ider %s deleted\n", idCode)
		return err
	})
}

func renderIders(w io.Writer, iders []storage.Ider) error {
	t := tableWriter(idersListHeader)
	for _, ider := range iders {
		row := table.Row{ider.IDCode, ider.IDName, ider.PeriodType, ider.Factor, ider.MaxID, ider.MaxAmount, FormatTimeMilli(int64(ider.CreatedAt))}
		t.AppendRow(row)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
