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
	"bytes"
	"strings"
	"testing"

	"github.com/CeresDB/ceresids/server/etcdutil"
	"github.com/CeresDB/ceresids/server/storage"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestIderOperations(t *testing.T) {
	re := require.New(t)
	etcd, _, closeSrv := etcdutil.PrepareEtcdServerAndClient(t)
	defer closeSrv()

	cfg := etcd.Config()
	viper.Set(RootEtcdEndpoints, cfg.ListenClientUrls[0].String())
	viper.Set(RootPath, "/ctl-test")

	var out bytes.Buffer
	re.NoError(IderCreate(&out, CreateIderArgs{
		IDCode:     "order",
		IDName:     "order id",
		PeriodType: "DAY",
		Factor:     2,
		MaxID:      1000,
		MaxAmount:  100,
	}))
	re.Contains(out.String(), "ider order created")

	err := IderCreate(&out, CreateIderArgs{IDCode: "user", PeriodType: "WEEK", Factor: 1})
	re.Error(err)

	out.Reset()
	re.NoError(IdersList(&out))
	re.Contains(out.String(), "order id")
	re.Contains(out.String(), "DAY")

	out.Reset()
	re.NoError(Produce(&out, "order", 3))
	re.Contains(out.String(), "000,")

	out.Reset()
	re.NoError(ProducersList(&out, "order"))
	re.Contains(strings.ToUpper(out.String()), "CURRENTID")

	err = Produce(&out, "order", 101)
	re.Error(err)

	// Amounts too large to print are rejected before any id is issued.
	out.Reset()
	re.NoError(ProducersList(&out, "order"))
	before := out.String()
	err = Produce(&out, "order", 1<<60)
	re.ErrorIs(err, ErrAmountTooLarge)
	err = Produce(&out, "order", MaxPrintedAmount+1)
	re.ErrorIs(err, ErrAmountTooLarge)
	out.Reset()
	re.NoError(ProducersList(&out, "order"))
	re.Equal(before, out.String())

	out.Reset()
	re.NoError(IderDelete(&out, "order"))
	re.Contains(out.String(), "ider order deleted")

	err = IderGet(&out, "order")
	re.ErrorIs(err, storage.ErrIderNotFound)
}
