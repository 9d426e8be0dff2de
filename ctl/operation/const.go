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

const (
	RootEtcdEndpoints = "etcd_endpoints"
	RootPath          = "root_path"

	// MaxPrintedAmount is the max ids issued by one produce command.
	MaxPrintedAmount = 10000
)

var (
	idersListHeader     = []string{"IDCode", "Name", "PeriodType", "Factor", "MaxID", "MaxAmount", "CreatedAt"}
	producersListHeader = []string{"Index", "Period", "CurrentID", "Revision"}
	producedIDsHeader   = []string{"Period", "StartID", "Amount", "IDs"}
)
