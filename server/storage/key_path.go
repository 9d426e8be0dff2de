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
	"path"
)

const (
	version     = "v1"
	iderDir     = "ider"
	producerDir = "producer"
)

// makeIderKey returns the ider key path with the given id code.
// example:
// ider ORDER_ID: /ceresids/v1/ider/ORDER_ID -> storage.Ider
func makeIderKey(rootPath string, idCode string) string {
	return path.Join(rootPath, version, iderDir, idCode)
}

func makeIderPrefix(rootPath string) string {
	return path.Join(rootPath, version, iderDir) + "/"
}

// makeProducerKey returns the producer key path with the given id code and lane index.
// example:
// ider ORDER_ID: /ceresids/v1/producer/ORDER_ID/00000000000000000000 -> storage.Producer
//                /ceresids/v1/producer/ORDER_ID/00000000000000000001 -> storage.Producer
func makeProducerKey(rootPath string, idCode string, index int64) string {
	return path.Join(rootPath, version, producerDir, idCode, fmt.Sprintf("%020d", index))
}

func makeProducerPrefix(rootPath string, idCode string) string {
	return path.Join(rootPath, version, producerDir, idCode) + "/"
}
