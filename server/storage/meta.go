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

import "context"

// MetaStorage defines the storage operations on the iders and their producers.
type MetaStorage interface {
	// CreateIder stores the ider together with all of its producers, or nothing if the ider exists.
	CreateIder(ctx context.Context, req CreateIderRequest) error
	GetIder(ctx context.Context, idCode string) (Ider, error)
	ListIders(ctx context.Context) ([]Ider, error)
	// DeleteIder removes the ider and all of its producers.
	DeleteIder(ctx context.Context, idCode string) error

	GetProducer(ctx context.Context, idCode string, index int64) (Producer, error)
	ListProducers(ctx context.Context, idCode string) ([]Producer, error)
	// PutProducer stores the producer if it is unchanged since req.LatestRevision, and returns the new revision.
	PutProducer(ctx context.Context, req PutProducerRequest) (int64, error)
}
