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

import "github.com/CeresDB/ceresids/pkg/coderr"

var (
	ErrInvalidRequest    = coderr.NewCodeError(coderr.InvalidParams, "invalid request")
	ErrProducerMismatch  = coderr.NewCodeError(coderr.InvalidParams, "producer does not belong to the ider")
	ErrIncomparable      = coderr.NewCodeError(coderr.Incomparable, "producers of different iders are incomparable")
	ErrAmountExceeded    = coderr.NewCodeError(coderr.InvalidParams, "amount exceeds the max amount of the ider")
	ErrFlowLimited       = coderr.NewCodeError(coderr.TooManyRequests, "flow limited")
	ErrProducerRegressed = coderr.NewCodeError(coderr.Internal, "producer moved backwards")
	ErrStartAgain        = coderr.NewCodeError(coderr.Internal, "try to start again")
	ErrStopNotStart      = coderr.NewCodeError(coderr.Internal, "try to stop a not-started inspector")
)
