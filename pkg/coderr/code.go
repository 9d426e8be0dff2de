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

package coderr

import "net/http"

type Code int

// The codes below HTTPCodeUpperBound share their meaning with the http status codes.
const (
	Invalid         = Code(-1)
	Ok              = Code(0)
	InvalidParams   = Code(http.StatusBadRequest)
	NotFound        = Code(http.StatusNotFound)
	Conflict        = Code(http.StatusConflict)
	TooManyRequests = Code(http.StatusTooManyRequests)
	Internal        = Code(http.StatusInternalServerError)

	HTTPCodeUpperBound = Code(1000)
	PrintHelpUsage     = Code(1001)
	IderAlreadyExists  = Code(1002)
	Incomparable       = Code(1003)
)

// Retryable tells whether an operation failed with the code may succeed when issued again.
func (c Code) Retryable() bool {
	return c == Conflict || c == TooManyRequests
}

func (c Code) ToInt() int {
	return int(c)
}
