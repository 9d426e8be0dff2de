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

import "github.com/CeresDB/ceresids/pkg/coderr"

var (
	ErrInvalidIder       = coderr.NewCodeError(coderr.InvalidParams, "invalid ider")
	ErrInvalidProducer   = coderr.NewCodeError(coderr.InvalidParams, "invalid producer")
	ErrIderExists        = coderr.NewCodeError(coderr.IderAlreadyExists, "ider already exists")
	ErrIderNotFound      = coderr.NewCodeError(coderr.NotFound, "ider not found")
	ErrProducerNotFound  = coderr.NewCodeError(coderr.NotFound, "producer not found")
	ErrProducerConflict  = coderr.NewCodeError(coderr.Conflict, "producer revision conflict")
	ErrDecodeRecord      = coderr.NewCodeError(coderr.Internal, "decode record")
	ErrMetaCreateIder    = coderr.NewCodeError(coderr.Internal, "meta storage create ider")
	ErrMetaDeleteIder    = coderr.NewCodeError(coderr.Internal, "meta storage delete ider")
	ErrMetaPutProducer   = coderr.NewCodeError(coderr.Internal, "meta storage put producer")
	ErrMetaListIders     = coderr.NewCodeError(coderr.Internal, "meta storage list iders")
	ErrMetaListProducers = coderr.NewCodeError(coderr.Internal, "meta storage list producers")
)
