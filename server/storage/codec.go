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
	"github.com/CeresDB/ceresids/server/period"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the stored records. They are part of the storage format and must never be reused.
const (
	iderFieldIDCode     protowire.Number = 1
	iderFieldIDName     protowire.Number = 2
	iderFieldPeriodType protowire.Number = 3
	iderFieldFactor     protowire.Number = 4
	iderFieldMaxID      protowire.Number = 5
	iderFieldMaxAmount  protowire.Number = 6
	iderFieldCreatedAt  protowire.Number = 7

	producerFieldIDCode        protowire.Number = 1
	producerFieldIndex         protowire.Number = 2
	producerFieldCurrentPeriod protowire.Number = 3
	producerFieldCurrentID     protowire.Number = 4
)

func encodeIder(ider Ider) []byte {
	var b []byte
	b = appendString(b, iderFieldIDCode, ider.IDCode)
	b = appendString(b, iderFieldIDName, ider.IDName)
	b = appendString(b, iderFieldPeriodType, string(ider.PeriodType))
	b = appendInt64(b, iderFieldFactor, ider.Factor)
	b = appendInt64(b, iderFieldMaxID, ider.MaxID)
	b = appendInt64(b, iderFieldMaxAmount, ider.MaxAmount)
	b = protowire.AppendTag(b, iderFieldCreatedAt, protowire.VarintType)
	b = protowire.AppendVarint(b, ider.CreatedAt)
	return b
}

func decodeIder(b []byte) (Ider, error) {
	var ider Ider
	var periodType string
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch num {
		case iderFieldIDCode:
			return consumeString(typ, b, &ider.IDCode)
		case iderFieldIDName:
			return consumeString(typ, b, &ider.IDName)
		case iderFieldPeriodType:
			return consumeString(typ, b, &periodType)
		case iderFieldFactor:
			return consumeInt64(typ, b, &ider.Factor)
		case iderFieldMaxID:
			return consumeInt64(typ, b, &ider.MaxID)
		case iderFieldMaxAmount:
			return consumeInt64(typ, b, &ider.MaxAmount)
		case iderFieldCreatedAt:
			if typ != protowire.VarintType {
				return 0, false
			}
			v, n := protowire.ConsumeVarint(b)
			ider.CreatedAt = v
			return n, true
		}
		return 0, false
	})
	if err != nil {
		return Ider{}, ErrDecodeRecord.WithCausef("ider, err:%v", err)
	}
	ider.PeriodType = period.Type(periodType)
	return ider, nil
}

func encodeProducer(p Producer) []byte {
	var b []byte
	b = appendString(b, producerFieldIDCode, p.IDCode)
	b = appendInt64(b, producerFieldIndex, p.Index)
	// Periods before the unix epoch are negative, so zigzag keeps them short.
	b = protowire.AppendTag(b, producerFieldCurrentPeriod, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(p.CurrentPeriod.Time()))
	b = appendInt64(b, producerFieldCurrentID, p.CurrentID)
	return b
}

func decodeProducer(b []byte) (Producer, error) {
	var p Producer
	var periodMillis int64
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch num {
		case producerFieldIDCode:
			return consumeString(typ, b, &p.IDCode)
		case producerFieldIndex:
			return consumeInt64(typ, b, &p.Index)
		case producerFieldCurrentPeriod:
			if typ != protowire.VarintType {
				return 0, false
			}
			v, n := protowire.ConsumeVarint(b)
			periodMillis = protowire.DecodeZigZag(v)
			return n, true
		case producerFieldCurrentID:
			return consumeInt64(typ, b, &p.CurrentID)
		}
		return 0, false
	})
	if err != nil {
		return Producer{}, ErrDecodeRecord.WithCausef("producer, err:%v", err)
	}
	p.CurrentPeriod = period.FromMillis(periodMillis)
	return p, nil
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// consumeFields walks the fields of an encoded record. visit consumes the value of a known field and
// reports the consumed length, fields it does not know are skipped.
func consumeFields(b []byte, visit func(num protowire.Number, typ protowire.Type, b []byte) (int, bool)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, known := visit(num, typ, b)
		if !known {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}

func consumeString(typ protowire.Type, b []byte, dst *string) (int, bool) {
	if typ != protowire.BytesType {
		return 0, false
	}
	v, n := protowire.ConsumeString(b)
	*dst = v
	return n, true
}

func consumeInt64(typ protowire.Type, b []byte, dst *int64) (int, bool) {
	if typ != protowire.VarintType {
		return 0, false
	}
	v, n := protowire.ConsumeVarint(b)
	*dst = int64(v)
	return n, true
}
