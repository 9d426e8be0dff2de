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

package period

import (
	"testing"
	"time"

	"github.com/CeresDB/ceresids/pkg/coderr"
	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	re := require.New(t)
	instant := time.Date(2017, time.November, 27, 0, 34, 56, 789, time.UTC)

	cases := []struct {
		typ    Type
		expect time.Time
	}{
		{None, time.UnixMilli(0)},
		{Hour, time.Date(2017, time.November, 27, 0, 0, 0, 0, time.UTC)},
		{Day, time.Date(2017, time.November, 27, 0, 0, 0, 0, time.UTC)},
		{Month, time.Date(2017, time.November, 1, 0, 0, 0, 0, time.UTC)},
		{Year, time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		p, err := Of(c.typ, instant)
		re.NoError(err)
		re.Equal(c.expect.UnixMilli(), p.Time(), "type:%s", c.typ)
	}

	_, err := Of(Type("WEEK"), instant)
	re.True(coderr.Is(err, coderr.InvalidParams))
}

func TestGrow(t *testing.T) {
	re := require.New(t)
	start := FromTime(time.Date(2017, time.December, 31, 23, 0, 0, 0, time.UTC))

	p, err := Grow(Hour, start, 2)
	re.NoError(err)
	re.Equal(time.Date(2018, time.January, 1, 1, 0, 0, 0, time.UTC).UnixMilli(), p.Time())

	day := FromTime(time.Date(2017, time.December, 31, 0, 0, 0, 0, time.UTC))
	p, err = Grow(Day, day, 1)
	re.NoError(err)
	re.Equal("20180101", Format(Day, p))

	month := FromTime(time.Date(2017, time.November, 1, 0, 0, 0, 0, time.UTC))
	p, err = Grow(Month, month, 3)
	re.NoError(err)
	re.Equal("201802", Format(Month, p))

	year := FromTime(time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC))
	p, err = Grow(Year, year, 10)
	re.NoError(err)
	re.Equal("2027", Format(Year, p))

	// Growing by zero periods is the identity for every type.
	for _, typ := range []Type{None, Hour, Day, Month, Year} {
		p, err = Grow(typ, day, 0)
		re.NoError(err)
		re.True(p.Equal(day))
	}
}

func TestGrowRejected(t *testing.T) {
	re := require.New(t)

	_, err := Grow(Day, Zero, -1)
	re.ErrorIs(err, ErrInvalidIncrement)

	_, err = Grow(None, Zero, 1)
	re.ErrorIs(err, ErrPeriodExhausted)

	_, err = Grow(Type(""), Zero, 1)
	re.ErrorIs(err, ErrUnknownType)
}

func TestGrowIsAdditive(t *testing.T) {
	re := require.New(t)
	start := FromTime(time.Date(2020, time.January, 31, 0, 0, 0, 0, time.UTC))

	for _, typ := range []Type{Hour, Day, Year} {
		for a := int64(0); a < 5; a++ {
			for b := int64(0); b < 5; b++ {
				once, err := Grow(typ, start, a+b)
				re.NoError(err)
				first, err := Grow(typ, start, a)
				re.NoError(err)
				twice, err := Grow(typ, first, b)
				re.NoError(err)
				re.True(once.Equal(twice), "type:%s, a:%d, b:%d", typ, a, b)
			}
		}
	}
}

func TestFormatAndParse(t *testing.T) {
	re := require.New(t)
	instant := time.Date(2017, time.November, 27, 8, 0, 0, 0, time.UTC)

	for _, typ := range []Type{None, Hour, Day, Month, Year} {
		p, err := Of(typ, instant)
		re.NoError(err)

		s := Format(typ, p)
		re.Len(s, len(typ.Layout()))

		parsed, err := Parse(typ, s, time.UTC)
		re.NoError(err)
		re.True(p.Equal(parsed), "type:%s, formatted:%s", typ, s)
	}

	_, err := Parse(Day, "2017-11-27", time.UTC)
	re.ErrorIs(err, ErrParsePeriod)
	_, err = Parse(None, "2017", time.UTC)
	re.ErrorIs(err, ErrParsePeriod)
}

func TestParseType(t *testing.T) {
	re := require.New(t)

	typ, err := ParseType("MONTH")
	re.NoError(err)
	re.Equal(Month, typ)

	_, err = ParseType("month")
	re.ErrorIs(err, ErrUnknownType)
}
