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

// Package period defines how id spaces are carved into epochs.
// A Period is the start instant of an epoch and Type decides how long one epoch lasts.
package period

import (
	"fmt"
	"math"
	"time"
)

type Type string

const (
	// None means the id space has a single infinite period.
	None  Type = "NONE"
	Hour  Type = "HOUR"
	Day   Type = "DAY"
	Month Type = "MONTH"
	Year  Type = "YEAR"
)

var layouts = map[Type]string{
	None:  "",
	Hour:  "2006010215",
	Day:   "20060102",
	Month: "200601",
	Year:  "2006",
}

// ParseType converts the name of a period type, e.g. "DAY", into Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t Type) Validate() error {
	if _, ok := layouts[t]; !ok {
		return ErrUnknownType.WithCausef("type:%q", string(t))
	}
	return nil
}

// Layout returns the time layout used to format periods of the type.
func (t Type) Layout() string {
	return layouts[t]
}

func (t Type) String() string {
	return string(t)
}

// Period is an epoch of an id space, identified by the instant it starts at.
// The zero Period is the unix epoch, which is also the only period of None.
type Period struct {
	start time.Time
}

// Zero is the single period of the None type.
var Zero = Period{start: time.UnixMilli(0)}

// FromTime builds a period from the instant it starts at. The instant is expected to be
// already aligned, use Of to truncate an arbitrary instant.
func FromTime(start time.Time) Period {
	return Period{start: start}
}

// FromMillis is the inverse of Period.Time.
func FromMillis(ms int64) Period {
	return Period{start: time.UnixMilli(ms)}
}

// Of returns the period of type t containing the instant.
func Of(t Type, instant time.Time) (Period, error) {
	var start time.Time
	switch t {
	case None:
		return Zero, nil
	case Hour:
		start = time.Date(instant.Year(), instant.Month(), instant.Day(), instant.Hour(), 0, 0, 0, instant.Location())
	case Day:
		start = time.Date(instant.Year(), instant.Month(), instant.Day(), 0, 0, 0, 0, instant.Location())
	case Month:
		start = time.Date(instant.Year(), instant.Month(), 1, 0, 0, 0, 0, instant.Location())
	case Year:
		start = time.Date(instant.Year(), time.January, 1, 0, 0, 0, 0, instant.Location())
	default:
		return Period{}, ErrUnknownType.WithCausef("type:%q", string(t))
	}
	return Period{start: start}, nil
}

// Time is the numeric projection of the period which periods are ordered by.
func (p Period) Time() int64 {
	return p.start.UnixMilli()
}

// Start returns the instant the period starts at.
func (p Period) Start() time.Time {
	return p.start
}

func (p Period) Before(o Period) bool {
	return p.Time() < o.Time()
}

func (p Period) After(o Period) bool {
	return p.Time() > o.Time()
}

func (p Period) Equal(o Period) bool {
	return p.Time() == o.Time()
}

func (p Period) String() string {
	return p.start.Format(time.RFC3339)
}

// Grow advances the period p of type t by n whole periods.
func Grow(t Type, p Period, n int64) (Period, error) {
	if n < 0 {
		return Period{}, ErrInvalidIncrement.WithCausef("increment:%d", n)
	}
	if n > math.MaxInt32 {
		return Period{}, ErrPeriodOutOfBounds.WithCausef("increment:%d", n)
	}

	switch t {
	case None:
		if n > 0 {
			return Period{}, ErrPeriodExhausted.WithCausef("type:%s, increment:%d", t, n)
		}
		return p, nil
	case Hour:
		return Period{start: p.start.Add(time.Duration(n) * time.Hour)}, nil
	case Day:
		return Period{start: p.start.AddDate(0, 0, int(n))}, nil
	case Month:
		return Period{start: p.start.AddDate(0, int(n), 0)}, nil
	case Year:
		return Period{start: p.start.AddDate(int(n), 0, 0)}, nil
	default:
		return Period{}, ErrUnknownType.WithCausef("type:%q", string(t))
	}
}

// Format renders the period the way it prefixes formatted ids, e.g. "20171127" for a Day period.
// Periods of None render as the empty string.
func Format(t Type, p Period) string {
	return p.start.Format(layouts[t])
}

// Parse is the inverse of Format. The period is interpreted in loc.
func Parse(t Type, s string, loc *time.Location) (Period, error) {
	if err := t.Validate(); err != nil {
		return Period{}, err
	}
	if t == None {
		if s != "" {
			return Period{}, ErrParsePeriod.WithCausef("type:%s, value:%q", t, s)
		}
		return Zero, nil
	}

	start, err := time.ParseInLocation(layouts[t], s, loc)
	if err != nil {
		return Period{}, ErrParsePeriod.WithCause(fmt.Errorf("type:%s, value:%q, err:%v", t, s, err))
	}
	return Period{start: start}, nil
}
