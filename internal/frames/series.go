// Package frames is the per-tick accumulator a decode pass writes into:
// dense carry-forward columns per entity field plus sparse event lists.
package frames

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// Series is one per-tick column. Storage is indexed by absolute tick and
// pre-sized to the replay's frame count; ticks before Start are undefined.
// Extend carries the last value forward unless the series is an event
// series, whose values reset every tick.
type Series[T any] struct {
	start int
	n     int
	event bool
	vals  []T
	set   []bool
}

func NewSeries[T any](capacity, start int) *Series[T] {
	if capacity < start+1 {
		capacity = start + 1
	}
	return &Series[T]{
		start: start,
		n:     start,
		vals:  make([]T, capacity),
		set:   make([]bool, capacity),
	}
}

// NewEventSeries returns a series that does not carry values forward.
func NewEventSeries[T any](capacity, start int) *Series[T] {
	s := NewSeries[T](capacity, start)
	s.event = true
	return s
}

func (s *Series[T]) Start() int { return s.start }

// Len is the logical length: one past the last tick the series covers.
func (s *Series[T]) Len() int { return s.n }

func (s *Series[T]) reserve(tick int) {
	for tick >= len(s.vals) {
		var zero T
		s.vals = append(s.vals, zero)
		s.set = append(s.set, false)
	}
}

// Extend grows the series to cover tick.
func (s *Series[T]) Extend(tick int) {
	for s.n <= tick {
		s.reserve(s.n)
		if !s.event && s.n > s.start {
			s.vals[s.n] = s.vals[s.n-1]
			s.set[s.n] = s.set[s.n-1]
		} else {
			var zero T
			s.vals[s.n] = zero
			s.set[s.n] = false
		}
		s.n++
	}
}

func (s *Series[T]) Set(tick int, v T) {
	if tick < s.start {
		return
	}
	s.Extend(tick)
	s.vals[tick] = v
	s.set[tick] = true
}

func (s *Series[T]) Clear(tick int) {
	if tick < s.start || tick >= s.n {
		return
	}
	var zero T
	s.vals[tick] = zero
	s.set[tick] = false
}

func (s *Series[T]) Get(tick int) (T, bool) {
	var zero T
	if s == nil || tick < s.start || tick >= s.n || !s.set[tick] {
		return zero, false
	}
	return s.vals[tick], true
}

func (s *Series[T]) Last() (T, bool) {
	return s.Get(s.n - 1)
}

// LastBefore scans back from tick-1 for the most recent defined value.
func (s *Series[T]) LastBefore(tick int) (T, bool) {
	for i := tick - 1; i >= s.start; i-- {
		if v, ok := s.Get(i); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

type seriesJSON[T any] struct {
	Start  int  `json:"start"`
	Event  bool `json:"event,omitempty"`
	Values []*T `json:"values"`
}

// MarshalJSON writes the defined range with null for undefined ticks.
func (s *Series[T]) MarshalJSON() ([]byte, error) {
	out := seriesJSON[T]{Start: s.start, Event: s.event, Values: make([]*T, 0, s.n-s.start)}
	for i := s.start; i < s.n; i++ {
		if s.set[i] {
			out.Values = append(out.Values, &s.vals[i])
		} else {
			out.Values = append(out.Values, nil)
		}
	}
	return json.Marshal(out)
}

func (s *Series[T]) UnmarshalJSON(b []byte) error {
	var in seriesJSON[T]
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if in.Start < 0 {
		return fmt.Errorf("series start %d", in.Start)
	}
	*s = *NewSeries[T](in.Start+len(in.Values), in.Start)
	s.event = in.Event
	for i, v := range in.Values {
		s.Extend(in.Start + i)
		if v != nil {
			s.Set(in.Start+i, *v)
		}
	}
	return nil
}

type seriesGob[T any] struct {
	Start  int
	N      int
	Event  bool
	Values []T
	Set    []bool
}

func (s *Series[T]) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(seriesGob[T]{
		Start:  s.start,
		N:      s.n,
		Event:  s.event,
		Values: s.vals[:s.n],
		Set:    s.set[:s.n],
	})
	return buf.Bytes(), err
}

func (s *Series[T]) GobDecode(b []byte) error {
	var in seriesGob[T]
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&in); err != nil {
		return err
	}
	if in.N < in.Start || len(in.Set) != in.N {
		return fmt.Errorf("corrupt series: start=%d n=%d set=%d", in.Start, in.N, len(in.Set))
	}
	if len(in.Values) != in.N {
		return fmt.Errorf("corrupt series: n=%d values=%d", in.N, len(in.Values))
	}
	*s = Series[T]{start: in.Start, n: in.N, event: in.Event, vals: in.Values, set: in.Set}
	return nil
}
