package io

import (
	"fmt"
	"strings"
)

// EventKind distinguishes PRN from PRA output.
type EventKind int

const (
	EVENT_NUMBER = EventKind(0) // number
	EVENT_CHAR   = EventKind(1) // char
)

// Event is a single printed value.
type Event struct {
	Kind  EventKind
	Value byte
}

// String renders the event the way a Console would.
func (ev Event) String() string {
	if ev.Kind == EVENT_CHAR {
		return string([]byte{ev.Value})
	}
	return fmt.Sprintf("%d\n", ev.Value)
}

// Record keeps every printed value, in order.
type Record struct {
	Events []Event
}

var _ Output = (*Record)(nil)

// Number records a PRN value.
func (rec *Record) Number(value byte) {
	rec.Events = append(rec.Events, Event{Kind: EVENT_NUMBER, Value: value})
}

// Char records a PRA value.
func (rec *Record) Char(value byte) {
	rec.Events = append(rec.Events, Event{Kind: EVENT_CHAR, Value: value})
}

// Numbers returns the PRN values only.
func (rec *Record) Numbers() (values []byte) {
	for _, ev := range rec.Events {
		if ev.Kind == EVENT_NUMBER {
			values = append(values, ev.Value)
		}
	}
	return
}

// String returns the recorded output as a Console would have written it.
func (rec *Record) String() string {
	var sb strings.Builder
	for _, ev := range rec.Events {
		sb.WriteString(ev.String())
	}
	return sb.String()
}

// Reset forgets all recorded output.
func (rec *Record) Reset() {
	rec.Events = rec.Events[:0]
}
