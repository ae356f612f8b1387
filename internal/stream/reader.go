// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// EVENT READER
// =============================================================================

// EventCallback receives each decoded event in arrival order.
type EventCallback func(Event)

// EventReader handles line-by-line JSON parsing of the event stream.
type EventReader struct {
	reader *bufio.Reader

	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder
	eventCount  int
}

// NewEventReader creates an event reader from an io.Reader.
func NewEventReader(r io.Reader) *EventReader {
	return &EventReader{reader: bufio.NewReader(r)}
}

// Process reads the stream and calls the callback for each event, in
// order. It returns nil on a clean finish or EOF, the context error on
// cancellation, and the read error otherwise. Malformed lines are
// skipped; the model-facing contract only covers well-formed events.
func (er *EventReader) Process(ctx context.Context, callback EventCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			ev, err := er.readEvent()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			if ev == nil {
				continue
			}

			callback(*ev)
			if ev.Kind == EventFinish || ev.Kind == EventError {
				return nil
			}
		}
	}
}

// readEvent reads and parses a single line from the stream.
func (er *EventReader) readEvent() (*Event, error) {
	line, err := er.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return nil, io.EOF
		}
		if len(line) == 0 {
			return nil, err
		}
		// Process the last unterminated line before surfacing EOF.
	}

	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" {
		return nil, nil
	}

	var ev Event
	if err := json.Unmarshal([]byte(trimmed), &ev); err != nil {
		// Skip malformed lines
		return nil, nil
	}
	if ev.Kind == "" {
		return nil, nil
	}

	if ev.Kind == EventTextDelta {
		er.accumulator.WriteString(ev.Delta)
	}
	er.eventCount++
	return &ev, nil
}

// Accumulated returns all text deltas seen so far, concatenated.
func (er *EventReader) Accumulated() string {
	return er.accumulator.String()
}

// EventCount returns the number of well-formed events decoded.
func (er *EventReader) EventCount() int {
	return er.eventCount
}
