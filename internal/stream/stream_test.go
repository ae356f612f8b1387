// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// EVENT READER
// =============================================================================

func TestEventReader_OrderPreserved(t *testing.T) {
	input := `{"kind":"start"}
{"kind":"text-delta","delta":"Hello "}
{"kind":"text-delta","delta":"world"}
{"kind":"finish","reason":"stop"}
`
	r := NewEventReader(strings.NewReader(input))

	var kinds []EventKind
	err := r.Process(context.Background(), func(ev Event) {
		kinds = append(kinds, ev.Kind)
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := []EventKind{EventStart, EventTextDelta, EventTextDelta, EventFinish}
	if len(kinds) != len(want) {
		t.Fatalf("got %d events, want %d", len(kinds), len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, kinds[i], want[i])
		}
	}
	if r.Accumulated() != "Hello world" {
		t.Errorf("accumulated = %q", r.Accumulated())
	}
}

func TestEventReader_SkipsMalformedLines(t *testing.T) {
	input := `{"kind":"start"}
not json at all
{"broken": true}
{"kind":"text-delta","delta":"ok"}

{"kind":"finish"}
`
	r := NewEventReader(strings.NewReader(input))
	var count int
	if err := r.Process(context.Background(), func(Event) { count++ }); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if count != 3 {
		t.Errorf("decoded %d events, want 3", count)
	}
}

func TestEventReader_ToolInputEvent(t *testing.T) {
	input := `{"kind":"tool-input-available","toolCallId":"call_7","toolName":"createSpreadsheet","input":{"title":"Ventas"}}
{"kind":"finish"}
`
	r := NewEventReader(strings.NewReader(input))
	var got *Event
	err := r.Process(context.Background(), func(ev Event) {
		if ev.Kind == EventToolInput {
			got = &ev
		}
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got == nil {
		t.Fatal("no tool-input event decoded")
	}
	if got.ToolCallID != "call_7" || got.ToolName != "createSpreadsheet" {
		t.Errorf("event = %+v", got)
	}
	if got.Input["title"] != "Ventas" {
		t.Errorf("input = %v", got.Input)
	}
}

func TestEventReader_UnterminatedLastLine(t *testing.T) {
	// The final line may lack a trailing newline.
	input := `{"kind":"text-delta","delta":"tail"}`
	r := NewEventReader(strings.NewReader(input))
	var count int
	if err := r.Process(context.Background(), func(Event) { count++ }); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if count != 1 {
		t.Errorf("decoded %d events, want 1", count)
	}
}

func TestEventReader_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewEventReader(strings.NewReader(`{"kind":"start"}` + "\n"))
	err := r.Process(ctx, func(Event) {})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{http.StatusUnauthorized, ClassAuth},
		{http.StatusForbidden, ClassAuth},
		{http.StatusTooManyRequests, ClassRateLimit},
		{http.StatusInternalServerError, ClassNetwork},
		{http.StatusBadGateway, ClassNetwork},
		{http.StatusBadRequest, ClassGeneric},
	}
	for _, tt := range tests {
		te := ClassifyStatus(tt.status, "")
		if te.Class != tt.want {
			t.Errorf("status %d: class = %v, want %v", tt.status, te.Class, tt.want)
		}
		if te.Message == "" {
			t.Errorf("status %d: message should fall back to status text", tt.status)
		}
	}
}

func TestClassifyErr_PassesThroughClassified(t *testing.T) {
	orig := &TransportError{Class: ClassRateLimit, Message: "slow down"}
	got := ClassifyErr(orig)
	if got != orig {
		t.Error("already-classified error should pass through unchanged")
	}
}

func TestClassifyErr_KeepsCause(t *testing.T) {
	// Esc-cancel depends on matching context.Canceled through the
	// classified error.
	te := ClassifyErr(context.Canceled)
	if !errors.Is(te, context.Canceled) {
		t.Error("classified cancellation must still match context.Canceled")
	}

	wrapped := fmt.Errorf("read events: %w", context.DeadlineExceeded)
	te = ClassifyErr(wrapped)
	if te.Class != ClassNetwork {
		t.Errorf("class = %v, want network", te.Class)
	}
	if !errors.Is(te, context.DeadlineExceeded) {
		t.Error("classified timeout must still match context.DeadlineExceeded")
	}
}

// =============================================================================
// CLIENT
// =============================================================================

func TestChatStream_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		lines := []string{
			`{"kind":"start"}`,
			`{"kind":"text-delta","delta":"Creating the sheet."}`,
			`{"kind":"tool-input-available","toolCallId":"c1","toolName":"createSpreadsheet","input":{"title":"Budget"}}`,
			`{"kind":"finish","reason":"tool-calls"}`,
		}
		for _, l := range lines {
			w.Write([]byte(l + "\n"))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-model")
	var events []Event
	err := c.ChatStream(context.Background(), []Message{{Role: "user", Content: "make a budget"}}, nil, func(ev Event) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	if events[3].Reason != "tool-calls" {
		t.Errorf("finish reason = %q", events[3].Reason)
	}
}

func TestChatStream_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "m")
	err := c.ChatStream(context.Background(), nil, nil, func(Event) {})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if te.Class != ClassAuth {
		t.Errorf("class = %v, want auth", te.Class)
	}
}

func TestChatStream_ConnectionRefused(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "m")
	err := c.ChatStream(context.Background(), nil, nil, func(Event) {})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if te.Class != ClassNetwork {
		t.Errorf("class = %v, want network", te.Class)
	}
}
