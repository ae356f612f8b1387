// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persist

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/sheetrun-tui/internal/model"
)

// =============================================================================
// AUTO SAVER
// =============================================================================

func TestAutoSaver_CoalescesBurst(t *testing.T) {
	var saves atomic.Int32
	a := NewAutoSaver(func() error {
		saves.Add(1)
		return nil
	}, 30*time.Millisecond)
	defer a.Close()

	// A burst of changes within the window produces one save.
	for i := 0; i < 10; i++ {
		a.Notify()
	}
	time.Sleep(100 * time.Millisecond)

	if got := saves.Load(); got != 1 {
		t.Errorf("saves = %d, want 1", got)
	}
	if a.Dirty() {
		t.Error("saved state must not be dirty")
	}
}

func TestAutoSaver_NewChangeAfterSaveArmsAgain(t *testing.T) {
	var saves atomic.Int32
	a := NewAutoSaver(func() error {
		saves.Add(1)
		return nil
	}, 20*time.Millisecond)
	defer a.Close()

	a.Notify()
	time.Sleep(60 * time.Millisecond)
	a.Notify()
	time.Sleep(60 * time.Millisecond)

	if got := saves.Load(); got != 2 {
		t.Errorf("saves = %d, want 2", got)
	}
}

func TestAutoSaver_RetriesFailedSave(t *testing.T) {
	var attempts atomic.Int32
	a := NewAutoSaver(func() error {
		if attempts.Add(1) == 1 {
			return errors.New("disk full")
		}
		return nil
	}, 15*time.Millisecond)
	defer a.Close()

	a.Notify()
	time.Sleep(100 * time.Millisecond)

	if got := attempts.Load(); got < 2 {
		t.Errorf("attempts = %d, want retry after failure", got)
	}
	if a.Dirty() {
		t.Error("state must be clean after the retry succeeds")
	}
}

func TestForceSave_FlushesImmediately(t *testing.T) {
	var saves atomic.Int32
	a := NewAutoSaver(func() error {
		saves.Add(1)
		return nil
	}, time.Hour) // timer would never fire on its own
	defer a.Close()

	a.Notify()
	if err := a.ForceSave(); err != nil {
		t.Fatalf("ForceSave: %v", err)
	}
	if saves.Load() != 1 {
		t.Errorf("saves = %d, want 1", saves.Load())
	}
	if a.Dirty() {
		t.Error("flushed state must be clean")
	}

	// Clean state: ForceSave is a no-op.
	if err := a.ForceSave(); err != nil {
		t.Fatalf("ForceSave clean: %v", err)
	}
	if saves.Load() != 1 {
		t.Error("ForceSave on clean state must not write")
	}
}

func TestForceSave_FreshTimerAfterFlush(t *testing.T) {
	var saves atomic.Int32
	a := NewAutoSaver(func() error {
		saves.Add(1)
		return nil
	}, 25*time.Millisecond)
	defer a.Close()

	a.Notify()
	a.ForceSave()

	// A change after the flush debounces normally.
	a.Notify()
	time.Sleep(80 * time.Millisecond)

	if got := saves.Load(); got != 2 {
		t.Errorf("saves = %d, want flush + one debounced save", got)
	}
}

func TestForceSave_SurfacesError(t *testing.T) {
	want := errors.New("remote unavailable")
	a := NewAutoSaver(func() error { return want }, time.Hour)
	defer a.Close()

	a.Notify()
	if err := a.ForceSave(); !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
	if !a.Dirty() {
		t.Error("failed flush must stay dirty")
	}
}

func TestAutoSaver_CloseStopsTimer(t *testing.T) {
	var saves atomic.Int32
	a := NewAutoSaver(func() error {
		saves.Add(1)
		return nil
	}, 10*time.Millisecond)

	a.Notify()
	a.Close()
	time.Sleep(50 * time.Millisecond)

	if saves.Load() != 0 {
		t.Error("closed saver must not fire")
	}
}

// =============================================================================
// MESSAGE PERSISTER
// =============================================================================

func TestMessagePersister_UserImmediateAssistantAfterFinalize(t *testing.T) {
	var written []string
	p := NewMessagePersister(func(m *model.Message) error {
		written = append(written, m.ID)
		return nil
	})

	conv := model.NewConversation()
	user := model.NewUserMessage("hello")
	conv.Append(user)

	assistant := model.NewAssistantMessage()
	assistant.AppendText("hi")
	conv.Append(assistant)

	if err := p.Sync(conv); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(written) != 1 || written[0] != user.ID {
		t.Errorf("written = %v, want only the user message", written)
	}

	assistant.FinalizeStream()
	if err := p.Sync(conv); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(written) != 2 || written[1] != assistant.ID {
		t.Errorf("written = %v, want assistant after finalize", written)
	}

	// A third sync writes nothing new.
	p.Sync(conv)
	if len(written) != 2 {
		t.Errorf("written = %v, messages must persist at most once", written)
	}
}

func TestMessagePersister_AbortedTurnNeverWritten(t *testing.T) {
	var written []string
	p := NewMessagePersister(func(m *model.Message) error {
		written = append(written, string(m.Role))
		return nil
	})

	conv := model.NewConversation()
	conv.Append(model.NewUserMessage("crea una hoja de ventas"))

	// The stream dies mid-sentence.
	assistant := model.NewAssistantMessage()
	assistant.AppendText("Voy a crear la ho")
	conv.Append(assistant)
	assistant.AbortStream()

	if err := p.Sync(conv); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(written) != 1 || written[0] != "user" {
		t.Errorf("written = %v, want only the user message", written)
	}

	// The partial text stays visible in the transcript regardless.
	if assistant.Text() != "Voy a crear la ho" {
		t.Errorf("transcript text = %q", assistant.Text())
	}

	// Later syncs never pick the aborted message up either.
	p.Sync(conv)
	if len(written) != 1 {
		t.Errorf("written = %v, aborted message must stay unpersisted", written)
	}
}

func TestMessagePersister_RetryAfterWriteFailure(t *testing.T) {
	fail := true
	var written int
	p := NewMessagePersister(func(m *model.Message) error {
		if fail {
			return errors.New("locked")
		}
		written++
		return nil
	})

	conv := model.NewConversation()
	conv.Append(model.NewUserMessage("hello"))

	if err := p.Sync(conv); err == nil {
		t.Fatal("Sync must surface the write failure")
	}

	fail = false
	if err := p.Sync(conv); err != nil {
		t.Fatalf("Sync retry: %v", err)
	}
	if written != 1 {
		t.Errorf("written = %d, want the retried message", written)
	}
}
