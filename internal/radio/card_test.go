package radio

import (
	"errors"
	"testing"
)

func testContent() *CardContent {
	return &CardContent{}
}

func TestStatusCardCreateTracksLiveMessage(t *testing.T) {
	t.Parallel()

	m := &fakeMessenger{}
	card := NewStatusCard(m)
	card.Bind("chan1")
	card.Update(testContent())

	if err := card.Create(); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if card.Live() != "m1" {
		t.Fatalf("live message = %q, want m1", card.Live())
	}
}

func TestStatusCardCreateSkipsWhenUnprepared(t *testing.T) {
	t.Parallel()

	m := &fakeMessenger{}
	card := NewStatusCard(m)

	// no content, no channel
	if err := card.Create(); err != nil {
		t.Fatalf("create without content errored: %v", err)
	}

	// content but no channel
	card.Update(testContent())
	if err := card.Create(); err != nil {
		t.Fatalf("create without channel errored: %v", err)
	}

	sends, _, _ := m.counts()
	if sends != 0 {
		t.Fatalf("sent %d messages with nothing bound, want 0", sends)
	}
}

func TestStatusCardEditFallsBackToCreate(t *testing.T) {
	t.Parallel()

	m := &fakeMessenger{}
	card := NewStatusCard(m)
	card.Bind("chan1")
	card.Update(testContent())

	// No live message yet, Edit must create one.
	if err := card.Edit(); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if card.Live() != "m1" {
		t.Fatalf("live message = %q, want m1", card.Live())
	}

	// In-place edit when the message is alive.
	if err := card.Edit(); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	sends, edits, _ := m.counts()
	if sends != 1 || edits != 1 {
		t.Fatalf("sends=%d edits=%d, want 1/1", sends, edits)
	}

	// Externally deleted message: the edit fails and a new message appears.
	m.editErr = errors.New("unknown message")
	if err := card.Edit(); err != nil {
		t.Fatalf("edit fallback failed: %v", err)
	}
	if card.Live() != "m2" {
		t.Fatalf("live message = %q, want m2", card.Live())
	}
}

func TestStatusCardResendReplacesMessage(t *testing.T) {
	t.Parallel()

	m := &fakeMessenger{}
	card := NewStatusCard(m)
	card.Bind("chan1")
	card.Update(testContent())

	if err := card.Create(); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Delete failures are ignored; the new message still goes out.
	m.deleteErr = errors.New("already gone")
	if err := card.Resend(); err != nil {
		t.Fatalf("resend failed: %v", err)
	}

	if card.Live() != "m2" {
		t.Fatalf("live message = %q, want m2", card.Live())
	}
	_, _, deletes := m.counts()
	if deletes != 1 {
		t.Fatalf("deletes = %d, want 1", deletes)
	}
}

func TestStatusCardBindMovesLiveMessage(t *testing.T) {
	t.Parallel()

	m := &fakeMessenger{}
	card := NewStatusCard(m)
	card.Bind("chan1")
	card.Update(testContent())

	if err := card.Create(); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	card.Bind("chan2")

	if card.Live() != "m2" {
		t.Fatalf("live message = %q, want m2", card.Live())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.deletes) != 1 || m.deletes[0] != "m1" {
		t.Fatalf("deletes = %v, want [m1]", m.deletes)
	}
	if len(m.sends) != 2 || m.sends[1] != "chan2" {
		t.Fatalf("sends = %v, want second in chan2", m.sends)
	}
}

func TestStatusCardDeleteClearsLiveMessage(t *testing.T) {
	t.Parallel()

	m := &fakeMessenger{}
	card := NewStatusCard(m)
	card.Bind("chan1")
	card.Update(testContent())

	if err := card.Create(); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	card.Delete()
	card.Delete() // second call must not delete again

	if card.Live() != "" {
		t.Fatalf("live message = %q after delete, want empty", card.Live())
	}
	_, _, deletes := m.counts()
	if deletes != 1 {
		t.Fatalf("deletes = %d, want 1", deletes)
	}
}
