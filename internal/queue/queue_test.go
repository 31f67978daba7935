package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	evt := ScanEvent{
		RecordID:  "r1",
		SessionID: "sess1",
		StudentID: "2501001",
		Status:    "Present",
		ScannedAt: time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC),
	}
	msg, err := NewScanMessage(evt)
	if err != nil {
		t.Fatalf("NewScanMessage: %v", err)
	}
	if err := q.Publish(ctx, msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	out, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}

	select {
	case got := <-out:
		if got.Type != TypeScan {
			t.Fatalf("type = %s, want %s", got.Type, TypeScan)
		}
		var decoded ScanEvent
		if err := json.Unmarshal(got.Body, &decoded); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if decoded != evt {
			t.Fatalf("roundtrip mismatch: %+v != %+v", decoded, evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestInMemoryPublishHonorsContext(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())

	if err := q.Publish(ctx, Message{Type: TypeScan}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	cancel()
	// Queue is full and the context is done; Publish must not block.
	if err := q.Publish(ctx, Message{Type: TypeScan}); err == nil {
		t.Fatal("expected context error on full queue")
	}
}

func TestConsumeStopsOnCancel(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())
	out, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	cancel()
	select {
	case _, open := <-out:
		if open {
			t.Fatal("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
