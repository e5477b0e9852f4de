package middleware

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestSlotKey(t *testing.T) {
	k := slotKey("POST", "/loans/:id/payments", testUserID, testReqID)
	want := "idem:post:/loans/:id/payments:" + testUserID + ":" + testReqID
	if k != want {
		t.Fatalf("slotKey = %q, want %q", k, want)
	}
}

func TestRecordStore_Lifecycle(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	s := recordStore{rdb: rdb, lockTTL: pendingTTL}
	ctx := context.Background()
	key := slotKey("POST", "/loans", testUserID, testReqID)

	if _, found, err := s.load(ctx, key); err != nil || found {
		t.Fatalf("empty load: found=%v err=%v", found, err)
	}

	pending := record{State: statePending, BodyHash: hashBody([]byte(`{"a":1}`)), CreatedAt: time.Now().UTC()}
	ok, err := s.reserve(ctx, key, pending)
	if err != nil || !ok {
		t.Fatalf("reserve 1: ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > pendingTTL {
		t.Fatalf("pending ttl = %v", ttl)
	}
	if ok, err := s.reserve(ctx, key, pending); err != nil || ok {
		t.Fatalf("reserve 2 should lose: ok=%v err=%v", ok, err)
	}

	got, found, err := s.load(ctx, key)
	if err != nil || !found {
		t.Fatalf("load pending: found=%v err=%v", found, err)
	}
	if got.State != statePending || got.replayable() || got.BodyHash != pending.BodyHash {
		t.Fatalf("pending record = %+v", got)
	}

	done := record{State: stateDone, Status: 201, Body: []byte(`{"ok":true}`), BodyHash: pending.BodyHash}
	if err := s.finish(ctx, key, done, 5*time.Second); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > 5*time.Second {
		t.Fatalf("final ttl = %v", ttl)
	}
	got, _, _ = s.load(ctx, key)
	if !got.replayable() || got.Status != 201 || string(got.Body) != `{"ok":true}` {
		t.Fatalf("final record = %+v", got)
	}

	if err := s.release(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if mr.Exists(key) {
		t.Fatal("key still present after release")
	}
}

func TestRecordStore_CorruptValue(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	s := recordStore{rdb: rdb, lockTTL: pendingTTL}
	key := slotKey("POST", "/loans", testUserID, testReqID)
	_ = mr.Set(key, "not json")

	_, _, err := s.load(context.Background(), key)
	if err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("want decode error, got %v", err)
	}
}

func TestHashBody(t *testing.T) {
	if hashBody([]byte("a")) == hashBody([]byte("b")) {
		t.Fatal("different bodies hash equal")
	}
	if len(hashBody(nil)) != 64 {
		t.Fatal("want hex sha256")
	}
}
