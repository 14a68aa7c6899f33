package voiceai

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"testing"
	"time"
)

func sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func fixedVerifier(secret string, now time.Time) SignatureVerifier {
	v := NewSignatureVerifier(secret, true)
	v.Now = func() time.Time { return now }
	return v
}

func TestVerify_AcceptsValidSignature(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	body := []byte(`{"event":"call-ended"}`)

	v := fixedVerifier("s", now)
	if err := v.Verify(sign("s", ts, body), ts, body); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerify_RejectsTamperedBody(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	body := []byte(`{"event":"call-ended"}`)
	sig := sign("s", ts, body)

	tampered := append([]byte(nil), body...)
	tampered[0] = 'X'

	v := fixedVerifier("s", now)
	if err := v.Verify(sig, ts, tampered); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	body := []byte(`{}`)

	v := fixedVerifier("right", now)
	if err := v.Verify(sign("wrong", ts, body), ts, body); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}
}

func TestVerify_RejectsStaleTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0)
	stale := now.Add(-301 * time.Second)
	ts := strconv.FormatInt(stale.Unix(), 10)
	body := []byte(`{}`)

	v := fixedVerifier("s", now)
	if err := v.Verify(sign("s", ts, body), ts, body); !errors.Is(err, ErrReplayWindow) {
		t.Fatalf("expected ErrReplayWindow, got %v", err)
	}
}

func TestVerify_AcceptsEdgeOfWindow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	edge := now.Add(-300 * time.Second)
	ts := strconv.FormatInt(edge.Unix(), 10)
	body := []byte(`{}`)

	v := fixedVerifier("s", now)
	if err := v.Verify(sign("s", ts, body), ts, body); err != nil {
		t.Fatalf("expected signature at window edge to pass, got %v", err)
	}
}

func TestVerify_RejectsMissingHeaders(t *testing.T) {
	v := fixedVerifier("s", time.Unix(1700000000, 0))
	if err := v.Verify("", "123", []byte(`{}`)); !errors.Is(err, ErrMissingAuth) {
		t.Fatalf("expected ErrMissingAuth, got %v", err)
	}
	if err := v.Verify("abc", "", []byte(`{}`)); !errors.Is(err, ErrMissingAuth) {
		t.Fatalf("expected ErrMissingAuth, got %v", err)
	}
}

func TestVerify_RejectsMalformedTimestamp(t *testing.T) {
	v := fixedVerifier("s", time.Unix(1700000000, 0))
	if err := v.Verify("abc", "not-a-number", []byte(`{}`)); !errors.Is(err, ErrMalformedTimestamp) {
		t.Fatalf("expected ErrMalformedTimestamp, got %v", err)
	}
}

func TestVerify_DisabledSkipsEverything(t *testing.T) {
	v := NewSignatureVerifier("s", false)
	if err := v.Verify("", "", nil); err != nil {
		t.Fatalf("disabled verifier must accept anything, got %v", err)
	}
}
