package voiceai

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

// Webhook deliveries are signed with HMAC-SHA256 over "<timestamp>.<body>",
// hex-encoded, carried in these headers alongside the unix timestamp.
const (
	HeaderSignature = "X-Voice-Signature"
	HeaderTimestamp = "X-Voice-Timestamp"
)

const DefaultReplayWindow = 300 * time.Second

var (
	ErrMissingAuth        = errors.New("voiceai: missing signature or timestamp header")
	ErrReplayWindow       = errors.New("voiceai: timestamp outside replay window")
	ErrSignatureMismatch  = errors.New("voiceai: signature mismatch")
	ErrMalformedTimestamp = errors.New("voiceai: malformed timestamp header")
)

// SignatureVerifier validates webhook authenticity and freshness.
//
// Enabled=false skips verification entirely; this is the deliberate
// environment gate (production enforces, lower envs replay unsigned
// payloads). Wire it from config, never hardcode.
type SignatureVerifier struct {
	Secret       string
	ReplayWindow time.Duration
	Enabled      bool

	// Now is injectable for deterministic tests.
	Now func() time.Time
}

func NewSignatureVerifier(secret string, enabled bool) SignatureVerifier {
	return SignatureVerifier{
		Secret:       secret,
		ReplayWindow: DefaultReplayWindow,
		Enabled:      enabled,
		Now:          time.Now,
	}
}

// Verify checks the signature and timestamp headers against the raw body.
func (v SignatureVerifier) Verify(signature, timestamp string, body []byte) error {
	if !v.Enabled {
		return nil
	}
	if signature == "" || timestamp == "" {
		return ErrMissingAuth
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrMalformedTimestamp
	}

	window := v.ReplayWindow
	if window <= 0 {
		window = DefaultReplayWindow
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	age := now().Unix() - ts
	if age < 0 {
		age = -age
	}
	if time.Duration(age)*time.Second > window {
		return ErrReplayWindow
	}

	mac := hmac.New(sha256.New, []byte(v.Secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
