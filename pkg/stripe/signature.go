package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultSignatureTolerance bounds how old a signed webhook timestamp may be.
const DefaultSignatureTolerance = 5 * time.Minute

var (
	ErrSignatureHeaderMalformed = errors.New("signature header is malformed")
	ErrSignatureTimestampStale  = errors.New("signature timestamp outside tolerance")
	ErrSignatureMismatch        = errors.New("no matching v1 signature")
)

// signatureHeader is the parsed form of "t=<unix>,v1=<hex>[,v1=<hex>...]".
type signatureHeader struct {
	timestamp  time.Time
	signatures [][]byte
}

// VerifyWebhookSignature checks an incoming webhook payload against the
// signing secret using the default tolerance and the current clock.
func VerifyWebhookSignature(payload []byte, header, secret string) error {
	return VerifyWebhookSignatureAt(payload, header, secret, time.Now(), DefaultSignatureTolerance)
}

// VerifyWebhookSignatureAt is the clock-injectable form of signature
// verification. The signed message is "<timestamp>.<payload>" and comparison
// is constant-time across all presented v1 signatures.
func VerifyWebhookSignatureAt(payload []byte, header, secret string, now time.Time, tolerance time.Duration) error {
	parsed, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	age := now.Sub(parsed.timestamp)
	if age < 0 {
		age = -age
	}
	if age > tolerance {
		return ErrSignatureTimestampStale
	}

	expected := computeSignature(parsed.timestamp, payload, secret)
	for _, candidate := range parsed.signatures {
		if hmac.Equal(candidate, expected) {
			return nil
		}
	}
	return ErrSignatureMismatch
}

func parseSignatureHeader(header string) (*signatureHeader, error) {
	if strings.TrimSpace(header) == "" {
		return nil, ErrSignatureHeaderMalformed
	}

	parsed := &signatureHeader{}
	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return nil, ErrSignatureHeaderMalformed
		}
		switch parts[0] {
		case "t":
			ts, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad timestamp", ErrSignatureHeaderMalformed)
			}
			parsed.timestamp = time.Unix(ts, 0)
		case "v1":
			sig, err := hex.DecodeString(parts[1])
			if err != nil {
				continue
			}
			parsed.signatures = append(parsed.signatures, sig)
		default:
			// other schemes (v0) are ignored
		}
	}

	if parsed.timestamp.IsZero() || len(parsed.signatures) == 0 {
		return nil, ErrSignatureHeaderMalformed
	}
	return parsed, nil
}

func computeSignature(ts time.Time, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return mac.Sum(nil)
}

// SignPayload builds a valid signature header for the payload. Test helper.
func SignPayload(payload []byte, secret string, at time.Time) string {
	sig := computeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}
