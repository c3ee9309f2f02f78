package hashchain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrMalformedPayload is returned by DecodePayload when the input is not a
// well-formed payload or misses required fields.
var ErrMalformedPayload = errors.New("malformed payload")

// Payload is the self-describing document carried out-of-band (typically
// inside a QR image) and posted back by a scanning device.
type Payload struct {
	ChainID   string `json:"chainId"`
	Value     string `json:"value"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// EncodePayload serializes a (chain, value) pair together with a scan URL
// derived from baseURL and a construction timestamp.
func EncodePayload(chainID, value, baseURL string) (string, error) {
	if chainID == "" || value == "" {
		return "", fmt.Errorf("missing chain id or value")
	}
	p := Payload{
		ChainID: chainID,
		Value:   value,
		URL: fmt.Sprintf(
			"%s/scan?chain=%s&value=%s",
			strings.TrimSuffix(baseURL, "/"), url.QueryEscape(chainID), url.QueryEscape(value),
		),
		Timestamp: time.Now().UnixMilli(),
	}
	buf, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return string(buf), nil
}

// DecodePayload parses untrusted scanner input. It never panics: anything
// that is not valid JSON carrying a chain id and a value fails with
// ErrMalformedPayload.
func DecodePayload(payload string) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, ErrMalformedPayload
	}
	if p.ChainID == "" || p.Value == "" {
		return nil, ErrMalformedPayload
	}
	return &p, nil
}
