package webhook_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/morphcodes/morphd/internal/core/ports"
	"github.com/morphcodes/morphd/internal/infrastructure/webhook"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	t.Parallel()

	event := ports.WebhookEvent{
		Event:     "scan.accepted",
		OrgID:     "org-1",
		ChainID:   "chain-1",
		ChainName: "event badges",
		Value:     "deadbeef",
		Position:  7,
		Remaining: 7,
		Timestamp: time.Now(),
	}

	var gotSignature, gotOrg string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Webhook-Signature")
		gotOrg = r.Header.Get("X-Organization-Id")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := webhook.NewSender()
	err := sender.Send(context.Background(), server.URL, "topsecret", event)
	require.NoError(t, err)

	require.Equal(t, "org-1", gotOrg)
	require.Equal(t, webhook.Sign("topsecret", gotBody), gotSignature)

	var decoded ports.WebhookEvent
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	require.Equal(t, event.ChainID, decoded.ChainID)
	require.Equal(t, event.Position, decoded.Position)
}

func TestSendFailureStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sender := webhook.NewSender()
	err := sender.Send(context.Background(), server.URL, "topsecret", ports.WebhookEvent{})
	require.Error(t, err)
}
