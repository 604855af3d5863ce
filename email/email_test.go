package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsernameFromRecipient(t *testing.T) {
	assert.Equal(t, "alice", UsernameFromRecipient("alice@lokirent.io", "lokirent.io"))
	assert.Equal(t, "alice", UsernameFromRecipient("Alice@Lokirent.IO", "lokirent.io"))
	assert.Equal(t, "", UsernameFromRecipient("alice@other.com", "lokirent.io"))
	assert.Equal(t, "", UsernameFromRecipient("@lokirent.io", "lokirent.io"))
}

func TestResendSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))

		var body sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"bob@example.com"}, body.To)
		assert.Equal(t, "noreply@lokirent.io", body.From)
		assert.Equal(t, "Forwarding enabled for alice@lokirent.io", body.Subject)

		w.Write([]byte(`{"id":"msg_1"}`))
	}))
	defer server.Close()

	client, err := NewResendClient(server.URL, "re_key", time.Second)
	require.NoError(t, err)

	id, err := client.Send(context.Background(), ActivationNotice("noreply@lokirent.io", "bob@example.com", "alice@lokirent.io", "2026-11-17T00:00:00.000Z"))
	require.NoError(t, err)
	assert.Equal(t, "msg_1", id)
}

func TestResendSend_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer server.Close()

	client, err := NewResendClient(server.URL, "re_key", time.Second)
	require.NoError(t, err)

	_, err = client.Send(context.Background(), Message{From: "x", To: "bob@example.com", Subject: "s", Text: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}
