package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mamadbah2/cafepos/internal/config"
)

func TestSendTextMessage(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{BaseURL: srv.URL + "/", APIVersion: "v20.0", AccessToken: "secret", PhoneNumberID: "123"})
	resp, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "15550001", Body: "Daily report"})
	if err != nil {
		t.Fatalf("SendTextMessage: %v", err)
	}

	if gotPath != "/v20.0/123/messages" || gotAuth != "Bearer secret" {
		t.Fatalf("unexpected request path=%s auth=%s", gotPath, gotAuth)
	}
	if gotBody["to"] != "15550001" {
		t.Fatalf("unexpected body %v", gotBody)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].ID != "wamid.1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSendTextMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid recipient","code":131030}}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{BaseURL: srv.URL, APIVersion: "v20.0", AccessToken: "secret", PhoneNumberID: "123"})
	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: "x"})
	if err == nil || !strings.Contains(err.Error(), "131030") {
		t.Fatalf("expected api error with code, got %v", err)
	}
}
