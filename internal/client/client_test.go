package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storechat/internal/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, StaticCredential{Token: "tok", Role: types.RoleCustomer}, WithTimeout(2*time.Second))
}

func TestFetchMessagesAcceptsArrayAndEnvelope(t *testing.T) {
	payloads := map[string]string{
		"array":    `[{"message_id":1,"message_text":"hi","sender":"customer","status":"pending","created_at":"2025-01-01T10:00:00Z"}]`,
		"data":     `{"data":[{"message_id":1,"message_text":"hi","sender":"customer","status":"pending"}]}`,
		"messages": `{"messages":[{"message_id":1,"message_text":"hi","sender":"customer","status":"pending"}]}`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/support/messages" {
					t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer tok" {
					t.Errorf("unexpected auth header: %q", got)
				}
				if r.Header.Get("X-Request-ID") == "" {
					t.Errorf("expected request id header")
				}
				_, _ = w.Write([]byte(payload))
			})
			msgs, err := c.FetchMessages(context.Background())
			if err != nil {
				t.Fatalf("FetchMessages: %v", err)
			}
			if len(msgs) != 1 || msgs[0].ID != 1 || msgs[0].Sender != types.SenderCustomer {
				t.Fatalf("unexpected messages: %#v", msgs)
			}
		})
	}
}

func TestSendMessagePostsBody(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/support/messages" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Message sent","data":{"message_id":42,"message_text":"hello","sender":"customer","status":"pending"}}`))
	})
	orderID := int64(9)
	resp, err := c.SendMessage(context.Background(), SendMessageRequest{Message: "hello", OrderID: &orderID, SkipTelegram: true})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if got["message"] != "hello" || got["order_id"] != float64(9) || got["skip_telegram"] != true {
		t.Fatalf("unexpected body: %#v", got)
	}
	if resp.Message == nil || resp.Message.ID != 42 {
		t.Fatalf("expected echoed message, got %#v", resp.Message)
	}
}

func TestSendMessageOmitsOptionalFields(t *testing.T) {
	var raw string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		raw = string(body)
		w.WriteHeader(http.StatusNoContent)
	})
	resp, err := c.SendMessage(context.Background(), SendMessageRequest{Message: "hi"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if strings.Contains(raw, "order_id") || strings.Contains(raw, "skip_telegram") {
		t.Fatalf("expected optional fields omitted, got %s", raw)
	}
	if resp.Message != nil {
		t.Fatalf("expected no echoed message")
	}
}

func TestSendMessageRejectsBlank(t *testing.T) {
	c := NewWithToken("http://127.0.0.1:1", "tok")
	if _, err := c.SendMessage(context.Background(), SendMessageRequest{Message: "  "}); err == nil {
		t.Fatalf("expected error for blank message")
	}
}

func TestCloseMessageUsesPut(t *testing.T) {
	var path, method string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	if err := c.CloseMessage(context.Background(), 17); err != nil {
		t.Fatalf("CloseMessage: %v", err)
	}
	if method != http.MethodPut || path != "/support/messages/17/close" {
		t.Fatalf("unexpected request: %s %s", method, path)
	}
}

func TestCloseMessageRejectsLocalIDs(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	if err := c.CloseMessage(context.Background(), time.Now().UnixMilli()); err == nil {
		t.Fatalf("expected error for client-side id")
	}
	if called {
		t.Fatalf("expected no request for client-side id")
	}
}

func TestListOrdersEnvelopes(t *testing.T) {
	payloads := []string{
		`[{"order_id":1,"order_number":"A1","total_amount":"10.50","status":"shipped"}]`,
		`{"data":[{"order_id":1,"order_number":"A1","total_amount":"10.50","status":"shipped"}]}`,
		`{"orders":[{"order_id":1,"order_number":"A1","total_amount":10.5,"status":"shipped"}]}`,
	}
	for _, payload := range payloads {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/orders" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			_, _ = w.Write([]byte(payload))
		})
		orders, err := c.ListOrders(context.Background())
		if err != nil {
			t.Fatalf("ListOrders(%s): %v", payload, err)
		}
		if len(orders) != 1 || orders[0].Number != "A1" || orders[0].Total.StringFixed(2) != "10.50" {
			t.Fatalf("unexpected orders for %s: %#v", payload, orders)
		}
	}
}

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad token"}`, IsUnauthenticated},
		{"forbidden", http.StatusForbidden, ``, IsUnauthenticated},
		{"server", http.StatusBadGateway, ``, IsNetwork},
		{"api", http.StatusBadRequest, `{"error":"message required"}`, func(err error) bool {
			apiErr := AsAPIError(err)
			return apiErr != nil && apiErr.StatusCode == http.StatusBadRequest && apiErr.Message == "message required"
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.FetchMessages(context.Background())
			if err == nil || !tc.check(err) {
				t.Fatalf("unexpected error classification: %v", err)
			}
		})
	}
}

func TestMissingCredentialSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()
	c := New(server.URL, StaticCredential{})
	_, err := c.FetchMessages(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if called {
		t.Fatalf("expected no request without a credential")
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()
	c := New(url, StaticCredential{Token: "tok"}, WithTimeout(time.Second))
	_, err := c.ListOrders(context.Background())
	if !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestCancelledContextReturnsContextError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchMessages(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
