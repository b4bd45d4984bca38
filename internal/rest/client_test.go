package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pigeonchat/pigeon/internal/chat"
)

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil)
}

func TestListChats(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chats" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want Bearer tok", got)
		}
		_ = json.NewEncoder(w).Encode([]Chat{
			{ID: "1", Name: "Juan Perez", Type: "direct", UnreadCount: 2},
			{ID: "2", Name: "Maria Lopez", Type: "direct"},
		})
	})
	c.SetToken("tok")

	chats, err := c.ListChats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 2 || chats[0].ID != "1" || chats[0].UnreadCount != 2 {
		t.Errorf("chats = %+v", chats)
	}
}

func TestSendMessage(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chats/1/messages" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req SendRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Content != "hello" {
			t.Errorf("content = %q, want hello", req.Content)
		}
		_ = json.NewEncoder(w).Encode(Message{
			ID: "m42", ChatID: "1", Content: req.Content,
			Timestamp: "2025-06-01T12:00:00Z", Type: "text", Status: "sent",
		})
	})

	msg, err := c.SendMessage(context.Background(), "1", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID != "m42" || msg.Content != "hello" {
		t.Errorf("message = %+v", msg)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"400 is validation", http.StatusBadRequest, func(err error) bool {
			var ve *chat.ValidationError
			return errors.As(err, &ve)
		}},
		{"404 is not found", http.StatusNotFound, func(err error) bool {
			var nf *chat.NotFoundError
			return errors.As(err, &nf) && nf.ChatID == "9"
		}},
		{"500 is network", http.StatusInternalServerError, func(err error) bool {
			var ne *chat.NetworkError
			return errors.As(err, &ne) && ne.Status == http.StatusInternalServerError
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "nope"})
			})
			_, err := c.ListMessages(context.Background(), "9")
			if err == nil || !tt.check(err) {
				t.Errorf("error = %v, wrong taxonomy", err)
			}
		})
	}
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second, nil)
	_, err := c.ListChats(context.Background())
	var ne *chat.NetworkError
	if !errors.As(err, &ne) {
		t.Errorf("error = %v, want NetworkError", err)
	}
}

func TestLoginInstallsToken(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(AuthResponse{
			Token: "jwt-abc",
			User:  User{ID: "u1", Name: "demo", Email: req.Email, Status: "online"},
		})
	})

	token, user, err := c.Login(context.Background(), "demo@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if token != "jwt-abc" || c.Token() != "jwt-abc" {
		t.Errorf("token = %q, client token = %q", token, c.Token())
	}
	if user.Email != "demo@example.com" || user.Status != chat.PresenceOnline {
		t.Errorf("user = %+v", user)
	}
}

func TestMarkRead(t *testing.T) {
	var called bool
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Method != http.MethodPatch || r.URL.Path != "/api/chats/2/read" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.MarkRead(context.Background(), "2"); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("backend not called")
	}
}

func TestSendMessageRejectsBadContentLocally(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called for locally invalid content")
	})

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace only", "  \t "},
		{"too long", strings.Repeat("x", chat.MaxContentLength+1)},
		{"too long multibyte", strings.Repeat("ñ", chat.MaxContentLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.SendMessage(context.Background(), "1", tt.content)
			var verr *chat.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("err = %v, want ValidationError", err)
			}
		})
	}
}

// The bound counts characters, so a multibyte message at the limit is
// valid even though its byte length exceeds it.
func TestSendMessageAllowsMultibyteAtLimit(t *testing.T) {
	content := strings.Repeat("ñ", chat.MaxContentLength)
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Message{
			ID: "m1", ChatID: "1", Content: content,
			Timestamp: "2025-06-01T12:00:00Z", Type: "text", Status: "sent",
		})
	})

	got, err := c.SendMessage(context.Background(), "1", content)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if got.Content != content {
		t.Error("content mangled in transit")
	}
}
