package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pigeonchat/pigeon/internal/chat"
	"go.uber.org/zap"
)

// Client talks to the chat backend over HTTP and implements
// chat.Backend plus the auth surface. It is the only place wire shapes
// and status codes are interpreted; everything above it sees entities
// and the chat error taxonomy.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SetToken installs the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ListChats fetches the chat list.
func (c *Client) ListChats(ctx context.Context) ([]chat.Chat, error) {
	var wire []Chat
	if err := c.do(ctx, "list chats", http.MethodGet, "/api/chats", "", nil, &wire); err != nil {
		return nil, err
	}
	out := make([]chat.Chat, 0, len(wire))
	for _, w := range wire {
		out = append(out, AdaptChat(w))
	}
	return out, nil
}

// ListMessages fetches all cached messages of one chat.
func (c *Client) ListMessages(ctx context.Context, chatID string) ([]chat.Message, error) {
	var wire []Message
	path := "/api/chats/" + url.PathEscape(chatID) + "/messages"
	if err := c.do(ctx, "list messages", http.MethodGet, path, chatID, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]chat.Message, 0, len(wire))
	for _, w := range wire {
		out = append(out, AdaptMessage(w))
	}
	return out, nil
}

// SendMessage posts a new text message and returns the confirmed
// record assigned by the backend. Content bounds are checked locally;
// a request that the backend is guaranteed to reject never goes out.
func (c *Client) SendMessage(ctx context.Context, chatID, content string) (chat.Message, error) {
	if strings.TrimSpace(content) == "" {
		return chat.Message{}, &chat.ValidationError{Op: "send message", Reason: "content must not be empty"}
	}
	if utf8.RuneCountInString(content) > chat.MaxContentLength {
		return chat.Message{}, &chat.ValidationError{Op: "send message", Reason: "content too long"}
	}
	var wire Message
	path := "/api/chats/" + url.PathEscape(chatID) + "/messages"
	if err := c.do(ctx, "send message", http.MethodPost, path, chatID, SendRequest{Content: content}, &wire); err != nil {
		return chat.Message{}, err
	}
	return AdaptMessage(wire), nil
}

// MarkRead acknowledges a chat on the backend.
func (c *Client) MarkRead(ctx context.Context, chatID string) error {
	path := "/api/chats/" + url.PathEscape(chatID) + "/read"
	return c.do(ctx, "mark read", http.MethodPatch, path, chatID, nil, nil)
}

// Login exchanges credentials for a token and the user record. The
// token is installed on the client.
func (c *Client) Login(ctx context.Context, email, password string) (string, chat.User, error) {
	var resp AuthResponse
	err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", "", LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", chat.User{}, err
	}
	c.SetToken(resp.Token)
	return resp.Token, AdaptUser(resp.User), nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, chat.User, error) {
	var resp AuthResponse
	err := c.do(ctx, "register", http.MethodPost, "/api/auth/register", "", RegisterRequest{Name: name, Email: email, Password: password}, &resp)
	if err != nil {
		return "", chat.User{}, err
	}
	c.SetToken(resp.Token)
	return resp.Token, AdaptUser(resp.User), nil
}

// Me returns the user identified by the installed token.
func (c *Client) Me(ctx context.Context) (chat.User, error) {
	var wire User
	if err := c.do(ctx, "me", http.MethodGet, "/api/auth/me", "", nil, &wire); err != nil {
		return chat.User{}, err
	}
	return AdaptUser(wire), nil
}

func (c *Client) do(ctx context.Context, op, method, path, chatID string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &chat.NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(op, chatID, path, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &chat.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

// statusError maps a non-2xx answer onto the domain error taxonomy.
func (c *Client) statusError(op, chatID, path string, resp *http.Response) error {
	var body ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)

	if c.logger != nil {
		c.logger.Warn("backend request failed",
			zap.String("op", op),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("error", body.Error))
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		reason := body.Error
		if reason == "" {
			reason = "invalid request"
		}
		return &chat.ValidationError{Op: op, Reason: reason}
	case http.StatusNotFound:
		return &chat.NotFoundError{Op: op, ChatID: chatID}
	default:
		return &chat.NetworkError{Op: op, Status: resp.StatusCode}
	}
}
