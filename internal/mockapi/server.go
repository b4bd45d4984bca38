// Package mockapi implements a self-contained chat backend for local
// development. It serves the same REST surface the real backend exposes,
// seeded with demo fixtures, and answers every sent message with a canned
// reply after a short delay.
package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pigeonchat/pigeon/internal/chat"
	"github.com/pigeonchat/pigeon/internal/rest"
)

// DefaultReplyDelay is how long the simulated peer waits before replying.
const DefaultReplyDelay = 2 * time.Second

var cannedReplies = []string{
	"Sounds good!",
	"Let me check and get back to you.",
	"Ha, nice one.",
	"On it.",
	"Can we talk about this tomorrow?",
}

// Options configures the mock server.
type Options struct {
	// JWTSecret signs and verifies auth tokens. Required.
	JWTSecret []byte
	// ReplyDelay overrides DefaultReplyDelay; useful in tests.
	ReplyDelay time.Duration
	Logger     *zap.Logger
}

// Server is the mock chat backend.
type Server struct {
	router     *mux.Router
	store      *memStore
	secret     []byte
	replyDelay time.Duration
	logger     *zap.Logger

	replyMu  sync.Mutex
	replyIdx int
}

// New builds a server with the demo dataset loaded.
func New(opts Options) *Server {
	delay := opts.ReplyDelay
	if delay == 0 {
		delay = DefaultReplyDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:     mux.NewRouter(),
		store:      newMemStore(),
		secret:     opts.JWTSecret,
		replyDelay: delay,
		logger:     logger,
	}
	s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.router)
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.requireAuth)
	authed.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/chats", s.handleListChats).Methods(http.MethodGet)
	authed.HandleFunc("/chats/{id}/messages", s.handleListMessages).Methods(http.MethodGet)
	authed.HandleFunc("/chats/{id}/messages", s.handleSendMessage).Methods(http.MethodPost)
	authed.HandleFunc("/chats/{id}/read", s.handleMarkRead).Methods(http.MethodPatch)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

type contextKey string

const userIDKey contextKey = "user_id"

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := validateToken(raw, s.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := contextWithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req rest.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	user, ok := s.store.authenticate(req.Email, req.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	s.writeAuthResponse(w, user)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req rest.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	user, ok := s.store.register(req.Name, req.Email, req.Password)
	if !ok {
		writeError(w, http.StatusBadRequest, "email already registered")
		return
	}
	s.writeAuthResponse(w, user)
}

func (s *Server) writeAuthResponse(w http.ResponseWriter, user chat.User) {
	token, err := generateToken(user.ID, s.secret)
	if err != nil {
		s.logger.Error("sign token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not sign token")
		return
	}
	writeJSON(w, http.StatusOK, rest.AuthResponse{
		Token: token,
		User:  rest.UserWire(user),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.store.userByID(userIDFrom(r.Context()))
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return
	}
	writeJSON(w, http.StatusOK, rest.UserWire(user))
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats := s.store.listChats()
	out := make([]rest.Chat, 0, len(chats))
	for _, c := range chats {
		out = append(out, rest.ChatWire(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["id"]
	msgs, ok := s.store.listMessages(chatID)
	if !ok {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	out := make([]rest.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, rest.MessageWire(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["id"]

	var req rest.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "content must not be empty")
		return
	}
	if utf8.RuneCountInString(content) > chat.MaxContentLength {
		writeError(w, http.StatusBadRequest, "content too long")
		return
	}

	userID := userIDFrom(r.Context())
	sender, ok := s.store.userByID(userID)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	msg := chat.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Sender:    chat.Sender{ID: sender.ID, Name: sender.Name, AvatarURL: sender.AvatarURL},
		Content:   content,
		Kind:      chat.KindText,
		Status:    chat.StatusSent,
		Timestamp: time.Now(),
	}
	if !s.store.appendMessage(msg, false) {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}

	s.scheduleReply(chatID, userID)

	writeJSON(w, http.StatusCreated, rest.MessageWire(msg))
}

// scheduleReply makes the simulated peer answer after the configured
// delay, bumping the chat's unread count.
func (s *Server) scheduleReply(chatID, userID string) {
	peer, ok := s.store.peerOf(chatID, userID)
	if !ok {
		return
	}
	s.replyMu.Lock()
	content := cannedReplies[s.replyIdx%len(cannedReplies)]
	s.replyIdx++
	s.replyMu.Unlock()
	time.AfterFunc(s.replyDelay, func() {
		reply := chat.Message{
			ID:        uuid.NewString(),
			ChatID:    chatID,
			Sender:    chat.Sender{ID: peer.ID, Name: peer.Name, AvatarURL: peer.AvatarURL},
			Content:   content,
			Kind:      chat.KindText,
			Status:    chat.StatusDelivered,
			Timestamp: time.Now(),
		}
		s.store.appendMessage(reply, true)
	})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["id"]
	if !s.store.markRead(chatID) {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, rest.ErrorResponse{Error: msg})
}
