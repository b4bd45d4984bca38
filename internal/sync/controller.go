package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pigeonchat/pigeon/internal/bus"
	"github.com/pigeonchat/pigeon/internal/chat"
	"github.com/pigeonchat/pigeon/internal/state"
	"go.uber.org/zap"
)

// Archive persists confirmed conversation data for offline reads. May
// be nil; persistence failures never affect the in-memory state.
type Archive interface {
	SaveChats(chats []chat.Chat) error
	SaveMessages(msgs []chat.Message) error
}

// Controller orchestrates backend calls triggered by lifecycle events
// and feeds the results into the store. It is the only component that
// talks to the backend, and it owns the optimistic-send protocol.
type Controller struct {
	backend chat.Backend
	session chat.SessionProvider
	store   *state.Store
	archive Archive
	bus     *bus.Bus
	logger  *zap.Logger
	cancel  context.CancelFunc
}

// NewController creates a controller. archive may be nil.
func NewController(backend chat.Backend, session chat.SessionProvider, store *state.Store, archive Archive, b *bus.Bus, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		backend: backend,
		session: session,
		store:   store,
		archive: archive,
		bus:     b,
		logger:  logger,
	}
}

// Start subscribes to session lifecycle events: becoming authenticated
// triggers the initial chat-list load, signing out resets the store.
func (c *Controller) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	ch, unsub := c.bus.Subscribe("session.", 64)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				switch evt.Kind {
				case bus.KindSessionAuthenticated:
					if err := c.Refresh(ctx); err != nil {
						c.logger.Error("initial chat load failed", zap.Error(err))
					}
				case bus.KindSessionSignedOut:
					c.store.Reset()
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the controller's event loop.
func (c *Controller) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Refresh loads the full chat list into the store. The error is both
// recorded in the store and returned, so a caller can offer a retry;
// there is no automatic retry.
func (c *Controller) Refresh(ctx context.Context) error {
	c.store.SetLoading(true)
	chats, err := c.backend.ListChats(ctx)
	if err != nil {
		c.store.SetError(err)
		c.store.SetLoading(false)
		return err
	}
	c.store.SetChats(chats)
	c.store.SetLoading(false)

	if c.archive != nil {
		if err := c.archive.SaveChats(chats); err != nil {
			c.logger.Warn("archiving chats failed", zap.Error(err))
		}
	}
	c.logger.Info("chat list loaded", zap.Int("chats", len(chats)))
	return nil
}

// SelectChat makes chatID the active conversation: it loads the chat's
// messages and, only once they are in, acknowledges the chat as read.
// A failed load keeps the chat selected but empty with the error flag
// set, and leaves the unread counter alone. Selection is not awaited by
// UI callers, so failures are recorded in the store rather than
// returned.
func (c *Controller) SelectChat(ctx context.Context, chatID string) {
	c.store.SetActiveChat(chatID)

	msgs, err := c.backend.ListMessages(ctx, chatID)
	if err != nil {
		c.logger.Warn("message load failed", zap.String("chat_id", chatID), zap.Error(err))
		c.store.SetError(err)
		return
	}
	c.store.SetMessagesForChat(chatID, msgs)

	if c.archive != nil {
		if err := c.archive.SaveMessages(msgs); err != nil {
			c.logger.Warn("archiving messages failed", zap.Error(err))
		}
	}

	if err := c.backend.MarkRead(ctx, chatID); err != nil {
		c.logger.Warn("mark read failed", zap.String("chat_id", chatID), zap.Error(err))
		return
	}

	// The fetch may have raced a newer selection; clearing the unread
	// count of a chat the user has since left would lose a legitimate
	// signal, so re-check relevance first.
	if c.store.ActiveChatID() == chatID {
		c.store.MarkChatRead(chatID)
	}
}

// Send posts content to the active chat with an optimistic local echo.
// Without an active chat or a signed-in user it is a silent no-op. On
// failure the optimistic entry is rolled back, the error lands in the
// store for passive UI, and is also returned so the caller can restore
// the draft.
func (c *Controller) Send(ctx context.Context, content string) error {
	chatID := c.store.ActiveChatID()
	user := c.session.CurrentUser()
	if chatID == "" || user == nil {
		return nil
	}

	tempID := uuid.NewString()
	c.store.AppendMessage(chat.Message{
		ID:     tempID,
		ChatID: chatID,
		Sender: chat.Sender{
			ID:        user.ID,
			Name:      user.Name,
			AvatarURL: user.AvatarURL,
		},
		Content:   content,
		Kind:      chat.KindText,
		Status:    chat.StatusSent,
		Timestamp: time.Now(),
		Pending:   true,
	})

	confirmed, err := c.backend.SendMessage(ctx, chatID, content)
	if err != nil {
		c.store.DiscardMessage(tempID)
		c.store.SetError(err)
		c.logger.Warn("send failed", zap.String("chat_id", chatID), zap.Error(err))
		return err
	}

	c.store.ReconcileMessage(tempID, confirmed)
	if c.archive != nil {
		if err := c.archive.SaveMessages([]chat.Message{confirmed}); err != nil {
			c.logger.Warn("archiving sent message failed", zap.Error(err))
		}
	}
	c.logger.Info("message sent",
		zap.String("chat_id", chatID),
		zap.String("temp_id", tempID),
		zap.String("msg_id", confirmed.ID))
	return nil
}
