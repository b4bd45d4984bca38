package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/pigeonchat/pigeon/internal/chat"
)

// MessageView displays messages for a single chat.
type MessageView struct {
	*tview.TextView
	chatName string
}

// NewMessageView creates a new message view.
func NewMessageView() *MessageView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Messages ")

	return &MessageView{TextView: tv}
}

// SetChatName updates the title with the chat name.
func (mv *MessageView) SetChatName(name string) {
	mv.chatName = name
	mv.SetTitle(fmt.Sprintf(" %s ", sanitizeForTerminal(name)))
}

// Update refreshes the message view. Messages arrive oldest first;
// currentUserID marks which ones render as "You".
func (mv *MessageView) Update(msgs []chat.Message, currentUserID string) {
	mv.Clear()

	for _, m := range msgs {
		sender := m.Sender.Name
		if sender == "" {
			sender = m.Sender.ID
		}
		if m.Sender.ID == currentUserID {
			sender = "You"
		}

		ts := formatTimestamp(m.Timestamp)
		marker := ""
		if m.Pending {
			marker = " [::d](sending...)[-:-:-]"
		}
		line := fmt.Sprintf("[::b]%s[-:-:-] [::d]%s[-:-:-]%s\n%s\n\n",
			sanitizeForTerminal(sender), ts, marker, sanitizeForTerminal(m.Content))
		_, _ = fmt.Fprint(mv, line)
	}

	mv.ScrollToEnd()
}
