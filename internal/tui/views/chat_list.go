package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/pigeonchat/pigeon/internal/chat"
)

// ChatList is the main chat list view.
type ChatList struct {
	*tview.Table
	chats []chat.Chat
}

// NewChatList creates a new chat list table.
func NewChatList() *ChatList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Chats ")

	return &ChatList{Table: table}
}

// Update refreshes the chat list with new data.
func (cl *ChatList) Update(chats []chat.Chat) {
	cl.chats = chats
	cl.Clear()

	// Header row.
	cl.SetCell(0, 0, tview.NewTableCell(" Name").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 1, tview.NewTableCell(" Last Message").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 2, tview.NewTableCell(" Time").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))

	for i, c := range chats {
		row := i + 1
		name := c.Name
		if name == "" {
			name = c.ID
		}
		if c.UnreadCount > 0 {
			name = fmt.Sprintf("* %s (%d)", name, c.UnreadCount)
		}

		preview := ""
		var lastAt time.Time
		if c.LastMessage != nil {
			preview = sanitizeForTerminal(c.LastMessage.Content)
			lastAt = c.LastMessage.Timestamp
		}

		cl.SetCell(row, 0, tview.NewTableCell(" "+sanitizeForTerminal(name)).SetMaxWidth(30).SetExpansion(1))
		cl.SetCell(row, 1, tview.NewTableCell(" "+preview).SetMaxWidth(40).SetExpansion(2))
		cl.SetCell(row, 2, tview.NewTableCell(" "+formatTimestamp(lastAt)).SetMaxWidth(12))
	}
}

// SelectedChat returns the id of the currently selected chat.
func (cl *ChatList) SelectedChat() string {
	row, _ := cl.GetSelection()
	idx := row - 1 // account for header
	if idx >= 0 && idx < len(cl.chats) {
		return cl.chats[idx].ID
	}
	return ""
}

// formatTimestamp renders a short clock or date; the zero time means the
// backend sent an unparseable timestamp and gets a placeholder.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "--:--"
	}
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}
