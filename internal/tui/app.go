// Package tui is the terminal user interface: an auth form, a chat list
// and a message thread, all rendered from the central state store and
// refreshed through bus events.
package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/pigeonchat/pigeon/internal/bus"
	"github.com/pigeonchat/pigeon/internal/session"
	"github.com/pigeonchat/pigeon/internal/state"
	intsync "github.com/pigeonchat/pigeon/internal/sync"
	"github.com/pigeonchat/pigeon/internal/tui/keys"
	"github.com/pigeonchat/pigeon/internal/tui/model"
	"github.com/pigeonchat/pigeon/internal/tui/views"
)

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	pages    *tview.Pages
	store    *state.Store
	ctrl     *intsync.Controller
	sess     *session.Manager
	bus      *bus.Bus
	registry *keys.Registry
	flash    *model.Flash

	statusBar *views.StatusBar
	chatList  *views.ChatList
	msgView   *views.MessageView
	composer  *views.Composer
	authView  *views.AuthView

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(store *state.Store, ctrl *intsync.Controller, sess *session.Manager, b *bus.Bus, sessionName string) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		store:     store,
		ctrl:      ctrl,
		sess:      sess,
		bus:       b,
		registry:  keys.NewRegistry(),
		flash:     &model.Flash{},
		statusBar: views.NewStatusBar(),
		chatList:  views.NewChatList(),
		msgView:   views.NewMessageView(),
		composer:  views.NewComposer(),
		authView:  views.NewAuthView(),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetSession(sessionName)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "q:quit", Visible: true,
		Handler: func() { a.app.Stop() },
	})
	a.registry.AddView("chats", "refresh", &keys.Action{
		Rune: 'r', Key: tcell.KeyRune,
		Description: "r:refresh", Visible: true,
		Handler: func() { go a.refresh() },
	})
	a.registry.AddView("chats", "logout", &keys.Action{
		Rune: 'L', Key: tcell.KeyRune,
		Description: "L:logout", Visible: true,
		Handler: func() { a.logout() },
	})
}

func (a *App) setupCallbacks() {
	a.chatList.SetSelectedFunc(func(row, col int) {
		id := a.chatList.SelectedChat()
		if id != "" {
			a.openChat(id)
		}
	})

	a.composer.SetOnSend(func(text string) {
		go func() {
			if err := a.ctrl.Send(a.ctx, text); err != nil {
				a.flash.Set("Send failed: "+err.Error(), 5*time.Second)
				a.app.QueueUpdateDraw(func() {
					a.composer.RestoreDraft(text)
					a.redrawThread()
					a.statusBar.SetFlash(a.flash.Get())
				})
				return
			}
			a.app.QueueUpdateDraw(a.redrawThread)
		}()
	})

	a.authView.SetOnLogin(func(email, password string) {
		a.authView.ShowMessage("Signing in...")
		go func() {
			if err := a.sess.Login(a.ctx, email, password); err != nil {
				a.app.QueueUpdateDraw(func() {
					a.authView.ShowMessage("[red]Sign in failed: " + err.Error())
				})
			}
		}()
	})

	a.authView.SetOnRegister(func(name, email, password string) {
		a.authView.ShowMessage("Creating account...")
		go func() {
			if err := a.sess.Register(a.ctx, name, email, password); err != nil {
				a.app.QueueUpdateDraw(func() {
					a.authView.ShowMessage("[red]Registration failed: " + err.Error())
				})
			}
		}()
	})
}

func (a *App) setupLayout() {
	chatFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.msgView, 0, 1, false).
		AddItem(a.composer, 1, 0, false)

	a.pages.AddPage("auth", a.authView, true, true)
	a.pages.AddPage("chats", a.chatList, true, false)
	a.pages.AddPage("chat", chatFlex, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape && currentPage == "chat" {
			a.showChats()
			return nil
		}

		// Let text input widgets handle all keys normally.
		focused := a.app.GetFocus()
		if _, ok := focused.(*tview.InputField); ok {
			return event
		}
		if currentPage == "auth" {
			return event
		}

		// 'i' focuses the composer (only when not already in an input field).
		if currentPage == "chat" && event.Key() == tcell.KeyRune && event.Rune() == 'i' {
			a.app.SetFocus(a.composer.InputField)
			return nil
		}

		if a.registry.HandleEvent(currentPage, event) {
			return nil
		}

		return event
	})
}

// Run starts the TUI application.
func (a *App) Run() error {
	a.ctrl.Start(a.ctx)
	a.watchState()

	go func() {
		if a.sess.IsAuthenticated() {
			a.app.QueueUpdateDraw(func() {
				a.showChats()
			})
			a.refresh()
		}
	}()

	err := a.app.Run()
	a.ctrl.Stop()
	return err
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// watchState redraws whenever the store or the session changes.
func (a *App) watchState() {
	stateCh, cancelState := a.bus.Subscribe("state.", 64)
	sessCh, cancelSess := a.bus.Subscribe("session.", 16)

	go func() {
		defer cancelState()
		defer cancelSess()
		for {
			select {
			case <-a.ctx.Done():
				return
			case <-stateCh:
				a.app.QueueUpdateDraw(a.redrawAll)
			case evt := <-sessCh:
				kind := evt.Kind
				a.app.QueueUpdateDraw(func() {
					switch kind {
					case bus.KindSessionAuthenticated:
						a.showChats()
					case bus.KindSessionSignedOut:
						a.flash.Clear()
						a.pages.SwitchToPage("auth")
						a.authView.ShowMessage("")
						a.app.SetFocus(a.authView.Form())
						a.statusBar.SetStatus("SIGNED_OUT")
					}
					a.redrawAll()
				})
			}
		}
	}()
}

func (a *App) redrawAll() {
	currentPage, _ := a.pages.GetFrontPage()
	if currentPage == "chats" {
		a.chatList.Update(a.store.Chats())
	}
	if currentPage == "chat" {
		a.redrawThread()
	}
	a.statusBar.SetLoading(a.store.Loading())
	if err := a.store.Err(); err != nil {
		a.flash.Set(err.Error(), 5*time.Second)
	}
	a.statusBar.SetFlash(a.flash.Get())
	if a.sess.IsAuthenticated() {
		a.statusBar.SetStatus("AUTHENTICATED")
	}
}

func (a *App) redrawThread() {
	chatID := a.store.ActiveChatID()
	if chatID == "" {
		return
	}
	userID := ""
	if u := a.sess.CurrentUser(); u != nil {
		userID = u.ID
	}
	a.msgView.Update(a.store.MessagesFor(chatID), userID)
}

func (a *App) refresh() {
	if err := a.ctrl.Refresh(a.ctx); err != nil {
		a.flash.Set("Refresh failed: "+err.Error(), 5*time.Second)
	}
	a.app.QueueUpdateDraw(a.redrawAll)
}

func (a *App) openChat(id string) {
	go func() {
		a.ctrl.SelectChat(a.ctx, id)
		name := id
		if c := a.store.Chat(id); c != nil && c.Name != "" {
			name = c.Name
		}
		a.app.QueueUpdateDraw(func() {
			a.msgView.SetChatName(name)
			a.redrawThread()
			a.pages.SwitchToPage("chat")
			a.app.SetFocus(a.msgView)
		})
	}()
}

func (a *App) showChats() {
	a.chatList.Update(a.store.Chats())
	a.pages.SwitchToPage("chats")
	a.app.SetFocus(a.chatList)
}

func (a *App) logout() {
	a.sess.Logout()
}
