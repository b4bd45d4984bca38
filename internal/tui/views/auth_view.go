package views

import (
	"github.com/rivo/tview"
)

// AuthView collects credentials for login or registration.
type AuthView struct {
	*tview.Flex
	form       *tview.Form
	message    *tview.TextView
	registerOn bool
	onLogin    func(email, password string)
	onRegister func(name, email, password string)
}

// NewAuthView creates the credentials form, starting in login mode.
func NewAuthView() *AuthView {
	av := &AuthView{
		form:    tview.NewForm(),
		message: tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter),
	}
	av.form.SetBorder(true)
	av.buildForm()

	av.Flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(av.form, 0, 3, true).
		AddItem(av.message, 3, 0, false)

	return av
}

// SetOnLogin sets the callback for a submitted login.
func (av *AuthView) SetOnLogin(fn func(email, password string)) {
	av.onLogin = fn
}

// SetOnRegister sets the callback for a submitted registration.
func (av *AuthView) SetOnRegister(fn func(name, email, password string)) {
	av.onRegister = fn
}

// Form exposes the inner form for focus handling.
func (av *AuthView) Form() *tview.Form {
	return av.form
}

// ShowMessage displays a status line under the form.
func (av *AuthView) ShowMessage(msg string) {
	av.message.Clear()
	av.message.SetText(msg)
}

func (av *AuthView) buildForm() {
	av.form.Clear(true)

	if av.registerOn {
		av.form.SetTitle(" Create Account ")
		av.form.AddInputField("Name", "", 40, nil, nil)
	} else {
		av.form.SetTitle(" Sign In ")
	}
	av.form.AddInputField("Email", "", 40, nil, nil)
	av.form.AddPasswordField("Password", "", 40, '*', nil)

	av.form.AddButton("Submit", av.submit)
	toggle := "Register instead"
	if av.registerOn {
		toggle = "Sign in instead"
	}
	av.form.AddButton(toggle, func() {
		av.registerOn = !av.registerOn
		av.ShowMessage("")
		av.buildForm()
	})
}

func (av *AuthView) submit() {
	if av.registerOn {
		name := av.fieldText("Name")
		email := av.fieldText("Email")
		password := av.fieldText("Password")
		if av.onRegister != nil {
			av.onRegister(name, email, password)
		}
		return
	}
	email := av.fieldText("Email")
	password := av.fieldText("Password")
	if av.onLogin != nil {
		av.onLogin(email, password)
	}
}

func (av *AuthView) fieldText(label string) string {
	item := av.form.GetFormItemByLabel(label)
	if field, ok := item.(*tview.InputField); ok {
		return field.GetText()
	}
	return ""
}
