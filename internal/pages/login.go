package pages

import (
	"go.uber.org/zap"

	"github.com/storeqa/storeqa/internal/browser"
	"github.com/storeqa/storeqa/internal/locators"
)

// LoginPage drives the account login page.
type LoginPage struct {
	page *browser.Page
	loc  locators.LoginTable
	log  *zap.Logger
}

// NewLoginPage binds a login page object to a live page.
func NewLoginPage(page *browser.Page, logger *zap.Logger) *LoginPage {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	return &LoginPage{page: page, loc: locators.Login, log: logger}
}

// Open navigates directly to the login route.
func (l *LoginPage) Open() error {
	return l.page.Navigate("/index.php?route=account/login")
}

// Login submits the credentials form. Steps run in order; the first
// failing step's error propagates unchanged.
func (l *LoginPage) Login(email, password string) error {
	l.log.Info("logging in", zap.String("email", email))
	if err := l.page.Fill(l.loc.EmailInput, email); err != nil {
		return err
	}
	if err := l.page.Fill(l.loc.PasswordInput, password); err != nil {
		return err
	}
	if err := l.page.Click(l.loc.LoginButton); err != nil {
		return err
	}
	return l.page.WaitForLoad()
}

// ClickForgottenPassword follows the forgotten password link.
func (l *LoginPage) ClickForgottenPassword() error {
	return l.page.Click(l.loc.ForgottenPassword)
}

// ClickRegister follows the register link in the account column.
func (l *LoginPage) ClickRegister() error {
	return l.page.Click(l.loc.RegisterLink)
}

// ErrorMessage returns the current alert text, if any.
func (l *LoginPage) ErrorMessage() (string, error) {
	return l.page.GetText(l.loc.AlertDanger)
}

// VerifyLoaded asserts the login form rendered.
func (l *LoginPage) VerifyLoaded() error {
	if err := l.page.ExpectVisible(l.loc.EmailInput); err != nil {
		return err
	}
	return l.page.ExpectVisible(l.loc.PasswordInput)
}

// VerifyLoginError asserts the failure alert is shown.
func (l *LoginPage) VerifyLoginError() error {
	return l.page.ExpectVisible(l.loc.AlertDanger)
}

// VerifyLoginSuccessful asserts the browser reached the account area.
func (l *LoginPage) VerifyLoginSuccessful() error {
	return l.page.ExpectURLContains("account")
}

// VerifyForgottenPasswordVisible asserts the recovery link renders.
func (l *LoginPage) VerifyForgottenPasswordVisible() error {
	return l.page.ExpectVisible(l.loc.ForgottenPassword)
}

// VerifyRegisterLinkVisible asserts the register link renders.
func (l *LoginPage) VerifyRegisterLinkVisible() error {
	return l.page.ExpectVisible(l.loc.RegisterLink)
}
