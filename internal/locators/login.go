package locators

// LoginTable maps semantic element names on the account login page to
// selectors.
type LoginTable struct {
	// Login form
	EmailInput        string
	PasswordInput     string
	LoginButton       string
	ForgottenPassword string

	// Registration
	RegisterLink   string
	ContinueButton string

	// Error messages
	AlertDanger string

	// Account page (after login)
	AccountHeader string
	LogoutLink    string
}

// Login is the login page locator table.
var Login = LoginTable{
	EmailInput:        "#input-email",
	PasswordInput:     "#input-password",
	LoginButton:       "button[type='submit']",
	ForgottenPassword: "a:has-text('Forgotten Password'):not(.list-group-item)",

	RegisterLink:   "#column-right a.list-group-item:has-text('Register')",
	ContinueButton: "#content a.btn-primary:has-text('Continue')",

	AlertDanger: ".alert-danger",

	AccountHeader: "#content h2",
	LogoutLink:    "a:has-text('Logout')",
}
