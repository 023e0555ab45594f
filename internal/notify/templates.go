package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/dtroode/voc-auth/internal/model"
)

const (
	welcomeSubject         = "Welcome to Voice Of Customer"
	resetSubject           = "Password Reset Request"
	passwordChangedSubject = "Your password was changed"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "welcome"}}<p>Hi {{.Name}},</p>
<p>Thank you for registering!</p>{{end}}
{{define "reset"}}<p>Hi {{.Name}},</p>
<p>Click the link to reset your password: <a href="{{.Link}}">Reset Password</a></p>
<p>The link expires in {{.TTL}}. If you did not ask for a reset, ignore this email.</p>{{end}}
{{define "password_changed"}}<p>Hi {{.Name}},</p>
<p>The password of your account was changed. If this was not you, reset it right away.</p>{{end}}
`))

type mailData struct {
	Name string
	Link string
	TTL  string
}

func render(name string, data mailData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", name, err)
	}
	return buf.String(), nil
}

// WelcomeEmail builds the message sent after registration.
func WelcomeEmail(user model.User) (model.Email, error) {
	body, err := render("welcome", mailData{Name: displayName(user)})
	if err != nil {
		return model.Email{}, err
	}
	return model.Email{To: user.Email, Subject: welcomeSubject, HTML: body}, nil
}

// ResetEmail builds the message carrying the password reset link.
func ResetEmail(user model.User, link string, ttl time.Duration) (model.Email, error) {
	body, err := render("reset", mailData{Name: displayName(user), Link: link, TTL: ttl.String()})
	if err != nil {
		return model.Email{}, err
	}
	return model.Email{To: user.Email, Subject: resetSubject, HTML: body}, nil
}

// PasswordChangedEmail builds the message sent after a reset or an authenticated change.
func PasswordChangedEmail(user model.User) (model.Email, error) {
	body, err := render("password_changed", mailData{Name: displayName(user)})
	if err != nil {
		return model.Email{}, err
	}
	return model.Email{To: user.Email, Subject: passwordChangedSubject, HTML: body}, nil
}

// ResetLink appends token and email as query parameters to base.
func ResetLink(base, token, email string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	q.Set("email", email)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func displayName(user model.User) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}
