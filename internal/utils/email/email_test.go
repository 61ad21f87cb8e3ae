package email

import (
	"testing"

	"github.com/mdpress/mdpress/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestIsCorrect(t *testing.T) {
	e := New(&config.Email{})

	assert.NoError(t, e.IsCorrect("user@example.com"))
	assert.NoError(t, e.IsCorrect("User Name <user@example.com>"))
	assert.Error(t, e.IsCorrect("not-an-email"))
	assert.Error(t, e.IsCorrect(""))
	assert.Error(t, e.IsCorrect("@example.com"))
}

func TestSend_UnconfiguredCredentials(t *testing.T) {
	e := New(&config.Email{})

	err := e.Send("user@example.com", "subject", "body")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestBuildMessage(t *testing.T) {
	e := New(&config.Email{Username: "no-reply@mdpress.io", SenderName: "mdpress"})

	msg := string(e.buildMessage("user@example.com", "Your verification code", "123456"))

	assert.Contains(t, msg, "To: user@example.com")
	assert.Contains(t, msg, "no-reply@mdpress.io")
	assert.Contains(t, msg, "Subject: ")
	assert.Contains(t, msg, "Message-ID: <")
	assert.Contains(t, msg, "\r\n\r\n123456")
}
