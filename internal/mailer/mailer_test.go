package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	msg, err := compose(
		"listkeeper <noreply@example.com>",
		"alice@example.com",
		"Activate your account",
		"Here is your token: abc123\n",
	)
	require.NoError(t, err)

	text := string(msg)
	assert.Contains(t, text, "From: ")
	assert.Contains(t, text, "noreply@example.com")
	assert.Contains(t, text, "To: ")
	assert.Contains(t, text, "alice@example.com")
	assert.Contains(t, text, "Subject: Activate your account")
	assert.Contains(t, text, "abc123")

	// Header and body are separated by a blank line.
	assert.True(t, strings.Contains(text, "\r\n\r\n") || strings.Contains(text, "\n\n"))
}

func TestComposeBadAddress(t *testing.T) {
	_, err := compose("not an address", "alice@example.com", "s", "b")
	assert.Error(t, err)
}
