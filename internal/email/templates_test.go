package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	content, err := renderWelcome("Loop Community Pantry", "Food Bank")
	require.NoError(t, err)
	assert.Contains(t, content, "<title>Welcome to Restockd</title>")
	assert.Contains(t, content, "Hi Loop Community Pantry,")
	assert.Contains(t, content, "Your food bank is registered.")

	content, err = renderWelcome("Ada <Lovelace>", "Donor")
	require.NoError(t, err)
	assert.Contains(t, content, "Hi Ada &lt;Lovelace&gt;,")
	assert.Contains(t, content, "signing up as a donor")
}

func TestSMTPMessageHeaders(t *testing.T) {
	sender := NewSMTPSender("smtp.example.com", 587, "", "", "hello@restockd.org", "Restockd")
	msg, err := sender.newMessage("ada@example.com", subjectWelcome, "<p>hi</p>")
	require.NoError(t, err)

	from := msg.GetFromString()
	require.Len(t, from, 1)
	assert.Contains(t, from[0], "Restockd")
	assert.Contains(t, from[0], "hello@restockd.org")

	to := msg.GetToString()
	require.Len(t, to, 1)
	assert.Contains(t, to[0], "ada@example.com")
}

func TestSMTPMessageRejectsBadAddress(t *testing.T) {
	sender := NewSMTPSender("smtp.example.com", 587, "", "", "hello@restockd.org", "Restockd")
	_, err := sender.newMessage("not an address", subjectWelcome, "<p>hi</p>")
	require.Error(t, err)
}

func TestNoopSender(t *testing.T) {
	assert.NoError(t, NoopSender{}.SendWelcomeEmail(context.Background(), "a@b.co", "A", "Donor"))
}
