package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationTrimsKeepingFirstMessage(t *testing.T) {
	c := NewConversationContext()

	c.AddMessage(RoleUser, "first")
	for i := 0; i < 30; i++ {
		c.AddMessage(RoleAssistant, "reply")
	}

	msgs := c.GetMessages()
	require.Len(t, msgs, 20)
	assert.Equal(t, "first", msgs[0].Content)
}

func TestConversationReset(t *testing.T) {
	c := NewConversationContext()
	c.AddMessage(RoleUser, "hello")
	require.Equal(t, 1, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
}
