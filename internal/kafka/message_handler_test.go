package kafka

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

type sentMessage struct {
	ref    models.ConversationRef
	params models.SendMessageParams
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (s *fakeSender) SendMessage(_ context.Context, ref models.ConversationRef, params models.SendMessageParams) (*models.ChatMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, sentMessage{ref: ref, params: params})
	return &models.ChatMessage{ID: "m1", ConversationID: ref.ID, Text: params.Text}, nil
}

func record(value string) kafka.Message {
	return kafka.Message{Topic: "backend.chat.events", Value: []byte(value)}
}

func TestChatEventHandlerStoresMessageCreated(t *testing.T) {
	sender := &fakeSender{}
	handle := NewChatEventHandler(sender)

	err := handle(context.Background(), record(`{
		"pattern": "message.created",
		"data": {"conversationId": "c1", "text": "Our store opens at 9am.", "sender": "business", "senderName": "Ragzy AI", "metadata": {"source": "ai"}}
	}`))
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	got := sender.sent[0]
	assert.Equal(t, models.ConversationRef{ID: "c1"}, got.ref)
	assert.Equal(t, "Our store opens at 9am.", got.params.Text)
	assert.Equal(t, models.SenderBusiness, got.params.Sender)
	assert.Equal(t, "Ragzy AI", got.params.SenderName)
	assert.Equal(t, map[string]any{"source": "ai"}, got.params.Metadata)
}

func TestChatEventHandlerIgnoresOtherPatterns(t *testing.T) {
	sender := &fakeSender{}
	handle := NewChatEventHandler(sender)

	require.NoError(t, handle(context.Background(), record(`{"pattern":"conversation.closed","data":{"conversationId":"c1"}}`)))
	assert.Empty(t, sender.sent)
}

func TestChatEventHandlerRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not json", value: `message.created`},
		{name: "no data", value: `{"pattern":"message.created"}`},
		{name: "missing text", value: `{"pattern":"message.created","data":{"conversationId":"c1","sender":"customer"}}`},
		{name: "unknown sender", value: `{"pattern":"message.created","data":{"conversationId":"c1","text":"hi","sender":"robot"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			err := NewChatEventHandler(sender)(context.Background(), record(tt.value))
			assert.ErrorIs(t, err, ErrInvalidEvent)
			assert.Equal(t, statusInvalid, statusOf(err))
			assert.Empty(t, sender.sent)
		})
	}
}

func TestChatEventHandlerWrapsSendErrors(t *testing.T) {
	notFound := models.NewError(http.StatusNotFound, "Conversation not found")
	handle := NewChatEventHandler(&fakeSender{err: notFound})

	err := handle(context.Background(), record(`{"pattern":"message.created","data":{"conversationId":"gone","text":"hi","sender":"business"}}`))
	assert.ErrorIs(t, err, notFound)
	assert.Equal(t, statusRejected, statusOf(err))

	handle = NewChatEventHandler(&fakeSender{err: errors.New("mongo down")})
	err = handle(context.Background(), record(`{"pattern":"message.created","data":{"conversationId":"c1","text":"hi","sender":"business"}}`))
	assert.Equal(t, statusError, statusOf(err))
}
