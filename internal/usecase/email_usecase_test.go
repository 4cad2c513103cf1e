package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/models"
)

func newEmailUseCase(sender EmailSender) *EmailUseCase {
	return NewEmailUseCase(&config.Config{
		App:       config.AppConfig{URL: "https://app.ragzy.ai/"},
		SendPulse: config.SendPulseConfig{FromEmail: "support@ragzy.ai"},
	}, sender)
}

func TestEmailCatalogRendersEveryType(t *testing.T) {
	catalog := mustLoadEmailCatalog()
	for _, name := range []string{
		string(models.EmailKnowledgeBaseProcessed),
		string(models.EmailArticle),
		"message-notification-business",
		"message-notification-customer",
		string(models.EmailAgentDeployed),
		string(models.EmailWelcome),
		string(models.EmailInvite),
		string(models.EmailLeadCollected),
		string(models.EmailWorkspaceCreated),
		string(models.EmailPasswordReset),
	} {
		assert.Contains(t, catalog.templates, name)
	}

	_, err := catalog.render("missing", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEmailCatalogRejectsBrokenLayouts(t *testing.T) {
	for name, layout := range map[string]string{
		"no body":      "<html><h1>{{ .Heading }}</h1></html>",
		"escaped body": "<html><pre>{{ .Body | printf \"%q\" }}</pre></html>",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := loadEmailCatalog([]byte("layout: '" + layout + "'\ntemplates: {}\n"))
			require.Error(t, err)
		})
	}
}

func TestSendMessageNotificationBusiness(t *testing.T) {
	sender := &fakeEmailSender{}
	uc := newEmailUseCase(sender)

	_, err := uc.SendMessageNotification(context.Background(), models.MessageNotificationEmail{
		Type:           models.NotificationTypeBusiness,
		RecipientEmail: "owner@acme.io",
		MessageText:    strings.Repeat("a", 120),
		ConversationID: "c1",
		WidgetName:     "Support",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	email := sender.sent[0]
	assert.Equal(t, "New message from Customer", email.Subject)
	assert.Equal(t, models.Recipient{Name: "Ragzy Notifications", Email: "support@ragzy.ai"}, email.From)
	assert.Equal(t, []models.Recipient{{Name: "owner@acme.io", Email: "owner@acme.io"}}, email.To)
	assert.Contains(t, email.Text, strings.Repeat("a", 100)+"...")
	assert.NotContains(t, email.Text, strings.Repeat("a", 101))
	assert.Contains(t, email.Text, "https://app.ragzy.ai/dashboard/conversations?conversation=c1")
	assert.Contains(t, email.HTML, "via Support")
}

func TestSendMessageNotificationCustomer(t *testing.T) {
	sender := &fakeEmailSender{}
	uc := newEmailUseCase(sender)

	_, err := uc.SendMessageNotification(context.Background(), models.MessageNotificationEmail{
		Type:           models.NotificationTypeCustomer,
		RecipientEmail: "jane@example.com",
		RecipientName:  "Jane Doe",
		MessageText:    "Your order shipped",
		ConversationID: "c1",
	})
	require.NoError(t, err)

	email := sender.sent[0]
	assert.Equal(t, "Support Team replied to your message", email.Subject)
	assert.Contains(t, email.Text, "Hi Jane,")
	assert.Contains(t, email.Text, "https://app.ragzy.ai/widget/c1")
}

func TestSendLeadCollectedListsFieldsInOrder(t *testing.T) {
	sender := &fakeEmailSender{}
	uc := newEmailUseCase(sender)

	_, err := uc.SendLeadCollected(context.Background(), models.LeadCollectedEmail{
		Email:     "owner@acme.io",
		UserName:  "Olive Owner",
		LeadName:  "Jane",
		LeadEmail: "jane@example.com",
		LeadData:  map[string]any{"phone": "555-0100", "company": "Initech", "seats": 12},
	})
	require.NoError(t, err)

	text := sender.sent[0].Text
	assert.Contains(t, text, "- seats: 12")
	assert.Less(t, strings.Index(text, "company"), strings.Index(text, "phone"))
	assert.Contains(t, text, "https://app.ragzy.ai/dashboard")
}

func TestSendInviteDefaultsRole(t *testing.T) {
	sender := &fakeEmailSender{}
	uc := newEmailUseCase(sender)

	_, err := uc.SendInvite(context.Background(), models.InviteEmail{
		Email:       "new@acme.io",
		CompanyName: "Acme",
		InviterName: "Olive",
		InviteToken: "tok123",
	})
	require.NoError(t, err)

	email := sender.sent[0]
	assert.Equal(t, "Olive invited you to join Acme on Ragzy", email.Subject)
	assert.Equal(t, "Olive via Ragzy", email.From.Name)
	assert.Contains(t, email.Text, "as Member.")
	assert.Contains(t, email.Text, "https://app.ragzy.ai/invite/tok123")
}

func TestSendEmailPropagatesProviderError(t *testing.T) {
	uc := newEmailUseCase(&fakeEmailSender{err: errors.New("quota exceeded")})

	_, err := uc.SendWelcome(context.Background(), models.WelcomeEmail{Email: "a@b.co", Name: "Ann"})
	require.Error(t, err)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "héllo...", preview("héllo wörld", 5))
}
