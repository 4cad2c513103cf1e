package usecase

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
	"github.com/ragzy-ai/ragzy-api/pkg/util"
)

type EmailUseCase struct {
	sender    EmailSender
	catalog   *emailCatalog
	appURL    string
	fromEmail string
}

func NewEmailUseCase(conf *config.Config, sender EmailSender) *EmailUseCase {
	return &EmailUseCase{
		sender:    sender,
		catalog:   mustLoadEmailCatalog(),
		appURL:    strings.TrimRight(conf.App.URL, "/"),
		fromEmail: conf.SendPulse.FromEmail,
	}
}

func (uc *EmailUseCase) link(path string, query url.Values) string {
	u := uc.appURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (uc *EmailUseCase) send(ctx context.Context, name string, data any, to models.Recipient) (*models.SendEmailResult, error) {
	rendered, err := uc.catalog.render(name, data)
	if err != nil {
		return nil, fmt.Errorf("render %s email: %w", name, err)
	}

	result, err := uc.sender.Send(ctx, models.Email{
		Subject: rendered.Subject,
		From:    models.Recipient{Name: rendered.FromName, Email: uc.fromEmail},
		To:      []models.Recipient{to},
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	})
	if err != nil {
		log.Errorw(ctx, "failed to send email", "template", name, "error", err)
		return nil, err
	}
	log.Infow(ctx, "email sent", "template", name, "message_id", result.MessageID)
	return result, nil
}

// agentLink points at an agent page when both ids are known, else at the dashboard.
func (uc *EmailUseCase) agentLink(workspaceID, agentID, page string) string {
	if workspaceID == "" || agentID == "" {
		return uc.link("/dashboard", nil)
	}
	return uc.link(fmt.Sprintf("/dashboard/%s/agents/%s/%s", workspaceID, agentID, page), nil)
}

func (uc *EmailUseCase) SendKnowledgeBaseProcessed(ctx context.Context, req models.KnowledgeBaseProcessedEmail) (*models.SendEmailResult, error) {
	data := struct {
		models.KnowledgeBaseProcessedEmail
		ChunksCount int
		Link        string
	}{req, util.Val(req.ChunksCount), uc.agentLink(req.WorkspaceID, req.AgentID, "sources")}
	return uc.send(ctx, string(models.EmailKnowledgeBaseProcessed), data, models.Recipient{Name: req.UserName, Email: req.Email})
}

func (uc *EmailUseCase) SendArticle(ctx context.Context, req models.ArticleEmail) (*models.SendEmailResult, error) {
	data := struct {
		models.ArticleEmail
		ChunksCount int
		Link        string
	}{req, util.Val(req.ChunksCount), uc.link("/dashboard/knowledge-base", nil)}
	return uc.send(ctx, string(models.EmailArticle), data, models.Recipient{Name: util.FirstNonEmpty(req.UserName, req.Email), Email: req.Email})
}

func preview(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}

func (uc *EmailUseCase) SendMessageNotification(ctx context.Context, req models.MessageNotificationEmail) (*models.SendEmailResult, error) {
	to := models.Recipient{Name: util.FirstNonEmpty(req.RecipientName, req.RecipientEmail), Email: req.RecipientEmail}

	if req.Type == models.NotificationTypeBusiness {
		data := struct {
			SenderName    string
			CustomerEmail string
			WidgetName    string
			Preview       string
			Link          string
		}{
			SenderName:    util.FirstNonEmpty(req.SenderName, "Customer"),
			CustomerEmail: req.RecipientEmail,
			WidgetName:    req.WidgetName,
			Preview:       preview(req.MessageText, 100),
			Link:          uc.link("/dashboard/conversations", url.Values{"conversation": {req.ConversationID}}),
		}
		return uc.send(ctx, "message-notification-business", data, to)
	}

	data := struct {
		RecipientName string
		BusinessName  string
		Preview       string
		Link          string
	}{
		RecipientName: util.FirstNonEmpty(req.RecipientName, "Customer"),
		BusinessName:  util.FirstNonEmpty(req.BusinessName, "Support Team"),
		Preview:       preview(req.MessageText, 150),
		Link:          uc.link("/widget/"+req.ConversationID, nil),
	}
	return uc.send(ctx, "message-notification-customer", data, to)
}

func (uc *EmailUseCase) SendAgentDeployed(ctx context.Context, req models.AgentDeployedEmail) (*models.SendEmailResult, error) {
	data := struct {
		models.AgentDeployedEmail
		Link string
	}{req, uc.link(fmt.Sprintf("/dashboard/%s/agents/%s", req.WorkspaceID, req.AgentID), nil)}
	return uc.send(ctx, string(models.EmailAgentDeployed), data, models.Recipient{Name: req.UserName, Email: req.Email})
}

func (uc *EmailUseCase) SendWelcome(ctx context.Context, req models.WelcomeEmail) (*models.SendEmailResult, error) {
	data := struct {
		models.WelcomeEmail
		Link string
	}{req, uc.link("/dashboard", nil)}
	return uc.send(ctx, string(models.EmailWelcome), data, models.Recipient{Name: req.Name, Email: req.Email})
}

func (uc *EmailUseCase) SendInvite(ctx context.Context, req models.InviteEmail) (*models.SendEmailResult, error) {
	data := struct {
		models.InviteEmail
		Role string
		Link string
	}{req, util.FirstNonEmpty(req.Role, string(models.RoleMember)), uc.link("/invite/"+req.InviteToken, nil)}
	return uc.send(ctx, string(models.EmailInvite), data, models.Recipient{Name: req.Email, Email: req.Email})
}

type leadField struct {
	Key   string
	Value string
}

func (uc *EmailUseCase) SendLeadCollected(ctx context.Context, req models.LeadCollectedEmail) (*models.SendEmailResult, error) {
	fields := make([]leadField, 0, len(req.LeadData))
	for k, v := range req.LeadData {
		fields = append(fields, leadField{Key: k, Value: cast.ToString(v)})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })

	data := struct {
		models.LeadCollectedEmail
		LeadFields []leadField
		Link       string
	}{req, fields, uc.agentLink(req.WorkspaceID, req.AgentID, "contacts")}
	return uc.send(ctx, string(models.EmailLeadCollected), data, models.Recipient{Name: req.UserName, Email: req.Email})
}

func (uc *EmailUseCase) SendWorkspaceCreated(ctx context.Context, req models.WorkspaceCreatedEmail) (*models.SendEmailResult, error) {
	data := struct {
		models.WorkspaceCreatedEmail
		Link string
	}{req, uc.link("/dashboard/"+req.WorkspaceID, nil)}
	return uc.send(ctx, string(models.EmailWorkspaceCreated), data, models.Recipient{Name: req.UserName, Email: req.Email})
}

func (uc *EmailUseCase) SendPasswordReset(ctx context.Context, req models.PasswordResetEmail) (*models.SendEmailResult, error) {
	data := struct {
		models.PasswordResetEmail
		Link string
	}{req, req.ResetLink}
	return uc.send(ctx, string(models.EmailPasswordReset), data, models.Recipient{Name: util.FirstNonEmpty(req.UserName, req.Email), Email: req.Email})
}
