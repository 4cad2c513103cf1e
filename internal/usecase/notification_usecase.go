package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/repo/events"
	"github.com/ragzy-ai/ragzy-api/internal/repo/mongodb"
	"github.com/ragzy-ai/ragzy-api/internal/repo/redisstore"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
	"github.com/ragzy-ai/ragzy-api/pkg/util"
)

type NotificationUseCase interface {
	// HandleMessageNotification emails the recipient right away when they are
	// offline, otherwise queues a re-check once the notification delay passes.
	HandleMessageNotification(ctx context.Context, params models.MessageNotificationParams) error
	ShouldSend(ctx context.Context, messageID, conversationID string, sender models.Sender) (bool, error)
	// ProcessDue claims the due queue entries and sends those still unread.
	ProcessDue(ctx context.Context) (int, error)
}

type notificationUseCase struct {
	conversations mongodb.ConversationRepository
	messages      mongodb.ChatMessageRepository
	widgets       mongodb.WidgetRepository
	members       mongodb.MemberRepository
	workspaces    mongodb.WorkspaceRepository
	queue         redisstore.NotificationQueue
	notifier      MessageNotifier
	publisher     events.Publisher

	delay        time.Duration
	batchSize    int64
	retryBackoff time.Duration
	maxAttempts  int
	now          func() time.Time
	metrics      *prometheus.HistogramVec
}

// errMarkSent means the email went out but the message could not be flagged.
// Such jobs are not retried.
var errMarkSent = errors.New("mark notification sent")

func NewNotificationUseCase(
	conf *config.Config,
	conversations mongodb.ConversationRepository,
	messages mongodb.ChatMessageRepository,
	widgets mongodb.WidgetRepository,
	members mongodb.MemberRepository,
	workspaces mongodb.WorkspaceRepository,
	queue redisstore.NotificationQueue,
	notifier MessageNotifier,
	publisher events.Publisher,
) NotificationUseCase {
	metrics, err := util.GetHistogramVec("notification_send_duration_seconds", "type", "status")
	if err != nil {
		panic(fmt.Errorf("register notification metrics: %w", err))
	}
	return &notificationUseCase{
		conversations: conversations,
		messages:      messages,
		widgets:       widgets,
		members:       members,
		workspaces:    workspaces,
		queue:         queue,
		notifier:      notifier,
		publisher:     publisher,
		delay:         conf.Notification.Delay,
		batchSize:     conf.Notification.BatchSize,
		retryBackoff:  conf.Notification.RetryBackoff,
		maxAttempts:   conf.Notification.MaxAttempts,
		now:           time.Now,
		metrics:       metrics,
	}
}

func (uc *notificationUseCase) HandleMessageNotification(ctx context.Context, params models.MessageNotificationParams) error {
	conv, err := uc.conversations.GetByID(ctx, params.ConversationID)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get conversation: %w", err)
	}

	if !conv.RecipientOnline(params.Sender) {
		msg, err := uc.messages.GetByID(ctx, params.MessageID)
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get message: %w", err)
		}
		if msg.EmailNotificationSent {
			return nil
		}
		return uc.send(ctx, msg, conv)
	}

	job := models.NotificationJob{
		MessageID:      params.MessageID,
		ConversationID: params.ConversationID,
		Sender:         params.Sender,
		DueAt:          uc.now().Add(uc.delay),
	}
	if err := uc.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	log.Debugw(ctx, "notification queued", "message_id", job.MessageID, "due_at", job.DueAt)
	return nil
}

func (uc *notificationUseCase) ShouldSend(ctx context.Context, messageID, conversationID string, sender models.Sender) (bool, error) {
	msg, _, err := uc.evaluate(ctx, messageID, conversationID, sender)
	return msg != nil, err
}

// evaluate returns the message and conversation when a notification is still
// owed, or nil when it is not.
func (uc *notificationUseCase) evaluate(ctx context.Context, messageID, conversationID string, sender models.Sender) (*models.ChatMessage, *models.ChatConversation, error) {
	msg, err := uc.messages.GetByID(ctx, messageID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get message: %w", err)
	}
	if msg.EmailNotificationSent {
		return nil, nil, nil
	}

	conv, err := uc.conversations.GetByID(ctx, conversationID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get conversation: %w", err)
	}

	if !conv.RecipientOnline(sender) {
		return msg, conv, nil
	}
	if msg.ReadAt != nil {
		return nil, nil, nil
	}
	if uc.now().Sub(msg.CreatedAt) >= uc.delay {
		return msg, conv, nil
	}
	return nil, nil, nil
}

// ProcessDue sends the due notifications that are still owed. Jobs that fail
// on a transient error go back on the queue after retryBackoff. Jobs claimed
// before a claim error are processed before the error is returned.
func (uc *notificationUseCase) ProcessDue(ctx context.Context) (int, error) {
	jobs, claimErr := uc.queue.ClaimDue(ctx, uc.now(), uc.batchSize)

	sent := 0
	for _, job := range jobs {
		msg, conv, err := uc.evaluate(ctx, job.MessageID, job.ConversationID, job.Sender)
		if err == nil && msg != nil {
			err = uc.send(ctx, msg, conv)
			if err == nil {
				sent++
			}
		}
		if err != nil {
			uc.retry(ctx, job, err)
		}
	}

	if claimErr != nil {
		return sent, fmt.Errorf("claim due notifications: %w", claimErr)
	}
	return sent, nil
}

func (uc *notificationUseCase) retry(ctx context.Context, job models.NotificationJob, cause error) {
	fields := []any{"message_id", job.MessageID, "attempts", job.Attempts + 1, "error", cause}
	if errors.Is(cause, errMarkSent) {
		log.Errorw(ctx, "notification sent but not marked", fields...)
		return
	}
	if uc.maxAttempts > 0 && job.Attempts+1 >= uc.maxAttempts {
		log.Errorw(ctx, "notification dropped after retries", fields...)
		return
	}

	job.Attempts++
	job.DueAt = uc.now().Add(uc.retryBackoff)
	if err := uc.queue.Enqueue(ctx, job); err != nil {
		log.Errorw(ctx, "failed to requeue notification", append(fields, "requeue_error", err)...)
		return
	}
	log.Warnw(ctx, "notification requeued", append(fields, "due_at", job.DueAt)...)
}

func (uc *notificationUseCase) send(ctx context.Context, msg *models.ChatMessage, conv *models.ChatConversation) (err error) {
	req, err := uc.buildEmail(ctx, msg, conv)
	if err != nil {
		return err
	}
	if req == nil {
		log.Infow(ctx, "no notification recipient", "message_id", msg.ID, "conversation_id", conv.ID)
		return nil
	}

	start := uc.now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		uc.metrics.WithLabelValues(req.Type, status).Observe(time.Since(start).Seconds())
	}()

	event := models.NotificationEvent{
		MessageID:      msg.ID,
		ConversationID: conv.ID,
		Recipient:      req.RecipientEmail,
		Type:           req.Type,
	}

	result, err := uc.notifier.SendMessageNotification(ctx, *req)
	if err != nil {
		event.Error = err.Error()
		publishEvent(ctx, uc.publisher, models.EventNotificationEmailFailed, conv.ID, event)
		return fmt.Errorf("send notification email: %w", err)
	}

	if err := uc.messages.MarkEmailNotificationSent(ctx, msg.ID, uc.now()); err != nil {
		return fmt.Errorf("%w: %w", errMarkSent, err)
	}
	event.MessageRefID = result.MessageID
	publishEvent(ctx, uc.publisher, models.EventNotificationEmailSent, conv.ID, event)
	return nil
}

// buildEmail resolves the recipient of msg. It returns nil when nobody can be emailed.
func (uc *notificationUseCase) buildEmail(ctx context.Context, msg *models.ChatMessage, conv *models.ChatConversation) (*models.MessageNotificationEmail, error) {
	widget, err := uc.widgets.GetByID(ctx, conv.WidgetID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("get widget: %w", err)
	}

	req := &models.MessageNotificationEmail{
		MessageText:    msg.Text,
		ConversationID: conv.ID,
		SenderName:     msg.SenderName,
	}
	if widget != nil {
		req.WidgetName = widget.Name
	}

	if msg.Sender == models.SenderCustomer {
		req.Type = models.NotificationTypeBusiness
		req.SenderName = util.FirstNonEmpty(msg.SenderName, conv.CustomerName)
		if widget != nil {
			req.RecipientEmail = widget.NotificationEmail
		}
		if req.RecipientEmail == "" {
			owner, err := uc.members.GetOwner(ctx, conv.BusinessID)
			if err != nil && !errors.Is(err, models.ErrNotFound) {
				return nil, fmt.Errorf("get workspace owner: %w", err)
			}
			if owner != nil {
				req.RecipientEmail = owner.Email
				req.RecipientName = owner.DisplayName
			}
		}
	} else {
		req.Type = models.NotificationTypeCustomer
		req.RecipientEmail = conv.CustomerEmail
		req.RecipientName = conv.CustomerName
		ws, err := uc.workspaces.GetByID(ctx, conv.BusinessID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("get workspace: %w", err)
		}
		if ws != nil {
			req.BusinessName = ws.Name
		} else {
			req.BusinessName = req.WidgetName
		}
	}

	if req.RecipientEmail == "" {
		return nil, nil
	}
	return req, nil
}
