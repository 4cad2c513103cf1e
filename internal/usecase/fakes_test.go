package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/repo/mongodb"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// applySet mimics a $set/$unset update by round tripping doc through bson.
func applySet[T any](doc *T, set bson.M, unset ...string) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return err
	}
	for k, v := range set {
		m[k] = v
	}
	for _, k := range unset {
		delete(m, k)
	}
	raw, err = bson.Marshal(m)
	if err != nil {
		return err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return err
	}
	*doc = out
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Envelope
}

func (p *recordingPublisher) Publish(_ context.Context, msg models.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Meta.Type)
	}
	return out
}

type fakeWidgetRepo struct {
	items map[string]models.ChatWidget
}

func newFakeWidgetRepo(widgets ...models.ChatWidget) *fakeWidgetRepo {
	r := &fakeWidgetRepo{items: map[string]models.ChatWidget{}}
	for _, w := range widgets {
		r.items[w.ID] = w
	}
	return r
}

func (r *fakeWidgetRepo) Create(_ context.Context, w *models.ChatWidget) error {
	r.items[w.ID] = *w
	return nil
}

func (r *fakeWidgetRepo) GetByID(_ context.Context, id string) (*models.ChatWidget, error) {
	w, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &w, nil
}

func (r *fakeWidgetRepo) ListByBusiness(_ context.Context, businessID string) ([]models.ChatWidget, error) {
	var out []models.ChatWidget
	for _, w := range r.items {
		if w.BusinessID == businessID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWidgetRepo) Replace(_ context.Context, w *models.ChatWidget) error {
	if _, ok := r.items[w.ID]; !ok {
		return models.ErrNotFound
	}
	r.items[w.ID] = *w
	return nil
}

func (r *fakeWidgetRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeConversationRepo struct {
	items map[string]models.ChatConversation
}

func newFakeConversationRepo(convs ...models.ChatConversation) *fakeConversationRepo {
	r := &fakeConversationRepo{items: map[string]models.ChatConversation{}}
	for _, c := range convs {
		r.items[c.ID] = c
	}
	return r
}

func (r *fakeConversationRepo) Create(_ context.Context, c *models.ChatConversation) error {
	r.items[c.ID] = *c
	return nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id string) (*models.ChatConversation, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (r *fakeConversationRepo) ListByBusiness(_ context.Context, businessID string, limit, skip int64) (*mongodb.PaginateWithTotal[models.ChatConversation], error) {
	var all []models.ChatConversation
	for _, c := range r.items {
		if c.BusinessID == businessID {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	page := &mongodb.PaginateWithTotal[models.ChatConversation]{Total: int64(len(all))}
	for i := skip; i < int64(len(all)) && i < skip+limit; i++ {
		page.Data = append(page.Data, all[i])
	}
	return page, nil
}

func (r *fakeConversationRepo) Update(_ context.Context, id string, set bson.M, unset ...string) (*models.ChatConversation, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if err := applySet(&c, set, unset...); err != nil {
		return nil, err
	}
	r.items[id] = c
	return &c, nil
}

func (r *fakeConversationRepo) RecordMessage(_ context.Context, id string, msg *models.ChatMessage) error {
	c, ok := r.items[id]
	if !ok {
		return models.ErrNotFound
	}
	c.LastMessage = msg.Text
	c.LastMessageAt = &msg.CreatedAt
	if msg.Sender == models.SenderCustomer {
		c.UnreadCount++
	}
	r.items[id] = c
	return nil
}

type fakeMessageRepo struct {
	items map[string]models.ChatMessage
}

func newFakeMessageRepo(msgs ...models.ChatMessage) *fakeMessageRepo {
	r := &fakeMessageRepo{items: map[string]models.ChatMessage{}}
	for _, m := range msgs {
		r.items[m.ID] = m
	}
	return r
}

func (r *fakeMessageRepo) Create(_ context.Context, m *models.ChatMessage) error {
	r.items[m.ID] = *m
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id string) (*models.ChatMessage, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &m, nil
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, conversationID string) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, m := range r.items {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, conversationID string, sender models.Sender, at time.Time) (int64, error) {
	var n int64
	for id, m := range r.items {
		if m.ConversationID == conversationID && m.Sender == sender && m.ReadAt == nil {
			m.ReadAt = &at
			r.items[id] = m
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) MarkEmailNotificationSent(_ context.Context, id string, at time.Time) error {
	m, ok := r.items[id]
	if !ok {
		return models.ErrNotFound
	}
	m.EmailNotificationSent = true
	m.EmailNotificationSentAt = &at
	r.items[id] = m
	return nil
}

func (r *fakeMessageRepo) DeleteByConversation(_ context.Context, conversationID string) (int64, error) {
	var n int64
	for id, m := range r.items {
		if m.ConversationID == conversationID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

type fakeWorkspaceRepo struct {
	items map[string]models.Workspace
}

func newFakeWorkspaceRepo(workspaces ...models.Workspace) *fakeWorkspaceRepo {
	r := &fakeWorkspaceRepo{items: map[string]models.Workspace{}}
	for _, w := range workspaces {
		r.items[w.ID] = w
	}
	return r
}

func (r *fakeWorkspaceRepo) Create(_ context.Context, ws *models.Workspace) error {
	for _, w := range r.items {
		if w.URL == ws.URL {
			return models.ErrAlreadyExists
		}
	}
	r.items[ws.ID] = *ws
	return nil
}

func (r *fakeWorkspaceRepo) GetByID(_ context.Context, id string) (*models.Workspace, error) {
	w, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &w, nil
}

func (r *fakeWorkspaceRepo) GetByURL(_ context.Context, url string) (*models.Workspace, error) {
	for _, w := range r.items {
		if w.URL == url {
			return &w, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeWorkspaceRepo) ListByIDs(_ context.Context, ids []string) ([]models.Workspace, error) {
	var out []models.Workspace
	for _, id := range ids {
		if w, ok := r.items[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWorkspaceRepo) Update(_ context.Context, id string, set bson.M) (*models.Workspace, error) {
	w, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if err := applySet(&w, set); err != nil {
		return nil, err
	}
	r.items[id] = w
	return &w, nil
}

func (r *fakeWorkspaceRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeMemberRepo struct {
	items map[string]models.WorkspaceMember
}

func newFakeMemberRepo(members ...models.WorkspaceMember) *fakeMemberRepo {
	r := &fakeMemberRepo{items: map[string]models.WorkspaceMember{}}
	for _, m := range members {
		r.items[models.MemberID(m.UserID, m.WorkspaceID)] = m
	}
	return r
}

func (r *fakeMemberRepo) Create(_ context.Context, m *models.WorkspaceMember) error {
	id := models.MemberID(m.UserID, m.WorkspaceID)
	if _, ok := r.items[id]; ok {
		return models.ErrAlreadyExists
	}
	r.items[id] = *m
	return nil
}

func (r *fakeMemberRepo) Get(_ context.Context, userID, workspaceID string) (*models.WorkspaceMember, error) {
	m, ok := r.items[models.MemberID(userID, workspaceID)]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &m, nil
}

func (r *fakeMemberRepo) GetOwner(_ context.Context, workspaceID string) (*models.WorkspaceMember, error) {
	for _, m := range r.items {
		if m.WorkspaceID == workspaceID && m.Role == models.RoleOwner {
			return &m, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeMemberRepo) ListByWorkspace(_ context.Context, workspaceID string) ([]models.WorkspaceMember, error) {
	var out []models.WorkspaceMember
	for _, m := range r.items {
		if m.WorkspaceID == workspaceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) ListByUser(_ context.Context, userID string) ([]models.WorkspaceMember, error) {
	var out []models.WorkspaceMember
	for _, m := range r.items {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) Delete(_ context.Context, userID, workspaceID string) error {
	id := models.MemberID(userID, workspaceID)
	if _, ok := r.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeMemberRepo) DeleteByWorkspace(_ context.Context, workspaceID string) (int64, error) {
	var n int64
	for id, m := range r.items {
		if m.WorkspaceID == workspaceID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

type fakeInviteRepo struct {
	items map[string]models.WorkspaceInvite
}

func newFakeInviteRepo(invites ...models.WorkspaceInvite) *fakeInviteRepo {
	r := &fakeInviteRepo{items: map[string]models.WorkspaceInvite{}}
	for _, i := range invites {
		r.items[i.ID] = i
	}
	return r
}

func (r *fakeInviteRepo) Create(_ context.Context, i *models.WorkspaceInvite) error {
	r.items[i.ID] = *i
	return nil
}

func (r *fakeInviteRepo) GetByID(_ context.Context, id string) (*models.WorkspaceInvite, error) {
	i, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &i, nil
}

func (r *fakeInviteRepo) GetByToken(_ context.Context, token string) (*models.WorkspaceInvite, error) {
	for _, i := range r.items {
		if i.Token == token {
			return &i, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeInviteRepo) ListByWorkspace(_ context.Context, workspaceID string) ([]models.WorkspaceInvite, error) {
	var out []models.WorkspaceInvite
	for _, i := range r.items {
		if i.WorkspaceID == workspaceID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *fakeInviteRepo) SetStatus(_ context.Context, id string, status models.InviteStatus) error {
	i, ok := r.items[id]
	if !ok {
		return models.ErrNotFound
	}
	i.Status = status
	r.items[id] = i
	return nil
}

func (r *fakeInviteRepo) DeleteByWorkspace(_ context.Context, workspaceID string) (int64, error) {
	var n int64
	for id, i := range r.items {
		if i.WorkspaceID == workspaceID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

type fakeQueue struct {
	jobs     []models.NotificationJob
	claimErr error
}

func (q *fakeQueue) Enqueue(_ context.Context, job models.NotificationJob) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) ClaimDue(_ context.Context, now time.Time, limit int64) ([]models.NotificationJob, error) {
	var due, rest []models.NotificationJob
	for _, j := range q.jobs {
		if !j.DueAt.After(now) && int64(len(due)) < limit {
			due = append(due, j)
		} else {
			rest = append(rest, j)
		}
	}
	q.jobs = rest
	return due, q.claimErr
}

func (q *fakeQueue) Len(context.Context) (int64, error) {
	return int64(len(q.jobs)), nil
}

type fakeNotifier struct {
	sent []models.MessageNotificationEmail
	err  error
}

func (n *fakeNotifier) SendMessageNotification(_ context.Context, req models.MessageNotificationEmail) (*models.SendEmailResult, error) {
	if n.err != nil {
		return nil, n.err
	}
	n.sent = append(n.sent, req)
	return &models.SendEmailResult{MessageID: "sp-1"}, nil
}

type fakeEmailSender struct {
	sent []models.Email
	err  error
}

func (s *fakeEmailSender) Send(_ context.Context, email models.Email) (*models.SendEmailResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, email)
	return &models.SendEmailResult{MessageID: "sp-1"}, nil
}

type fakeAgentRepo struct {
	items map[string]models.Agent
}

func newFakeAgentRepo(agents ...models.Agent) *fakeAgentRepo {
	r := &fakeAgentRepo{items: map[string]models.Agent{}}
	for _, a := range agents {
		r.items[a.ID] = a
	}
	return r
}

func (r *fakeAgentRepo) Create(_ context.Context, a *models.Agent) error {
	r.items[a.ID] = *a
	return nil
}

func (r *fakeAgentRepo) GetByID(_ context.Context, id string) (*models.Agent, error) {
	a, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (r *fakeAgentRepo) ListByWorkspace(_ context.Context, workspaceID string) ([]models.Agent, error) {
	var out []models.Agent
	for _, a := range r.items {
		if a.WorkspaceID == workspaceID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeAgentRepo) Update(_ context.Context, id string, set bson.M) (*models.Agent, error) {
	a, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if err := applySet(&a, set); err != nil {
		return nil, err
	}
	r.items[id] = a
	return &a, nil
}

func (r *fakeAgentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeKnowledgeBaseRepo struct {
	items map[string]models.KnowledgeBaseItem
}

func newFakeKnowledgeBaseRepo(items ...models.KnowledgeBaseItem) *fakeKnowledgeBaseRepo {
	r := &fakeKnowledgeBaseRepo{items: map[string]models.KnowledgeBaseItem{}}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *fakeKnowledgeBaseRepo) Create(_ context.Context, it *models.KnowledgeBaseItem) error {
	r.items[it.ID] = *it
	return nil
}

func (r *fakeKnowledgeBaseRepo) GetByID(_ context.Context, id string) (*models.KnowledgeBaseItem, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &it, nil
}

func (r *fakeKnowledgeBaseRepo) ListByWidget(_ context.Context, widgetID string) ([]models.KnowledgeBaseItem, error) {
	var out []models.KnowledgeBaseItem
	for _, it := range r.items {
		if it.WidgetID == widgetID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakeKnowledgeBaseRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

type fakeAgentKnowledgeRepo struct {
	items map[string]models.AgentKnowledgeItem
}

func newFakeAgentKnowledgeRepo(items ...models.AgentKnowledgeItem) *fakeAgentKnowledgeRepo {
	r := &fakeAgentKnowledgeRepo{items: map[string]models.AgentKnowledgeItem{}}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *fakeAgentKnowledgeRepo) Create(_ context.Context, it *models.AgentKnowledgeItem) error {
	r.items[it.ID] = *it
	return nil
}

func (r *fakeAgentKnowledgeRepo) GetByID(_ context.Context, id string) (*models.AgentKnowledgeItem, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &it, nil
}

func (r *fakeAgentKnowledgeRepo) list(match func(models.AgentKnowledgeItem) bool) []models.AgentKnowledgeItem {
	var out []models.AgentKnowledgeItem
	for _, it := range r.items {
		if match(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeAgentKnowledgeRepo) ListByAgent(_ context.Context, agentID string) ([]models.AgentKnowledgeItem, error) {
	return r.list(func(it models.AgentKnowledgeItem) bool { return it.AgentID == agentID }), nil
}

func (r *fakeAgentKnowledgeRepo) ListByWorkspace(_ context.Context, workspaceID string) ([]models.AgentKnowledgeItem, error) {
	return r.list(func(it models.AgentKnowledgeItem) bool { return it.WorkspaceID == workspaceID }), nil
}

func (r *fakeAgentKnowledgeRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func (r *fakeAgentKnowledgeRepo) DeleteByAgent(_ context.Context, agentID string) (int64, error) {
	var n int64
	for id, it := range r.items {
		if it.AgentID == agentID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

type fakeKnowledgeRemover struct {
	deleted []string
	err     error
}

func (r *fakeKnowledgeRemover) DeleteKnowledge(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return r.err
}

// fakeTokens hands out tokens keyed by provider and workspace.
type fakeTokens map[string]string

func (f fakeTokens) AccessToken(_ context.Context, provider models.Provider, workspaceID, _ string) (string, error) {
	token, ok := f[string(provider)+"/"+workspaceID]
	if !ok {
		return "", ErrConnectionNotFound
	}
	return token, nil
}
