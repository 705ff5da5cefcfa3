package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"elite-coaching/gateways"
	"elite-coaching/models"
	"elite-coaching/plans"
)

var errTest = errors.New("upstream unavailable")

type fakeRepository struct {
	mu       sync.Mutex
	leads    map[string]*models.Lead
	payments map[string]*models.Payment
	contacts []*models.ContactMessage
	failWith error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		leads:    make(map[string]*models.Lead),
		payments: make(map[string]*models.Payment),
	}
}

func (r *fakeRepository) CreateLead(lead *models.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	if lead.ID == "" {
		lead.ID = fmt.Sprintf("lead-%d", len(r.leads)+1)
	}
	lead.CreatedAt = time.Now()
	r.leads[lead.ID] = lead
	return nil
}

func (r *fakeRepository) GetLeadByID(id string) (*models.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return lead, nil
}

func (r *fakeRepository) UpsertPayment(payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	key := payment.Gateway + ":" + payment.GatewayPaymentID
	r.payments[key] = payment
	return nil
}

func (r *fakeRepository) CreateContactMessage(msg *models.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.contacts = append(r.contacts, msg)
	return nil
}

func (r *fakeRepository) RecentLeads(limit int) ([]models.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Lead
	for _, l := range r.leads {
		out = append(out, *l)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepository) RecentPayments(limit int) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.payments {
		out = append(out, *p)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepository) RecentContactMessages(limit int) ([]models.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ContactMessage
	for _, m := range r.contacts {
		out = append(out, *m)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepository) Close() error { return nil }

func (r *fakeRepository) paymentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

type sentEmail struct {
	kind string
	to   string
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []sentEmail
	failWith error
}

func (n *fakeNotifier) record(kind, to string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return n.failWith
	}
	n.sent = append(n.sent, sentEmail{kind: kind, to: to})
	return nil
}

func (n *fakeNotifier) SendPaymentSuccess(_ context.Context, clientEmail, _ string, _ int64, _, _, _ string) error {
	return n.record("payment_success", clientEmail)
}

func (n *fakeNotifier) SendCoachPaymentNotification(_ context.Context, _, _ string, _ int64, _, _, _ string) error {
	return n.record("coach_payment", "coach")
}

func (n *fakeNotifier) SendCoachProtocolDetails(_ context.Context, lead *models.Lead, _ int64, _, _ string) error {
	return n.record("coach_protocol", lead.ID)
}

func (n *fakeNotifier) SendLeadNotification(_ context.Context, lead *models.Lead) error {
	return n.record("lead_notification", lead.ID)
}

func (n *fakeNotifier) SendContactNotifications(_ context.Context, msg *models.ContactMessage) error {
	return n.record("contact_pair", msg.Email)
}

func (n *fakeNotifier) sentKinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]string, len(n.sent))
	for i, s := range n.sent {
		kinds[i] = s.kind
	}
	return kinds
}

type fakeCardGateway struct {
	calls int
	url   string
	err   error
}

func (g *fakeCardGateway) CreateSubscriptionCheckout(_ context.Context, _ plans.Plan, _ string) (*gateways.CheckoutSession, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &gateways.CheckoutSession{ID: "cs_test_1", URL: g.url}, nil
}

type fakeRegionalGateway struct {
	calls int
	url   string
	err   error
}

func (g *fakeRegionalGateway) CreateCheckout(_ context.Context, _ plans.Plan, _ string) (*gateways.CheckoutSession, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &gateways.CheckoutSession{ID: "checkout_1", URL: g.url}, nil
}

type fakeWalletGateway struct {
	calls        int
	verifyCalls  int
	orderID      string
	approveURL   string
	err          error
	verification bool
	verifyOK     bool
	verifyErr    error
	lastCustomID string
}

func (g *fakeWalletGateway) CreateOrder(_ context.Context, _ plans.Plan, customID, _ string) (*gateways.Order, error) {
	g.calls++
	g.lastCustomID = customID
	if g.err != nil {
		return nil, g.err
	}
	return &gateways.Order{ID: g.orderID, ApproveURL: g.approveURL}, nil
}

func (g *fakeWalletGateway) WebhookVerificationEnabled() bool { return g.verification }

func (g *fakeWalletGateway) VerifyWebhookSignature(_ context.Context, _ http.Header, _ []byte) (bool, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return false, g.verifyErr
	}
	return g.verifyOK, nil
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (c *fakeCache) GetFromCache(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (c *fakeCache) SetToCache(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
	return nil
}

func (c *fakeCache) Close() error { return nil }

type fakeSearch struct {
	mu      sync.Mutex
	indexed map[string]interface{}
	results []map[string]interface{}
}

func newFakeSearch() *fakeSearch {
	return &fakeSearch{indexed: make(map[string]interface{})}
}

func (s *fakeSearch) IndexDocument(_ context.Context, index, id string, doc interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexed[index+"/"+id] = doc
	return nil
}

func (s *fakeSearch) Search(_ context.Context, _ string, _ map[string]interface{}) ([]map[string]interface{}, error) {
	return s.results, nil
}

func (s *fakeSearch) DeleteDocument(_ context.Context, index, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexed, index+"/"+id)
	return nil
}

func (s *fakeSearch) Close() error { return nil }
