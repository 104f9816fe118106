//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wellness-order-service/internal/domain"
	"wellness-order-service/internal/domain/model"
	"wellness-order-service/internal/domain/ports/adapter"
	"wellness-order-service/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
// It writes to io.Discard to prevent logs from cluttering test output.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func strptr(s string) *string { return &s }

// =============================
// Repositories
// =============================

// ---- Mock OrderRepository ----

type MockOrderRepo struct {
	mu    sync.Mutex
	store map[string]*model.Order // by order_no

	SaveFunc              func(ctx context.Context, tx repository.Tx, o *model.Order) error
	FindByOrderNoFunc     func(ctx context.Context, tx repository.Tx, orderNo string) (*model.Order, error)
	MarkPaidIfPendingFunc func(ctx context.Context, tx repository.Tx, orderNo, tradeNo string, paidAt time.Time) (bool, error)
	ClaimIfUnownedFunc    func(ctx context.Context, tx repository.Tx, orderNo, userID string) (bool, error)
}

var _ repository.OrderRepository = (*MockOrderRepo)(nil)

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{store: make(map[string]*model.Order)}
}

func (m *MockOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.OrderNo] = &cp
	return nil
}

func (m *MockOrderRepo) FindByOrderNo(ctx context.Context, tx repository.Tx, orderNo string) (*model.Order, error) {
	if m.FindByOrderNoFunc != nil {
		return m.FindByOrderNoFunc(ctx, tx, orderNo)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[orderNo]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepo) MarkPaidIfPending(ctx context.Context, tx repository.Tx, orderNo, tradeNo string, paidAt time.Time) (bool, error) {
	if m.MarkPaidIfPendingFunc != nil {
		return m.MarkPaidIfPendingFunc(ctx, tx, orderNo, tradeNo, paidAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[orderNo]
	if !ok || o.Status != model.OrderStatusPending {
		return false, nil
	}
	o.Status = model.OrderStatusPaid
	o.TradeNo = &tradeNo
	o.PaidAt = &paidAt
	return true, nil
}

func (m *MockOrderRepo) ClaimIfUnowned(ctx context.Context, tx repository.Tx, orderNo, userID string) (bool, error) {
	if m.ClaimIfUnownedFunc != nil {
		return m.ClaimIfUnownedFunc(ctx, tx, orderNo, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[orderNo]
	if !ok || o.UserID != nil {
		return false, nil
	}
	o.UserID = &userID
	return true, nil
}

func (m *MockOrderRepo) ListPaidMissingSubscription(ctx context.Context, tx repository.Tx, limit int) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Order
	for _, o := range m.store {
		if len(out) >= limit {
			break
		}
		if o.Status == model.OrderStatusPaid && o.UserID != nil && !o.IsCampPackage() {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Get returns the stored order by order_no for assertions.
func (m *MockOrderRepo) Get(orderNo string) *model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[orderNo]
	if !ok {
		return nil
	}
	cp := *o
	return &cp
}

// ---- Mock PackageRepository ----

type MockPackageRepo struct {
	mu    sync.Mutex
	store map[string]*model.Package // by package_key

	FindByKeyFunc func(ctx context.Context, tx repository.Tx, packageKey string) (*model.Package, error)
}

var _ repository.PackageRepository = (*MockPackageRepo)(nil)

func NewMockPackageRepo() *MockPackageRepo {
	return &MockPackageRepo{store: make(map[string]*model.Package)}
}

func (m *MockPackageRepo) Put(pkg *model.Package) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *pkg
	m.store[pkg.PackageKey] = &cp
}

func (m *MockPackageRepo) FindByKey(ctx context.Context, tx repository.Tx, packageKey string) (*model.Package, error) {
	if m.FindByKeyFunc != nil {
		return m.FindByKeyFunc(ctx, tx, packageKey)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pkg, ok := m.store[packageKey]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	cp := *pkg
	return &cp, nil
}

func (m *MockPackageRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Package, 0, len(m.store))
	for _, pkg := range m.store {
		cp := *pkg
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu    sync.Mutex
	store map[string]*model.Subscription // by user_id

	UpsertCalls int
	UpsertFunc  func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

func (m *MockSubscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	m.mu.Lock()
	m.UpsertCalls++
	m.mu.Unlock()
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.UserID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSubscriptionRepo) Get(userID string) *model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[userID]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

func (m *MockSubscriptionRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

// ---- Mock AccountRepository ----

type MockAccountRepo struct {
	mu    sync.Mutex
	store map[string]*model.UserAccount // by user_id

	AddQuotaCalls int
	AddQuotaFunc  func(ctx context.Context, tx repository.Tx, userID string, quota int64, expiresAt time.Time) error
}

var _ repository.AccountRepository = (*MockAccountRepo)(nil)

func NewMockAccountRepo() *MockAccountRepo {
	return &MockAccountRepo{store: make(map[string]*model.UserAccount)}
}

func (m *MockAccountRepo) AddQuota(ctx context.Context, tx repository.Tx, userID string, quota int64, expiresAt time.Time) error {
	m.mu.Lock()
	m.AddQuotaCalls++
	m.mu.Unlock()
	if m.AddQuotaFunc != nil {
		return m.AddQuotaFunc(ctx, tx, userID, quota, expiresAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.store[userID]
	if !ok {
		acc = &model.UserAccount{UserID: userID}
		m.store[userID] = acc
	}
	acc.TotalQuota += quota
	if acc.QuotaExpiresAt == nil || expiresAt.After(*acc.QuotaExpiresAt) {
		e := expiresAt
		acc.QuotaExpiresAt = &e
	}
	return nil
}

func (m *MockAccountRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (m *MockAccountRepo) TotalQuota(userID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.store[userID]
	if !ok {
		return 0
	}
	return acc.TotalQuota
}

// ---- Mock CampRepository ----

type MockCampRepo struct {
	mu        sync.Mutex
	purchases []*model.CampPurchase
	templates map[string]*model.CampTemplate

	SavePurchaseFunc func(ctx context.Context, tx repository.Tx, p *model.CampPurchase) error
}

var _ repository.CampRepository = (*MockCampRepo)(nil)

func NewMockCampRepo() *MockCampRepo {
	return &MockCampRepo{templates: make(map[string]*model.CampTemplate)}
}

func (m *MockCampRepo) PutTemplate(t *model.CampTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.templates[t.CampType] = &cp
}

func (m *MockCampRepo) SavePurchase(ctx context.Context, tx repository.Tx, p *model.CampPurchase) error {
	if m.SavePurchaseFunc != nil {
		return m.SavePurchaseFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.purchases = append(m.purchases, &cp)
	return nil
}

func (m *MockCampRepo) ListPurchasesByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.CampPurchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.CampPurchase
	for _, p := range m.purchases {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockCampRepo) FindTemplate(ctx context.Context, tx repository.Tx, campType string) (*model.CampTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[campType]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockCampRepo) Purchases() []*model.CampPurchase {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.CampPurchase, len(m.purchases))
	for i, p := range m.purchases {
		cp := *p
		out[i] = &cp
	}
	return out
}

// ---- Mock ReferralRepository ----

type MockReferralRepo struct {
	mu        sync.Mutex
	referrals map[string]*model.Referral // by referred user id

	UpdateConversionFunc func(ctx context.Context, tx repository.Tx, id string, status model.ConversionStatus, convertedAt time.Time) error
}

var _ repository.ReferralRepository = (*MockReferralRepo)(nil)

func NewMockReferralRepo() *MockReferralRepo {
	return &MockReferralRepo{referrals: make(map[string]*model.Referral)}
}

func (m *MockReferralRepo) Put(r *model.Referral) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.referrals[r.ReferredUserID] = &cp
}

func (m *MockReferralRepo) FindLevel1ByReferredUser(ctx context.Context, tx repository.Tx, userID string) (*model.Referral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.referrals[userID]
	if !ok || r.Level != 1 {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockReferralRepo) UpdateConversion(ctx context.Context, tx repository.Tx, id string, status model.ConversionStatus, convertedAt time.Time) error {
	if m.UpdateConversionFunc != nil {
		return m.UpdateConversionFunc(ctx, tx, id, status, convertedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.referrals {
		if r.ID == id {
			r.ConversionStatus = status
			t := convertedAt
			r.ConvertedAt = &t
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockReferralRepo) Get(referredUserID string) *model.Referral {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.referrals[referredUserID]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

// ---- Mock PartnerRepository ----

type MockPartnerRepo struct {
	mu    sync.Mutex
	store map[string]*model.Partner // by user_id
}

var _ repository.PartnerRepository = (*MockPartnerRepo)(nil)

func NewMockPartnerRepo() *MockPartnerRepo {
	return &MockPartnerRepo{store: make(map[string]*model.Partner)}
}

func (m *MockPartnerRepo) Put(p *model.Partner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.UserID] = &cp
}

func (m *MockPartnerRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrPartnerNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPartnerRepo) ConsumePrepurchase(ctx context.Context, tx repository.Tx, partnerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.ID == partnerID {
			if p.PrepurchaseCount <= 0 {
				return false, nil
			}
			p.PrepurchaseCount--
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPartnerRepo) Remaining(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[userID]
	if !ok {
		return 0
	}
	return p.PrepurchaseCount
}

// =============================
// Adapters
// =============================

// ---- Mock SignatureVerifier ----

type MockVerifier struct {
	VerifyFunc func(params map[string]string) error
}

var _ adapter.SignatureVerifier = (*MockVerifier)(nil)

func (m *MockVerifier) Verify(params map[string]string) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(params)
	}
	return nil
}

// ---- Mock CommissionInvoker ----

type MockCommission struct {
	mu    sync.Mutex
	Calls []adapter.CommissionRequest

	InvokeFunc func(ctx context.Context, req adapter.CommissionRequest) error
}

var _ adapter.CommissionInvoker = (*MockCommission)(nil)

func (m *MockCommission) Invoke(ctx context.Context, req adapter.CommissionRequest) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()
	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, req)
	}
	return nil
}

func (m *MockCommission) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
