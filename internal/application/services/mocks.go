package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tiendazen/payment-service/internal/application"
	"github.com/tiendazen/payment-service/internal/domain"
)

// MockOrderStore is an in-memory OrderStore with the same transition
// semantics as the Postgres repository: the status flip is guarded by
// a mutex, so concurrent callers serialize per store.
type MockOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order

	// effective counts transitions that actually changed state, as
	// opposed to idempotent no-ops.
	effective int

	CreateFn                func(ctx context.Context, order *domain.Order) error
	FindByCommerceOrderIDFn func(ctx context.Context, commerceOrderID string) (*domain.Order, error)
	FindByTokenFn           func(ctx context.Context, token string) (*domain.Order, error)
	SetGatewayTokenFn       func(ctx context.Context, commerceOrderID, token string) error
	TransitionFn            func(ctx context.Context, commerceOrderID string, target domain.OrderStatus) (*domain.Order, error)
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		orders: make(map[string]*domain.Order),
	}
}

func (m *MockOrderStore) Create(ctx context.Context, order *domain.Order) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.orders[order.CommerceOrderID]; exists {
		return domain.NewDuplicateOrderError(order.CommerceOrderID)
	}
	m.orders[order.CommerceOrderID] = order
	return nil
}

func (m *MockOrderStore) FindByCommerceOrderID(ctx context.Context, commerceOrderID string) (*domain.Order, error) {
	if m.FindByCommerceOrderIDFn != nil {
		return m.FindByCommerceOrderIDFn(ctx, commerceOrderID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if order, ok := m.orders[commerceOrderID]; ok {
		return order, nil
	}
	return nil, domain.NewOrderNotFoundError(commerceOrderID)
}

func (m *MockOrderStore) FindByToken(ctx context.Context, token string) (*domain.Order, error) {
	if m.FindByTokenFn != nil {
		return m.FindByTokenFn(ctx, token)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, order := range m.orders {
		if order.GatewayToken != nil && *order.GatewayToken == token {
			return order, nil
		}
	}
	return nil, domain.NewOrderNotFoundByTokenError(token)
}

func (m *MockOrderStore) SetGatewayToken(ctx context.Context, commerceOrderID, token string) error {
	if m.SetGatewayTokenFn != nil {
		return m.SetGatewayTokenFn(ctx, commerceOrderID, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[commerceOrderID]
	if !ok {
		return domain.NewOrderNotFoundError(commerceOrderID)
	}
	order.GatewayToken = &token
	return nil
}

func (m *MockOrderStore) Transition(ctx context.Context, commerceOrderID string, target domain.OrderStatus) (*domain.Order, error) {
	if m.TransitionFn != nil {
		return m.TransitionFn(ctx, commerceOrderID, target)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[commerceOrderID]
	if !ok {
		return nil, domain.NewOrderNotFoundError(commerceOrderID)
	}
	if order.Status == target {
		return order, nil
	}
	if err := order.CanTransitionTo(target); err != nil {
		return nil, err
	}
	order.Status = target
	order.UpdatedAt = time.Now().UTC()
	m.effective++
	return order, nil
}

// EffectiveTransitions reports how many calls actually flipped an
// order's status.
func (m *MockOrderStore) EffectiveTransitions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.effective
}

// MockGatewayClient
type MockGatewayClient struct {
	mu    sync.Mutex
	calls map[string]int
	Delay time.Duration

	CreatePaymentFn func(ctx context.Context, req application.CreatePaymentRequest) (*application.CreatePaymentResult, error)
	GetStatusFn     func(ctx context.Context, token string) (*application.PaymentStatusResult, error)
}

func (m *MockGatewayClient) inc(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

func (m *MockGatewayClient) GetCalls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockGatewayClient) CreatePayment(ctx context.Context, req application.CreatePaymentRequest) (*application.CreatePaymentResult, error) {
	m.inc("CreatePayment")
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if m.CreatePaymentFn != nil {
		return m.CreatePaymentFn(ctx, req)
	}
	token := "tok-" + uuid.NewString()
	return &application.CreatePaymentResult{
		RedirectURL:     "https://gateway.example/pay?token=" + token,
		Token:           token,
		GatewayOrderRef: 1001,
	}, nil
}

func (m *MockGatewayClient) GetStatus(ctx context.Context, token string) (*application.PaymentStatusResult, error) {
	m.inc("GetStatus")
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if m.GetStatusFn != nil {
		return m.GetStatusFn(ctx, token)
	}
	return &application.PaymentStatusResult{
		Status: application.GatewayStatusPaid,
	}, nil
}
