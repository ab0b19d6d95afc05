package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ghorihut-backend/internal/domain"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[string]*domain.Product{}}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *fakeProductRepo) Create(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product not found")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("product not found")
}

func (r *fakeProductRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return fmt.Errorf("product not found")
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) AdjustStock(ctx context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product not found")
	}
	if p.Stock+delta < 0 {
		return fmt.Errorf("insufficient stock")
	}
	p.Stock += delta
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[string]*domain.Order
	history []domain.OrderHistory
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}}
}

func (r *fakeOrderRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order not found")
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order not found")
	}
	o.Status = status
	return nil
}

func (r *fakeOrderRepo) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order not found")
	}
	o.PaymentStatus = status
	return nil
}

func (r *fakeOrderRepo) CreateOrderHistory(ctx context.Context, h *domain.OrderHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, *h)
	return nil
}

func (r *fakeOrderRepo) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.OrderHistory
	for _, h := range r.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func storeSnapshot(t *testing.T, repo *fakeSettingsRepo, snap *domain.SettingsSnapshot) {
	t.Helper()
	for key, v := range map[string]interface{}{
		domain.SettingShippingBD:   snap.Shipping,
		domain.SettingShippingIntl: snap.International,
		domain.SettingCurrency:     snap.Currency,
	} {
		blob, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, repo.Upsert(context.Background(), key, domain.RawJSON(blob)))
	}
}

func newCheckoutFixture(t *testing.T) (*OrderUsecase, *fakeProductRepo, *fakeOrderRepo, *fakeCouponRepo) {
	t.Helper()
	productRepo := newFakeProductRepo(&domain.Product{
		ID:        "watch-1",
		Name:      "Seiko 5 Sports",
		Slug:      "seiko-5-sports",
		BasePrice: 15000,
		Stock:     10,
		IsActive:  true,
	})
	orderRepo := newFakeOrderRepo()
	couponRepo := newFakeCouponRepo()

	settingsRepo := newFakeSettingsRepo()
	storeSnapshot(t, settingsRepo, testSnapshot())
	settingsUC := NewSettingsUsecase(settingsRepo, newFakeCache(), time.Minute)

	uc := NewOrderUsecase(orderRepo, productRepo, couponRepo, settingsUC, fakeTxManager{}, 20)
	return uc, productRepo, orderRepo, couponRepo
}

func dhakaAddress() domain.JSONB {
	return domain.JSONB{"city": "Dhaka", "country": "BD", "division": "Dhaka", "district": "Dhaka"}
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("cod order totals and stock", func(t *testing.T) {
		uc, productRepo, _, _ := newCheckoutFixture(t)

		order, err := uc.Checkout(ctx, "user-1", CheckoutReq{
			Items:   []CheckoutItem{{ProductID: "watch-1", Quantity: 1}},
			Address: dhakaAddress(),
			Payment: domain.PaymentMethodCOD,
		})
		require.NoError(t, err)

		// 15000 subtotal, free shipping over 2000 in the dhaka zone.
		assert.Equal(t, 15000.0, order.Subtotal)
		assert.Equal(t, 0.0, order.ShippingFee)
		assert.True(t, order.FreeShipping)
		assert.Equal(t, 15000.0, order.TotalAmount)
		assert.Equal(t, "dhaka", order.ShippingZoneKey)
		assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)

		p, err := productRepo.GetByID(ctx, "watch-1")
		require.NoError(t, err)
		assert.Equal(t, 9, p.Stock)
	})

	t.Run("cod blocked above value cap", func(t *testing.T) {
		uc, _, _, _ := newCheckoutFixture(t)

		// 2 * 15000 = 30000 > 20000 COD cap
		_, err := uc.Checkout(ctx, "user-1", CheckoutReq{
			Items:   []CheckoutItem{{ProductID: "watch-1", Quantity: 2}},
			Address: dhakaAddress(),
			Payment: domain.PaymentMethodCOD,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cash on delivery")
	})

	t.Run("cod allowed when coupon brings total under the cap", func(t *testing.T) {
		uc, _, _, couponRepo := newCheckoutFixture(t)
		expires := time.Now().AddDate(0, 1, 0)
		require.NoError(t, couponRepo.CreateCoupon(ctx, &domain.Coupon{
			Code:      "FLAT11K",
			Type:      domain.CouponTypeFixed,
			Value:     11000,
			IsActive:  true,
			ExpiresAt: &expires,
		}))

		// 2 * 15000 = 30000 busts the 20000 COD cap on its own, but the
		// door only collects 30000 - 11000 = 19000.
		order, err := uc.Checkout(ctx, "user-1", CheckoutReq{
			Items:      []CheckoutItem{{ProductID: "watch-1", Quantity: 2}},
			Address:    dhakaAddress(),
			Payment:    domain.PaymentMethodCOD,
			CouponCode: "flat11k",
		})
		require.NoError(t, err)
		assert.Equal(t, 19000.0, order.TotalAmount)
		assert.Equal(t, 11000.0, order.DiscountAmount)
	})

	t.Run("mobile wallet requires transaction details", func(t *testing.T) {
		uc, _, _, _ := newCheckoutFixture(t)

		_, err := uc.Checkout(ctx, "user-1", CheckoutReq{
			Items:   []CheckoutItem{{ProductID: "watch-1", Quantity: 1}},
			Address: dhakaAddress(),
			Payment: domain.PaymentMethodBKash,
		})
		require.Error(t, err)

		order, err := uc.Checkout(ctx, "user-1", CheckoutReq{
			Items:        []CheckoutItem{{ProductID: "watch-1", Quantity: 1}},
			Address:      dhakaAddress(),
			Payment:      domain.PaymentMethodBKash,
			PaymentTrxID: "TRX123",
			PaymentPhone: "01700000000",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPendingVerif, order.PaymentStatus)
	})

	t.Run("missing required address fields rejected", func(t *testing.T) {
		uc, _, _, _ := newCheckoutFixture(t)

		_, err := uc.Checkout(ctx, "user-1", CheckoutReq{
			Items:   []CheckoutItem{{ProductID: "watch-1", Quantity: 1}},
			Address: domain.JSONB{"city": "Dhaka", "country": "BD"},
			Payment: domain.PaymentMethodCOD,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "address")
	})

	t.Run("coupon applied before shipping fee", func(t *testing.T) {
		uc, _, _, couponRepo := newCheckoutFixture(t)
		expires := time.Now().AddDate(0, 1, 0)
		coupon := &domain.Coupon{
			Code:      "EID20",
			Type:      domain.CouponTypePercentage,
			Value:     20,
			MinSpend:  1000,
			IsActive:  true,
			ExpiresAt: &expires,
		}
		require.NoError(t, couponRepo.CreateCoupon(ctx, coupon))

		order, err := uc.Checkout(ctx, "user-1", CheckoutReq{
			Items:      []CheckoutItem{{ProductID: "watch-1", Quantity: 1}},
			Address:    dhakaAddress(),
			Payment:    domain.PaymentMethodCOD,
			CouponCode: "eid20",
		})
		require.NoError(t, err)
		assert.Equal(t, 3000.0, order.DiscountAmount)
		assert.Equal(t, 12000.0, order.TotalAmount)

		updated, err := couponRepo.GetCouponByID(ctx, coupon.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.UsedCount)
	})

	t.Run("insufficient stock rejected", func(t *testing.T) {
		uc, _, _, _ := newCheckoutFixture(t)
		_, err := uc.Checkout(ctx, "user-1", CheckoutReq{
			Items:   []CheckoutItem{{ProductID: "watch-1", Quantity: 11}},
			Address: dhakaAddress(),
			Payment: domain.PaymentMethodCOD,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stock")
	})
}

func TestUpdateStatusRestocksOnCancel(t *testing.T) {
	ctx := context.Background()
	uc, productRepo, _, _ := newCheckoutFixture(t)

	order, err := uc.Checkout(ctx, "user-1", CheckoutReq{
		Items:   []CheckoutItem{{ProductID: "watch-1", Quantity: 3}},
		Address: dhakaAddress(),
		Payment: domain.PaymentMethodBKash, PaymentTrxID: "TRX1", PaymentPhone: "01700000000",
	})
	require.NoError(t, err)

	p, _ := productRepo.GetByID(ctx, "watch-1")
	require.Equal(t, 7, p.Stock)

	require.NoError(t, uc.UpdateStatus(ctx, order.ID, domain.OrderStatusCancelled, "admin-1", nil))

	p, _ = productRepo.GetByID(ctx, "watch-1")
	assert.Equal(t, 10, p.Stock)

	history, err := uc.GetOrderHistory(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
