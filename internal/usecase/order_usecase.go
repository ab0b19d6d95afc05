package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ghorihut-backend/internal/domain"
	"ghorihut-backend/pkg/logger"
	"ghorihut-backend/pkg/utils"
)

type OrderUsecase struct {
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
	couponRepo  domain.CouponRepository
	settings    *SettingsUsecase
	txManager   domain.TransactionManager
	maxQuantity int
}

func NewOrderUsecase(orderRepo domain.OrderRepository, productRepo domain.ProductRepository,
	couponRepo domain.CouponRepository, settings *SettingsUsecase,
	txManager domain.TransactionManager, maxQuantity int) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		settings:    settings,
		txManager:   txManager,
		maxQuantity: maxQuantity,
	}
}

type CheckoutItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CheckoutReq struct {
	Items           []CheckoutItem `json:"items"`
	Address         domain.JSONB   `json:"address"`
	Payment         string         `json:"paymentMethod"`
	CouponCode      string         `json:"couponCode,omitempty"`
	PaymentTrxID    string         `json:"paymentTrxId,omitempty"`
	PaymentProvider string         `json:"paymentProvider,omitempty"`
	PaymentPhone    string         `json:"paymentPhone,omitempty"`
}

// Checkout prices the submitted items, runs the shipping rule evaluator for
// the destination, applies an optional coupon, gates COD, and persists the
// order atomically with its stock adjustments and coupon usage.
func (u *OrderUsecase) Checkout(ctx context.Context, userID string, req CheckoutReq) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order has no items")
	}

	snap, err := u.settings.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	// 1. Price items and compute subtotal.
	var subtotal float64
	var orderItems []domain.OrderItem
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.Quantity > u.maxQuantity {
			return nil, fmt.Errorf("invalid quantity for product %s", item.ProductID)
		}
		product, err := u.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s not found", item.ProductID)
		}
		if !product.IsActive {
			return nil, fmt.Errorf("product %s is unavailable", product.Name)
		}
		if product.Stock < item.Quantity {
			return nil, fmt.Errorf("insufficient stock for %s", product.Name)
		}

		price := product.EffectivePrice()
		subtotal += price * float64(item.Quantity)
		orderItems = append(orderItems, domain.OrderItem{
			ID:        utils.GenerateUUID(),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
		})
	}

	// 2. Mandatory address fields per the configured requirements.
	country, _ := req.Address["country"].(string)
	city, _ := req.Address["city"].(string)
	if isDomestic(country) {
		if missing := snap.Shipping.Address.Missing(req.Address); len(missing) > 0 {
			return nil, fmt.Errorf("missing required address fields: %s", strings.Join(missing, ", "))
		}
	}

	// 3. Shipping fee via the rule evaluator.
	quote, err := EvaluateQuote(snap, QuoteRequest{
		City:     city,
		Country:  country,
		Subtotal: subtotal,
	})
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("city", city).Str("country", country).
			Msg("Checkout: shipping quote failed")
		return nil, fmt.Errorf("shipping not available to this location: %w", err)
	}

	// 4. Coupon discount.
	var discount float64
	var couponCode *string
	var appliedCoupon *domain.Coupon
	if req.CouponCode != "" {
		code := strings.ToUpper(strings.TrimSpace(req.CouponCode))
		coupon, err := u.couponRepo.GetCouponByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("invalid coupon code")
		}
		if !coupon.ActiveAt(time.Now()) {
			return nil, fmt.Errorf("coupon '%s' is not currently active", code)
		}
		if subtotal < coupon.MinSpend {
			return nil, fmt.Errorf("order subtotal is below the coupon minimum spend of %.0f", coupon.MinSpend)
		}
		discount = coupon.Discount(subtotal)
		couponCode = &code
		appliedCoupon = coupon
	}

	total := subtotal - discount + quote.Fee

	// 5. Payment method gating.
	paymentStatus := domain.PaymentStatusPending
	paymentDetails := domain.JSONB{}
	switch req.Payment {
	case domain.PaymentMethodCOD:
		// Eligibility is judged on the amount collected at the door; the
		// quote's own check ran before the discount was known.
		if !isDomestic(country) || !snap.Shipping.COD.Eligible(total, quote.ZoneKey) {
			return nil, fmt.Errorf("cash on delivery is not available for this order")
		}
	case domain.PaymentMethodBKash, domain.PaymentMethodNagad:
		if req.PaymentTrxID == "" || req.PaymentPhone == "" {
			return nil, fmt.Errorf("%s payment requires a transaction ID and sender number", req.Payment)
		}
		paymentStatus = domain.PaymentStatusPendingVerif
		paymentDetails = domain.JSONB{
			"provider":       req.Payment,
			"transaction_id": req.PaymentTrxID,
			"sender_number":  req.PaymentPhone,
		}
	default:
		return nil, fmt.Errorf("unsupported payment method %q", req.Payment)
	}

	order := &domain.Order{
		ID:              utils.GenerateUUID(),
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		Subtotal:        subtotal,
		DiscountAmount:  discount,
		CouponCode:      couponCode,
		ShippingFee:     quote.Fee,
		FreeShipping:    quote.FreeShipping,
		ShippingZoneKey: quote.ZoneKey,
		TotalAmount:     total,
		ShippingAddress: req.Address,
		PaymentMethod:   req.Payment,
		PaymentStatus:   paymentStatus,
		PaymentDetails:  paymentDetails,
		Items:           orderItems,
	}

	// 6. Order, stock and coupon usage commit or roll back together.
	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.CreateOrder(txCtx, order); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := u.productRepo.AdjustStock(txCtx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}
		if appliedCoupon != nil {
			if err := u.couponRepo.IncrementCouponUsage(txCtx, appliedCoupon.ID); err != nil {
				return err
			}
		}
		return u.orderRepo.CreateOrderHistory(txCtx, &domain.OrderHistory{
			ID:        utils.GenerateUUID(),
			OrderID:   order.ID,
			NewStatus: order.Status,
			CreatedBy: &userID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	logger.WithContext(ctx).Info().
		Str("order_id", order.ID).
		Str("zone", order.ShippingZoneKey).
		Float64("total", order.TotalAmount).
		Msg("Order placed")
	return order, nil
}

func (u *OrderUsecase) GetMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return u.orderRepo.GetByUserID(ctx, userID)
}

func (u *OrderUsecase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return u.orderRepo.GetByID(ctx, id)
}

func (u *OrderUsecase) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	return u.orderRepo.GetAll(ctx, filter)
}

func validOrderStatus(status string) bool {
	for _, s := range domain.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// UpdateStatus moves an order to a new status and records the transition.
func (u *OrderUsecase) UpdateStatus(ctx context.Context, orderID, status, adminID string, reason *string) error {
	if !validOrderStatus(status) {
		return fmt.Errorf("invalid order status %q", status)
	}
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	prev := order.Status

	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.UpdateStatus(txCtx, orderID, status); err != nil {
			return err
		}
		// Cancellation puts the reserved stock back on the shelf.
		if status == domain.OrderStatusCancelled && prev != domain.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := u.productRepo.AdjustStock(txCtx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return u.orderRepo.CreateOrderHistory(txCtx, &domain.OrderHistory{
			ID:             utils.GenerateUUID(),
			OrderID:        orderID,
			PreviousStatus: &prev,
			NewStatus:      status,
			Reason:         reason,
			CreatedBy:      &adminID,
		})
	})
}

func (u *OrderUsecase) UpdatePaymentStatus(ctx context.Context, orderID, status string) error {
	for _, s := range domain.PaymentStatuses {
		if s == status {
			return u.orderRepo.UpdatePaymentStatus(ctx, orderID, status)
		}
	}
	return fmt.Errorf("invalid payment status %q", status)
}

func (u *OrderUsecase) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	return u.orderRepo.GetOrderHistory(ctx, orderID)
}
