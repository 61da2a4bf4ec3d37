package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/metrics"
	"storefront-api/internal/features/orders/domain"
	"storefront-api/internal/features/orders/ports"
	"storefront-api/internal/features/payments/esewa"

	"go.uber.org/zap"
)

// ErrPaymentNotSettled is returned when the gateway does not report the
// transaction as complete during capture verification.
var ErrPaymentNotSettled = errors.New("payment not settled at gateway")

// OrderService orchestrates order creation and the idempotent payment
// confirmation transition shared by the capture and callback paths.
type OrderService struct {
	orders  ports.OrderRepository
	stock   ports.ProductStockStore
	carts   ports.CartRepository
	intents ports.PaymentIntentBuilder
	// status is optional; when nil, client-reported captures are not
	// cross-checked against the gateway.
	status ports.PaymentStatusChecker
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	orders ports.OrderRepository,
	stock ports.ProductStockStore,
	carts ports.CartRepository,
	intents ports.PaymentIntentBuilder,
	status ports.PaymentStatusChecker,
) *OrderService {
	return &OrderService{
		orders:  orders,
		stock:   stock,
		carts:   carts,
		intents: intents,
		status:  status,
	}
}

// CreateOrder validates the cart snapshot, persists a pending order, and for
// gateway methods builds and stamps a signed payment intent.
func (s *OrderService) CreateOrder(ctx context.Context, in ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
	order, err := domain.NewOrder(in.UserID, in.CartID, in.Items, in.Address, in.PaymentMethod, in.TotalAmount)
	if err != nil {
		return nil, err
	}

	orderID, err := s.orders.Insert(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	metrics.OrdersCreated.WithLabelValues(string(in.PaymentMethod)).Inc()

	result := &ports.CreateOrderResult{OrderID: orderID}

	if !in.PaymentMethod.RequiresGateway() {
		return result, nil
	}

	intent, err := s.intents.BuildIntent(orderID, in.TotalAmount)
	if err != nil {
		// The pending order stays in storage; the caller may retry creation.
		return nil, fmt.Errorf("failed to build payment intent: %w", err)
	}

	if err := s.orders.SetTransactionID(ctx, orderID, intent.TransactionUUID); err != nil {
		return nil, fmt.Errorf("failed to record transaction id: %w", err)
	}

	logger.Get().Info("Payment intent created",
		zap.String("order_id", orderID),
		zap.String("transaction_uuid", intent.TransactionUUID),
	)

	result.TransactionID = intent.TransactionUUID
	result.PaymentURL = intent.PaymentURL
	result.PaymentFields = &intent.Fields
	return result, nil
}

// CapturePayment confirms the order after the customer's redirect return.
// For gateway methods with a status checker configured, the transaction is
// verified against the gateway before any state changes.
func (s *OrderService) CapturePayment(ctx context.Context, orderID, gatewayRef string, method domain.PaymentMethod) (*domain.Order, ports.CaptureOutcome, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, 0, domain.ErrOrderNotFound
	}

	if order.Paid() {
		metrics.DuplicateCaptures.Inc()
		return order, ports.OutcomeAlreadyConfirmed, nil
	}

	if method.RequiresGateway() && s.status != nil && order.EsewaTransactionID != "" {
		status, err := s.status.StatusOf(ctx, order.EsewaTransactionID, order.TotalAmount)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to verify payment with gateway: %w", err)
		}
		if status != esewa.StatusComplete {
			return nil, 0, fmt.Errorf("%w: gateway reports %s", ErrPaymentNotSettled, status)
		}
	}

	return s.confirm(ctx, order, gatewayRef, "capture")
}

// ConfirmGatewayPayment confirms the order holding transactionUUID. The caller
// must have verified the callback signature first; lookup is by the stored
// transaction uuid because the callback carries no authenticated order id.
func (s *OrderService) ConfirmGatewayPayment(ctx context.Context, transactionUUID, gatewayRef string) (*domain.Order, ports.CaptureOutcome, error) {
	order, err := s.orders.FindByTransactionID(ctx, transactionUUID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, 0, domain.ErrOrderNotFound
	}

	if order.Paid() {
		metrics.DuplicateCaptures.Inc()
		return order, ports.OutcomeAlreadyConfirmed, nil
	}

	return s.confirm(ctx, order, gatewayRef, "callback")
}

// confirm applies the payment confirmation transition exactly once.
//
// The conditional pending-to-paid update is taken first and acts as the
// exclusivity lock: only the caller that wins it proceeds to mutate stock, so
// a redirect return racing the gateway callback cannot double-decrement. Each
// decrement is itself guarded by the store, and on any line failure the
// applied decrements are compensated and the order reverted to pending.
func (s *OrderService) confirm(ctx context.Context, order *domain.Order, gatewayRef, trigger string) (*domain.Order, ports.CaptureOutcome, error) {
	orderID := order.ID.Hex()
	now := time.Now().UTC()

	won, err := s.orders.MarkPaid(ctx, orderID, gatewayRef, now)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to mark order paid: %w", err)
	}
	if !won {
		// Lost the race to a concurrent capture; its side effects stand.
		metrics.DuplicateCaptures.Inc()
		fresh, err := s.orders.FindByID(ctx, orderID)
		if err != nil || fresh == nil {
			return order, ports.OutcomeAlreadyConfirmed, nil
		}
		return fresh, ports.OutcomeAlreadyConfirmed, nil
	}

	applied := make([]domain.OrderItem, 0, len(order.CartItems))
	for _, item := range order.CartItems {
		if err := s.stock.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.rollback(ctx, orderID, applied, now)

			switch {
			case errors.Is(err, domain.ErrProductNotFound):
				metrics.CaptureFailures.WithLabelValues("product_not_found").Inc()
				return nil, 0, fmt.Errorf("%w: %s", domain.ErrProductNotFound, item.Title)
			case errors.Is(err, domain.ErrInsufficientStock):
				metrics.CaptureFailures.WithLabelValues("insufficient_stock").Inc()
				return nil, 0, fmt.Errorf("%w for %s", domain.ErrInsufficientStock, item.Title)
			default:
				metrics.CaptureFailures.WithLabelValues("storage").Inc()
				return nil, 0, fmt.Errorf("failed to decrement stock for %s: %w", item.Title, err)
			}
		}
		applied = append(applied, item)
	}

	if order.CartID != "" {
		if err := s.carts.Delete(ctx, order.CartID); err != nil {
			// The order is confirmed either way; a stale cart is recoverable.
			logger.Get().Warn("Failed to clear cart after capture",
				zap.String("order_id", orderID),
				zap.String("cart_id", order.CartID),
				zap.Error(err),
			)
		}
	}

	metrics.PaymentsConfirmed.WithLabelValues(trigger).Inc()
	logger.Get().Info("Order confirmed",
		zap.String("order_id", orderID),
		zap.String("trigger", trigger),
		zap.String("gateway_ref", gatewayRef),
	)

	confirmed, err := s.orders.FindByID(ctx, orderID)
	if err != nil || confirmed == nil {
		// Confirmation succeeded; fall back to an in-memory view.
		order.PaymentStatus = domain.PaymentPaid
		order.OrderStatus = domain.StatusConfirmed
		order.EsewaPaymentID = gatewayRef
		order.PaymentDate = now
		order.OrderUpdateDate = now
		return order, ports.OutcomeConfirmed, nil
	}
	return confirmed, ports.OutcomeConfirmed, nil
}

// rollback compensates stock decrements applied before a line failure and
// returns the order to the pending payment state.
func (s *OrderService) rollback(ctx context.Context, orderID string, applied []domain.OrderItem, at time.Time) {
	for _, item := range applied {
		if err := s.stock.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Get().Error("Failed to restore stock during capture rollback",
				zap.String("order_id", orderID),
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}
	if err := s.orders.RevertPaid(ctx, orderID, at); err != nil {
		logger.Get().Error("Failed to revert order after capture failure",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
}

// OrdersByUser lists a customer's orders, newest first.
func (s *OrderService) OrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// OrderDetails returns one order by id.
func (s *OrderService) OrderDetails(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}
