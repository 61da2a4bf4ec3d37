package ports

import (
	"context"
	"time"

	"storefront-api/internal/features/orders/domain"
	"storefront-api/internal/features/payments/esewa"
)

// OrderRepository persists order records. This is a Secondary Port (Driven Port).
type OrderRepository interface {
	// Insert persists a new order and returns its generated id.
	Insert(ctx context.Context, order *domain.Order) (string, error)

	// SetTransactionID stamps the gateway transaction uuid onto the order.
	SetTransactionID(ctx context.Context, orderID, transactionID string) error

	// FindByID returns the order, or nil when no order has that id.
	FindByID(ctx context.Context, orderID string) (*domain.Order, error)

	// FindByTransactionID returns the order holding the given gateway
	// transaction uuid, or nil when none does.
	FindByTransactionID(ctx context.Context, transactionID string) (*domain.Order, error)

	// FindByUser returns all orders owned by userID, newest first.
	FindByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// MarkPaid atomically transitions the order from payment-pending to paid
	// (and the order to confirmed), recording the gateway reference and
	// timestamps. It returns false when the order was not in the pending
	// payment state, which makes it the exclusivity guard for capture.
	MarkPaid(ctx context.Context, orderID, gatewayRef string, at time.Time) (bool, error)

	// RevertPaid undoes a MarkPaid transition after a failed capture, putting
	// the order back into the pending payment state so a retry stays safe.
	RevertPaid(ctx context.Context, orderID string, at time.Time) error
}

// ProductStockStore mutates per-product available stock.
// This is a Secondary Port (Driven Port).
type ProductStockStore interface {
	// DecrementStock subtracts qty from the product's stock only when the
	// stock covers it. It returns domain.ErrProductNotFound or
	// domain.ErrInsufficientStock otherwise; partial decrements never occur.
	DecrementStock(ctx context.Context, productID string, qty int) error

	// IncrementStock adds qty back to the product's stock. Used to compensate
	// decrements applied before a later line item failed.
	IncrementStock(ctx context.Context, productID string, qty int) error
}

// CartRepository stores live carts keyed by cart id.
// This is a Secondary Port (Driven Port).
type CartRepository interface {
	// Get returns the cart, or nil when the id does not resolve.
	Get(ctx context.Context, cartID string) (*domain.Cart, error)

	// Save stores the cart.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart. Deleting an absent cart is not an error.
	Delete(ctx context.Context, cartID string) error
}

// PaymentIntentBuilder constructs signed redirect payloads for the gateway's
// hosted payment page.
type PaymentIntentBuilder interface {
	BuildIntent(orderID string, totalAmount float64) (*esewa.Intent, error)
}

// PaymentStatusChecker asks the gateway for a transaction's settled state.
// Optional: a nil checker skips server-side verification on capture.
type PaymentStatusChecker interface {
	StatusOf(ctx context.Context, transactionUUID string, totalAmount float64) (string, error)
}

// CaptureOutcome distinguishes a fresh confirmation from an idempotent no-op.
type CaptureOutcome int

const (
	// OutcomeConfirmed means this call won the pending-to-paid transition.
	OutcomeConfirmed CaptureOutcome = iota
	// OutcomeAlreadyConfirmed means the order was paid before this call;
	// no side effects were applied.
	OutcomeAlreadyConfirmed
)

// CreateOrderInput is the validated request to create an order.
type CreateOrderInput struct {
	UserID        string
	CartID        string
	Items         []domain.OrderItem
	Address       domain.AddressInfo
	PaymentMethod domain.PaymentMethod
	TotalAmount   float64
}

// CreateOrderResult is the outcome of order creation. Payment fields are set
// only when the payment method requires an off-site redirect.
type CreateOrderResult struct {
	OrderID       string
	TransactionID string
	PaymentURL    string
	PaymentFields *esewa.RedirectFields
}

// OrderService drives the order/checkout/payment flow.
// This is a Primary Port (Driving Port).
type OrderService interface {
	// CreateOrder validates and persists a pending order, building a payment
	// intent when the method requires the gateway.
	CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error)

	// CapturePayment confirms the order identified by orderID after the
	// customer returns from the gateway (or immediately for on-delivery
	// methods). gatewayRef is the client-reported transaction id.
	CapturePayment(ctx context.Context, orderID, gatewayRef string, method domain.PaymentMethod) (*domain.Order, CaptureOutcome, error)

	// ConfirmGatewayPayment confirms the order holding transactionUUID after a
	// signature-verified gateway callback. gatewayRef is the gateway's
	// transaction code.
	ConfirmGatewayPayment(ctx context.Context, transactionUUID, gatewayRef string) (*domain.Order, CaptureOutcome, error)

	// OrdersByUser lists a customer's orders.
	OrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// OrderDetails returns one order by id.
	OrderDetails(ctx context.Context, orderID string) (*domain.Order, error)
}
