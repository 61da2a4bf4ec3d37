package domain

import (
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrOrderNotFound is returned when an order id resolves to nothing.
	ErrOrderNotFound = errors.New("order not found")
	// ErrProductNotFound is returned when an ordered product no longer exists.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned when a product cannot cover the ordered quantity.
	ErrInsufficientStock = errors.New("not enough stock")
	// ErrEmptyCart is returned when an order is created without line items.
	ErrEmptyCart = errors.New("order must contain at least one item")
	// ErrInvalidItem is returned when a line item has a non-positive quantity or negative price.
	ErrInvalidItem = errors.New("invalid order item")
	// ErrMissingAddress is returned when the shipping address is empty.
	ErrMissingAddress = errors.New("shipping address is required")
	// ErrAmountMismatch is returned when the declared total does not match the line items.
	ErrAmountMismatch = errors.New("total amount does not match order items")
	// ErrUnknownPaymentMethod is returned for payment methods the shop does not accept.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// Status represents the fulfillment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProcess  Status = "inProcess"
	StatusInShipping Status = "inShipping"
	StatusDelivered  Status = "delivered"
	StatusRejected   Status = "rejected"
)

// PaymentStatus represents the payment state of an order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// PaymentMethod identifies how the customer pays for an order.
type PaymentMethod string

const (
	// PaymentMethodEsewa pays through the eSewa hosted payment page.
	PaymentMethodEsewa PaymentMethod = "esewa"
	// PaymentMethodCOD pays cash on delivery.
	PaymentMethodCOD PaymentMethod = "cod"
)

// RequiresGateway reports whether the method needs an off-site payment redirect.
func (m PaymentMethod) RequiresGateway() bool {
	return m == PaymentMethodEsewa
}

// Valid reports whether the method is one the shop accepts.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodEsewa, PaymentMethodCOD:
		return true
	}
	return false
}

// OrderItem is an immutable snapshot of a cart line at order-creation time,
// decoupled from live catalog pricing.
type OrderItem struct {
	// ProductID references the catalog product.
	ProductID string `json:"productId" bson:"productId"`
	// Title is the product name at purchase time.
	Title string `json:"title" bson:"title"`
	// Image is the product image URL at purchase time.
	Image string `json:"image" bson:"image"`
	// Price is the unit price at purchase time.
	Price float64 `json:"price" bson:"price"`
	// Quantity is the number of units purchased.
	Quantity int `json:"quantity" bson:"quantity"`
}

// AddressInfo is the denormalized shipping address snapshot on an order.
type AddressInfo struct {
	AddressID string `json:"addressId" bson:"addressId"`
	Address   string `json:"address" bson:"address"`
	City      string `json:"city" bson:"city"`
	Pincode   string `json:"pincode" bson:"pincode"`
	Phone     string `json:"phone" bson:"phone"`
	Notes     string `json:"notes" bson:"notes"`
}

// Order is a persisted record of a checkout attempt: its line items, address,
// and payment/fulfillment state.
type Order struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID      string             `json:"userId" bson:"userId"`
	CartID      string             `json:"cartId,omitempty" bson:"cartId,omitempty"`
	CartItems   []OrderItem        `json:"cartItems" bson:"cartItems"`
	AddressInfo AddressInfo        `json:"addressInfo" bson:"addressInfo"`

	OrderStatus   Status        `json:"orderStatus" bson:"orderStatus"`
	PaymentMethod PaymentMethod `json:"paymentMethod" bson:"paymentMethod"`
	PaymentStatus PaymentStatus `json:"paymentStatus" bson:"paymentStatus"`
	TotalAmount   float64       `json:"totalAmount" bson:"totalAmount"`

	// EsewaTransactionID is the gateway-side correlation id minted at creation time.
	EsewaTransactionID string `json:"esewaTransactionId,omitempty" bson:"esewaTransactionId,omitempty"`
	// EsewaPaymentID is the gateway's confirmation code, set at capture time.
	EsewaPaymentID string `json:"esewaPaymentId,omitempty" bson:"esewaPaymentId,omitempty"`

	OrderDate       time.Time `json:"orderDate" bson:"orderDate"`
	OrderUpdateDate time.Time `json:"orderUpdateDate" bson:"orderUpdateDate"`
	PaymentDate     time.Time `json:"paymentDate,omitempty" bson:"paymentDate,omitempty"`
}

// amountTolerance absorbs float rounding when comparing money values.
const amountTolerance = 0.005

// NewOrder builds a pending order from a validated cart snapshot.
// The declared total must match the sum of price*quantity over the items.
func NewOrder(userID, cartID string, items []OrderItem, address AddressInfo, method PaymentMethod, totalAmount float64) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 || item.Price < 0 {
			return nil, ErrInvalidItem
		}
	}
	if address.Address == "" {
		return nil, ErrMissingAddress
	}
	if !method.Valid() {
		return nil, ErrUnknownPaymentMethod
	}
	if math.Abs(ItemsTotal(items)-totalAmount) > amountTolerance {
		return nil, ErrAmountMismatch
	}

	now := time.Now().UTC()
	return &Order{
		UserID:          userID,
		CartID:          cartID,
		CartItems:       items,
		AddressInfo:     address,
		OrderStatus:     StatusPending,
		PaymentMethod:   method,
		PaymentStatus:   PaymentPending,
		TotalAmount:     totalAmount,
		OrderDate:       now,
		OrderUpdateDate: now,
	}, nil
}

// ItemsTotal sums price*quantity over the given items.
func ItemsTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Paid reports whether the payment has already been confirmed.
func (o *Order) Paid() bool {
	return o.PaymentStatus == PaymentPaid
}
