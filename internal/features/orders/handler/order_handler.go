package handler

import (
	"errors"
	"fmt"
	"net/http"

	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/metrics"
	"storefront-api/internal/features/orders/domain"
	"storefront-api/internal/features/orders/ports"
	"storefront-api/internal/features/orders/service"
	"storefront-api/internal/features/payments/esewa"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for the order/checkout/payment flow.
type OrderHandler struct {
	// service drives order creation and payment confirmation.
	service ports.OrderService
	// esewaSecret verifies gateway callback signatures.
	esewaSecret string
	// frontendURL is the SPA origin for callback redirects.
	frontendURL string
	// validate checks request payloads.
	validate *validator.Validate
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s ports.OrderService, esewaSecret, frontendURL string) *OrderHandler {
	return &OrderHandler{
		service:     s,
		esewaSecret: esewaSecret,
		frontendURL: frontendURL,
		validate:    validator.New(),
	}
}

// CartItemPayload is one cart line in the create-order request.
type CartItemPayload struct {
	ProductID string  `json:"productId" validate:"required"`
	Title     string  `json:"title"`
	Image     string  `json:"image"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
}

// AddressPayload is the shipping address in the create-order request.
type AddressPayload struct {
	AddressID string `json:"addressId"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city"`
	Pincode   string `json:"pincode"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

// CreateOrderRequest is the create-order request body. Status and date fields
// sent by older clients are ignored; the server owns them.
type CreateOrderRequest struct {
	UserID        string            `json:"userId" validate:"required"`
	CartID        string            `json:"cartId"`
	CartItems     []CartItemPayload `json:"cartItems" validate:"required,min=1,dive"`
	AddressInfo   AddressPayload    `json:"addressInfo"`
	PaymentMethod string            `json:"paymentMethod" validate:"required"`
	TotalAmount   float64           `json:"totalAmount" validate:"gt=0"`
}

// CapturePaymentRequest is the capture request body.
type CapturePaymentRequest struct {
	OrderID       string `json:"orderId" validate:"required"`
	TransactionID string `json:"transactionId"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

// CreateOrderResponse is returned by the create endpoint. Payment fields are
// present only for gateway payment methods.
type CreateOrderResponse struct {
	Success       bool                  `json:"success"`
	OrderID       string                `json:"orderId"`
	Message       string                `json:"message,omitempty"`
	PaymentURL    string                `json:"paymentUrl,omitempty"`
	PaymentData   *esewa.RedirectFields `json:"paymentData,omitempty"`
	TransactionID string                `json:"transactionId,omitempty"`
}

// OrderResponse wraps a single order.
type OrderResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    *domain.Order `json:"data"`
}

// OrderListResponse wraps a customer's orders.
type OrderListResponse struct {
	Success bool           `json:"success"`
	Data    []domain.Order `json:"data"`
}

// ErrorResponse is the uniform failure envelope.
type ErrorResponse struct {
	// Success is always false on errors.
	Success bool `json:"success"`
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id,omitempty"`
}

func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Message: message,
		RayID:   rayID(c),
	})
}

// CreateOrder handles order creation, returning a gateway redirect payload
// for off-site payment methods.
// @Summary Create an order
// @Description Persists a pending order; for eSewa it returns the signed hosted-payment-page payload.
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Order details"
// @Success 201 {object} CreateOrderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/shop/order/create [post]
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
	}

	items := make([]domain.OrderItem, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	result, err := h.service.CreateOrder(c.Context(), ports.CreateOrderInput{
		UserID: req.UserID,
		CartID: req.CartID,
		Items:  items,
		Address: domain.AddressInfo{
			AddressID: req.AddressInfo.AddressID,
			Address:   req.AddressInfo.Address,
			City:      req.AddressInfo.City,
			Pincode:   req.AddressInfo.Pincode,
			Phone:     req.AddressInfo.Phone,
			Notes:     req.AddressInfo.Notes,
		},
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		TotalAmount:   req.TotalAmount,
	})
	if err != nil {
		logger.Get().Error("Failed to create order",
			zap.String("user_id", req.UserID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)

		if isValidationError(err) {
			return fail(c, http.StatusBadRequest, err.Error())
		}
		return fail(c, http.StatusInternalServerError, "Failed to create order")
	}

	resp := CreateOrderResponse{
		Success: true,
		OrderID: result.OrderID,
	}
	if result.PaymentFields != nil {
		resp.PaymentURL = result.PaymentURL
		resp.PaymentData = result.PaymentFields
		resp.TransactionID = result.TransactionID
	} else {
		resp.Message = "Order created successfully"
	}
	return c.Status(http.StatusCreated).JSON(resp)
}

// CapturePayment confirms an order after the customer returns from the gateway.
// @Summary Capture a payment
// @Description Confirms the payment, decrements stock, and clears the originating cart. Idempotent.
// @Accept json
// @Produce json
// @Param request body CapturePaymentRequest true "Capture details"
// @Success 200 {object} OrderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/shop/order/capture [post]
func (h *OrderHandler) CapturePayment(c *fiber.Ctx) error {
	var req CapturePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
	}

	order, outcome, err := h.service.CapturePayment(c.Context(), req.OrderID, req.TransactionID, domain.PaymentMethod(req.PaymentMethod))
	if err != nil {
		logger.Get().Error("Failed to capture payment",
			zap.String("order_id", req.OrderID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)

		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			return fail(c, http.StatusNotFound, "Order can not be found")
		case errors.Is(err, domain.ErrProductNotFound):
			return fail(c, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrInsufficientStock):
			return fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPaymentNotSettled):
			return fail(c, http.StatusBadRequest, "Payment has not been completed")
		default:
			return fail(c, http.StatusInternalServerError, "Failed to confirm order")
		}
	}

	message := "Order confirmed"
	if outcome == ports.OutcomeAlreadyConfirmed {
		message = "Order already confirmed"
	}
	return c.Status(http.StatusOK).JSON(OrderResponse{
		Success: true,
		Message: message,
		Data:    order,
	})
}

// ListOrders returns all orders for a customer.
// @Summary List a customer's orders
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} OrderListResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/shop/order/list/{userId} [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return fail(c, http.StatusBadRequest, "User ID is required")
	}

	orders, err := h.service.OrdersByUser(c.Context(), userID)
	if err != nil {
		logger.Get().Error("Failed to list orders",
			zap.String("user_id", userID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
		return fail(c, http.StatusInternalServerError, "Failed to list orders")
	}

	if len(orders) == 0 {
		return fail(c, http.StatusNotFound, "No orders found!")
	}

	return c.Status(http.StatusOK).JSON(OrderListResponse{
		Success: true,
		Data:    orders,
	})
}

// OrderDetails returns one order by id.
// @Summary Get order details
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} OrderResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/shop/order/details/{id} [get]
func (h *OrderHandler) OrderDetails(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if orderID == "" {
		return fail(c, http.StatusBadRequest, "Order ID is required")
	}

	order, err := h.service.OrderDetails(c.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return fail(c, http.StatusNotFound, "Order not found!")
		}
		logger.Get().Error("Failed to load order",
			zap.String("order_id", orderID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
		return fail(c, http.StatusInternalServerError, "Failed to load order")
	}

	return c.Status(http.StatusOK).JSON(OrderResponse{
		Success: true,
		Data:    order,
	})
}

// EsewaCallback handles the gateway's server-to-server notification. The
// signature check is the trust boundary: the callback is unauthenticated by
// session and the order is located by its stored transaction uuid only.
// @Summary eSewa payment callback
// @Description Verifies the gateway signature and confirms the matching order, then redirects to the storefront.
// @Accept x-www-form-urlencoded
// @Success 302
// @Failure 400 {string} string "Invalid signature"
// @Router /api/shop/order/esewa-callback [post]
func (h *OrderHandler) EsewaCallback(c *fiber.Ctx) error {
	var payload esewa.CallbackPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(http.StatusBadRequest).SendString("Invalid callback payload")
	}

	if !esewa.VerifyCallback(h.esewaSecret, payload) {
		metrics.SignatureFailures.Inc()
		// Logged distinctly; the expected signature is never echoed back.
		logger.Get().Warn("Rejected gateway callback with invalid signature",
			zap.String("transaction_uuid", payload.TransactionUUID),
			zap.String("status", payload.Status),
			zap.String("ray_id", rayID(c)),
		)
		return c.Status(http.StatusBadRequest).SendString("Invalid signature")
	}

	if !payload.Complete() {
		logger.Get().Info("Gateway reported unsettled transaction",
			zap.String("transaction_uuid", payload.TransactionUUID),
			zap.String("status", payload.Status),
		)
		return c.Redirect(h.frontendURL+"/shop/payment-failed", http.StatusFound)
	}

	order, _, err := h.service.ConfirmGatewayPayment(c.Context(), payload.TransactionUUID, payload.TransactionCode)
	if err != nil {
		logger.Get().Error("Failed to confirm order from gateway callback",
			zap.String("transaction_uuid", payload.TransactionUUID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
		return c.Redirect(h.frontendURL+"/shop/payment-failed", http.StatusFound)
	}

	successURL := fmt.Sprintf("%s/shop/esewa-success?transactionId=%s&orderId=%s",
		h.frontendURL, payload.TransactionCode, order.ID.Hex())
	return c.Redirect(successURL, http.StatusFound)
}

// isValidationError reports whether err is one of the order-creation
// validation failures surfaced as 4xx.
func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrEmptyCart) ||
		errors.Is(err, domain.ErrInvalidItem) ||
		errors.Is(err, domain.ErrMissingAddress) ||
		errors.Is(err, domain.ErrAmountMismatch) ||
		errors.Is(err, domain.ErrUnknownPaymentMethod)
}
