package rest

import (
	"context"
	"net/http"
	"time"

	"techshop/domain"
	"techshop/internal/middleware"
	"techshop/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CartSessionHeader carries the guest cart key for anonymous shoppers.
const CartSessionHeader = "X-Cart-Session"

type CartService interface {
	GetCart(ctx context.Context, owner domain.CartOwner) (domain.CartView, error)
	AddItem(ctx context.Context, owner domain.CartOwner, productID uint64, variantID *uint64, quantity int) (domain.CartView, error)
	UpdateItem(ctx context.Context, owner domain.CartOwner, itemID uint64, quantity int) (domain.CartView, error)
	RemoveItem(ctx context.Context, owner domain.CartOwner, itemID uint64) (domain.CartView, error)
	Clear(ctx context.Context, owner domain.CartOwner) error
	MergeGuestCart(ctx context.Context, sessionKey string, userID uint) (domain.CartView, error)
}

type CartHandler struct {
	cartService CartService
	validator   *validator.Validate
	timeout     time.Duration
}

func NewCartHandler(cartService CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   validator.New(),
		timeout:     timeout,
	}
}

type AddCartItemRequest struct {
	ProductID uint64  `json:"product_id" validate:"required"`
	VariantID *uint64 `json:"variant_id"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// owner resolves the cart owner. Guests without a session key get a fresh
// one when create is set, echoed back in the response header.
func owner(c echo.Context, create bool) domain.CartOwner {
	if userID, ok := middleware.UserID(c); ok {
		return domain.CartOwner{UserID: userID}
	}

	sessionKey := c.Request().Header.Get(CartSessionHeader)
	if sessionKey == "" && create {
		sessionKey = uuid.NewString()
	}
	if sessionKey != "" {
		c.Response().Header().Set(CartSessionHeader, sessionKey)
	}

	return domain.CartOwner{SessionKey: sessionKey}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	cartOwner := owner(c, false)
	if cartOwner.IsZero() {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message": "successfully get cart",
			"cart":    domain.CartView{Lines: []domain.CartLine{}},
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.GetCart(ctx, cartOwner)
	if err != nil {
		return respondError(c, err, "Failed to get cart")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get cart",
		"cart":    cart,
	})
}

func (h *CartHandler) AddItem(c echo.Context) error {
	var req AddCartItemRequest

	if err := bindRequest(c, h.validator, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.AddItem(ctx, owner(c, true), req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		return respondError(c, err, "Failed to add cart item")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Item added to cart",
		"cart":    cart,
	})
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	itemID, err := parseID(c, "item_id")
	if err != nil {
		return badRequest(c, "invalid cart item id")
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, err.Error())
	}

	cartOwner := owner(c, false)
	if cartOwner.IsZero() {
		return respondError(c, domain.ErrCartItemNotFound, "Failed to update cart item")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.UpdateItem(ctx, cartOwner, itemID, req.Quantity)
	if err != nil {
		return respondError(c, err, "Failed to update cart item")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Cart updated",
		"cart":    cart,
	})
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	itemID, err := parseID(c, "item_id")
	if err != nil {
		return badRequest(c, "invalid cart item id")
	}

	cartOwner := owner(c, false)
	if cartOwner.IsZero() {
		return respondError(c, domain.ErrCartItemNotFound, "Failed to remove cart item")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.RemoveItem(ctx, cartOwner, itemID)
	if err != nil {
		return respondError(c, err, "Failed to remove cart item")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Item removed from cart",
		"cart":    cart,
	})
}

func (h *CartHandler) Clear(c echo.Context) error {
	cartOwner := owner(c, false)
	if cartOwner.IsZero() {
		return c.JSON(http.StatusOK, map[string]interface{}{"message": "Cart cleared"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.cartService.Clear(ctx, cartOwner); err != nil {
		return respondError(c, err, "Failed to clear cart")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Cart cleared"})
}

// Merge moves the guest cart named by the session header onto the caller.
func (h *CartHandler) Merge(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	sessionKey := c.Request().Header.Get(CartSessionHeader)
	if sessionKey == "" {
		return badRequest(c, "missing "+CartSessionHeader+" header")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.MergeGuestCart(ctx, sessionKey, userID)
	if err != nil {
		return respondError(c, err, "Failed to merge cart")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Cart merged",
		"cart":    cart,
	})
}
