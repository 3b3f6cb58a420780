package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"techshop/domain"
	"techshop/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	GetAllProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id uint64) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	CreateProduct(ctx context.Context, actor domain.Actor, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, actor domain.Actor, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, actor domain.Actor, id uint64) error

	AddVariant(ctx context.Context, actor domain.Actor, variant *domain.ProductVariant) (*domain.ProductVariant, error)
	ListVariants(ctx context.Context, productID uint64) ([]domain.ProductVariant, error)
	UpdateVariant(ctx context.Context, actor domain.Actor, productID uint64, variant *domain.ProductVariant) (*domain.ProductVariant, error)

	AdjustStock(ctx context.Context, actor domain.Actor, adj domain.StockAdjustment) (domain.InventoryMovement, error)
	ListMovements(ctx context.Context, productID uint64, limit int) ([]domain.InventoryMovement, error)
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
		timeout:        timeout,
	}
}

type ProductRequest struct {
	SKU                string          `json:"sku" validate:"required,max=50"`
	Name               string          `json:"name" validate:"required"`
	Description        string          `json:"description"`
	CategoryID         *uint64         `json:"category_id"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountLabel      string          `json:"discount_label"`
	StockQuantity      int             `json:"stock_quantity" validate:"gte=0"`
	ReorderLevel       int             `json:"reorder_level" validate:"gte=0"`
	IsAvailableOnline  bool            `json:"is_available_online"`
}

func (r ProductRequest) toDomain() domain.Product {
	return domain.Product{
		SKU:                r.SKU,
		Name:               r.Name,
		Description:        r.Description,
		CategoryID:         r.CategoryID,
		Price:              r.Price,
		DiscountPercentage: r.DiscountPercentage,
		DiscountLabel:      r.DiscountLabel,
		StockQuantity:      r.StockQuantity,
		ReorderLevel:       r.ReorderLevel,
		IsAvailableOnline:  r.IsAvailableOnline,
	}
}

type VariantRequest struct {
	Attributes      map[string]interface{} `json:"attributes"`
	SKUSuffix       string                 `json:"sku_suffix" validate:"max=20"`
	PriceAdjustment decimal.Decimal        `json:"price_adjustment"`
	StockQuantity   int                    `json:"stock_quantity" validate:"gte=0"`
	IsActive        *bool                  `json:"is_active"`
}

type StockAdjustmentRequest struct {
	VariantID *uint64 `json:"variant_id"`
	Delta     int     `json:"delta" validate:"required"`
	Reason    string  `json:"reason" validate:"required"`
}

// productView adds the computed storefront fields to a product.
type productView struct {
	*domain.Product
	DiscountedPrice decimal.Decimal    `json:"discounted_price"`
	HasOffer        bool               `json:"has_offer"`
	StockStatus     domain.StockStatus `json:"stock_status"`
}

func viewOf(p *domain.Product) productView {
	return productView{
		Product:         p,
		DiscountedPrice: p.DiscountedPrice(),
		HasOffer:        p.HasOffer(),
		StockStatus:     domain.StockStatusFor(p.StockQuantity, p.ReorderLevel),
	}
}

// GetAllProducts lists the catalog. Query: category_id, search; customers
// only ever see products available online.
func (h *ProductHandler) GetAllProducts(c echo.Context) error {
	filter := domain.ProductFilter{
		Search:     c.QueryParam("search"),
		OnlineOnly: c.Get("staff") == nil,
	}

	if raw := c.QueryParam("category_id"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid category id")
		}
		filter.CategoryID = &categoryID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.productService.GetAllProducts(ctx, filter)
	if err != nil {
		return respondError(c, err, "Failed to find all Product")
	}

	views := make([]productView, 0, len(products))
	for i := range products {
		views = append(views, viewOf(&products[i]))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "successfully get all products",
		"products": views,
	})
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		logger.Error("Invalid product id", err)
		return badRequest(c, "invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.GetProductByID(ctx, productID)
	if err != nil {
		return respondError(c, err, "Failed to find product")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully find product by id",
		"product": viewOf(product),
	})
}

func (h *ProductHandler) GetProductBySKU(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.GetProductBySKU(ctx, c.Param("sku"))
	if err != nil {
		return respondError(c, err, "Failed to find product by sku")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully find product by sku",
		"product": viewOf(product),
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest

	if err := bindRequest(c, h.validator, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product := req.toDomain()
	newProduct, err := h.productService.CreateProduct(ctx, actor(c), &product)
	if err != nil {
		return respondError(c, err, "Failed to create Product")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Product successfully created",
		"product": viewOf(newProduct),
	})
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		logger.Error("Invalid Product id", err)
		return badRequest(c, "invalid product id")
	}

	var req ProductRequest
	if err := bindRequest(c, h.validator, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product := req.toDomain()
	product.ID = productID

	updated, err := h.productService.UpdateProduct(ctx, actor(c), &product)
	if err != nil {
		return respondError(c, err, "Failed to update Product")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully update product",
		"product": viewOf(updated),
	})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		logger.Error("Invalid Product id", err)
		return badRequest(c, "invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, actor(c), productID); err != nil {
		return respondError(c, err, "Failed to delete Product")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "product successfully deleted",
		"product_id": productID,
	})
}

func (h *ProductHandler) ListVariants(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	variants, err := h.productService.ListVariants(ctx, productID)
	if err != nil {
		return respondError(c, err, "Failed to list variants")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "successfully get variants",
		"variants": variants,
	})
}

func (h *ProductHandler) AddVariant(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid product id")
	}

	var req VariantRequest
	if err := bindRequest(c, h.validator, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	variant, err := h.productService.AddVariant(ctx, actor(c), &domain.ProductVariant{
		ProductID:       productID,
		Attributes:      req.Attributes,
		SKUSuffix:       req.SKUSuffix,
		PriceAdjustment: req.PriceAdjustment,
		StockQuantity:   req.StockQuantity,
		IsActive:        active,
	})
	if err != nil {
		return respondError(c, err, "Failed to add variant")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Variant successfully created",
		"variant": variant,
	})
}

func (h *ProductHandler) UpdateVariant(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid product id")
	}

	variantID, err := parseID(c, "variant_id")
	if err != nil {
		return badRequest(c, "invalid variant id")
	}

	var req VariantRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	variant, err := h.productService.UpdateVariant(ctx, actor(c), productID, &domain.ProductVariant{
		ID:              variantID,
		Attributes:      req.Attributes,
		SKUSuffix:       req.SKUSuffix,
		PriceAdjustment: req.PriceAdjustment,
		IsActive:        active,
	})
	if err != nil {
		return respondError(c, err, "Failed to update variant")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully update variant",
		"variant": variant,
	})
}

func (h *ProductHandler) AdjustStock(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid product id")
	}

	var req StockAdjustmentRequest
	if err := bindRequest(c, h.validator, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	movement, err := h.productService.AdjustStock(ctx, actor(c), domain.StockAdjustment{
		ProductID: productID,
		VariantID: req.VariantID,
		Delta:     req.Delta,
		Reason:    req.Reason,
	})
	if err != nil {
		return respondError(c, err, "Failed to adjust stock")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "stock adjusted",
		"movement": movement,
	})
}

func (h *ProductHandler) ListMovements(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid product id")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	movements, err := h.productService.ListMovements(ctx, productID, limit)
	if err != nil {
		return respondError(c, err, "Failed to list stock movements")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "successfully get stock movements",
		"movements": movements,
	})
}
