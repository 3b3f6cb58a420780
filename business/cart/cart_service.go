package cart

import (
	"context"
	"errors"
	"fmt"

	"techshop/business/pricing"
	"techshop/domain"
	"techshop/pkg/logger"

	"github.com/shopspring/decimal"
)

type CartRepository interface {
	Find(ctx context.Context, owner domain.CartOwner) (domain.Cart, error)
	GetOrCreate(ctx context.Context, owner domain.CartOwner) (domain.Cart, error)
	FindLine(ctx context.Context, cartID, productID uint64, variantID *uint64) (domain.CartItem, error)
	FindItem(ctx context.Context, cartID, itemID uint64) (domain.CartItem, error)
	SaveItem(ctx context.Context, item *domain.CartItem) error
	DeleteItem(ctx context.Context, cartID, itemID uint64) error
	ClearItems(ctx context.Context, cartID uint64) error
	DeleteCart(ctx context.Context, cartID uint64) error
}

type ProductReader interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindVariant(ctx context.Context, id uint64) (domain.ProductVariant, error)
}

type SettingsProvider interface {
	Current(ctx context.Context) (domain.SiteConfiguration, error)
}

type cartService struct {
	cartRepo    CartRepository
	productRepo ProductReader
	settings    SettingsProvider
}

func NewCartService(cartRepo CartRepository, productRepo ProductReader, settings SettingsProvider) *cartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		settings:    settings,
	}
}

// resolve checks a product/variant pair can be sold online.
func (s *cartService) resolve(ctx context.Context, productID uint64, variantID *uint64) (domain.Product, *domain.ProductVariant, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, nil, err
	}

	if !product.IsAvailableOnline {
		return domain.Product{}, nil, domain.ErrProductUnavailable
	}

	if variantID == nil {
		return product, nil, nil
	}

	variant, err := s.productRepo.FindVariant(ctx, *variantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Product{}, nil, domain.ErrInvalidVariant
		}
		return domain.Product{}, nil, err
	}

	if variant.ProductID != product.ID || !variant.IsActive {
		return domain.Product{}, nil, domain.ErrInvalidVariant
	}

	return product, &variant, nil
}

func available(product domain.Product, variant *domain.ProductVariant) (string, int) {
	if variant != nil {
		return variant.SKU(product), variant.StockQuantity
	}
	return product.SKU, product.StockQuantity
}

func (s *cartService) GetCart(ctx context.Context, owner domain.CartOwner) (domain.CartView, error) {
	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return domain.CartView{}, err
	}

	cart, err := s.cartRepo.Find(ctx, owner)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.CartView{Lines: []domain.CartLine{}, Totals: pricing.Totals(decimal.Zero, cfg)}, nil
	}
	if err != nil {
		logger.Error("failed to load cart", err)
		return domain.CartView{}, err
	}

	return buildView(cart, cfg), nil
}

func buildView(cart domain.Cart, cfg domain.SiteConfiguration) domain.CartView {
	view := domain.CartView{CartID: cart.ID, Lines: make([]domain.CartLine, 0, len(cart.Items))}
	subtotal := decimal.Zero

	for _, item := range cart.Items {
		sku, stock := available(item.Product, item.Variant)
		unit := pricing.UnitPrice(item.Product, item.Variant)
		total := pricing.LineTotal(unit, item.Quantity)

		line := domain.CartLine{
			ItemID:         item.ID,
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			SKU:            sku,
			Name:           item.Product.Name,
			Quantity:       item.Quantity,
			UnitPrice:      unit,
			LineTotal:      total,
			AvailableStock: stock,
			StockStatus:    domain.StockStatusFor(stock, cfg.LowStockThreshold),
		}
		if item.Variant != nil {
			line.VariantInfo = item.Variant.Describe()
		}

		view.Lines = append(view.Lines, line)
		view.TotalItems += item.Quantity
		subtotal = subtotal.Add(total)
	}

	view.Totals = pricing.Totals(subtotal, cfg)
	return view
}

func (s *cartService) AddItem(ctx context.Context, owner domain.CartOwner, productID uint64, variantID *uint64, quantity int) (domain.CartView, error) {
	if owner.IsZero() {
		return domain.CartView{}, domain.Invalid("cart owner is required")
	}

	if quantity <= 0 {
		return domain.CartView{}, domain.ErrInvalidQuantity
	}

	product, variant, err := s.resolve(ctx, productID, variantID)
	if err != nil {
		return domain.CartView{}, err
	}
	sku, stock := available(product, variant)

	cart, err := s.cartRepo.GetOrCreate(ctx, owner)
	if err != nil {
		logger.Error("failed to get cart", err)
		return domain.CartView{}, err
	}

	item, err := s.cartRepo.FindLine(ctx, cart.ID, productID, variantID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.CartView{}, err
	}
	if errors.Is(err, domain.ErrNotFound) {
		item = domain.CartItem{CartID: cart.ID, ProductID: productID, VariantID: variantID}
	}

	requested := item.Quantity + quantity
	if requested > stock {
		return domain.CartView{}, &domain.InsufficientStockError{SKU: sku, Requested: requested, Available: stock}
	}
	item.Quantity = requested

	if err := s.cartRepo.SaveItem(ctx, &item); err != nil {
		logger.Error("failed to save cart item", err)
		return domain.CartView{}, fmt.Errorf("failed to add to cart: %w", err)
	}

	return s.GetCart(ctx, owner)
}

// UpdateItem sets a line quantity; zero or less removes the line.
func (s *cartService) UpdateItem(ctx context.Context, owner domain.CartOwner, itemID uint64, quantity int) (domain.CartView, error) {
	cart, err := s.cartRepo.Find(ctx, owner)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.CartView{}, domain.ErrCartItemNotFound
		}
		return domain.CartView{}, err
	}

	item, err := s.cartRepo.FindItem(ctx, cart.ID, itemID)
	if err != nil {
		return domain.CartView{}, err
	}

	if quantity <= 0 {
		if err := s.cartRepo.DeleteItem(ctx, cart.ID, itemID); err != nil {
			return domain.CartView{}, err
		}
		return s.GetCart(ctx, owner)
	}

	product, variant, err := s.resolve(ctx, item.ProductID, item.VariantID)
	if err != nil {
		return domain.CartView{}, err
	}

	sku, stock := available(product, variant)
	if quantity > stock {
		return domain.CartView{}, &domain.InsufficientStockError{SKU: sku, Requested: quantity, Available: stock}
	}

	item.Quantity = quantity
	if err := s.cartRepo.SaveItem(ctx, &item); err != nil {
		return domain.CartView{}, fmt.Errorf("failed to update cart: %w", err)
	}

	return s.GetCart(ctx, owner)
}

func (s *cartService) RemoveItem(ctx context.Context, owner domain.CartOwner, itemID uint64) (domain.CartView, error) {
	cart, err := s.cartRepo.Find(ctx, owner)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.CartView{}, domain.ErrCartItemNotFound
		}
		return domain.CartView{}, err
	}

	if err := s.cartRepo.DeleteItem(ctx, cart.ID, itemID); err != nil {
		return domain.CartView{}, err
	}

	return s.GetCart(ctx, owner)
}

func (s *cartService) Clear(ctx context.Context, owner domain.CartOwner) error {
	cart, err := s.cartRepo.Find(ctx, owner)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return s.cartRepo.ClearItems(ctx, cart.ID)
}

// MergeGuestCart moves a guest session cart into the user's cart. Quantities
// are summed and capped at available stock; lines no longer sellable are dropped.
func (s *cartService) MergeGuestCart(ctx context.Context, sessionKey string, userID uint) (domain.CartView, error) {
	userOwner := domain.CartOwner{UserID: userID}
	if sessionKey == "" {
		return s.GetCart(ctx, userOwner)
	}

	guest, err := s.cartRepo.Find(ctx, domain.CartOwner{SessionKey: sessionKey})
	if errors.Is(err, domain.ErrNotFound) {
		return s.GetCart(ctx, userOwner)
	}
	if err != nil {
		return domain.CartView{}, err
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userOwner)
	if err != nil {
		return domain.CartView{}, err
	}

	for _, g := range guest.Items {
		product, variant, err := s.resolve(ctx, g.ProductID, g.VariantID)
		if err != nil {
			logger.Warn("dropping guest cart line", "product_id", g.ProductID, "error", err)
			continue
		}
		_, stock := available(product, variant)

		item, err := s.cartRepo.FindLine(ctx, cart.ID, g.ProductID, g.VariantID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return domain.CartView{}, err
		}
		if errors.Is(err, domain.ErrNotFound) {
			item = domain.CartItem{CartID: cart.ID, ProductID: g.ProductID, VariantID: g.VariantID}
		}

		item.Quantity = min(item.Quantity+g.Quantity, stock)
		if item.Quantity <= 0 {
			if item.ID != 0 {
				if err := s.cartRepo.DeleteItem(ctx, cart.ID, item.ID); err != nil {
					return domain.CartView{}, err
				}
			}
			continue
		}

		if err := s.cartRepo.SaveItem(ctx, &item); err != nil {
			return domain.CartView{}, err
		}
	}

	if err := s.cartRepo.DeleteCart(ctx, guest.ID); err != nil {
		logger.Warn("failed to delete merged guest cart", err)
	}

	return s.GetCart(ctx, userOwner)
}
