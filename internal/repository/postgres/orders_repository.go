package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techshop/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

// PlaceOrder writes a checkout in one transaction. Stock is taken with guarded
// updates so two concurrent checkouts can never both take the last unit.
func (r *OrdersRepository) PlaceOrder(ctx context.Context, p *domain.PlaceOrder) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range p.Lines {
			if err := takeStock(tx, line); err != nil {
				return err
			}
		}

		if err := tx.Create(p.Order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if p.Payment != nil {
			p.Payment.OrderID = p.Order.ID
			if err := tx.Create(p.Payment).Error; err != nil {
				return fmt.Errorf("failed to create payment: %w", err)
			}
		}

		if p.Review != nil {
			p.Review.OrderID = p.Order.ID
			if err := tx.Create(p.Review).Error; err != nil {
				return fmt.Errorf("failed to create review: %w", err)
			}
		}

		movements := make([]domain.InventoryMovement, 0, len(p.Lines))
		for _, line := range p.Lines {
			movements = append(movements, domain.InventoryMovement{
				ProductID:       line.ProductID,
				VariantID:       line.VariantID,
				MovementType:    domain.MovementSold,
				Quantity:        -line.Quantity,
				ReferenceNumber: p.Order.OrderNumber,
			})
		}
		if len(movements) > 0 {
			if err := tx.Create(&movements).Error; err != nil {
				return fmt.Errorf("failed to record movements: %w", err)
			}
		}

		if p.CartID != 0 {
			if err := tx.Where("cart_id = ?", p.CartID).Delete(&domain.CartItem{}).Error; err != nil {
				return fmt.Errorf("failed to clear cart: %w", err)
			}
		}

		return nil
	})
}

// takeStock deducts a line from its variant, when there is one, and from the
// product.
func takeStock(tx *gorm.DB, line domain.StockLine) error {
	if line.VariantID != nil {
		err := applyStockDelta(tx, &domain.ProductVariant{}, *line.VariantID, -line.Quantity)
		if err != nil {
			return stockError(tx, &domain.ProductVariant{}, *line.VariantID, line, err)
		}
	}

	err := applyStockDelta(tx, &domain.Product{}, line.ProductID, -line.Quantity)
	if err != nil {
		return stockError(tx, &domain.Product{}, line.ProductID, line, err)
	}

	return nil
}

func stockError(tx *gorm.DB, model interface{}, id uint64, line domain.StockLine, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		if _, ok := model.(*domain.ProductVariant); ok {
			return domain.ErrInvalidVariant
		}
		return domain.ErrProductNotFound
	}

	if !errors.Is(err, domain.ErrNegativeStock) {
		return err
	}

	var available int
	if err := tx.Model(model).Where("id = ?", id).Select("stock_quantity").Scan(&available).Error; err != nil {
		return fmt.Errorf("failed to read stock: %w", err)
	}

	return &domain.InsufficientStockError{
		SKU:       line.SKU,
		Requested: line.Quantity,
		Available: available,
	}
}

func (r *OrdersRepository) AttachPaymentLink(ctx context.Context, orderID uint64, link string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	row := r.DB.WithContext(ctx).Model(&domain.PaymentTransaction{}).
		Where("order_id = ?", orderID).
		Update("payment_link", link)
	if err := row.Error; err != nil {
		return fmt.Errorf("failed to attach payment link: %w", err)
	}

	if row.RowsAffected == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

func (r *OrdersRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Items").Preload("Payment").Preload("Review")
}

func (r *OrdersRepository) FindByID(ctx context.Context, id uint64) (domain.WebOrder, error) {
	if err := ctx.Err(); err != nil {
		return domain.WebOrder{}, fmt.Errorf("context error: %w", err)
	}

	var order domain.WebOrder
	err := r.withDetails(r.DB.WithContext(ctx)).First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.WebOrder{}, domain.ErrOrderNotFound
		}
		return domain.WebOrder{}, fmt.Errorf("failed to find order: %w", err)
	}

	return order, nil
}

func (r *OrdersRepository) FindByNumber(ctx context.Context, orderNumber string) (domain.WebOrder, error) {
	if err := ctx.Err(); err != nil {
		return domain.WebOrder{}, fmt.Errorf("context error: %w", err)
	}

	var order domain.WebOrder
	err := r.withDetails(r.DB.WithContext(ctx)).Where("order_number = ?", orderNumber).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.WebOrder{}, domain.ErrOrderNotFound
		}
		return domain.WebOrder{}, fmt.Errorf("failed to find order: %w", err)
	}

	return order, nil
}

func (r *OrdersRepository) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.WebOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Preload("Items").Preload("Review").Order("created_at DESC, id DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var orders []domain.WebOrder
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}

	return orders, nil
}

// Transition moves an order to next. Cancelling puts every line back on the
// shelf and refunds a completed payment.
func (r *OrdersRepository) Transition(ctx context.Context, id uint64, next domain.OrderStatus, performedBy uint, at time.Time) (domain.WebOrder, error) {
	if err := ctx.Err(); err != nil {
		return domain.WebOrder{}, fmt.Errorf("context error: %w", err)
	}

	var order domain.WebOrder
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = transitionTx(tx, id, next, performedBy, at)
		return err
	})
	if err != nil {
		return domain.WebOrder{}, err
	}

	return order, nil
}

func transitionTx(tx *gorm.DB, id uint64, next domain.OrderStatus, performedBy uint, at time.Time) (domain.WebOrder, error) {
	var order domain.WebOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.WebOrder{}, domain.ErrOrderNotFound
		}
		return domain.WebOrder{}, fmt.Errorf("failed to find order: %w", err)
	}

	if !order.Status.CanTransitionTo(next) {
		return domain.WebOrder{}, domain.ErrInvalidTransition
	}

	updates := map[string]interface{}{
		"status":     next,
		"updated_at": at,
	}
	switch next {
	case domain.OrderStatusShipped:
		updates["shipped_at"] = at
	case domain.OrderStatusDelivered:
		updates["delivered_at"] = at
		if order.ShippedAt == nil {
			updates["shipped_at"] = at
		}
	}

	row := tx.Model(&domain.WebOrder{}).
		Where("id = ? AND status = ?", id, order.Status).
		Updates(updates)
	if row.Error != nil {
		return domain.WebOrder{}, fmt.Errorf("failed to update order: %w", row.Error)
	}
	if row.RowsAffected == 0 {
		return domain.WebOrder{}, domain.ErrInvalidTransition
	}

	if next == domain.OrderStatusCancelled {
		if err := restock(tx, order, performedBy); err != nil {
			return domain.WebOrder{}, err
		}

		err := tx.Model(&domain.PaymentTransaction{}).
			Where("order_id = ? AND status = ?", id, domain.PaymentStatusCompleted).
			Update("status", domain.PaymentStatusRefunded).Error
		if err != nil {
			return domain.WebOrder{}, fmt.Errorf("failed to refund payment: %w", err)
		}
	}

	var updated domain.WebOrder
	if err := tx.Preload("Items").Preload("Payment").Preload("Review").First(&updated, id).Error; err != nil {
		return domain.WebOrder{}, fmt.Errorf("failed to reload order: %w", err)
	}

	return updated, nil
}

func restock(tx *gorm.DB, order domain.WebOrder, performedBy uint) error {
	var by *uint
	if performedBy != 0 {
		by = &performedBy
	}

	for _, item := range order.Items {
		if item.VariantID != nil {
			err := applyStockDelta(tx, &domain.ProductVariant{}, *item.VariantID, item.Quantity)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}

		err := applyStockDelta(tx, &domain.Product{}, item.ProductID, item.Quantity)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		movement := domain.InventoryMovement{
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			MovementType:    domain.MovementReturned,
			Quantity:        item.Quantity,
			ReferenceNumber: order.OrderNumber,
			Notes:           "order cancelled",
			PerformedBy:     by,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return fmt.Errorf("failed to record movement: %w", err)
		}
	}

	return nil
}

func (r *OrdersRepository) SetTrackingNumber(ctx context.Context, id uint64, tracking string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	row := r.DB.WithContext(ctx).Model(&domain.WebOrder{}).Where("id = ?", id).Update("tracking_number", tracking)
	if err := row.Error; err != nil {
		return fmt.Errorf("failed to update tracking number: %w", err)
	}
	if row.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

func (r *OrdersRepository) CountOrders(ctx context.Context, userID uint) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.WebOrder{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

func (r *OrdersRepository) CountOrdersSince(ctx context.Context, userID uint, since time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.WebOrder{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

func (r *OrdersRepository) CountOrdersFromIPSince(ctx context.Context, ip string, since time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.WebOrder{}).
		Where("client_ip = ? AND created_at >= ?", ip, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

func (r *OrdersRepository) FindReviews(ctx context.Context, status domain.ReviewStatus) ([]domain.OrderReview, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Order("created_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var reviews []domain.OrderReview
	if err := q.Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}

	return reviews, nil
}

// ResolveReview closes an open review. Approving releases a paid order to
// fulfillment; rejecting cancels it and restocks.
func (r *OrdersRepository) ResolveReview(ctx context.Context, reviewID uint64, decision domain.ReviewStatus, reviewer uint, note string, at time.Time) (domain.OrderReview, error) {
	if err := ctx.Err(); err != nil {
		return domain.OrderReview{}, fmt.Errorf("context error: %w", err)
	}

	var review domain.OrderReview
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrReviewNotFound
			}
			return fmt.Errorf("failed to find review: %w", err)
		}

		row := tx.Model(&domain.OrderReview{}).
			Where("id = ? AND status = ?", reviewID, domain.ReviewStatusOpen).
			Updates(map[string]interface{}{
				"status":      decision,
				"reviewed_by": reviewer,
				"review_note": note,
				"reviewed_at": at,
			})
		if row.Error != nil {
			return fmt.Errorf("failed to update review: %w", row.Error)
		}
		if row.RowsAffected == 0 {
			return domain.ErrReviewClosed
		}

		switch decision {
		case domain.ReviewStatusRejected:
			if _, err := transitionTx(tx, review.OrderID, domain.OrderStatusCancelled, reviewer, at); err != nil {
				return err
			}
		case domain.ReviewStatusApproved:
			var payment domain.PaymentTransaction
			err := tx.Where("order_id = ?", review.OrderID).First(&payment).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to find payment: %w", err)
			}
			if err == nil && payment.Status == domain.PaymentStatusCompleted {
				_, err := transitionTx(tx, review.OrderID, domain.OrderStatusConfirmed, reviewer, at)
				if err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
					return err
				}
			}
		}

		return tx.First(&review, reviewID).Error
	})
	if err != nil {
		return domain.OrderReview{}, err
	}

	return review, nil
}
