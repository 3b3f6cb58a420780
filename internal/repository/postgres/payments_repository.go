package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techshop/domain"

	"gorm.io/gorm"
)

type PaymentsRepository struct {
	DB *gorm.DB
}

func NewPaymentsRepository(db *gorm.DB) *PaymentsRepository {
	return &PaymentsRepository{
		DB: db,
	}
}

func (r *PaymentsRepository) FindByOrderID(ctx context.Context, orderID uint64) (domain.PaymentTransaction, error) {
	if err := ctx.Err(); err != nil {
		return domain.PaymentTransaction{}, fmt.Errorf("context error: %w", err)
	}

	var payment domain.PaymentTransaction
	err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PaymentTransaction{}, domain.ErrPaymentNotFound
		}
		return domain.PaymentTransaction{}, fmt.Errorf("failed to find payment: %w", err)
	}

	return payment, nil
}

// MarkPaid completes the payment of an order. A pending order with no open
// review moves on to confirmed.
func (r *PaymentsRepository) MarkPaid(ctx context.Context, orderNumber string, paidAt time.Time) (domain.WebOrder, error) {
	if err := ctx.Err(); err != nil {
		return domain.WebOrder{}, fmt.Errorf("context error: %w", err)
	}

	var order domain.WebOrder
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = findOrderTx(tx, orderNumber)
		if err != nil {
			return err
		}

		row := tx.Model(&domain.PaymentTransaction{}).
			Where("order_id = ? AND status = ?", order.ID, domain.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":       domain.PaymentStatusCompleted,
				"processed_at": paidAt,
			})
		if row.Error != nil {
			return fmt.Errorf("failed to update payment: %w", row.Error)
		}
		if row.RowsAffected == 0 {
			// already settled or never pending; webhooks are retried
			return nil
		}

		if order.Status == domain.OrderStatusPending && !order.UnderReview() {
			order, err = transitionTx(tx, order.ID, domain.OrderStatusConfirmed, 0, paidAt)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return domain.WebOrder{}, err
	}

	return order, nil
}

// MarkFailed fails a pending payment and cancels its order, returning stock.
func (r *PaymentsRepository) MarkFailed(ctx context.Context, orderNumber string, at time.Time) (domain.WebOrder, error) {
	if err := ctx.Err(); err != nil {
		return domain.WebOrder{}, fmt.Errorf("context error: %w", err)
	}

	var order domain.WebOrder
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = findOrderTx(tx, orderNumber)
		if err != nil {
			return err
		}

		row := tx.Model(&domain.PaymentTransaction{}).
			Where("order_id = ? AND status = ?", order.ID, domain.PaymentStatusPending).
			Update("status", domain.PaymentStatusFailed)
		if row.Error != nil {
			return fmt.Errorf("failed to update payment: %w", row.Error)
		}
		if row.RowsAffected == 0 {
			return nil
		}

		if order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
			order, err = transitionTx(tx, order.ID, domain.OrderStatusCancelled, 0, at)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return domain.WebOrder{}, err
	}

	return order, nil
}

func findOrderTx(tx *gorm.DB, orderNumber string) (domain.WebOrder, error) {
	var order domain.WebOrder
	err := tx.Preload("Items").Preload("Payment").Preload("Review").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.WebOrder{}, domain.ErrOrderNotFound
		}
		return domain.WebOrder{}, fmt.Errorf("failed to find order: %w", err)
	}

	return order, nil
}
