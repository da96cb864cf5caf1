package repository

import (
	"staff_orders/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(order *models.Order) error
	Active() ([]models.Order, error)
	CompleteByID(id uint) error
	CompleteAll() error
	UpdateWithLock(id uint, apply func(order *models.Order) error) error
	StatusByPhone(phone string) (string, error)
	StatusByPhoneAndID(phone string, id uint) (string, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) Active() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("status <> ?", string(models.OrderCompleted)).
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

// CompleteByID marks one order completed. Zero rows affected is not an error:
// completing an unknown or already-completed id is a no-op.
func (r *orderRepository) CompleteByID(id uint) error {
	return r.db.Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", string(models.OrderCompleted)).Error
}

func (r *orderRepository) CompleteAll() error {
	return r.db.Model(&models.Order{}).
		Where("status <> ?", string(models.OrderCompleted)).
		Update("status", string(models.OrderCompleted)).Error
}

// UpdateWithLock loads the order under a FOR UPDATE row lock, applies the
// mutation and persists the result, all in one transaction. Concurrent
// mutations of the same order serialize on the lock instead of overwriting
// each other. Returns gorm.ErrRecordNotFound if the id does not exist.
func (r *orderRepository) UpdateWithLock(id uint, apply func(order *models.Order) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			return err
		}
		if err := apply(&order); err != nil {
			return err
		}
		return tx.Model(&order).
			Select("item", "total", "status").
			Updates(map[string]interface{}{
				"item":   order.Item,
				"total":  order.Total,
				"status": order.Status,
			}).Error
	})
}

func (r *orderRepository) StatusByPhone(phone string) (string, error) {
	var order models.Order
	err := r.db.Select("status").
		Where("phone = ?", phone).
		Order("id DESC").
		Take(&order).Error
	if err != nil {
		return "", err
	}
	return order.Status, nil
}

func (r *orderRepository) StatusByPhoneAndID(phone string, id uint) (string, error) {
	var order models.Order
	err := r.db.Select("status").
		Where("id = ? AND phone = ?", id, phone).
		Take(&order).Error
	if err != nil {
		return "", err
	}
	return order.Status, nil
}
