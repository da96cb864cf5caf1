package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"staff_orders/internal/models"
	"staff_orders/internal/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrItemIndexOutOfRange = errors.New("item index out of range")
)

// OrderView is the shape the staff dashboard polls.
type OrderView struct {
	ID    uint                     `json:"id"`
	Name  string                   `json:"name"`
	Phone string                   `json:"phone"`
	Table string                   `json:"table"`
	Items []map[string]interface{} `json:"items"`
	Total float64                  `json:"total"`
}

type OrderService interface {
	Submit(name, phone, table string, items []map[string]interface{}, total float64) (uint, error)
	ActiveOrders() ([]OrderView, error)
	CompleteOrder(id uint) error
	CompleteAllOrders() error
	RemoveItem(orderID uint, index int) error
	StatusByPhone(phone string, orderID uint) (string, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// Submit stores a new pending order and returns its id. The client total is
// advisory: it is stored as given, but every later mutation recomputes the
// total from item prices.
func (s *orderService) Submit(name, phone, table string, items []map[string]interface{}, total float64) (uint, error) {
	if items == nil {
		items = []map[string]interface{}{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("failed to encode items: %w", err)
	}

	order := models.Order{
		Name:        strings.TrimSpace(name),
		Phone:       strings.TrimSpace(phone),
		TableNumber: strings.TrimSpace(table),
		Item:        datatypes.JSON(raw),
		Total:       total,
		Status:      string(models.OrderPending),
	}
	if err := s.orderRepo.Create(&order); err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return order.ID, nil
}

func (s *orderService) ActiveOrders() ([]OrderView, error) {
	orders, err := s.orderRepo.Active()
	if err != nil {
		return nil, fmt.Errorf("failed to list active orders: %w", err)
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		views = append(views, OrderView{
			ID:    o.ID,
			Name:  o.Name,
			Phone: o.Phone,
			Table: o.TableNumber,
			Items: o.Items(),
			Total: o.Total,
		})
	}
	return views, nil
}

func (s *orderService) CompleteOrder(id uint) error {
	return s.orderRepo.CompleteByID(id)
}

func (s *orderService) CompleteAllOrders() error {
	return s.orderRepo.CompleteAll()
}

// RemoveItem drops the item at index (zero-based) and recomputes the order
// total from the remaining prices. Removing the last item completes the order
// with a zero total instead.
func (s *orderService) RemoveItem(orderID uint, index int) error {
	err := s.orderRepo.UpdateWithLock(orderID, func(order *models.Order) error {
		items := order.Items()
		if index < 0 || index >= len(items) {
			return ErrItemIndexOutOfRange
		}
		items = append(items[:index], items[index+1:]...)

		if len(items) == 0 {
			order.Item = datatypes.JSON([]byte("[]"))
			order.Total = 0
			order.Status = string(models.OrderCompleted)
			return nil
		}

		raw, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("failed to encode items: %w", err)
		}
		order.Item = datatypes.JSON(raw)
		order.Total = sumPrices(items)
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	return err
}

// StatusByPhone returns the status of the given order constrained to the
// phone, or of the phone's most recent order when orderID is zero.
func (s *orderService) StatusByPhone(phone string, orderID uint) (string, error) {
	var (
		status string
		err    error
	)
	if orderID > 0 {
		status, err = s.orderRepo.StatusByPhoneAndID(phone, orderID)
	} else {
		status, err = s.orderRepo.StatusByPhone(phone)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up order status: %w", err)
	}
	return status, nil
}

func sumPrices(items []map[string]interface{}) float64 {
	var total float64
	for _, item := range items {
		if price, ok := item["price"].(float64); ok {
			total += price
		}
	}
	return total
}
