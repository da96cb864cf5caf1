package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
)

// Order is one customer's placed order. Rows are never deleted: completing an
// order, or emptying its item list, only flips Status.
type Order struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name"`
	Phone       string         `json:"phone" gorm:"index"`
	TableNumber string         `json:"table"`
	Item        datatypes.JSON `json:"item" gorm:"column:item"`
	Total       float64        `json:"total"`
	Status      string         `json:"status" gorm:"default:'pending'"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

// Items decodes the stored item document. Line items keep whatever extra
// fields the client sent; a null or malformed document reads as an empty list.
func (o *Order) Items() []map[string]interface{} {
	if len(o.Item) == 0 {
		return []map[string]interface{}{}
	}
	var items []map[string]interface{}
	if err := json.Unmarshal(o.Item, &items); err != nil || items == nil {
		return []map[string]interface{}{}
	}
	return items
}
