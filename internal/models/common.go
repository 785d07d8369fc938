// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Base model with common fields. CreatedAt is written once on insert and never updated.
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at" gorm:"<-:create;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusCompleted OrderStatus = "completed"
)
