package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	PartyName       string `gorm:"not null"`
	Phone           string `gorm:"not null"`
	GSTNumber       string `gorm:"column:gst_number"` // optional; blank = unregistered (B2C)
	ShippingAddress string

	Invoices []Invoice `gorm:"foreignKey:CustomerID"`

	gorm.Model
}
