package models

import (
	"time"

	"taxroad-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is one business account. Every customer, invoice, receipt and counter
// row hangs off a user; the JWT carries the user ID as the account scope for
// all API queries.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Email    string    `gorm:"uniqueIndex;not null"`
	Password string    `gorm:"not null" json:"-"`

	// Business profile, read-only input to the GST report engine.
	BusinessName string `gorm:"not null"`
	GSTNumber    string `gorm:"column:gst_number"` // optional, 15-char GSTIN
	UPIID        string `gorm:"column:upi_id"`
	Phone        string

	LastLogin *time.Time
	IsActive  bool `gorm:"default:true"`

	gorm.Model
}

// Initialize UUID and hash the password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	u.ID = uuid.New()
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}
