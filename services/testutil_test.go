package services

import (
	"fmt"
	"testing"
	"time"

	"taxroad-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema. The
// connection pool is capped at one so the in-memory database survives for the
// whole test and concurrent callers serialize the way a single-node deployment
// would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Receipt{},
		&models.SequenceCounter{},
		&models.PaymentReminderLog{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()

	user := models.User{
		Email:        fmt.Sprintf("owner-%s@example.com", uuid.NewString()[:8]),
		Password:     "secret-password",
		BusinessName: "Sharma Traders",
		GSTNumber:    "27AAPFU0939F1ZV",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestCustomer(t *testing.T, db *gorm.DB, userID uuid.UUID) models.Customer {
	t.Helper()

	customer := models.Customer{
		ID:        uuid.New(),
		UserID:    userID,
		PartyName: "Gupta Enterprises",
		Phone:     "+919876543210",
		GSTNumber: "27AABCU9603R1ZM",
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func createTestInvoice(t *testing.T, db *gorm.DB, userID, customerID uuid.UUID, number string, total float64) models.Invoice {
	t.Helper()

	gst := Round2(total - total/1.18)
	invoice := models.Invoice{
		ID:            uuid.New(),
		UserID:        userID,
		InvoiceNumber: number,
		CustomerID:    customerID,
		Subtotal:      Round2(total - gst),
		GSTAmount:     gst,
		CGSTAmount:    Round2(gst / 2),
		SGSTAmount:    Round2(gst / 2),
		Total:         total,
		Status:        models.StatusPending,
	}
	require.NoError(t, db.Create(&invoice).Error)
	return invoice
}

func createTestReceipt(t *testing.T, db *gorm.DB, userID, invoiceID uuid.UUID, number string, amount float64) models.Receipt {
	t.Helper()

	receipt := models.Receipt{
		ID:             uuid.New(),
		UserID:         userID,
		ReceiptNumber:  number,
		InvoiceID:      invoiceID,
		AmountReceived: amount,
		PaymentMode:    "UPI",
		Date:           time.Now(),
	}
	require.NoError(t, db.Create(&receipt).Error)
	return receipt
}
