package controllers

import (
	"errors"
	"net/http"
	"time"

	"taxroad-backend/config"
	"taxroad-backend/models"
	"taxroad-backend/services"
	"taxroad-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceItemInput struct {
	Name       string  `json:"name" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required"`
	Price      float64 `json:"price"`
	GSTPercent float64 `json:"gstPercent"`
	HSNCode    string  `json:"hsnCode"`
}

type CreateInvoiceInput struct {
	CustomerID uuid.UUID          `json:"customerId" binding:"required"`
	Items      []InvoiceItemInput `json:"items" binding:"required"`
	Date       *time.Time         `json:"date"`
}

type UpdateInvoiceInput struct {
	CustomerID *uuid.UUID         `json:"customerId"`
	Items      []InvoiceItemInput `json:"items"`
	Date       *time.Time         `json:"date"`
}

// invoiceTotals computes the monetary columns from the line items. All math
// happens server side; client-supplied totals are ignored.
func invoiceTotals(items []InvoiceItemInput) (subtotal, gstAmount float64, err error) {
	if len(items) == 0 {
		return 0, 0, services.ErrEmptyLineItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return 0, 0, services.ErrInvalidQuantity
		}
		if item.Price < 0 {
			return 0, 0, services.ErrNegativePrice
		}
		if !validGSTRate(item.GSTPercent) {
			return 0, 0, services.ErrInvalidGSTRate
		}
		lineVal := item.Quantity * item.Price
		subtotal += lineVal
		gstAmount += lineVal * item.GSTPercent / 100
	}
	return services.Round2(subtotal), services.Round2(gstAmount), nil
}

func validGSTRate(rate float64) bool {
	for _, r := range models.GSTRates {
		if rate == r {
			return true
		}
	}
	return false
}

// CreateInvoice issues a new invoice with a collision-safe INV number.
func CreateInvoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var customer models.Customer
	if err := config.DB.Where("user_id = ? AND id = ?", userID, input.CustomerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	subtotal, gstAmount, err := invoiceTotals(input.Items)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	allocator := services.NewSequenceAllocator(config.DB)
	invoiceNumber, err := allocator.Allocate(userID, models.SequenceInvoices)
	if err != nil {
		if errors.Is(err, services.ErrSequenceConflict) {
			utils.RespondWithError(c, http.StatusConflict,
				"Could not reserve an invoice number, please retry")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to allocate invoice number")
		}
		return
	}

	half := services.Round2(gstAmount / 2)
	invoice := models.Invoice{
		ID:            uuid.New(),
		UserID:        userID,
		InvoiceNumber: invoiceNumber,
		CustomerID:    input.CustomerID,
		Subtotal:      subtotal,
		GSTAmount:     gstAmount,
		CGSTAmount:    half,
		SGSTAmount:    half,
		Total:         services.Round2(subtotal + gstAmount),
		Status:        models.StatusPending,
	}
	if input.Date != nil {
		invoice.CreatedAt = *input.Date
	}
	for _, item := range input.Items {
		invoice.Items = append(invoice.Items, models.InvoiceItem{
			ID:         uuid.New(),
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.Price,
			GSTPercent: item.GSTPercent,
			HSNCode:    item.HSNCode,
		})
	}

	if err := config.DB.Create(&invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice")
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

// GetInvoices lists the business's invoices, newest first.
func GetInvoices(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var invoices []models.Invoice
	if err := config.DB.Where("user_id = ?", userID).
		Preload("Items").
		Order("created_at DESC").
		Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// GetInvoice retrieves one invoice with its line items.
func GetInvoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var invoice models.Invoice
	if err := config.DB.Where("user_id = ? AND id = ?", userID, invoiceID).
		Preload("Items").
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice replaces the invoice's line items and recomputes totals. The
// invoice number never changes; the payment status is re-derived afterwards
// because the total may have moved relative to the receipts.
func UpdateInvoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var invoice models.Invoice
	if err := config.DB.Where("user_id = ? AND id = ?", userID, invoiceID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.CustomerID != nil {
		var customer models.Customer
		if err := config.DB.Where("user_id = ? AND id = ?", userID, *input.CustomerID).
			First(&customer).Error; err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Customer not found")
			return
		}
		invoice.CustomerID = *input.CustomerID
	}
	if input.Date != nil {
		invoice.CreatedAt = *input.Date
	}

	if input.Items != nil {
		subtotal, gstAmount, err := invoiceTotals(input.Items)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		half := services.Round2(gstAmount / 2)
		invoice.Subtotal = subtotal
		invoice.GSTAmount = gstAmount
		invoice.CGSTAmount = half
		invoice.SGSTAmount = half
		invoice.Total = services.Round2(subtotal + gstAmount)

		err = config.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("invoice_id = ?", invoice.ID).
				Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}
			for _, item := range input.Items {
				row := models.InvoiceItem{
					ID:         uuid.New(),
					InvoiceID:  invoice.ID,
					Name:       item.Name,
					Quantity:   item.Quantity,
					Price:      item.Price,
					GSTPercent: item.GSTPercent,
					HSNCode:    item.HSNCode,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
			return tx.Save(&invoice).Error
		})
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
			return
		}
	} else if err := config.DB.Save(&invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return
	}

	// The total may now differ from the receipt sum.
	if err := services.NewLedgerReconciler(config.DB).Reconcile(userID, invoice.ID); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reconcile payment status")
		return
	}

	if err := config.DB.Where("user_id = ? AND id = ?", userID, invoice.ID).
		Preload("Items").First(&invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice removes an invoice and its line items, unless receipts still
// reference it.
func DeleteInvoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var receiptCount int64
	if err := config.DB.Model(&models.Receipt{}).
		Where("user_id = ? AND invoice_id = ?", userID, invoiceID).
		Count(&receiptCount).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if receiptCount > 0 {
		utils.RespondWithError(c, http.StatusConflict, services.ErrInvoiceHasReceipts.Error())
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoiceID).
			Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("user_id = ? AND id = ?", userID, invoiceID).
			Delete(&models.Invoice{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}
