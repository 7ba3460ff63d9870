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

type CreateReceiptInput struct {
	InvoiceID      uuid.UUID  `json:"invoiceId" binding:"required"`
	AmountReceived float64    `json:"amountReceived" binding:"required"`
	PaymentMode    string     `json:"paymentMode"`
	Date           *time.Time `json:"date"`
}

type UpdateReceiptInput struct {
	InvoiceID      *uuid.UUID `json:"invoiceId"`
	AmountReceived *float64   `json:"amountReceived"`
	PaymentMode    *string    `json:"paymentMode"`
	Date           *time.Time `json:"date"`
}

// CreateReceipt records a payment against an invoice and re-derives its
// status. The amount may exceed the outstanding balance by at most one paisa
// to absorb rounding in client-side split payments.
func CreateReceipt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateReceiptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.AmountReceived <= 0 {
		utils.RespondWithError(c, http.StatusBadRequest, services.ErrAmountNotPositive.Error())
		return
	}

	var invoice models.Invoice
	if err := config.DB.Where("user_id = ? AND id = ?", userID, input.InvoiceID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	ledger := services.NewLedgerReconciler(config.DB)
	outstanding, err := ledger.OutstandingBalance(userID, invoice.ID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if input.AmountReceived > outstanding+services.PaymentEpsilon {
		utils.RespondWithError(c, http.StatusBadRequest, services.ErrExceedsOutstanding.Error())
		return
	}

	allocator := services.NewSequenceAllocator(config.DB)
	receiptNumber, err := allocator.Allocate(userID, models.SequenceReceipts)
	if err != nil {
		if errors.Is(err, services.ErrSequenceConflict) {
			utils.RespondWithError(c, http.StatusConflict,
				"Could not reserve a receipt number, please retry")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to allocate receipt number")
		}
		return
	}

	receipt := models.Receipt{
		ID:             uuid.New(),
		UserID:         userID,
		ReceiptNumber:  receiptNumber,
		InvoiceID:      invoice.ID,
		AmountReceived: input.AmountReceived,
		PaymentMode:    input.PaymentMode,
		Date:           time.Now(),
	}
	if input.Date != nil {
		receipt.Date = *input.Date
	}

	if err := config.DB.Create(&receipt).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create receipt")
		return
	}

	if err := ledger.Reconcile(userID, invoice.ID); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reconcile payment status")
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// GetReceipts lists receipts, optionally filtered to one invoice.
func GetReceipts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	query := config.DB.Where("user_id = ?", userID)
	if invoiceID := c.Query("invoiceId"); invoiceID != "" {
		id, err := uuid.Parse(invoiceID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
			return
		}
		query = query.Where("invoice_id = ?", id)
	}

	var receipts []models.Receipt
	if err := query.Order("date DESC").Find(&receipts).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve receipts")
		return
	}

	c.JSON(http.StatusOK, receipts)
}

// GetReceipt retrieves one receipt by ID.
func GetReceipt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	receiptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var receipt models.Receipt
	if err := config.DB.Where("user_id = ? AND id = ?", userID, receiptID).
		First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Receipt not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// UpdateReceipt amends a receipt's amount, mode or date. The linked invoice
// never changes; moving a payment means deleting and re-entering it.
func UpdateReceipt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	receiptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateReceiptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var receipt models.Receipt
	if err := config.DB.Where("user_id = ? AND id = ?", userID, receiptID).
		First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Receipt not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.InvoiceID != nil && *input.InvoiceID != receipt.InvoiceID {
		utils.RespondWithError(c, http.StatusBadRequest, services.ErrInvoiceImmutableRef.Error())
		return
	}
	if input.AmountReceived != nil {
		if *input.AmountReceived <= 0 {
			utils.RespondWithError(c, http.StatusBadRequest, services.ErrAmountNotPositive.Error())
			return
		}
		receipt.AmountReceived = *input.AmountReceived
	}
	if input.PaymentMode != nil {
		receipt.PaymentMode = *input.PaymentMode
	}
	if input.Date != nil {
		receipt.Date = *input.Date
	}

	if err := config.DB.Save(&receipt).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update receipt")
		return
	}

	if err := services.NewLedgerReconciler(config.DB).
		Reconcile(userID, receipt.InvoiceID); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reconcile payment status")
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// DeleteReceipt removes a payment record and re-derives the invoice status.
func DeleteReceipt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	receiptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var receipt models.Receipt
	if err := config.DB.Where("user_id = ? AND id = ?", userID, receiptID).
		First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Receipt not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := config.DB.Delete(&receipt).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete receipt")
		return
	}

	if err := services.NewLedgerReconciler(config.DB).
		Reconcile(userID, receipt.InvoiceID); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reconcile payment status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Receipt deleted successfully"})
}
