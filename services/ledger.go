package services

import (
	"errors"

	"taxroad-backend/logger"
	"taxroad-backend/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// PaymentEpsilon guards status derivation against floating-point rounding:
// a paid sum within one paisa of the total counts as settled.
const PaymentEpsilon = 0.01

// LedgerReconciler recomputes an invoice's payment status from its full
// receipt history. It is the single writer of Invoice.Status.
//
// The derivation is always from scratch (a true sum, never a delta), so the
// reconciler is safe to call after any receipt create, update or delete, and
// safe to call redundantly. Two sessions reconciling the same invoice can at
// worst produce a redundant intermediate write; the last writer recomputes
// from the current receipt set and lands on the correct status.
type LedgerReconciler struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewLedgerReconciler(db *gorm.DB) *LedgerReconciler {
	return &LedgerReconciler{db: db, log: logger.WithComponent("ledger")}
}

// Reconcile derives the invoice's status and writes it back if it changed.
// A missing invoice is a no-op: the invoice may have been deleted by a
// concurrent session after the receipt mutation that triggered us.
func (r *LedgerReconciler) Reconcile(userID, invoiceID uuid.UUID) error {
	var invoice models.Invoice
	err := r.db.Where("user_id = ? AND id = ?", userID, invoiceID).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	totalPaid, err := r.TotalPaid(userID, invoiceID)
	if err != nil {
		return err
	}

	status := DeriveStatus(invoice.Total, totalPaid)
	if status == invoice.Status {
		return nil
	}

	if err := r.db.Model(&models.Invoice{}).
		Where("user_id = ? AND id = ?", userID, invoiceID).
		Update("status", status).Error; err != nil {
		return err
	}

	r.log.Info().
		Str("invoice", invoice.InvoiceNumber).
		Float64("paid", totalPaid).
		Str("status", status).
		Msg("invoice reconciled")
	return nil
}

// TotalPaid sums every receipt linked to the invoice.
func (r *LedgerReconciler) TotalPaid(userID, invoiceID uuid.UUID) (float64, error) {
	var totalPaid float64
	err := r.db.Model(&models.Receipt{}).
		Where("user_id = ? AND invoice_id = ?", userID, invoiceID).
		Select("COALESCE(SUM(amount_received), 0)").
		Scan(&totalPaid).Error
	return totalPaid, err
}

// OutstandingBalance returns invoice total minus the receipt sum. Used by the
// create-receipt validation.
func (r *LedgerReconciler) OutstandingBalance(userID, invoiceID uuid.UUID) (float64, error) {
	var invoice models.Invoice
	if err := r.db.Where("user_id = ? AND id = ?", userID, invoiceID).
		First(&invoice).Error; err != nil {
		return 0, err
	}
	totalPaid, err := r.TotalPaid(userID, invoiceID)
	if err != nil {
		return 0, err
	}
	return invoice.Total - totalPaid, nil
}

// DeriveStatus is the pure status function: Pending with nothing received,
// Paid once the sum reaches the total less PaymentEpsilon, Partially Paid
// in between.
func DeriveStatus(total, paid float64) string {
	if paid <= 0 {
		return models.StatusPending
	}
	if paid >= total-PaymentEpsilon {
		return models.StatusPaid
	}
	return models.StatusPartiallyPaid
}
