package services

import (
	"testing"

	"taxroad-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, models.StatusPending, DeriveStatus(1180, 0))
	assert.Equal(t, models.StatusPending, DeriveStatus(1180, -5))
	assert.Equal(t, models.StatusPartiallyPaid, DeriveStatus(1180, 400))
	assert.Equal(t, models.StatusPaid, DeriveStatus(1180, 1180))
	assert.Equal(t, models.StatusPaid, DeriveStatus(1180, 1200))

	// Within one paisa of the total counts as settled.
	assert.Equal(t, models.StatusPaid, DeriveStatus(1180, 1179.995))
	assert.Equal(t, models.StatusPartiallyPaid, DeriveStatus(1180, 1179.98))
}

func TestReconcileFullPayment(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	customer := createTestCustomer(t, db, user.ID)
	invoice := createTestInvoice(t, db, user.ID, customer.ID, "INV-0001", 1180)
	ledger := NewLedgerReconciler(db)

	receipt := createTestReceipt(t, db, user.ID, invoice.ID, "REC-0001", 1180)
	require.NoError(t, ledger.Reconcile(user.ID, invoice.ID))

	var got models.Invoice
	require.NoError(t, db.First(&got, "id = ?", invoice.ID).Error)
	assert.Equal(t, models.StatusPaid, got.Status)

	// Deleting the receipt reverts the invoice to Pending.
	require.NoError(t, db.Delete(&receipt).Error)
	require.NoError(t, ledger.Reconcile(user.ID, invoice.ID))

	require.NoError(t, db.First(&got, "id = ?", invoice.ID).Error)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestReconcilePartialThenSettled(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	customer := createTestCustomer(t, db, user.ID)
	invoice := createTestInvoice(t, db, user.ID, customer.ID, "INV-0001", 1000)
	ledger := NewLedgerReconciler(db)

	createTestReceipt(t, db, user.ID, invoice.ID, "REC-0001", 400)
	require.NoError(t, ledger.Reconcile(user.ID, invoice.ID))

	var got models.Invoice
	require.NoError(t, db.First(&got, "id = ?", invoice.ID).Error)
	assert.Equal(t, models.StatusPartiallyPaid, got.Status)

	createTestReceipt(t, db, user.ID, invoice.ID, "REC-0002", 600)
	require.NoError(t, ledger.Reconcile(user.ID, invoice.ID))

	require.NoError(t, db.First(&got, "id = ?", invoice.ID).Error)
	assert.Equal(t, models.StatusPaid, got.Status)
}

func TestReconcileIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	customer := createTestCustomer(t, db, user.ID)
	invoice := createTestInvoice(t, db, user.ID, customer.ID, "INV-0001", 1000)
	ledger := NewLedgerReconciler(db)

	createTestReceipt(t, db, user.ID, invoice.ID, "REC-0001", 400)
	require.NoError(t, ledger.Reconcile(user.ID, invoice.ID))

	var first models.Invoice
	require.NoError(t, db.First(&first, "id = ?", invoice.ID).Error)

	// A second pass over an unchanged ledger writes nothing.
	require.NoError(t, ledger.Reconcile(user.ID, invoice.ID))

	var second models.Invoice
	require.NoError(t, db.First(&second, "id = ?", invoice.ID).Error)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
}

func TestReconcileMissingInvoiceIsNoOp(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)

	assert.NoError(t, NewLedgerReconciler(db).Reconcile(user.ID, uuid.New()))
}

func TestOutstandingBalance(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	customer := createTestCustomer(t, db, user.ID)
	invoice := createTestInvoice(t, db, user.ID, customer.ID, "INV-0001", 1000)
	ledger := NewLedgerReconciler(db)

	outstanding, err := ledger.OutstandingBalance(user.ID, invoice.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1000, outstanding, 0.001)

	createTestReceipt(t, db, user.ID, invoice.ID, "REC-0001", 250)
	outstanding, err = ledger.OutstandingBalance(user.ID, invoice.ID)
	require.NoError(t, err)
	assert.InDelta(t, 750, outstanding, 0.001)
}
