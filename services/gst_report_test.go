package services

import (
	"testing"
	"time"

	"taxroad-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testProfile() models.User {
	return models.User{
		BusinessName: "Sharma Traders",
		GSTNumber:    "27AAPFU0939F1ZV",
	}
}

func taxedInvoice(customerID uuid.UUID, number string, subtotal, gst, cgst, sgst float64) models.Invoice {
	return models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: number,
		CustomerID:    customerID,
		Subtotal:      subtotal,
		GSTAmount:     gst,
		CGSTAmount:    cgst,
		SGSTAmount:    sgst,
		Total:         subtotal + gst,
		Status:        models.StatusPending,
		CreatedAt:     time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildGSTR3BSummaryBuckets(t *testing.T) {
	customer := models.Customer{ID: uuid.New(), PartyName: "Gupta Enterprises", GSTNumber: "27AABCU9603R1ZM"}
	customers := map[uuid.UUID]models.Customer{customer.ID: customer}

	invoices := []models.Invoice{
		taxedInvoice(customer.ID, "INV-0001", 1000, 180, 90, 90),
		taxedInvoice(customer.ID, "INV-0002", 500, 0, 0, 0),
	}

	summary := BuildGSTR3BSummary(invoices, customers, testProfile())

	assert.Equal(t, 1000.0, summary.Intra.TaxableValue)
	assert.Equal(t, 90.0, summary.Intra.CGST)
	assert.Equal(t, 90.0, summary.Intra.SGST)
	assert.Equal(t, 1, summary.Intra.Count)

	assert.Equal(t, 500.0, summary.Exempt.TaxableValue)
	assert.Equal(t, 1, summary.Exempt.Count)

	assert.Zero(t, summary.Inter.TaxableValue)
	assert.Zero(t, summary.Inter.IGST)

	assert.Equal(t, 1500.0, summary.Totals.TaxableValue)
	assert.Equal(t, 90.0, summary.Totals.CGST)
	assert.Equal(t, 90.0, summary.Totals.SGST)
	assert.Equal(t, 180.0, summary.Totals.TotalTax)
}

func TestBuildGSTR3BSummaryTotalsIdentities(t *testing.T) {
	customer := models.Customer{ID: uuid.New(), PartyName: "Gupta Enterprises"}
	customers := map[uuid.UUID]models.Customer{customer.ID: customer}

	invoices := []models.Invoice{
		taxedInvoice(customer.ID, "INV-0001", 812.5, 146.25, 73.13, 73.12),
		taxedInvoice(customer.ID, "INV-0002", 240, 12, 6, 6),
		taxedInvoice(customer.ID, "INV-0003", 99.99, 0, 0, 0),
	}

	summary := BuildGSTR3BSummary(invoices, customers, testProfile())

	wantTaxable := Round2(summary.Intra.TaxableValue + summary.Inter.TaxableValue + summary.Exempt.TaxableValue)
	assert.Equal(t, wantTaxable, summary.Totals.TaxableValue)

	wantTax := Round2(summary.Totals.CGST + summary.Totals.SGST + summary.Totals.IGST)
	assert.Equal(t, wantTax, summary.Totals.TotalTax)
}

func TestTaxSplitPrefersStoredHalves(t *testing.T) {
	customer := models.Customer{ID: uuid.New(), PartyName: "Gupta Enterprises"}
	customers := map[uuid.UUID]models.Customer{customer.ID: customer}

	// Stored halves deliberately uneven; the aggregator must not re-derive.
	stored := taxedInvoice(customer.ID, "INV-0001", 1000, 180, 90.5, 89.5)
	// No stored halves: an even 50/50 split.
	derived := taxedInvoice(customer.ID, "INV-0002", 1000, 180, 0, 0)

	summary := BuildGSTR3BSummary([]models.Invoice{stored, derived}, customers, testProfile())

	assert.Equal(t, 90.5, summary.Rows[0].CGST)
	assert.Equal(t, 89.5, summary.Rows[0].SGST)
	assert.Equal(t, 90.0, summary.Rows[1].CGST)
	assert.Equal(t, 90.0, summary.Rows[1].SGST)
}

func TestBuildGSTR3BSummaryRowDetails(t *testing.T) {
	customer := models.Customer{ID: uuid.New(), PartyName: "Gupta Enterprises", GSTNumber: "27AABCU9603R1ZM"}
	customers := map[uuid.UUID]models.Customer{customer.ID: customer}

	invoice := taxedInvoice(customer.ID, "INV-0007", 1000, 180, 90, 90)
	invoice.Items = []models.InvoiceItem{
		{Name: "Cement", HSNCode: "2523"},
		{Name: "More cement", HSNCode: "2523"},
		{Name: "Steel rods", HSNCode: "7214"},
		{Name: "Loose item"},
	}
	unknown := taxedInvoice(uuid.New(), "INV-0008", 100, 18, 9, 9)

	summary := BuildGSTR3BSummary([]models.Invoice{invoice, unknown}, customers, testProfile())

	row := summary.Rows[0]
	assert.Equal(t, "INV-0007", row.InvoiceNumber)
	assert.Equal(t, "Gupta Enterprises", row.CustomerName)
	assert.Equal(t, "27AABCU9603R1ZM", row.CustomerGSTIN)
	assert.Equal(t, "2024-07-15", row.Date)
	assert.Equal(t, SupplyIntraState, row.SupplyType)
	assert.Equal(t, "2523, 7214", row.HSNSummary)
	assert.Equal(t, 1180.0, row.GrossTotal)

	// An invoice whose customer is gone still produces a row.
	assert.Equal(t, "Unknown", summary.Rows[1].CustomerName)
	assert.Equal(t, "N/A", summary.Rows[1].CustomerGSTIN)
	assert.Equal(t, "N/A", summary.Rows[1].HSNSummary)
}

func TestSupplyTypeClassification(t *testing.T) {
	assert.Equal(t, SupplyIntraState, SupplyType("27AAPFU0939F1ZV", "27AABCU9603R1ZM"))
	assert.Equal(t, SupplyInterState, SupplyType("27AAPFU0939F1ZV", "29AABCU9603R1ZM"))
	assert.Equal(t, SupplyIntraState, SupplyType("", "29AABCU9603R1ZM"))
	assert.Equal(t, SupplyIntraState, SupplyType("27AAPFU0939F1ZV", ""))
}

func TestStateCodeLookup(t *testing.T) {
	assert.Equal(t, "27", StateCode("27AAPFU0939F1ZV"))
	assert.Equal(t, "", StateCode("2"))
	assert.Equal(t, "Maharashtra", StateName("27AAPFU0939F1ZV"))
	assert.Equal(t, "Karnataka", StateName("29AABCU9603R1ZM"))
	assert.Equal(t, "Unknown State", StateName("99XXXXX0000X1ZX"))
	assert.Equal(t, "Unknown State", StateName(""))
}

func TestFYToCalendar(t *testing.T) {
	tests := []struct {
		fyMonthIdx, fyStartYear int
		wantMonth, wantYear     int
	}{
		{1, 2024, 4, 2024},  // April
		{6, 2024, 9, 2024},  // September
		{9, 2024, 12, 2024}, // December
		{10, 2024, 1, 2025}, // January rolls into next calendar year
		{12, 2024, 3, 2025}, // March
	}
	for _, tt := range tests {
		month, year := FYToCalendar(tt.fyMonthIdx, tt.fyStartYear)
		assert.Equal(t, tt.wantMonth, month)
		assert.Equal(t, tt.wantYear, year)
	}
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "April 2024–25", PeriodLabel(1, 2024))
	assert.Equal(t, "March 2024–25", PeriodLabel(12, 2024))
	assert.Equal(t, "January 2099–00", PeriodLabel(10, 2099))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.57, Round2(10.566))
	assert.Equal(t, 10.56, Round2(10.564))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, -2.35, Round2(-2.346))
}

func TestBuildComplianceWarningsMissingBusinessGSTIN(t *testing.T) {
	profile := testProfile()
	profile.GSTNumber = ""

	warnings := BuildComplianceWarnings(nil, nil, profile)

	types := warningTypes(warnings)
	assert.Contains(t, types, WarningError)
	assert.Equal(t, ComplianceMissing, ComplianceStatus(warnings))
}

func TestBuildComplianceWarningsMissingCustomerData(t *testing.T) {
	withGSTIN := models.Customer{ID: uuid.New(), PartyName: "Registered", GSTNumber: "27AABCU9603R1ZM"}
	withoutGSTIN := models.Customer{ID: uuid.New(), PartyName: "Unregistered"}
	customers := map[uuid.UUID]models.Customer{
		withGSTIN.ID:    withGSTIN,
		withoutGSTIN.ID: withoutGSTIN,
	}

	complete := taxedInvoice(withGSTIN.ID, "INV-0001", 1000, 180, 90, 90)
	complete.Items = []models.InvoiceItem{{Name: "Cement", HSNCode: "2523"}}
	incomplete := taxedInvoice(withoutGSTIN.ID, "INV-0002", 500, 25, 12.5, 12.5)
	incomplete.Items = []models.InvoiceItem{{Name: "Loose goods"}}

	warnings := BuildComplianceWarnings([]models.Invoice{complete, incomplete}, customers, testProfile())

	assert.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.Equal(t, WarningWarn, w.Type)
	}
	assert.Equal(t, ComplianceReview, ComplianceStatus(warnings))
}

func TestBuildComplianceWarningsEmptyPeriod(t *testing.T) {
	warnings := BuildComplianceWarnings(nil, nil, testProfile())

	assert.Len(t, warnings, 1)
	assert.Equal(t, WarningWarn, warnings[0].Type)
}

func TestBuildComplianceWarningsAllClear(t *testing.T) {
	customer := models.Customer{ID: uuid.New(), PartyName: "Registered", GSTNumber: "27AABCU9603R1ZM"}
	customers := map[uuid.UUID]models.Customer{customer.ID: customer}

	invoice := taxedInvoice(customer.ID, "INV-0001", 1000, 180, 90, 90)
	invoice.Items = []models.InvoiceItem{{Name: "Cement", HSNCode: "2523"}}

	warnings := BuildComplianceWarnings([]models.Invoice{invoice}, customers, testProfile())

	assert.Len(t, warnings, 1)
	assert.Equal(t, WarningOK, warnings[0].Type)
	assert.Equal(t, ComplianceReady, ComplianceStatus(warnings))
}

func TestBuildCustomerRollup(t *testing.T) {
	rows := []InvoiceRow{
		{CustomerName: "Beta", CustomerGSTIN: "29AABCU9603R1ZM", TaxableValue: 100, CGST: 9, SGST: 9, TotalGST: 18},
		{CustomerName: "Alpha", CustomerGSTIN: "27AABCU9603R1ZM", TaxableValue: 200, CGST: 18, SGST: 18, TotalGST: 36},
		{CustomerName: "Beta", CustomerGSTIN: "29AABCU9603R1ZM", TaxableValue: 50, CGST: 4.5, SGST: 4.5, TotalGST: 9},
	}

	rollups := BuildCustomerRollup(rows)

	assert.Len(t, rollups, 2)
	assert.Equal(t, "Alpha", rollups[0].Name)
	assert.Equal(t, "Beta", rollups[1].Name)
	assert.Equal(t, 150.0, rollups[1].TaxableValue)
	assert.Equal(t, 27.0, rollups[1].TotalGST)
	assert.Equal(t, 2, rollups[1].InvoiceCount)
}

func warningTypes(warnings []Warning) []string {
	types := make([]string, 0, len(warnings))
	for _, w := range warnings {
		types = append(types, w.Type)
	}
	return types
}
