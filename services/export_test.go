package services

import (
	"testing"

	"taxroad-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGSTR3BWorkbookSheets(t *testing.T) {
	customer := models.Customer{ID: uuid.New(), PartyName: "Gupta Enterprises", GSTNumber: "27AABCU9603R1ZM"}
	customers := map[uuid.UUID]models.Customer{customer.ID: customer}
	invoices := []models.Invoice{
		taxedInvoice(customer.ID, "INV-0001", 1000, 180, 90, 90),
	}
	summary := BuildGSTR3BSummary(invoices, customers, testProfile())

	exporter := NewReportExporter()
	workbook, err := exporter.BuildGSTR3BWorkbook(summary, testProfile(), 4, 2024)
	require.NoError(t, err)
	defer workbook.Close()

	assert.Equal(t, []string{"3B Summary", "Tax Liability", "Outward Supplies", "Disclaimer"},
		workbook.GetSheetList())

	title, err := workbook.GetCellValue("3B Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "GSTR-3B RETURN SUMMARY", title)

	header, err := workbook.GetCellValue("Tax Liability", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Invoice #", header)

	firstInvoice, err := workbook.GetCellValue("Tax Liability", "A2")
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", firstInvoice)
}

func TestBuildGSTR2AWorkbookSheets(t *testing.T) {
	exporter := NewReportExporter()
	workbook, err := exporter.BuildGSTR2AWorkbook(testProfile(), 1, 2024)
	require.NoError(t, err)
	defer workbook.Close()

	assert.Equal(t, []string{"ITC Summary", "Purchase Register", "Reconciliation Guide"},
		workbook.GetSheetList())

	title, err := workbook.GetCellValue("ITC Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "GSTR-2A / ITC SUMMARY TEMPLATE", title)

	// The register carries 20 blank entry rows defaulting ITC Eligible to Y.
	eligible, err := workbook.GetCellValue("Purchase Register", "J5")
	require.NoError(t, err)
	assert.Equal(t, "Y", eligible)
}

func TestExportFilenames(t *testing.T) {
	profile := models.User{BusinessName: "Sharma & Sons Traders"}

	exporter := NewReportExporter()
	assert.Equal(t, "Sharma__Sons_Traders_GSTR3B_April_2024.xlsx",
		exporter.GSTR3BFilename(profile, 1, 2024))
	assert.Equal(t, "Sharma__Sons_Traders_GSTR2A_ITC_March_2024.xlsx",
		exporter.GSTR2AFilename(profile, 12, 2024))

	assert.Equal(t, "Business_GSTR3B_May_2025.xlsx",
		exporter.GSTR3BFilename(models.User{BusinessName: "!!!"}, 2, 2025))
}
