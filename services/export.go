package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"taxroad-backend/models"

	"github.com/xuri/excelize/v2"
)

var filenameSafe = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

// ReportExporter renders the GST report data into downloadable workbooks.
type ReportExporter struct{}

func NewReportExporter() *ReportExporter {
	return &ReportExporter{}
}

// GSTR3BFilename builds "<Business>_GSTR3B_<Month>_<Year>.xlsx".
func (e *ReportExporter) GSTR3BFilename(profile models.User, fyMonthIdx, fyStartYear int) string {
	return exportFilename(profile, "GSTR3B", fyMonthIdx, fyStartYear)
}

// GSTR2AFilename builds "<Business>_GSTR2A_ITC_<Month>_<Year>.xlsx".
func (e *ReportExporter) GSTR2AFilename(profile models.User, fyMonthIdx, fyStartYear int) string {
	return exportFilename(profile, "GSTR2A_ITC", fyMonthIdx, fyStartYear)
}

func exportFilename(profile models.User, kind string, fyMonthIdx, fyStartYear int) string {
	bizName := filenameSafe.ReplaceAllString(profile.BusinessName, "")
	if bizName == "" {
		bizName = "Business"
	}
	bizName = strings.ReplaceAll(bizName, " ", "_")
	return fmt.Sprintf("%s_%s_%s_%d.xlsx", bizName, kind, FYMonthName(fyMonthIdx), fyStartYear)
}

// BuildGSTR3BWorkbook renders the summary into four sheets: the 3.1 return
// table, invoice-wise tax liability, customer-wise outward supplies, and a
// filing disclaimer.
func (e *ReportExporter) BuildGSTR3BWorkbook(summary GSTR3BSummary, profile models.User, fyMonthIdx, fyStartYear int) (*excelize.File, error) {
	bizGSTIN := profile.GSTNumber
	if bizGSTIN == "" {
		bizGSTIN = "N/A"
	}
	periodLabel := PeriodLabel(fyMonthIdx, fyStartYear)

	f := excelize.NewFile()

	// Sheet 1: 3B Summary
	s1 := "3B Summary"
	if err := f.SetSheetName("Sheet1", s1); err != nil {
		return nil, err
	}
	s1Rows := [][]interface{}{
		{"GSTR-3B RETURN SUMMARY"},
		{"Business Name: " + profile.BusinessName},
		{"GSTIN: " + bizGSTIN},
		{"State: " + StateName(bizGSTIN)},
		{"Period: " + periodLabel},
		{"Generated On: " + time.Now().Format("02 Jan 2006 15:04")},
		{},
		{"Section 3.1 – Details of Outward Supplies and Intra/Inter-state Supplies"},
		{},
		{"Nature of Supplies", "Taxable Value (₹)", "IGST (₹)", "CGST (₹)", "SGST/UTGST (₹)", "Cess (₹)"},
		{"Outward Taxable (Intra-state)", summary.Intra.TaxableValue, 0, summary.Intra.CGST, summary.Intra.SGST, 0},
		{"Outward Taxable (Inter-state)", summary.Inter.TaxableValue, summary.Inter.IGST, 0, 0, 0},
		{"Zero/Nil/Exempt Supplies", summary.Exempt.TaxableValue, 0, 0, 0, 0},
		{"TOTAL", summary.Totals.TaxableValue, summary.Totals.IGST, summary.Totals.CGST, summary.Totals.SGST, 0},
		{},
		{"Section 6 – Payment of Tax"},
		{},
		{"Tax Head", "Total Liability (₹)", "ITC Available (₹)", "Net Payable (₹)"},
		{"IGST", summary.Totals.IGST, 0, summary.Totals.IGST},
		{"CGST", summary.Totals.CGST, 0, summary.Totals.CGST},
		{"SGST/UTGST", summary.Totals.SGST, 0, summary.Totals.SGST},
		{"CESS", 0, 0, 0},
		{"TOTAL TAX PAYABLE", summary.Totals.TotalTax, 0, summary.Totals.TotalTax},
		{},
		{"⚠ This is a system-generated summary. Verify with your CA before filing on gstin.gov.in"},
	}
	if err := writeSheet(f, s1, s1Rows, []float64{42, 18, 14, 14, 18, 10}); err != nil {
		return nil, err
	}

	// Sheet 2: Invoice-wise Tax Liability
	s2 := "Tax Liability"
	if _, err := f.NewSheet(s2); err != nil {
		return nil, err
	}
	s2Rows := [][]interface{}{{
		"Invoice #", "Date", "Customer Name", "Customer GSTIN",
		"Supply Type", "Status", "Taxable Value (₹)",
		"IGST (₹)", "CGST (₹)", "SGST (₹)", "Total GST (₹)",
		"Gross Total (₹)", "HSN/SAC Codes",
	}}
	for _, row := range summary.Rows {
		supplyLabel := "Intra-state"
		if row.SupplyType == SupplyInterState {
			supplyLabel = "Inter-state"
		}
		s2Rows = append(s2Rows, []interface{}{
			row.InvoiceNumber, row.Date, row.CustomerName, row.CustomerGSTIN,
			supplyLabel, row.Status, row.TaxableValue,
			row.IGST, row.CGST, row.SGST, row.TotalGST,
			row.GrossTotal, row.HSNSummary,
		})
	}
	if err := writeSheet(f, s2, s2Rows, []float64{14, 12, 28, 18, 14, 14, 18, 12, 12, 12, 14, 16, 16}); err != nil {
		return nil, err
	}

	// Sheet 3: Outward Supplies (Customer-wise)
	s3 := "Outward Supplies"
	if _, err := f.NewSheet(s3); err != nil {
		return nil, err
	}
	s3Rows := [][]interface{}{{
		"Customer Name", "Customer GSTIN", "Invoice Count", "Taxable Value (₹)",
		"IGST (₹)", "CGST (₹)", "SGST (₹)", "Total GST (₹)",
	}}
	for _, agg := range BuildCustomerRollup(summary.Rows) {
		s3Rows = append(s3Rows, []interface{}{
			agg.Name, agg.GSTIN, agg.InvoiceCount, agg.TaxableValue,
			agg.IGST, agg.CGST, agg.SGST, agg.TotalGST,
		})
	}
	if err := writeSheet(f, s3, s3Rows, []float64{30, 18, 14, 18, 12, 12, 12, 14}); err != nil {
		return nil, err
	}

	// Sheet 4: Disclaimer
	s4 := "Disclaimer"
	if _, err := f.NewSheet(s4); err != nil {
		return nil, err
	}
	s4Rows := [][]interface{}{
		{"COMPLIANCE DISCLAIMER"},
		{},
		{"This report has been auto-generated by Tax Road from your billing data."},
		{"It is provided for reference purposes only and is NOT a substitute for professional tax advice."},
		{},
		{"Before Filing:"},
		{"1. Verify all figures with your Chartered Accountant (CA) or Tax Professional."},
		{"2. Cross-check with your GSTR-1 (outward supplies) already filed."},
		{"3. Validate Input Tax Credit (ITC) eligibility."},
		{"4. Log in to the GST Portal (gstin.gov.in) to file your actual GSTR-3B."},
		{},
		{"Tax Road is not responsible for any incorrect filings based on this report."},
		{},
		{"Generated: " + time.Now().Format("02 Jan 2006 15:04")},
		{"Software: Tax Road — Smart Billing for Indian Businesses"},
	}
	if err := writeSheet(f, s4, s4Rows, []float64{90}); err != nil {
		return nil, err
	}

	return f, nil
}

// BuildGSTR2AWorkbook renders the ITC reconciliation template: an ITC summary,
// a blank purchase register for manual entry, and the reconciliation guide.
// Figures stay zero until a purchases module exists to populate them.
func (e *ReportExporter) BuildGSTR2AWorkbook(profile models.User, fyMonthIdx, fyStartYear int) (*excelize.File, error) {
	bizGSTIN := profile.GSTNumber
	if bizGSTIN == "" {
		bizGSTIN = "N/A"
	}
	periodLabel := PeriodLabel(fyMonthIdx, fyStartYear)

	f := excelize.NewFile()

	s1 := "ITC Summary"
	if err := f.SetSheetName("Sheet1", s1); err != nil {
		return nil, err
	}
	s1Rows := [][]interface{}{
		{"GSTR-2A / ITC SUMMARY TEMPLATE"},
		{fmt.Sprintf("Business: %s  |  GSTIN: %s  |  Period: %s", profile.BusinessName, bizGSTIN, periodLabel)},
		{},
		{"ℹ NOTE: GSTR-2A is auto-drafted by the GST portal from your suppliers' GSTR-1 filings."},
		{"This template helps you track and reconcile ITC claims from your purchase data."},
		{},
		{"ITC ELIGIBLE — OVERVIEW"},
		{},
		{"ITC Head", "ITC Available (₹)", "ITC Claimed (₹)", "ITC Balance (₹)", "Notes"},
		{"IGST", 0, 0, 0, "Enter from purchase invoices"},
		{"CGST", 0, 0, 0, "Enter from purchase invoices"},
		{"SGST/UTGST", 0, 0, 0, "Enter from purchase invoices"},
		{"CESS", 0, 0, 0, ""},
		{"TOTAL ITC", 0, 0, 0, "Net of all heads"},
		{},
		{"⚠ A \"Purchases\" module is required to auto-populate ITC figures. Contact your CA for manual entries."},
	}
	if err := writeSheet(f, s1, s1Rows, []float64{20, 18, 16, 16, 40}); err != nil {
		return nil, err
	}

	s2 := "Purchase Register"
	if _, err := f.NewSheet(s2); err != nil {
		return nil, err
	}
	s2Rows := [][]interface{}{
		{"PURCHASE REGISTER — DATA ENTRY TEMPLATE"},
		{"Fill this sheet with your purchase invoices to enable ITC reconciliation."},
		{},
		{
			"Invoice Date", "Supplier Name", "Supplier GSTIN", "Invoice Number",
			"Taxable Value (₹)", "IGST (₹)", "CGST (₹)", "SGST/UTGST (₹)",
			"Total Amount (₹)", "ITC Eligible (Y/N)", "HSN/SAC", "Notes",
		},
	}
	for i := 0; i < 20; i++ {
		s2Rows = append(s2Rows, []interface{}{"", "", "", "", "", "", "", "", "", "Y", "", ""})
	}
	if err := writeSheet(f, s2, s2Rows, []float64{13, 28, 18, 16, 16, 12, 12, 14, 14, 14, 12, 20}); err != nil {
		return nil, err
	}

	s3 := "Reconciliation Guide"
	if _, err := f.NewSheet(s3); err != nil {
		return nil, err
	}
	s3Rows := [][]interface{}{
		{"ITC RECONCILIATION FRAMEWORK"},
		{},
		{"Step", "Action", "Source", "Status"},
		{"1", "Download GSTR-2A from GST portal", "gstin.gov.in → Returns → GSTR-2B", "☐ Pending"},
		{"2", "Fill Purchase Register in this file", "Your purchase invoices", "☐ Pending"},
		{"3", "Match GSTR-2A entries with Purchase Register", "Both above", "☐ Pending"},
		{"4", "Identify mismatches (supplier not filed GSTR-1)", "Comparison result", "☐ Pending"},
		{"5", "Claim only matched ITC in GSTR-3B Table 4", "After reconciliation", "☐ Pending"},
		{},
		{"RECONCILIATION RULES (Per GST Law)"},
		{},
		{"Rule", "Description"},
		{"Sec 16(2)(a)", "Tax invoice / Debit Note must exist in buyer's records"},
		{"Sec 16(2)(b)", "Supplier must have filed GSTR-1 (visible in GSTR-2A/2B)"},
		{"Sec 16(2)(c)", "Tax must have been paid to Government by supplier"},
		{"Sec 16(2)(d)", "Goods/services received"},
		{"Rule 36(4)", "Provisional ITC limited to 5% of eligible credit (currently 0% — only 2B ITC allowed)"},
		{},
		{"⚠ Consult your CA before claiming ITC."},
	}
	if err := writeSheet(f, s3, s3Rows, []float64{8, 55, 40, 14}); err != nil {
		return nil, err
	}

	return f, nil
}

// writeSheet fills a sheet row by row and applies column widths.
func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, colWidths []float64) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	for i, width := range colWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}
