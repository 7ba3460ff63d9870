package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"taxroad-backend/models"

	"github.com/google/uuid"
)

// Indian state names keyed by the two-digit GSTIN prefix.
var stateCodes = map[string]string{
	"01": "Jammu & Kashmir", "02": "Himachal Pradesh", "03": "Punjab",
	"04": "Chandigarh", "05": "Uttarakhand", "06": "Haryana",
	"07": "Delhi", "08": "Rajasthan", "09": "Uttar Pradesh",
	"10": "Bihar", "11": "Sikkim", "12": "Arunachal Pradesh",
	"13": "Nagaland", "14": "Manipur", "15": "Mizoram",
	"16": "Tripura", "17": "Meghalaya", "18": "Assam",
	"19": "West Bengal", "20": "Jharkhand", "21": "Odisha",
	"22": "Chhattisgarh", "23": "Madhya Pradesh", "24": "Gujarat",
	"26": "Dadra & NH / Daman & Diu", "27": "Maharashtra",
	"29": "Karnataka", "30": "Goa", "31": "Lakshadweep",
	"32": "Kerala", "33": "Tamil Nadu", "34": "Puducherry",
	"35": "Andaman & Nicobar", "36": "Telangana", "37": "Andhra Pradesh",
}

// The financial year runs April through March: FY month index 1 is April,
// 12 is March.
var fyMonthMap = [12]int{4, 5, 6, 7, 8, 9, 10, 11, 12, 1, 2, 3}

var fyMonthNames = [12]string{
	"April", "May", "June", "July", "August", "September",
	"October", "November", "December", "January", "February", "March",
}

// Supply types for GST classification.
const (
	SupplyIntraState = "intra"
	SupplyInterState = "inter"
)

// Warning severities emitted by the compliance checker.
const (
	WarningError = "error"
	WarningWarn  = "warn"
	WarningOK    = "ok"
)

// Compliance badge values derived from the warning set.
const (
	ComplianceMissing = "missing critical data"
	ComplianceReview  = "review required"
	ComplianceReady   = "ready to file"
)

type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// TaxBucket accumulates one supply classification of the GSTR-3B table.
type TaxBucket struct {
	TaxableValue float64 `json:"taxableValue"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
	IGST         float64 `json:"igst"`
	Count        int     `json:"count"`
}

type SummaryTotals struct {
	TaxableValue float64 `json:"taxableValue"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
	IGST         float64 `json:"igst"`
	TotalTax     float64 `json:"totalTax"`
}

// InvoiceRow is the per-invoice detail line of the report (sheet 2 of the
// GSTR-3B workbook).
type InvoiceRow struct {
	InvoiceNumber string  `json:"invoiceNumber"`
	CustomerName  string  `json:"customerName"`
	CustomerGSTIN string  `json:"customerGstin"`
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	SupplyType    string  `json:"supplyType"`
	TaxableValue  float64 `json:"taxableValue"`
	CGST          float64 `json:"cgst"`
	SGST          float64 `json:"sgst"`
	IGST          float64 `json:"igst"`
	TotalGST      float64 `json:"totalGst"`
	GrossTotal    float64 `json:"grossTotal"`
	HSNSummary    string  `json:"hsnSummary"`
}

// CustomerRollup aggregates the detail rows per customer GSTIN (sheet 3).
type CustomerRollup struct {
	Name         string  `json:"name"`
	GSTIN        string  `json:"gstin"`
	TaxableValue float64 `json:"taxableValue"`
	IGST         float64 `json:"igst"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
	TotalGST     float64 `json:"totalGst"`
	InvoiceCount int     `json:"invoiceCount"`
}

type GSTR3BSummary struct {
	Intra  TaxBucket     `json:"intra"`
	Inter  TaxBucket     `json:"inter"`
	Exempt TaxBucket     `json:"exempt"`
	Totals SummaryTotals `json:"totals"`
	Rows   []InvoiceRow  `json:"rows"`
}

// Round2 rounds to two decimal places, the precision every monetary figure
// in the report carries.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// StateCode returns the two-digit state prefix of a GSTIN, or "" when the
// value is too short to carry one.
func StateCode(gstin string) string {
	gstin = strings.TrimSpace(gstin)
	if len(gstin) < 2 {
		return ""
	}
	return strings.ToUpper(gstin[:2])
}

// StateName resolves a GSTIN to its state name via the prefix table.
func StateName(gstin string) string {
	if name, ok := stateCodes[StateCode(gstin)]; ok {
		return name
	}
	return "Unknown State"
}

// SupplyType classifies a supply from the two parties' GSTIN state codes.
// Defaults to intra-state when either GSTIN is unavailable.
//
// Note: the aggregator buckets every taxed invoice as intra-state regardless
// of this classification; inter-state IGST computation is deferred. The
// classifier feeds display only.
func SupplyType(bizGSTIN, custGSTIN string) string {
	bizState := StateCode(bizGSTIN)
	custState := StateCode(custGSTIN)
	if bizState == "" || custState == "" {
		return SupplyIntraState
	}
	if bizState == custState {
		return SupplyIntraState
	}
	return SupplyInterState
}

// taxSplit returns the CGST/SGST halves of an invoice's GST. Stored halves
// are used verbatim when present; otherwise the GST amount is split 50/50
// with each half rounded independently. That can lose a paisa against
// splitting the rounded total; the discrepancy is accepted, not corrected.
func taxSplit(inv models.Invoice) (cgst, sgst float64) {
	if inv.CGSTAmount != 0 || inv.SGSTAmount != 0 {
		return inv.CGSTAmount, inv.SGSTAmount
	}
	half := Round2(inv.GSTAmount / 2)
	return half, half
}

// FYToCalendar maps a financial-year month index (1=April .. 12=March) and
// FY start year to the calendar month and year. January through March fall
// in the following calendar year.
func FYToCalendar(fyMonthIdx, fyStartYear int) (calMonth, calYear int) {
	calMonth = fyMonthMap[fyMonthIdx-1]
	calYear = fyStartYear
	if calMonth < 4 {
		calYear = fyStartYear + 1
	}
	return calMonth, calYear
}

// FYMonthName returns the display name of a financial-year month index.
func FYMonthName(fyMonthIdx int) string {
	return fyMonthNames[fyMonthIdx-1]
}

// PeriodLabel renders "April 2024–25" style labels for report headers.
func PeriodLabel(fyMonthIdx, fyStartYear int) string {
	return fmt.Sprintf("%s %d–%02d", FYMonthName(fyMonthIdx), fyStartYear, (fyStartYear+1)%100)
}

// BuildGSTR3BSummary aggregates a period's invoices into the GSTR-3B shape.
// Invoices with zero GST land in the exempt bucket (taxable value only);
// everything else accumulates intra-state. Bucket accumulators are rounded
// once at finalization so per-line rounding error does not compound.
func BuildGSTR3BSummary(invoices []models.Invoice, customersByID map[uuid.UUID]models.Customer, profile models.User) GSTR3BSummary {
	bizGSTIN := strings.TrimSpace(profile.GSTNumber)

	var intra, inter, exempt TaxBucket
	rows := make([]InvoiceRow, 0, len(invoices))

	for _, inv := range invoices {
		taxableVal := Round2(inv.Subtotal)
		gstAmt := Round2(inv.GSTAmount)
		cgst, sgst := taxSplit(inv)

		if gstAmt == 0 {
			exempt.TaxableValue += taxableVal
			exempt.Count++
		} else {
			intra.TaxableValue += taxableVal
			intra.CGST += cgst
			intra.SGST += sgst
			intra.Count++
		}

		customerName := "Unknown"
		customerGSTIN := "N/A"
		supplyType := SupplyIntraState
		if customer, ok := customersByID[inv.CustomerID]; ok {
			customerName = customer.PartyName
			if customer.GSTNumber != "" {
				customerGSTIN = customer.GSTNumber
			}
			supplyType = SupplyType(bizGSTIN, customer.GSTNumber)
		}

		status := inv.Status
		if status == "" {
			status = models.StatusPending
		}

		rows = append(rows, InvoiceRow{
			InvoiceNumber: inv.InvoiceNumber,
			CustomerName:  customerName,
			CustomerGSTIN: customerGSTIN,
			Date:          inv.CreatedAt.Format("2006-01-02"),
			Status:        status,
			SupplyType:    supplyType,
			TaxableValue:  taxableVal,
			CGST:          cgst,
			SGST:          sgst,
			IGST:          0,
			TotalGST:      gstAmt,
			GrossTotal:    Round2(inv.Total),
			HSNSummary:    hsnSummary(inv.Items),
		})
	}

	intra.TaxableValue = Round2(intra.TaxableValue)
	intra.CGST = Round2(intra.CGST)
	intra.SGST = Round2(intra.SGST)
	inter.TaxableValue = Round2(inter.TaxableValue)
	inter.IGST = Round2(inter.IGST)
	exempt.TaxableValue = Round2(exempt.TaxableValue)

	totals := SummaryTotals{
		TaxableValue: Round2(intra.TaxableValue + inter.TaxableValue + exempt.TaxableValue),
		CGST:         intra.CGST,
		SGST:         intra.SGST,
		IGST:         inter.IGST,
		TotalTax:     Round2(intra.CGST + intra.SGST + inter.IGST),
	}

	return GSTR3BSummary{Intra: intra, Inter: inter, Exempt: exempt, Totals: totals, Rows: rows}
}

// hsnSummary joins the distinct HSN codes of an invoice's line items,
// preserving first-seen order.
func hsnSummary(items []models.InvoiceItem) string {
	seen := make(map[string]bool)
	var codes []string
	for _, item := range items {
		code := strings.TrimSpace(item.HSNCode)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return "N/A"
	}
	return strings.Join(codes, ", ")
}

// BuildComplianceWarnings scans the period's invoices for data the return
// filing needs. Every applicable rule fires independently; a single ok entry
// is emitted only when nothing else did and the period is not empty.
func BuildComplianceWarnings(invoices []models.Invoice, customersByID map[uuid.UUID]models.Customer, profile models.User) []Warning {
	var warnings []Warning

	bizGSTIN := strings.TrimSpace(profile.GSTNumber)
	if bizGSTIN == "" {
		warnings = append(warnings, Warning{
			Type:    WarningError,
			Message: "Business GSTIN not configured. Add it under Settings → Business Profile.",
		})
	}

	missingCustGSTIN := 0
	missingHSN := 0
	for _, inv := range invoices {
		customer := customersByID[inv.CustomerID]
		if customer.GSTNumber == "" {
			missingCustGSTIN++
		}
		hasHSN := false
		for _, item := range inv.Items {
			if strings.TrimSpace(item.HSNCode) != "" {
				hasHSN = true
				break
			}
		}
		if !hasHSN {
			missingHSN++
		}
	}

	if missingCustGSTIN > 0 {
		warnings = append(warnings, Warning{
			Type: WarningWarn,
			Message: plural(missingCustGSTIN, "invoice") +
				" linked to customers without a GSTIN. These are treated as intra-state B2C supplies.",
		})
	}
	if missingHSN > 0 {
		warnings = append(warnings, Warning{
			Type: WarningWarn,
			Message: plural(missingHSN, "invoice") +
				" have items without HSN/SAC codes. These are required for the GSTR-1 HSN summary.",
		})
	}
	if len(invoices) == 0 {
		warnings = append(warnings, Warning{
			Type:    WarningWarn,
			Message: "No invoices found for this period. Verify the selected month and year.",
		})
	}
	if len(warnings) == 0 && len(invoices) > 0 {
		warnings = append(warnings, Warning{
			Type:    WarningOK,
			Message: "All " + plural(len(invoices), "invoice") + " have complete GST data. Ready to file.",
		})
	}

	return warnings
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// ComplianceStatus collapses the warning set into the badge the UI shows.
func ComplianceStatus(warnings []Warning) string {
	hasWarn := false
	for _, w := range warnings {
		switch w.Type {
		case WarningError:
			return ComplianceMissing
		case WarningWarn:
			hasWarn = true
		}
	}
	if hasWarn {
		return ComplianceReview
	}
	return ComplianceReady
}

// BuildCustomerRollup groups the detail rows by customer GSTIN, summing the
// monetary columns. Output is sorted by customer name for stable sheets.
func BuildCustomerRollup(rows []InvoiceRow) []CustomerRollup {
	byGSTIN := make(map[string]*CustomerRollup)
	for _, row := range rows {
		agg, ok := byGSTIN[row.CustomerGSTIN]
		if !ok {
			agg = &CustomerRollup{Name: row.CustomerName, GSTIN: row.CustomerGSTIN}
			byGSTIN[row.CustomerGSTIN] = agg
		}
		agg.TaxableValue += row.TaxableValue
		agg.IGST += row.IGST
		agg.CGST += row.CGST
		agg.SGST += row.SGST
		agg.TotalGST += row.TotalGST
		agg.InvoiceCount++
	}

	rollups := make([]CustomerRollup, 0, len(byGSTIN))
	for _, agg := range byGSTIN {
		agg.TaxableValue = Round2(agg.TaxableValue)
		agg.IGST = Round2(agg.IGST)
		agg.CGST = Round2(agg.CGST)
		agg.SGST = Round2(agg.SGST)
		agg.TotalGST = Round2(agg.TotalGST)
		rollups = append(rollups, *agg)
	}
	sort.Slice(rollups, func(i, j int) bool { return rollups[i].Name < rollups[j].Name })
	return rollups
}
