package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"taxroad-backend/config"
	"taxroad-backend/logger"
	"taxroad-backend/models"
	"taxroad-backend/services"
	"taxroad-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// reportPeriod carries everything the three report endpoints share.
type reportPeriod struct {
	FYMonthIdx  int
	FYStartYear int
	Profile     models.User
	Invoices    []models.Invoice
	Customers   map[uuid.UUID]models.Customer
}

// loadReportPeriod parses ?month= (financial-year index, 1=April) and ?fy=
// (FY start year) and loads the period's invoices and customers. Responds
// with the error itself and returns nil on failure.
func loadReportPeriod(c *gin.Context, userID uuid.UUID) *reportPeriod {
	fyMonthIdx, err := strconv.Atoi(c.Query("month"))
	if err != nil || fyMonthIdx < 1 || fyMonthIdx > 12 {
		utils.RespondWithError(c, http.StatusBadRequest, "month must be between 1 (April) and 12 (March)")
		return nil
	}
	fyStartYear, err := strconv.Atoi(c.Query("fy"))
	if err != nil || fyStartYear < 2017 || fyStartYear > 2100 {
		utils.RespondWithError(c, http.StatusBadRequest, "fy must be a financial year start, e.g. 2024")
		return nil
	}

	var profile models.User
	if err := config.DB.First(&profile, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load business profile")
		return nil
	}

	calMonth, calYear := services.FYToCalendar(fyMonthIdx, fyStartYear)
	start, end := utils.MonthRange(calMonth, calYear)

	var invoices []models.Invoice
	if err := config.DB.Where("user_id = ? AND created_at BETWEEN ? AND ?", userID, start, end).
		Preload("Items").
		Order("created_at").
		Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load invoices")
		return nil
	}

	var customers []models.Customer
	if err := config.DB.Where("user_id = ?", userID).Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load customers")
		return nil
	}
	customersByID := make(map[uuid.UUID]models.Customer, len(customers))
	for _, customer := range customers {
		customersByID[customer.ID] = customer
	}

	return &reportPeriod{
		FYMonthIdx:  fyMonthIdx,
		FYStartYear: fyStartYear,
		Profile:     profile,
		Invoices:    invoices,
		Customers:   customersByID,
	}
}

// GetGSTReport returns the GSTR-3B summary, compliance warnings and badge
// for one financial-year month.
func GetGSTReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	period := loadReportPeriod(c, userID)
	if period == nil {
		return
	}

	summary := services.BuildGSTR3BSummary(period.Invoices, period.Customers, period.Profile)
	warnings := services.BuildComplianceWarnings(period.Invoices, period.Customers, period.Profile)

	c.JSON(http.StatusOK, gin.H{
		"periodLabel":      services.PeriodLabel(period.FYMonthIdx, period.FYStartYear),
		"summary":          summary,
		"warnings":         warnings,
		"complianceStatus": services.ComplianceStatus(warnings),
	})
}

// DownloadGSTR3B streams the GSTR-3B workbook.
func DownloadGSTR3B(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	period := loadReportPeriod(c, userID)
	if period == nil {
		return
	}

	summary := services.BuildGSTR3BSummary(period.Invoices, period.Customers, period.Profile)

	exporter := services.NewReportExporter()
	workbook, err := exporter.BuildGSTR3BWorkbook(summary, period.Profile, period.FYMonthIdx, period.FYStartYear)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build workbook")
		return
	}
	defer workbook.Close()

	filename := exporter.GSTR3BFilename(period.Profile, period.FYMonthIdx, period.FYStartYear)
	streamWorkbook(c, workbook, filename)
}

// DownloadGSTR2A streams the ITC reconciliation template.
func DownloadGSTR2A(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	period := loadReportPeriod(c, userID)
	if period == nil {
		return
	}

	exporter := services.NewReportExporter()
	workbook, err := exporter.BuildGSTR2AWorkbook(period.Profile, period.FYMonthIdx, period.FYStartYear)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build workbook")
		return
	}
	defer workbook.Close()

	filename := exporter.GSTR2AFilename(period.Profile, period.FYMonthIdx, period.FYStartYear)
	streamWorkbook(c, workbook, filename)
}

func streamWorkbook(c *gin.Context, workbook *excelize.File, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if err := workbook.Write(c.Writer); err != nil {
		reportLog := logger.WithComponent("reports")
		reportLog.Error().Err(err).Msg("workbook write failed")
	}
}
