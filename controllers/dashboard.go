package controllers

import (
	"net/http"

	"taxroad-backend/config"
	"taxroad-backend/models"
	"taxroad-backend/services"
	"taxroad-backend/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns the business's headline figures: gross sales, GST
// collected, income received and net profit, plus the latest invoices.
func GetDashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var totalSales, totalGst float64
	if err := config.DB.Model(&models.Invoice{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(total), 0)").
		Scan(&totalSales).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if err := config.DB.Model(&models.Invoice{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(gst_amount), 0)").
		Scan(&totalGst).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	var totalIncome float64
	if err := config.DB.Model(&models.Receipt{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount_received), 0)").
		Scan(&totalIncome).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	var invoiceCount, customerCount int64
	config.DB.Model(&models.Invoice{}).Where("user_id = ?", userID).Count(&invoiceCount)
	config.DB.Model(&models.Customer{}).Where("user_id = ?", userID).Count(&customerCount)

	var recentInvoices []models.Invoice
	if err := config.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(5).
		Find(&recentInvoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalSales":     services.Round2(totalSales),
		"totalGst":       services.Round2(totalGst),
		"totalIncome":    services.Round2(totalIncome),
		"netProfit":      services.Round2(totalIncome - totalGst),
		"invoiceCount":   invoiceCount,
		"customerCount":  customerCount,
		"recentInvoices": recentInvoices,
	})
}
