package controllers

import (
	"net/http"
	"strings"

	"taxroad-backend/config"
	"taxroad-backend/models"
	"taxroad-backend/utils"

	"github.com/gin-gonic/gin"
)

type UpdateProfileInput struct {
	BusinessName *string `json:"businessName"`
	GSTNumber    *string `json:"gstNumber"`
	UPIID        *string `json:"upiId"`
	Phone        *string `json:"phone"`
}

// GetProfile returns the business profile used on invoices and GST reports.
func GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Profile not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businessName": user.BusinessName,
		"gstNumber":    user.GSTNumber,
		"upiId":        user.UPIID,
		"phone":        user.Phone,
		"email":        user.Email,
	})
}

// UpdateProfile amends the business profile. The business name can never be
// cleared; the GSTIN is validated whenever provided.
func UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Profile not found")
		return
	}

	if input.BusinessName != nil {
		name := strings.TrimSpace(*input.BusinessName)
		if name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Business name is required")
			return
		}
		user.BusinessName = name
	}
	if input.GSTNumber != nil {
		gstin := strings.ToUpper(strings.TrimSpace(*input.GSTNumber))
		if !utils.ValidateGSTIN(gstin) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid GSTIN format")
			return
		}
		user.GSTNumber = gstin
	}
	if input.UPIID != nil {
		user.UPIID = strings.TrimSpace(*input.UPIID)
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		user.Phone = *input.Phone
	}

	if err := config.DB.Save(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businessName": user.BusinessName,
		"gstNumber":    user.GSTNumber,
		"upiId":        user.UPIID,
		"phone":        user.Phone,
		"email":        user.Email,
	})
}
