package controllers

import (
	"errors"
	"net/http"
	"strings"

	"taxroad-backend/config"
	"taxroad-backend/models"
	"taxroad-backend/services"
	"taxroad-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateCustomerInput struct {
	PartyName       string `json:"partyName" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	GSTNumber       string `json:"gstNumber"`
	ShippingAddress string `json:"shippingAddress"`
}

type UpdateCustomerInput struct {
	PartyName       *string `json:"partyName"`
	Phone           *string `json:"phone"`
	GSTNumber       *string `json:"gstNumber"`
	ShippingAddress *string `json:"shippingAddress"`
}

// CreateCustomer registers a new party under the authenticated business.
func CreateCustomer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	if !utils.ValidateGSTIN(input.GSTNumber) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid GSTIN format")
		return
	}

	var existingCustomer models.Customer
	if err := config.DB.Where("user_id = ? AND phone = ?", userID, input.Phone).
		First(&existingCustomer).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	customer := models.Customer{
		ID:              uuid.New(),
		UserID:          userID,
		PartyName:       input.PartyName,
		Phone:           input.Phone,
		GSTNumber:       strings.ToUpper(strings.TrimSpace(input.GSTNumber)),
		ShippingAddress: input.ShippingAddress,
	}

	if err := config.DB.Create(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomers lists the business's customers.
func GetCustomers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var customers []models.Customer
	if err := config.DB.Where("user_id = ?", userID).
		Order("party_name").Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, customers)
}

// GetCustomer retrieves one customer by ID.
func GetCustomer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	customerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := config.DB.Where("user_id = ? AND id = ?", userID, customerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer updates an existing customer.
func UpdateCustomer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	customerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var customer models.Customer
	if err := config.DB.Where("user_id = ? AND id = ?", userID, customerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.PartyName != nil {
		customer.PartyName = *input.PartyName
	}
	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		if customer.Phone != *input.Phone {
			var existingCustomer models.Customer
			if err := config.DB.Where("user_id = ? AND phone = ?", userID, *input.Phone).
				First(&existingCustomer).Error; err == nil {
				utils.RespondWithError(c, http.StatusConflict, "Another customer with this phone number already exists")
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				return
			}
		}
		customer.Phone = *input.Phone
	}
	if input.GSTNumber != nil {
		if !utils.ValidateGSTIN(*input.GSTNumber) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid GSTIN format")
			return
		}
		customer.GSTNumber = strings.ToUpper(strings.TrimSpace(*input.GSTNumber))
	}
	if input.ShippingAddress != nil {
		customer.ShippingAddress = *input.ShippingAddress
	}

	if err := config.DB.Save(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer removes a customer, unless invoices still reference them.
func DeleteCustomer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	customerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var invoiceCount int64
	if err := config.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND customer_id = ?", userID, customerID).
		Count(&invoiceCount).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if invoiceCount > 0 {
		utils.RespondWithError(c, http.StatusConflict, services.ErrCustomerHasInvoices.Error())
		return
	}

	result := config.DB.Where("user_id = ? AND id = ?", userID, customerID).
		Delete(&models.Customer{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}
