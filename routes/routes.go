package routes

import (
	"os"
	"strings"

	"taxroad-backend/config"
	"taxroad-backend/controllers"
	"taxroad-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func allowedOrigins() []string {
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		return strings.Split(v, ",")
	}
	return []string{"http://localhost:3000"}
}

func SetupRouter() *gin.Engine {
	r := gin.Default()

	origins := allowedOrigins()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		invoices := api.Group("/invoices")
		{
			invoices.POST("", controllers.CreateInvoice)
			invoices.GET("", controllers.GetInvoices)
			invoices.GET("/:id", controllers.GetInvoice)
			invoices.PUT("/:id", controllers.UpdateInvoice)
			invoices.DELETE("/:id", controllers.DeleteInvoice)
		}

		receipts := api.Group("/receipts")
		{
			receipts.POST("", controllers.CreateReceipt)
			receipts.GET("", controllers.GetReceipts)
			receipts.GET("/:id", controllers.GetReceipt)
			receipts.PUT("/:id", controllers.UpdateReceipt)
			receipts.DELETE("/:id", controllers.DeleteReceipt)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/gst", controllers.GetGSTReport)
			reports.GET("/gst/gstr3b.xlsx", controllers.DownloadGSTR3B)
			reports.GET("/gst/gstr2a.xlsx", controllers.DownloadGSTR2A)
		}

		api.GET("/dashboard", controllers.GetDashboard)

		profile := api.Group("/profile")
		{
			profile.GET("", controllers.GetProfile)
			profile.PUT("", controllers.UpdateProfile)
		}
	}

	return r
}
