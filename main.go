package main

import (
	"os"

	"taxroad-backend/config"
	"taxroad-backend/logger"
	"taxroad-backend/models"
	"taxroad-backend/routes"
	"taxroad-backend/services"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found")
	}
	logger.Setup()
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Receipt{},
		&models.SequenceCounter{},
		&models.PaymentReminderLog{},
	)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	services.NewPaymentReminderService(config.DB).StartScheduler()

	r := routes.SetupRouter()
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
