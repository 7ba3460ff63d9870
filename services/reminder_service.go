package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"taxroad-backend/logger"
	"taxroad-backend/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

const defaultReminderAfterDays = 7

// PaymentReminderService nudges customers with unpaid invoices over WhatsApp
// or SMS. A daily cron job scans every active business for Pending and
// Partially Paid invoices past the configured age and sends at most one
// reminder per invoice per week.
type PaymentReminderService struct {
	db        *gorm.DB
	client    *twilio.RestClient
	ledger    *LedgerReconciler
	afterDays int
	log       zerolog.Logger
}

func NewPaymentReminderService(db *gorm.DB) *PaymentReminderService {
	afterDays := defaultReminderAfterDays
	if v, err := strconv.Atoi(os.Getenv("PAYMENT_REMINDER_AFTER_DAYS")); err == nil && v > 0 {
		afterDays = v
	}

	return &PaymentReminderService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: os.Getenv("TWILIO_ACCOUNT_SID"),
			Password: os.Getenv("TWILIO_AUTH_TOKEN"),
		}),
		ledger:    NewLedgerReconciler(db),
		afterDays: afterDays,
		log:       logger.WithComponent("reminders"),
	}
}

// StartScheduler registers the daily 9 AM run.
func (s *PaymentReminderService) StartScheduler() {
	c := cron.New()

	if _, err := c.AddFunc("0 9 * * *", s.SendDailyReminders); err != nil {
		s.log.Error().Err(err).Msg("failed to schedule reminder job")
		return
	}

	c.Start()
	s.log.Info().Int("afterDays", s.afterDays).Msg("payment reminder scheduler started")
}

// SendDailyReminders processes every active business account.
func (s *PaymentReminderService) SendDailyReminders() {
	s.log.Info().Msg("daily payment reminder run started")

	var businesses []models.User
	if err := s.db.Find(&businesses, "is_active = ?", true).Error; err != nil {
		s.log.Error().Err(err).Msg("failed to fetch businesses")
		return
	}

	for _, business := range businesses {
		s.ProcessBusinessReminders(business)
	}

	s.log.Info().Msg("daily payment reminder run completed")
}

// ProcessBusinessReminders sends reminders for one business's overdue
// invoices.
func (s *PaymentReminderService) ProcessBusinessReminders(business models.User) {
	invoices, err := s.overdueInvoices(business.ID)
	if err != nil {
		s.log.Error().Err(err).Str("business", business.ID.String()).
			Msg("failed to fetch overdue invoices")
		return
	}

	for _, invoice := range invoices {
		recent, err := s.recentlyReminded(business.ID, invoice.ID)
		if err != nil {
			s.log.Error().Err(err).Str("invoice", invoice.InvoiceNumber).
				Msg("failed to check reminder history")
			continue
		}
		if recent {
			continue
		}
		s.sendReminder(business, invoice)
	}
}

// overdueInvoices lists unsettled invoices older than the reminder threshold.
func (s *PaymentReminderService) overdueInvoices(userID uuid.UUID) ([]models.Invoice, error) {
	cutoff := time.Now().AddDate(0, 0, -s.afterDays)

	var invoices []models.Invoice
	err := s.db.
		Where("user_id = ? AND status <> ? AND created_at < ?",
			userID, models.StatusPaid, cutoff).
		Find(&invoices).Error
	return invoices, err
}

// recentlyReminded reports whether the invoice already got a successful
// reminder in the past week.
func (s *PaymentReminderService) recentlyReminded(userID, invoiceID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.PaymentReminderLog{}).
		Where("user_id = ? AND invoice_id = ? AND status = ? AND sent_at > ?",
			userID, invoiceID, "sent", time.Now().AddDate(0, 0, -7)).
		Count(&count).Error
	return count > 0, err
}

func (s *PaymentReminderService) sendReminder(business models.User, invoice models.Invoice) {
	var customer models.Customer
	if err := s.db.First(&customer, "id = ?", invoice.CustomerID).Error; err != nil {
		s.log.Error().Err(err).Str("invoice", invoice.InvoiceNumber).
			Msg("customer lookup failed")
		return
	}
	if customer.Phone == "" {
		return
	}

	outstanding, err := s.ledger.OutstandingBalance(business.ID, invoice.ID)
	if err != nil {
		s.log.Error().Err(err).Str("invoice", invoice.InvoiceNumber).
			Msg("outstanding balance lookup failed")
		return
	}
	if outstanding <= PaymentEpsilon {
		return
	}

	message := fmt.Sprintf(
		"Dear %s, a payment of ₹%.2f is pending against invoice %s from %s. Kindly clear the dues at your earliest convenience.",
		customer.PartyName, outstanding, invoice.InvoiceNumber, business.BusinessName)
	if business.UPIID != "" {
		message += fmt.Sprintf(" You can pay via UPI: %s", business.UPIID)
	}

	// WhatsApp for E.164 numbers, plain SMS otherwise.
	channel := "sms"
	to := customer.Phone
	if strings.HasPrefix(customer.Phone, "+") {
		to = "whatsapp:" + customer.Phone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	status := "sent"
	errorMsg := ""
	if _, err := s.client.Api.CreateMessage(params); err != nil {
		s.log.Error().Err(err).Str("invoice", invoice.InvoiceNumber).
			Msg("failed to send payment reminder")
		status = "failed"
		errorMsg = err.Error()
	} else {
		s.log.Info().Str("invoice", invoice.InvoiceNumber).
			Str("channel", channel).Msg("payment reminder sent")
	}

	reminderLog := models.PaymentReminderLog{
		UserID:       business.ID,
		CustomerID:   customer.ID,
		InvoiceID:    invoice.ID,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		SentAt:       time.Now(),
	}
	if err := s.db.Create(&reminderLog).Error; err != nil {
		s.log.Error().Err(err).Str("invoice", invoice.InvoiceNumber).
			Msg("failed to log reminder")
	}
}
