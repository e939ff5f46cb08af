// utils/email.go
package utils

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends transactional mail through SendGrid.
type EmailService struct {
	client  *sendgrid.Client
	sender  string
	baseURL string
}

// NewEmailService creates a new EmailService
func NewEmailService(cfg Config) *EmailService {
	return &EmailService{
		client:  sendgrid.NewSendClient(cfg.SendGridKey),
		sender:  cfg.EmailSender,
		baseURL: cfg.BaseURL,
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	from := mail.NewEmail("Shop", es.sender)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, htmlContent, htmlContent)

	resp, err := es.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: sendgrid status %d", resp.StatusCode)
	}
	return nil
}

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(toEmail, token string) error {
	subject := "Verify Your Email"
	verificationLink := fmt.Sprintf("%s/verify?token=%s", es.baseURL, token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		verificationLink,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderConfirmationEmail notifies the user that checkout succeeded.
// The total is deliberately not included: it follows the live cart and can
// still change until payment.
func (es *EmailService) SendOrderConfirmationEmail(toEmail, orderID string) error {
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Your order (ID: %s) has been created. Complete the checkout details and payment to finish your purchase.<br><br>Thank you for shopping with us!",
		orderID,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
