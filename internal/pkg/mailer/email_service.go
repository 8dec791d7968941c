package mailer

import (
	"fmt"
	"html"
	"time"

	"companion-counselling-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendBookingRequested(toEmail, consultantName string, scheduledAt time.Time) error
}

// Sender abstracts the SMTP dialer so message composition can be tested.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	sender      Sender
	senderEmail string
	senderName  string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderName string, log logger.ILogger) IEmailService {
	return NewEmailServiceWithSender(gomail.NewDialer(host, port, username, password), username, senderName, log)
}

func NewEmailServiceWithSender(sender Sender, senderEmail, senderName string, log logger.ILogger) IEmailService {
	return &emailService{
		sender:      sender,
		senderEmail: senderEmail,
		senderName:  senderName,
		logger:      log,
	}
}

func ComposeBookingRequested(from, to, consultantName string, scheduledAt time.Time) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "New counselling session request")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hello %s,</h2>
			<p>A user has requested a counselling session with you for:</p>
			<h3 style="color: #4CAF50;">%s</h3>
			<p>Open your dashboard to accept the request.</p>
		</div>
	`, html.EscapeString(consultantName), scheduledAt.UTC().Format("Jan 02, 2006 15:04"))

	m.SetBody("text/html", body)
	return m
}

func (s *emailService) SendBookingRequested(toEmail, consultantName string, scheduledAt time.Time) error {
	from := s.senderEmail
	if s.senderName != "" {
		from = fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	}
	m := ComposeBookingRequested(from, toEmail, consultantName, scheduledAt)

	if err := s.sender.DialAndSend(m); err != nil {
		s.logger.Error("Mailer", "Failed to send booking request mail", map[string]interface{}{
			"to":    toEmail,
			"error": err.Error(),
		})
		return err
	}

	s.logger.Info("Mailer", "Booking request mail sent", map[string]interface{}{"to": toEmail})
	return nil
}
