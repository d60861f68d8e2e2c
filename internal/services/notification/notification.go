// Package notification отправляет пользователям письма о смене тарифа
// и окончании пробного периода. Сообщения поступают из очередей RabbitMQ.
package notification

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/scrubtech-backend/internal/lib/sl"
	"github.com/magabrotheeeer/scrubtech-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
)

// Service отправляет письма через SMTP транспорт.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendTierChanged обрабатывает сообщение о смене тарифа из очереди.
func (s *Service) SendTierChanged(body []byte) error {
	var message models.TierChangedEvent
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Your ScrubTech plan has changed"
	bodyText := fmt.Sprintf("Hello %s!\n\nYour subscription plan changed from %s to %s.\n"+
		"Your specialty access limits have been updated accordingly.",
		message.Username, message.OldTier, message.NewTier)

	return s.sendEmail(to, subject, bodyText)
}

// SendTrialEnding обрабатывает сообщение об окончании пробного периода.
func (s *Service) SendTrialEnding(body []byte) error {
	var message models.TrialEndingEvent
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Your ScrubTech trial is ending soon"
	bodyText := fmt.Sprintf("Hello %s!\n\nYour trial period ends in three days.\n"+
		"To keep access to your plan, make sure your payment details are up to date.",
		message.Username)

	return s.sendEmail(to, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to smtp: %w", err)
	}
	defer func() {
		if err := client.Quit(); err != nil {
			s.log.Warn("failed to quit smtp session", sl.Err(err))
		}
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	s.log.Info("notification email sent", slog.String("subject", subject))
	return nil
}
