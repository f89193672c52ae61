package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/getsy/restaurant-backend/internal/config"
	"github.com/getsy/restaurant-backend/internal/models"
)

// ReservationNotice describes a reservation change worth telling the guest about
type ReservationNotice struct {
	Phone          string
	GuestName      string
	RestaurantName string
	Reservation    models.Reservation
}

// Message renders the text sent to the guest
func (n ReservationNotice) Message() string {
	r := n.Reservation
	switch r.Status {
	case models.ReservationStatusConfirmed:
		return fmt.Sprintf("Hi %s, your table for %d at %s on %s at %s is confirmed.",
			n.GuestName, r.Pax, n.RestaurantName, r.Date, r.Time)
	case models.ReservationStatusCancelled:
		return fmt.Sprintf("Hi %s, your reservation at %s on %s at %s has been cancelled.",
			n.GuestName, n.RestaurantName, r.Date, r.Time)
	default:
		return fmt.Sprintf("Hi %s, your reservation at %s on %s at %s is now %s.",
			n.GuestName, n.RestaurantName, r.Date, r.Time, r.Status)
	}
}

// Notifier delivers reservation notices and account messages to users
type Notifier interface {
	NotifyReservation(ctx context.Context, notice ReservationNotice) error
	NotifyRecoveryCode(ctx context.Context, phone, code string) error
}

// NewNotifier returns an SMS notifier when Twilio is configured and a logging
// notifier otherwise
func NewNotifier(cfg config.Twilio) Notifier {
	if !cfg.Enabled() {
		logrus.Info("Twilio is not configured, reservation notices will only be logged")
		return LogNotifier{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMSNotifier{api: client.Api, from: cfg.FromNumber}
}

// messageCreator is the part of the Twilio API the notifier uses
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSNotifier sends notices as text messages through Twilio
type SMSNotifier struct {
	api  messageCreator
	from string
}

// NotifyReservation implements Notifier
func (n *SMSNotifier) NotifyReservation(ctx context.Context, notice ReservationNotice) error {
	if notice.Phone == "" {
		return nil
	}

	sid, err := n.send(notice.Phone, notice.Message())
	if err != nil {
		return fmt.Errorf("failed to send reservation sms: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"reservation_id": notice.Reservation.ID,
		"sid":            sid,
	}).Info("Reservation sms sent")
	return nil
}

// NotifyRecoveryCode implements Notifier
func (n *SMSNotifier) NotifyRecoveryCode(ctx context.Context, phone, code string) error {
	body := fmt.Sprintf("Your password recovery code is %s. It expires in %d minutes.",
		code, int(RecoveryCodeTTL.Minutes()))

	if _, err := n.send(phone, body); err != nil {
		return fmt.Errorf("failed to send recovery sms: %w", err)
	}
	return nil
}

func (n *SMSNotifier) send(to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.from)
	params.SetBody(body)

	resp, err := n.api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp != nil && resp.Sid != nil {
		return *resp.Sid, nil
	}
	return "", nil
}

// LogNotifier records notices in the log instead of sending them
type LogNotifier struct{}

// NotifyReservation implements Notifier
func (LogNotifier) NotifyReservation(ctx context.Context, notice ReservationNotice) error {
	logrus.WithFields(logrus.Fields{
		"reservation_id": notice.Reservation.ID,
		"status":         notice.Reservation.Status,
		"phone":          notice.Phone,
	}).Info(notice.Message())
	return nil
}

// NotifyRecoveryCode implements Notifier
func (LogNotifier) NotifyRecoveryCode(ctx context.Context, phone, code string) error {
	logrus.WithField("phone", phone).Info("Password recovery code issued")
	return nil
}
