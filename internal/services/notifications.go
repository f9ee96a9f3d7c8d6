package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vaxtrack/vaxtrack-api/internal/models"
)

// NotificationService delivers SMS through the Textbelt API. Sends are
// fire-and-forget so they never block a response.
type NotificationService struct {
	apiKey string
	log    zerolog.Logger
}

func NewNotificationService(apiKey string, log zerolog.Logger) *NotificationService {
	return &NotificationService{apiKey: apiKey, log: log}
}

func (s *NotificationService) SendBookingConfirmationSMS(user *models.User, booking *models.Booking, vaccineName string) {
	if user.Phone == "" {
		s.log.Debug().Str("user", user.ID.Hex()).Msg("SMS not sent: user has no phone number")
		return
	}
	body := fmt.Sprintf(
		"Lịch hẹn tiêm %s của bạn vào ngày %s lúc %s đã được ghi nhận.",
		vaccineName, booking.Day, booking.Time,
	)
	go s.sendSMS(user.Phone, body)
}

func (s *NotificationService) SendOTPSMS(user *models.User, code string) {
	if user.Phone == "" {
		s.log.Debug().Str("user", user.ID.Hex()).Msg("SMS not sent: user has no phone number")
		return
	}
	body := fmt.Sprintf("Mã xác nhận đặt lại mật khẩu của bạn là %s. Mã có hiệu lực trong 10 phút.", code)
	go s.sendSMS(user.Phone, body)
}

func (s *NotificationService) sendSMS(phone, message string) {
	postBody, _ := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})

	resp, err := http.Post("https://textbelt.com/text", "application/json", bytes.NewBuffer(postBody))
	if err != nil {
		s.log.Error().Err(err).Str("phone", phone).Msg("failed to send Textbelt request")
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)

	success, _ := result["success"].(bool)
	if !success {
		errorMsg, _ := result["error"].(string)
		s.log.Warn().Str("phone", phone).Str("reason", errorMsg).Msg("Textbelt rejected SMS")
		return
	}
	s.log.Info().Str("phone", phone).Msg("SMS sent via Textbelt")
}
