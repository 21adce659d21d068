// Package notify sends threshold breach alerts by email.
package notify

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/kasplanner/kasplan/internal/cli"
	"github.com/kasplanner/kasplan/internal/config"
	"github.com/kasplanner/kasplan/internal/model"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MaxListedDays caps the breach days listed in one alert.
const MaxListedDays = 10

// Sender handles sending alert emails via SMTP.
type Sender struct {
	alerts   config.AlertsConfig
	password string
	currency string
	logger   *logrus.Logger

	// send is replaced in tests.
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a sender from the alerts section of cfg.
func NewSender(cfg config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		alerts:   cfg.Alerts,
		password: config.GetSMTPPassword(cfg),
		currency: cfg.Forecast.Currency,
		logger:   logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Enabled reports whether email alerts are configured.
func (s *Sender) Enabled() bool {
	return s.alerts.EmailEnabled && s.alerts.SMTPHost != "" && len(s.alerts.To) > 0
}

// SendBreachAlert emails the list of days whose cumulative balance falls
// below threshold.
func (s *Sender) SendBreachAlert(breaches []model.ForecastDay, threshold decimal.Decimal) error {
	if !s.Enabled() {
		return errors.New("email alerts are not configured")
	}
	if len(breaches) == 0 {
		return nil
	}

	e := BuildBreachAlert(breaches, threshold, s.currency)
	e.From = s.alerts.From
	if e.From == "" {
		e.From = s.alerts.SMTPUser
	}
	e.To = s.alerts.To

	addr := fmt.Sprintf("%s:%d", s.alerts.SMTPHost, s.alerts.SMTPPort)
	var auth smtp.Auth
	if s.alerts.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.alerts.SMTPUser, s.password, s.alerts.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.WithError(err).WithField("to", strings.Join(e.To, ",")).Error("failed to send breach alert")
		return fmt.Errorf("sending breach alert: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"to":           strings.Join(e.To, ","),
		"breach_days":  len(breaches),
		"first_breach": model.DayKey(breaches[0].Date),
	}).Info("breach alert sent")
	return nil
}

// BuildBreachAlert composes the alert message without addressing it.
func BuildBreachAlert(breaches []model.ForecastDay, threshold decimal.Decimal, currency string) *email.Email {
	e := email.NewEmail()
	e.Subject = fmt.Sprintf("Cash balance below %s from %s",
		cli.FormatMoney(threshold, currency), model.DayKey(breaches[0].Date))

	var b strings.Builder
	fmt.Fprintf(&b, "The forecast balance drops below %s on %d day(s).\n\n",
		cli.FormatMoney(threshold, currency), len(breaches))

	shown := breaches
	if len(shown) > MaxListedDays {
		shown = shown[:MaxListedDays]
	}
	for _, d := range shown {
		fmt.Fprintf(&b, "  %s  %s\n", cli.FormatDate(d.Date), cli.FormatMoney(d.Cumulative, currency))
	}
	if extra := len(breaches) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "  +%d more\n", extra)
	}
	b.WriteString("\nRun `kasplan alerts` for the full list.\n")

	e.Text = []byte(b.String())
	return e
}
