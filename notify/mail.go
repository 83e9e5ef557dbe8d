package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"restaurant_manager/constants"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender tách riêng phần gửi thư để test không cần SMTP thật
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// RecipientLookup trả email của khách hàng
type RecipientLookup func(ctx context.Context, customerID uint) (string, error)

var tierUpgradeTmpl = template.Must(template.New("tier").Parse(
	`<p>Chúc mừng! Bạn vừa lên hạng <b>{{.Tier}}</b>.</p>` +
		`<p>Điểm thưởng lên hạng: <b>{{.Bonus}}</b>. Tổng điểm tích luỹ: {{.Lifetime}}.</p>`))

// TierMailer gửi email khi khách lên hạng, các sự kiện khác bị bỏ qua.
type TierMailer struct {
	from   string
	sender Sender
	lookup RecipientLookup
}

func NewTierMailer(cfg SMTPConfig, lookup RecipientLookup) *TierMailer {
	return &TierMailer{
		from:   cfg.From,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		lookup: lookup,
	}
}

func (m *TierMailer) Publish(ctx context.Context, ev Event) error {
	if ev.Name != constants.EVENT_TIER_UPGRADED {
		return nil
	}
	customerID, err := uintFrom(ev.Payload, "customer_id")
	if err != nil {
		return err
	}
	to, err := m.lookup(ctx, customerID)
	if err != nil {
		return fmt.Errorf("lookup recipient %d: %w", customerID, err)
	}
	if to == "" {
		return nil
	}

	var body bytes.Buffer
	if err := tierUpgradeTmpl.Execute(&body, map[string]any{
		"Tier":     ev.Payload["tier"],
		"Bonus":    ev.Payload["bonus_points"],
		"Lifetime": ev.Payload["lifetime_points"],
	}); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Bạn đã lên hạng %v", ev.Payload["tier"]))
	msg.SetBody("text/html", body.String())
	return m.sender.DialAndSend(msg)
}
