package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"

	"weightguard/internal/business"
	"weightguard/pkg/config"
	"weightguard/pkg/logger"
)

// SMTPMailer 基于 SMTP 的邮件发送
type SMTPMailer struct {
	from string
	send func(ctx context.Context, msg *mail.Msg) error
	log  logger.Logger
}

// New 创建 SMTP 邮件发送器
func New(cfg config.SMTPConfig, log logger.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp.host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp.from is required")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(tlsPolicy(cfg.TLS)),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPMailer{
		from: cfg.From,
		send: func(ctx context.Context, msg *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
		log: log,
	}, nil
}

func tlsPolicy(name string) mail.TLSPolicy {
	switch name {
	case "mandatory":
		return mail.TLSMandatory
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}

// Send 逐个收件人发送，至少一个成功即返回 nil
func (m *SMTPMailer) Send(ctx context.Context, msg *business.Mail) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}

	var errs []error
	sent := 0
	for _, to := range msg.To {
		out, err := m.build(to, msg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := m.send(ctx, out); err != nil {
			m.log.Warnf(ctx, "[Mailer] Send to %s failed: %v", to, err)
			errs = append(errs, fmt.Errorf("send to %s: %w", to, err))
			continue
		}
		sent++
	}

	if sent == 0 {
		return errors.Join(errs...)
	}
	m.log.Debugf(ctx, "[Mailer] %q sent to %d/%d recipient(s)", msg.Subject, sent, len(msg.To))
	return nil
}

// build 构造单个收件人的 HTML 邮件
func (m *SMTPMailer) build(to string, msg *business.Mail) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := out.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %s: %w", to, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return out, nil
}

// Disabled 未配置 SMTP 时使用，发送总是失败
type Disabled struct{}

// Send 返回未配置错误
func (Disabled) Send(context.Context, *business.Mail) error {
	return fmt.Errorf("smtp is not configured")
}
