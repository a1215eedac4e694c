package business

import (
	"context"
	"fmt"

	"weightguard/internal/model"
	"weightguard/pkg/logger"
)

// 汇总邮件跳过原因
const (
	DigestSkipDisabled     = "frequency is none"
	DigestSkipNoRecipients = "no recipients configured"
	DigestSkipNoProblems   = "no products with problems"
)

// DigestService 汇总邮件
type DigestService struct {
	settings *SettingsService
	reports  *ReportService
	exporter *CSVExporter
	mailer   Mailer
	siteName string
	log      logger.Logger
}

// NewDigestService 创建汇总邮件服务
func NewDigestService(
	settings *SettingsService,
	reports *ReportService,
	exporter *CSVExporter,
	mailer Mailer,
	siteName string,
	log logger.Logger,
) *DigestService {
	return &DigestService{
		settings: settings,
		reports:  reports,
		exporter: exporter,
		mailer:   mailer,
		siteName: siteName,
		log:      log,
	}
}

// Send 发送汇总邮件
// frequency 为空时使用配置中的频率；频率为 none、无收件人或没有问题商品时跳过
func (s *DigestService) Send(ctx context.Context, frequency model.Frequency) (*model.DigestResult, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	if frequency == "" {
		frequency = settings.Frequency
	}
	if !frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown frequency %q", model.ErrInvalidSettings, frequency)
	}

	if frequency == model.FrequencyNone {
		return s.skip(ctx, DigestSkipDisabled), nil
	}
	if len(settings.Recipients) == 0 {
		return s.skip(ctx, DigestSkipNoRecipients), nil
	}

	// 汇总邮件总是基于最新数据
	report, err := s.reports.Compute(ctx)
	if err != nil {
		return nil, err
	}
	total := report.Total()
	if total == 0 {
		return s.skip(ctx, DigestSkipNoProblems), nil
	}

	subject := fmt.Sprintf("%s - %d product(s) with weight/dimension problems", frequency.Title(), total)
	if s.siteName != "" {
		subject = fmt.Sprintf("[%s] %s", s.siteName, subject)
	}

	body, err := renderDigest(frequency.Title(), report, s.exporter.EditLink)
	if err != nil {
		return nil, err
	}

	mail := &Mail{To: settings.Recipients, Subject: subject, HTML: body}
	if err := s.mailer.Send(ctx, mail); err != nil {
		return nil, fmt.Errorf("send digest failed: %w", err)
	}

	s.log.Infof(ctx, "[DigestService] Digest sent: frequency=%s, total=%d, recipients=%d",
		frequency, total, len(settings.Recipients))

	return &model.DigestResult{
		Sent:       true,
		Subject:    subject,
		Recipients: settings.Recipients,
		Total:      total,
	}, nil
}

func (s *DigestService) skip(ctx context.Context, reason string) *model.DigestResult {
	s.log.Infof(ctx, "[DigestService] Digest skipped: %s", reason)
	return &model.DigestResult{Sent: false, Reason: reason}
}

// AlertMailService 单商品告警邮件（消费告警事件）
type AlertMailService struct {
	settings *SettingsService
	exporter *CSVExporter
	mailer   Mailer
	log      logger.Logger
}

// NewAlertMailService 创建告警邮件服务
func NewAlertMailService(settings *SettingsService, exporter *CSVExporter, mailer Mailer, log logger.Logger) *AlertMailService {
	return &AlertMailService{
		settings: settings,
		exporter: exporter,
		mailer:   mailer,
		log:      log,
	}
}

// Handle 为单个告警事件发送邮件，无收件人时跳过
func (s *AlertMailService) Handle(ctx context.Context, event *model.AlertEvent) error {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return err
	}
	if len(settings.Recipients) == 0 {
		s.log.Debugf(ctx, "[AlertMailService] No recipients, skip event %s", event.ID)
		return nil
	}

	body, err := renderAlert(event, s.exporter.EditLink(event.ProductID))
	if err != nil {
		return err
	}

	mail := &Mail{To: settings.Recipients, Subject: alertSubject(event), HTML: body}
	if err := s.mailer.Send(ctx, mail); err != nil {
		return fmt.Errorf("send alert for product %d failed: %w", event.ProductID, err)
	}

	s.log.Infof(ctx, "[AlertMailService] Alert mail sent: product=%d, group=%s, kind=%s",
		event.ProductID, event.Group, event.Kind)
	return nil
}
