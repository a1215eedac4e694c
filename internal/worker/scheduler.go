package worker

import (
	"context"
	"strconv"
	"time"

	"weightguard/internal/model"
	"weightguard/pkg/logger"
)

// SettingsLoader 读取当前配置
type SettingsLoader interface {
	Load(ctx context.Context) (*model.Settings, error)
}

// JobPublisher 投递队列任务
type JobPublisher interface {
	Enqueue(ctx context.Context, actionType, id string, data interface{}) (string, error)
}

// Interval 汇总邮件的重复间隔，none 返回 0
func Interval(freq model.Frequency) time.Duration {
	switch freq {
	case model.FrequencyDaily:
		return 24 * time.Hour
	case model.FrequencyWeekly:
		return 7 * 24 * time.Hour
	case model.FrequencyMonthly:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// FirstRun 首次发送时间：今天 hour:00，已过则顺延到明天
func FirstRun(now time.Time, hour int) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if t.Before(now) {
		t = time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, now.Location())
	}
	return t
}

// Scheduler 汇总邮件调度器：到期时投递 digest_email 任务
// 频率或发送时间变化时重新计算下次发送时间
type Scheduler struct {
	settings  SettingsLoader
	publisher JobPublisher
	check     time.Duration
	loc       *time.Location
	now       func() time.Time
	log       logger.Logger

	freq model.Frequency
	hour int
	next time.Time
}

// NewScheduler 创建调度器
func NewScheduler(settings SettingsLoader, publisher JobPublisher, check time.Duration, loc *time.Location, log logger.Logger) *Scheduler {
	if check <= 0 {
		check = 5 * time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		settings:  settings,
		publisher: publisher,
		check:     check,
		loc:       loc,
		now:       time.Now,
		log:       log,
	}
}

// Next 下次发送时间（未调度时为零值）
func (s *Scheduler) Next() time.Time {
	return s.next
}

// Run 调度循环，阻塞直到 ctx 取消
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		s.Tick(ctx)

		wait := s.check
		if !s.next.IsZero() {
			if until := s.next.Sub(s.now()); until < wait {
				wait = until
			}
		}
		if wait < time.Second {
			wait = time.Second
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Tick 同步配置并在到期时投递任务
func (s *Scheduler) Tick(ctx context.Context) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		s.log.Warnf(ctx, "[Scheduler] Load settings failed: %v", err)
		return
	}

	now := s.now().In(s.loc)
	interval := Interval(settings.Frequency)
	if interval == 0 {
		if !s.next.IsZero() {
			s.log.Infof(ctx, "[Scheduler] Digest disabled")
		}
		s.freq, s.next = settings.Frequency, time.Time{}
		return
	}

	if s.next.IsZero() || settings.Frequency != s.freq || settings.SendHour != s.hour {
		s.freq, s.hour = settings.Frequency, settings.SendHour
		s.next = FirstRun(now, settings.SendHour)
		s.log.Infof(ctx, "[Scheduler] Next %s digest at %s", s.freq, s.next.Format(time.RFC3339))
	}

	if now.Before(s.next) {
		return
	}

	id := strconv.FormatInt(s.next.Unix(), 10)
	jobID, err := s.publisher.Enqueue(ctx, model.ActionDigestEmail, id, model.DigestEmailData{Frequency: s.freq})
	if err != nil {
		// 下次 Tick 重试
		s.log.Errorf(ctx, "[Scheduler] Enqueue digest failed: %v", err)
		return
	}
	s.log.Infof(ctx, "[Scheduler] Digest job enqueued: job_id=%s, frequency=%s", jobID, s.freq)

	// 长时间停机后跳过错过的周期
	for !now.Before(s.next) {
		s.next = s.next.Add(interval)
	}
}
