package business

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"weightguard/internal/model"
	"weightguard/pkg/logger"
	"weightguard/pkg/numfmt"
)

// wp_options 中的配置项名称（与插件保持一致）
const (
	OptWeightMax      = "dw_peso_maximo"
	OptWeightMin      = "dw_peso_minimo"
	OptRecipients     = "dw_peso_emails_alerta"
	OptFrequency      = "dw_peso_frequencia_email"
	OptSendHour       = "dw_peso_email_hora"
	OptDefaultMode    = "dw_peso_padrao_tipo"
	OptDefaultOffset  = "dw_peso_padrao_valor"
	OptDefaultFixed   = "dw_peso_padrao_fixo"
	OptWidthMin       = "dw_dimensao_largura_min"
	OptWidthMax       = "dw_dimensao_largura_max"
	OptHeightMin      = "dw_dimensao_altura_min"
	OptHeightMax      = "dw_dimensao_altura_max"
	OptLengthMin      = "dw_dimensao_comprimento_min"
	OptLengthMax      = "dw_dimensao_comprimento_max"
	optionPrefixPeso  = "dw_peso_"
	optionPrefixDimen = "dw_dimensao_"
)

// OptionPrefixes 卸载时清理的配置项前缀
var OptionPrefixes = []string{optionPrefixPeso, optionPrefixDimen}

var optionNames = []string{
	OptWeightMax, OptWeightMin, OptRecipients, OptFrequency, OptSendHour,
	OptDefaultMode, OptDefaultOffset, OptDefaultFixed,
	OptWidthMin, OptWidthMax, OptHeightMin, OptHeightMax, OptLengthMin, OptLengthMax,
}

// 频率与默认重量规则在 wp_options 中的存储值
var (
	frequencyToOption = map[model.Frequency]string{
		model.FrequencyDaily:   "diario",
		model.FrequencyWeekly:  "semanal",
		model.FrequencyMonthly: "mensal",
		model.FrequencyNone:    "nenhum",
	}
	modeToOption = map[model.DefaultWeightMode]string{
		model.DefaultWeightCalculated: "calculado",
		model.DefaultWeightFixed:      "fixo",
	}
)

// SettingsInput 配置保存请求
type SettingsInput struct {
	Thresholds    model.Thresholds    `json:"thresholds"`
	Recipients    string              `json:"recipients"` // 逗号分隔
	Frequency     model.Frequency     `json:"frequency"`
	SendHour      int                 `json:"send_hour"`
	DefaultWeight model.DefaultWeight `json:"default_weight"`
}

// SettingsService 配置服务
type SettingsService struct {
	repo     OptionRepository
	cache    ReportCache
	validate *validator.Validate
	log      logger.Logger
}

// NewSettingsService 创建配置服务
func NewSettingsService(repo OptionRepository, cache ReportCache, log logger.Logger) *SettingsService {
	return &SettingsService{
		repo:     repo,
		cache:    cache,
		validate: validator.New(),
		log:      log,
	}
}

// Load 读取配置，缺失或格式错误的项使用默认值
func (s *SettingsService) Load(ctx context.Context) (*model.Settings, error) {
	opts, err := s.repo.GetOptions(ctx, optionNames)
	if err != nil {
		return nil, fmt.Errorf("load options failed: %w", err)
	}

	def := model.DefaultSettings()
	settings := &model.Settings{
		Thresholds: model.Thresholds{
			Weight: model.Bounds{Min: optFloat(opts, OptWeightMin, def.Thresholds.Weight.Min), Max: optFloat(opts, OptWeightMax, def.Thresholds.Weight.Max)},
			Width:  model.Bounds{Min: optFloat(opts, OptWidthMin, def.Thresholds.Width.Min), Max: optFloat(opts, OptWidthMax, def.Thresholds.Width.Max)},
			Height: model.Bounds{Min: optFloat(opts, OptHeightMin, def.Thresholds.Height.Min), Max: optFloat(opts, OptHeightMax, def.Thresholds.Height.Max)},
			Length: model.Bounds{Min: optFloat(opts, OptLengthMin, def.Thresholds.Length.Min), Max: optFloat(opts, OptLengthMax, def.Thresholds.Length.Max)},
		},
		Recipients: s.ParseRecipients(opts[OptRecipients]),
		Frequency:  def.Frequency,
		SendHour:   clampHour(optInt(opts, OptSendHour, def.SendHour)),
		DefaultWeight: model.DefaultWeight{
			Mode:   def.DefaultWeight.Mode,
			Offset: optFloat(opts, OptDefaultOffset, def.DefaultWeight.Offset),
			Fixed:  optFloat(opts, OptDefaultFixed, def.DefaultWeight.Fixed),
		},
	}

	if raw, ok := opts[OptFrequency]; ok {
		if f, ok := frequencyFromOption(raw); ok {
			settings.Frequency = f
		}
	}
	if opts[OptDefaultMode] == modeToOption[model.DefaultWeightFixed] {
		settings.DefaultWeight.Mode = model.DefaultWeightFixed
	}

	return settings, nil
}

// Thresholds 读取当前阈值
func (s *SettingsService) Thresholds(ctx context.Context) (model.Thresholds, error) {
	settings, err := s.Load(ctx)
	if err != nil {
		return model.Thresholds{}, err
	}
	return settings.Thresholds, nil
}

// Save 校验并保存配置
// 负数按 0 处理；任一属性 min >= max 时拒绝；收件人过滤无效地址并去重；小时限制在 0~23
func (s *SettingsService) Save(ctx context.Context, in *SettingsInput) (*model.Settings, error) {
	t := in.Thresholds
	for _, b := range []*model.Bounds{&t.Weight, &t.Width, &t.Height, &t.Length} {
		b.Min = nonNegative(b.Min)
		b.Max = nonNegative(b.Max)
	}

	var errs []error
	for _, attr := range append([]model.Attribute{model.AttrWeight}, model.DimensionAttributes...) {
		if b := t.For(attr); b.Min >= b.Max {
			errs = append(errs, fmt.Errorf("%s: minimum must be lower than maximum", attr))
		}
	}

	frequency := in.Frequency
	if frequency == "" {
		frequency = model.FrequencyDaily
	}
	if !frequency.Valid() {
		errs = append(errs, fmt.Errorf("frequency: unknown value %q", in.Frequency))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidSettings, errors.Join(errs...))
	}

	mode := in.DefaultWeight.Mode
	if mode != model.DefaultWeightFixed {
		mode = model.DefaultWeightCalculated
	}

	recipients := s.ParseRecipients(in.Recipients)
	settings := &model.Settings{
		Thresholds: t,
		Recipients: recipients,
		Frequency:  frequency,
		SendHour:   clampHour(in.SendHour),
		DefaultWeight: model.DefaultWeight{
			Mode:   mode,
			Offset: nonNegative(in.DefaultWeight.Offset),
			Fixed:  nonNegative(in.DefaultWeight.Fixed),
		},
	}

	opts := map[string]string{
		OptWeightMin:     formatFloat(t.Weight.Min),
		OptWeightMax:     formatFloat(t.Weight.Max),
		OptWidthMin:      formatFloat(t.Width.Min),
		OptWidthMax:      formatFloat(t.Width.Max),
		OptHeightMin:     formatFloat(t.Height.Min),
		OptHeightMax:     formatFloat(t.Height.Max),
		OptLengthMin:     formatFloat(t.Length.Min),
		OptLengthMax:     formatFloat(t.Length.Max),
		OptRecipients:    strings.Join(recipients, ", "),
		OptFrequency:     frequencyToOption[frequency],
		OptSendHour:      strconv.Itoa(settings.SendHour),
		OptDefaultMode:   modeToOption[mode],
		OptDefaultOffset: formatFloat(settings.DefaultWeight.Offset),
		OptDefaultFixed:  formatFloat(settings.DefaultWeight.Fixed),
	}
	if err := s.repo.SetOptions(ctx, opts); err != nil {
		return nil, fmt.Errorf("save options failed: %w", err)
	}

	// 阈值变化后报表缓存失效
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warnf(ctx, "[SettingsService] invalidate report cache failed: %v", err)
	}

	s.log.Infof(ctx, "[SettingsService] Settings saved: frequency=%s, hour=%d, recipients=%d",
		settings.Frequency, settings.SendHour, len(settings.Recipients))

	return settings, nil
}

// ParseRecipients 拆分逗号分隔的收件人列表，过滤无效地址并去重（保持顺序）
func (s *SettingsService) ParseRecipients(raw string) []string {
	recipients := make([]string, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		email := strings.TrimSpace(part)
		if email == "" {
			continue
		}
		if err := s.validate.Var(email, "required,email"); err != nil {
			continue
		}
		key := strings.ToLower(email)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		recipients = append(recipients, email)
	}
	return recipients
}

func frequencyFromOption(raw string) (model.Frequency, bool) {
	for f, opt := range frequencyToOption {
		if opt == raw || string(f) == raw {
			return f, true
		}
	}
	return "", false
}

func optFloat(opts map[string]string, name string, def float64) float64 {
	raw, ok := opts[name]
	if !ok {
		return def
	}
	v, ok := numfmt.Parse(raw)
	if !ok || math.IsInf(v, 0) {
		return def
	}
	return nonNegative(v)
}

func optInt(opts map[string]string, name string, def int) int {
	raw, ok := opts[name]
	if !ok {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampHour(h int) int {
	if h < 0 {
		return 0
	}
	if h > 23 {
		return 23
	}
	return h
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
