package model

// Frequency 汇总邮件频率
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyNone    Frequency = "none"
)

// Valid 是否为已知频率
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyNone:
		return true
	}
	return false
}

// Title 邮件标题中的周期名称
func (f Frequency) Title() string {
	switch f {
	case FrequencyDaily:
		return "Daily summary"
	case FrequencyWeekly:
		return "Weekly summary"
	case FrequencyMonthly:
		return "Monthly summary"
	default:
		return "Summary"
	}
}

// DefaultWeightMode 默认重量规则
type DefaultWeightMode string

const (
	DefaultWeightCalculated DefaultWeightMode = "calculated" // 最小值 + 偏移
	DefaultWeightFixed      DefaultWeightMode = "fixed"      // 固定值
)

// DefaultWeight 批量设置默认重量的规则
type DefaultWeight struct {
	Mode   DefaultWeightMode `json:"mode" yaml:"mode"`
	Offset float64           `json:"offset" yaml:"offset"`
	Fixed  float64           `json:"fixed" yaml:"fixed"`
}

// Resolve 计算默认重量
func (d DefaultWeight) Resolve(t Thresholds) float64 {
	if d.Mode == DefaultWeightFixed {
		return d.Fixed
	}
	return t.Weight.Min + d.Offset
}

// Settings 插件配置
type Settings struct {
	Thresholds    Thresholds    `json:"thresholds" yaml:"thresholds"`
	Recipients    []string      `json:"recipients" yaml:"recipients"`
	Frequency     Frequency     `json:"frequency" yaml:"frequency"`
	SendHour      int           `json:"send_hour" yaml:"send_hour"`
	DefaultWeight DefaultWeight `json:"default_weight" yaml:"default_weight"`
}

// DefaultSettings 默认配置
func DefaultSettings() Settings {
	return Settings{
		Thresholds: DefaultThresholds(),
		Recipients: []string{},
		Frequency:  FrequencyDaily,
		SendHour:   8,
		DefaultWeight: DefaultWeight{
			Mode:   DefaultWeightCalculated,
			Offset: 0.5,
			Fixed:  0.5,
		},
	}
}
