package model

// Attribute 商品物理属性
type Attribute string

const (
	AttrWeight Attribute = "weight"
	AttrWidth  Attribute = "width"
	AttrHeight Attribute = "height"
	AttrLength Attribute = "length"
)

// DimensionAttributes 尺寸组包含的属性（固定顺序，用于输出）
var DimensionAttributes = []Attribute{AttrWidth, AttrHeight, AttrLength}

// Unit 属性单位
func (a Attribute) Unit() string {
	if a == AttrWeight {
		return "kg"
	}
	return "cm"
}

// Group 告警分组
// weight 组只包含重量，dimensions 组包含宽高长三个属性
type Group string

const (
	GroupWeight     Group = "weight"
	GroupDimensions Group = "dimensions"
)

// Bounds 可接受区间 [Min, Max]
type Bounds struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains 判断 v 是否落在区间内（闭区间）
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Thresholds 阈值配置，每次校验显式传入
type Thresholds struct {
	Weight Bounds `json:"weight" yaml:"weight"`
	Width  Bounds `json:"width" yaml:"width"`
	Height Bounds `json:"height" yaml:"height"`
	Length Bounds `json:"length" yaml:"length"`
}

// DefaultThresholds 默认阈值：重量 0.01~20 kg，尺寸 0~100 cm
func DefaultThresholds() Thresholds {
	return Thresholds{
		Weight: Bounds{Min: 0.01, Max: 20},
		Width:  Bounds{Min: 0, Max: 100},
		Height: Bounds{Min: 0, Max: 100},
		Length: Bounds{Min: 0, Max: 100},
	}
}

// For 获取指定属性的区间
func (t Thresholds) For(attr Attribute) Bounds {
	switch attr {
	case AttrWidth:
		return t.Width
	case AttrHeight:
		return t.Height
	case AttrLength:
		return t.Length
	default:
		return t.Weight
	}
}

// Classification 区间判定结果
type Classification int

const (
	Missing Classification = iota
	InRange
	BelowMin
	AboveMax
)

// String 实现 fmt.Stringer
func (c Classification) String() string {
	switch c {
	case Missing:
		return "missing"
	case InRange:
		return "in_range"
	case BelowMin:
		return "below_min"
	case AboveMax:
		return "above_max"
	default:
		return "unknown"
	}
}

// OutOfRange 是否越界
func (c Classification) OutOfRange() bool {
	return c == BelowMin || c == AboveMax
}
