package business

import (
	"fmt"
	"math"
	"strings"

	"weightguard/internal/model"
	"weightguard/pkg/numfmt"
)

// Verdict 单个分组的判定结果
type Verdict struct {
	Group     model.Group
	Class     model.Classification
	Offending map[model.Attribute]float64 // 越界属性及其数值
}

// ParseMeasure 解析目录中的度量值
// 空字符串与 "0" 视为缺失（nil）；格式错误与 NaN 按 0 处理（视为存在）
// 上溢的数值按 ±math.MaxFloat64 处理，正向上溢判定为高于上限
func ParseMeasure(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" || s == "0" {
		return nil
	}

	v, ok := numfmt.Parse(s)
	switch {
	case !ok || math.IsNaN(v):
		v = 0
	case math.IsInf(v, 1):
		v = math.MaxFloat64
	case math.IsInf(v, -1):
		v = -math.MaxFloat64
	}
	return &v
}

// Classify 判定数值相对区间的位置（纯函数）
func Classify(v *float64, b model.Bounds) model.Classification {
	switch {
	case v == nil:
		return model.Missing
	case *v < b.Min:
		return model.BelowMin
	case *v > b.Max:
		return model.AboveMax
	default:
		return model.InRange
	}
}

// CheckWeight 检查重量分组
func CheckWeight(p *model.Product, t model.Thresholds) Verdict {
	v := ParseMeasure(p.Weight)
	class := Classify(v, t.Weight)

	verdict := Verdict{Group: model.GroupWeight, Class: class}
	if class.OutOfRange() {
		verdict.Offending = map[model.Attribute]float64{model.AttrWeight: *v}
	}
	return verdict
}

// CheckDimensions 检查尺寸分组
// 三个属性全部缺失才算缺失；否则每个越界的已填属性都记入 Offending
func CheckDimensions(p *model.Product, t model.Thresholds) Verdict {
	verdict := Verdict{Group: model.GroupDimensions, Class: model.InRange}

	present := 0
	for _, attr := range model.DimensionAttributes {
		v := ParseMeasure(p.Raw(attr))
		if v == nil {
			continue
		}
		present++

		class := Classify(v, t.For(attr))
		if !class.OutOfRange() {
			continue
		}
		if verdict.Offending == nil {
			verdict.Offending = make(map[model.Attribute]float64)
		}
		verdict.Offending[attr] = *v
		// 尺寸组只要有一个属性超上限即记为 AboveMax
		if verdict.Class != model.AboveMax {
			verdict.Class = class
		}
	}

	if present == 0 {
		return Verdict{Group: model.GroupDimensions, Class: model.Missing}
	}
	return verdict
}

// Check 同时检查两个分组
func Check(p *model.Product, t model.Thresholds) []Verdict {
	return []Verdict{CheckWeight(p, t), CheckDimensions(p, t)}
}

// Notices 生成商品的后台提示
func Notices(p *model.Product, t model.Thresholds) []model.Notice {
	notices := make([]model.Notice, 0)

	weight := CheckWeight(p, t)
	switch {
	case weight.Class == model.Missing:
		notices = append(notices, model.Notice{
			Level: model.NoticeLevelError,
			Message: fmt.Sprintf("Product has no weight. Set a weight between %s and %s kg.",
				numfmt.Weight(t.Weight.Min), numfmt.Weight(t.Weight.Max)),
		})
	case weight.Class.OutOfRange():
		notices = append(notices, model.Notice{
			Level: model.NoticeLevelWarning,
			Message: fmt.Sprintf("Weight %s kg is outside the accepted range (%s - %s kg).",
				numfmt.Weight(weight.Offending[model.AttrWeight]),
				numfmt.Weight(t.Weight.Min), numfmt.Weight(t.Weight.Max)),
		})
	}

	missing := make([]string, 0, len(model.DimensionAttributes))
	for _, attr := range model.DimensionAttributes {
		if ParseMeasure(p.Raw(attr)) == nil {
			missing = append(missing, string(attr))
		}
	}
	if len(missing) > 0 {
		notices = append(notices, model.Notice{
			Level:   model.NoticeLevelWarning,
			Message: fmt.Sprintf("Missing dimensions: %s.", strings.Join(missing, ", ")),
		})
	}

	dims := CheckDimensions(p, t)
	for _, attr := range model.DimensionAttributes {
		v, ok := dims.Offending[attr]
		if !ok {
			continue
		}
		b := t.For(attr)
		notices = append(notices, model.Notice{
			Level: model.NoticeLevelWarning,
			Message: fmt.Sprintf("%s %s cm is outside the accepted range (%s - %s cm).",
				attrLabel(attr), numfmt.Dimension(v), numfmt.Dimension(b.Min), numfmt.Dimension(b.Max)),
		})
	}

	return notices
}

// Problems 生成报表与 CSV 中的问题描述
func Problems(p *model.Product, t model.Thresholds) []string {
	problems := make([]string, 0)

	weight := CheckWeight(p, t)
	switch weight.Class {
	case model.Missing:
		problems = append(problems, "No weight")
	case model.AboveMax:
		problems = append(problems, fmt.Sprintf("Weight above maximum (%s kg)", numfmt.Weight(t.Weight.Max)))
	case model.BelowMin:
		problems = append(problems, fmt.Sprintf("Weight below minimum (%s kg)", numfmt.Weight(t.Weight.Min)))
	}

	dims := CheckDimensions(p, t)
	if dims.Class == model.Missing {
		problems = append(problems, "No dimensions")
		return problems
	}
	for _, attr := range model.DimensionAttributes {
		if _, ok := dims.Offending[attr]; !ok {
			continue
		}
		b := t.For(attr)
		problems = append(problems, fmt.Sprintf("%s out of range (%s - %s cm)",
			attrLabel(attr), numfmt.Dimension(b.Min), numfmt.Dimension(b.Max)))
	}

	return problems
}

func attrLabel(attr model.Attribute) string {
	switch attr {
	case model.AttrWidth:
		return "Width"
	case model.AttrHeight:
		return "Height"
	case model.AttrLength:
		return "Length"
	default:
		return "Weight"
	}
}
