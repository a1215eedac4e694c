// Package numfmt 数值解析与巴西葡语格式化（逗号小数点、点号千分位）
package numfmt

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// maxMagnitude 十进制数量级上限，超出即不在 float64 范围内
const maxMagnitude = 400

// Parse 解析目录中的数值字符串
// 接受逗号作为小数点；无法解析时返回 0, false
// 数量级超过 float64 范围时不展开系数，上溢返回 ±Inf，下溢返回 0
func Parse(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if d.IsZero() {
		return 0, true
	}

	mag := int64(d.Exponent()) + int64(d.NumDigits())
	if mag > maxMagnitude {
		return math.Inf(d.Sign()), true
	}
	if mag < -maxMagnitude {
		return 0, true
	}
	f, _ := d.Float64()
	return f, true
}

// Format 按 places 位小数格式化（四舍五入，远离零）
// 例如 Format(1234.5, 3) = "1.234,500"
func Format(v float64, places int32) string {
	s := decimal.NewFromFloat(v).Round(places).StringFixed(places)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i+1:]
	}

	if strings.Trim(intPart, "0") == "" && strings.Trim(frac, "0") == "" {
		sign = ""
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

// Weight 重量格式（3 位小数）
func Weight(v float64) string {
	return Format(v, 3)
}

// Dimension 尺寸格式（2 位小数）
func Dimension(v float64) string {
	return Format(v, 2)
}
