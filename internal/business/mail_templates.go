package business

import (
	"bytes"
	"fmt"
	"html/template"

	"weightguard/internal/model"
	"weightguard/pkg/numfmt"
)

var templateFuncs = template.FuncMap{
	"weight":    numfmt.Weight,
	"dimension": numfmt.Dimension,
	"attrLabel": attrLabel,
	"value": func(values map[model.Attribute]float64, attr model.Attribute) string {
		v, ok := values[attr]
		if !ok {
			return "-"
		}
		if attr == model.AttrWeight {
			return numfmt.Weight(v)
		}
		return numfmt.Dimension(v)
	},
}

// link 在渲染时替换为实际的编辑链接生成函数
var digestTemplate = template.Must(template.New("digest").Funcs(templateFuncs).Funcs(template.FuncMap{
	"link": func(int64) string { return "" },
}).Parse(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #333;">
<h2>{{.Title}}</h2>
<p>Consolidated list of products with weight or dimension problems ({{.Total}} in total).</p>
{{with .Report}}
{{if .MissingWeight}}<h3>Products without weight ({{len .MissingWeight}})</h3>
<ul>{{range .MissingWeight}}<li><a href="{{link .Product.ID}}">{{.Product.Title}}</a>{{if .Product.SKU}} ({{.Product.SKU}}){{end}}</li>{{end}}</ul>{{end}}
{{if .WeightOutOfRange}}<h3>Weight outside {{weight .Thresholds.Weight.Min}} - {{weight .Thresholds.Weight.Max}} kg ({{len .WeightOutOfRange}})</h3>
<ul>{{range .WeightOutOfRange}}<li><a href="{{link .Product.ID}}">{{.Product.Title}}</a>: {{value .Values "weight"}} kg</li>{{end}}</ul>{{end}}
{{if .MissingDimensions}}<h3>Products without dimensions ({{len .MissingDimensions}})</h3>
<ul>{{range .MissingDimensions}}<li><a href="{{link .Product.ID}}">{{.Product.Title}}</a>{{if .Product.SKU}} ({{.Product.SKU}}){{end}}</li>{{end}}</ul>{{end}}
{{if .DimensionsOutOfRange}}<h3>Dimensions out of range ({{len .DimensionsOutOfRange}})</h3>
<ul>{{range .DimensionsOutOfRange}}<li><a href="{{link .Product.ID}}">{{.Product.Title}}</a>: {{range $i, $p := .Problems}}{{if $i}}, {{end}}{{$p}}{{end}}</li>{{end}}</ul>{{end}}
{{end}}
</body></html>`))

var alertTemplate = template.Must(template.New("alert").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #333;">
<h2>{{.Heading}}</h2>
<p><strong>Product:</strong> <a href="{{.Link}}">{{.Event.ProductTitle}}</a>{{if .Event.SKU}} (SKU {{.Event.SKU}}){{end}}</p>
{{if .Rows}}<table cellpadding="4" style="border-collapse: collapse;">
<tr><th align="left">Attribute</th><th align="left">Value</th><th align="left">Accepted range</th></tr>
{{range .Rows}}<tr><td>{{.Label}}</td><td>{{.Value}}</td><td>{{.Range}}</td></tr>
{{end}}</table>{{else}}<p>{{.Missing}}</p>{{end}}
<p style="color: #777;">Detected at {{.Event.OccurredAt.Format "2006-01-02 15:04"}}.</p>
</body></html>`))

// renderDigest 渲染汇总邮件正文
func renderDigest(title string, report *model.Report, link func(int64) string) (string, error) {
	tpl, err := digestTemplate.Clone()
	if err != nil {
		return "", err
	}
	tpl.Funcs(template.FuncMap{"link": link})

	var buf bytes.Buffer
	err = tpl.Execute(&buf, map[string]interface{}{
		"Title":  title,
		"Total":  report.Total(),
		"Report": report,
	})
	if err != nil {
		return "", fmt.Errorf("render digest failed: %w", err)
	}
	return buf.String(), nil
}

// renderAlert 渲染单商品告警邮件正文
func renderAlert(event *model.AlertEvent, link string) (string, error) {
	type row struct{ Label, Value, Range string }
	rows := make([]row, 0, len(event.Values))
	for _, attr := range append([]model.Attribute{model.AttrWeight}, model.DimensionAttributes...) {
		v, ok := event.Values[attr]
		if !ok {
			continue
		}
		format := numfmt.Dimension
		if attr == model.AttrWeight {
			format = numfmt.Weight
		}
		b := event.Bounds[attr]
		rows = append(rows, row{
			Label: attrLabel(attr),
			Value: format(v) + " " + attr.Unit(),
			Range: format(b.Min) + " - " + format(b.Max) + " " + attr.Unit(),
		})
	}

	missing := "The product has no weight registered."
	if event.Group == model.GroupDimensions {
		missing = "The product has no width, height or length registered."
	}

	var buf bytes.Buffer
	err := alertTemplate.Execute(&buf, map[string]interface{}{
		"Heading": alertSubject(event),
		"Event":   event,
		"Link":    link,
		"Rows":    rows,
		"Missing": missing,
	})
	if err != nil {
		return "", fmt.Errorf("render alert failed: %w", err)
	}
	return buf.String(), nil
}

func alertSubject(event *model.AlertEvent) string {
	switch {
	case event.Kind == model.AlertKindMissing && event.Group == model.GroupWeight:
		return fmt.Sprintf("ALERT: product without weight - %s", event.ProductTitle)
	case event.Kind == model.AlertKindMissing:
		return fmt.Sprintf("ALERT: product without dimensions - %s", event.ProductTitle)
	case event.Group == model.GroupWeight:
		return fmt.Sprintf("ALERT: product with abnormal weight - %s", event.ProductTitle)
	default:
		return fmt.Sprintf("ALERT: product with abnormal dimensions - %s", event.ProductTitle)
	}
}
