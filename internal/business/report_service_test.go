package business

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weightguard/internal/model"
)

// problemCatalog 覆盖四个报表列表的目录
func problemCatalog() []model.Product {
	heavy := okProduct(1, "Zeta")
	heavy.Weight = "30"

	noWeight := okProduct(2, "alpha")
	noWeight.Weight = ""

	wide := okProduct(3, "Beta")
	wide.Weight = "25"
	wide.Width = "200"
	wide.SKU = "BT-3"

	noDims := okProduct(5, "gamma")
	noDims.Width, noDims.Height, noDims.Length = "", "0", ""
	noDims.Status = model.PostStatusDraft

	return []model.Product{heavy, noWeight, wide, okProduct(4, "Ok"), noDims}
}

func titles(items []model.ReportItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Product.Title)
	}
	return out
}

func TestReportCompute(t *testing.T) {
	f := newFixture(problemCatalog()...)

	report, err := f.reports.Compute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha"}, titles(report.MissingWeight))
	assert.Equal(t, []string{"Zeta", "Beta"}, titles(report.WeightOutOfRange))
	assert.Equal(t, []string{"gamma"}, titles(report.MissingDimensions))
	assert.Equal(t, []string{"Beta"}, titles(report.DimensionsOutOfRange))
	assert.Equal(t, 5, report.Total())
	assert.Equal(t, t0, report.GeneratedAt)
	assert.Equal(t, model.DefaultThresholds(), report.Thresholds)

	assert.Equal(t, 200.0, report.DimensionsOutOfRange[0].Values[model.AttrWidth])
	assert.Equal(t, []string{"Weight above maximum (20,000 kg)", "Width out of range (0,00 - 100,00 cm)"},
		report.DimensionsOutOfRange[0].Problems)

	assert.Equal(t, []string{"alpha", "Beta", "gamma", "Zeta"}, titles(ProblemProducts(report)))
}

func TestReportBuildUsesCache(t *testing.T) {
	f := newFixture(problemCatalog()...)
	_, err := f.checker.Check(context.Background(), 2)
	require.NoError(t, err)

	first, err := f.reports.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets)
	assert.Equal(t, time.Hour, f.cache.ttl)

	// 目录变化但缓存仍有效
	require.NoError(t, f.products.UpdateMeasures(context.Background(), 2, map[model.Attribute]string{model.AttrWeight: "1"}))
	second, err := f.reports.Build(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)

	// 检查清除标记后缓存失效
	_, err = f.checker.Check(context.Background(), 2)
	require.NoError(t, err)
	third, err := f.reports.Build(context.Background())
	require.NoError(t, err)
	assert.Empty(t, third.MissingWeight)
	assert.Equal(t, 2, f.cache.sets)
}

func TestReportBuildCacheFailure(t *testing.T) {
	f := newFixture(problemCatalog()...)
	f.cache.err = errStore

	report, err := f.reports.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.Total())
}

func TestCSVExport(t *testing.T) {
	f := newFixture(problemCatalog()...)

	var buf bytes.Buffer
	n, err := f.exporter.Export(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	out := buf.String()
	require.True(t, strings.HasPrefix(out, utf8BOM))

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, utf8BOM)))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{
		"2", "alpha", "", "Published", "", "10,00", "10,00", "10,00", "No weight",
		"https://shop.example.com/wp-admin/post.php?post=2&action=edit",
	}, records[1])
	assert.Equal(t, "BT-3", records[2][2])
	assert.Equal(t, "25,000", records[2][4])
	assert.Equal(t, "Draft", records[3][3])
	assert.Equal(t, "No dimensions", records[3][8])
}

func TestCSVExportEmpty(t *testing.T) {
	f := newFixture(okProduct(1, "Ok"))

	var buf bytes.Buffer
	n, err := f.exporter.Export(context.Background(), &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, utf8BOM+strings.Join(csvHeader, ";")+"\n", buf.String())
}
