package business

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weightguard/internal/model"
)

var (
	t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
)

func TestReconcile_AboveMaxSetsFlag(t *testing.T) {
	v := CheckWeight(&model.Product{Weight: "25"}, model.DefaultThresholds())

	next, changed, event := Reconcile(model.GroupFlags{}, v, t0)

	assert.True(t, changed)
	assert.False(t, next.IsMissing())
	require.True(t, next.IsOutOfRange())
	assert.Equal(t, 25.0, next.OutOfRange[model.AttrWeight])
	assert.Equal(t, t0, *next.OutOfRangeSince)
	require.NotNil(t, event)
	assert.Equal(t, model.AlertKindOutOfRange, event.Kind)
	assert.Equal(t, model.GroupWeight, event.Group)
}

func TestReconcile_MissingClearsOutOfRange(t *testing.T) {
	since := t0
	prior := model.GroupFlags{
		OutOfRange:      map[model.Attribute]float64{model.AttrWeight: 25},
		OutOfRangeSince: &since,
	}
	v := CheckWeight(&model.Product{Weight: ""}, model.DefaultThresholds())

	next, changed, event := Reconcile(prior, v, t1)

	assert.True(t, changed)
	require.True(t, next.IsMissing())
	assert.Equal(t, t1, *next.MissingSince)
	assert.False(t, next.IsOutOfRange())
	assert.Nil(t, next.OutOfRange)
	require.NotNil(t, event)
	assert.Equal(t, model.AlertKindMissing, event.Kind)
}

func TestReconcile_InRangeClearsBoth(t *testing.T) {
	since := t0
	prior := model.GroupFlags{MissingSince: &since}
	v := CheckWeight(&model.Product{Weight: "1"}, model.DefaultThresholds())

	next, changed, event := Reconcile(prior, v, t1)

	assert.True(t, changed)
	assert.True(t, next.IsClean())
	assert.Nil(t, event)

	_, changed, event = Reconcile(next, v, t1)
	assert.False(t, changed)
	assert.Nil(t, event)
}

func TestReconcile_Idempotent(t *testing.T) {
	th := model.DefaultThresholds()
	products := []*model.Product{
		{Weight: "25"},
		{Weight: ""},
		{Weight: "1"},
		{Width: "200", Length: "300"},
		{},
	}

	for _, p := range products {
		for _, v := range Check(p, th) {
			first, _, _ := Reconcile(model.GroupFlags{}, v, t0)
			second, changed, event := Reconcile(first, v, t1)

			assert.False(t, changed, "product %+v group %s", p, v.Group)
			assert.Nil(t, event)
			assert.Equal(t, first, second)
		}
	}
}

func TestReconcile_ValueChangeWithinTolerance(t *testing.T) {
	th := model.DefaultThresholds()
	first, _, _ := Reconcile(model.GroupFlags{}, CheckWeight(&model.Product{Weight: "25"}, th), t0)

	_, changed, _ := Reconcile(first, CheckWeight(&model.Product{Weight: "25.00001"}, th), t1)
	assert.False(t, changed)

	next, changed, event := Reconcile(first, CheckWeight(&model.Product{Weight: "26"}, th), t1)
	assert.True(t, changed)
	require.NotNil(t, event)
	assert.Equal(t, 26.0, next.OutOfRange[model.AttrWeight])
	assert.Equal(t, t1, *next.OutOfRangeSince)
}

func TestReconcileProduct(t *testing.T) {
	th := model.DefaultThresholds()
	p := &model.Product{ID: 42, Title: "Caixa", SKU: "CX-1", Weight: "25"}

	status, changed, events := ReconcileProduct(nil, p, th, t0)

	assert.True(t, changed)
	assert.Equal(t, int64(42), status.ProductID)
	assert.True(t, status.Weight.IsOutOfRange())
	assert.True(t, status.Dimensions.IsMissing())
	require.Len(t, events, 2)
	for _, e := range events {
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, int64(42), e.ProductID)
		assert.Equal(t, "Caixa", e.ProductTitle)
	}
	assert.Equal(t, th.Weight, events[0].Bounds[model.AttrWeight])
	assert.Len(t, events[1].Bounds, 3)

	again, changed, events := ReconcileProduct(&status, p, th, t1)
	assert.False(t, changed)
	assert.Empty(t, events)
	assert.Equal(t, status, again)
}

func TestReconcileProduct_FixedProductBecomesClean(t *testing.T) {
	th := model.DefaultThresholds()
	p := &model.Product{ID: 7, Weight: ""}
	status, _, _ := ReconcileProduct(nil, p, th, t0)

	p.Weight, p.Width, p.Height, p.Length = "2", "10", "10", "10"
	next, changed, events := ReconcileProduct(&status, p, th, t1)

	assert.True(t, changed)
	assert.True(t, next.IsClean())
	assert.Empty(t, events)
	assert.Equal(t, t1, next.UpdatedAt)
}
