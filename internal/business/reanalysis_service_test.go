package business

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weightguard/internal/model"
)

func TestReanalysis_CountsChangedProducts(t *testing.T) {
	missing := model.Product{ID: 2, Title: "Sem peso", Width: "10", Height: "10", Length: "10"}
	f := newFixture(okProduct(1, "Ok"), missing, okProduct(3, "Corrigido"))

	since := t0
	f.statuses.statuses[3] = model.ProductStatus{ProductID: 3, Weight: model.GroupFlags{MissingSince: &since}}

	result, err := f.reanalysis.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &model.ReanalysisResult{Processed: 3, Changed: 2, Events: 1}, result)

	events := f.notifier.published()
	require.Len(t, events, 1)
	assert.Equal(t, int64(2), events[0].ProductID)
	assert.Equal(t, model.AlertKindMissing, events[0].Kind)

	list, err := f.statuses.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].ProductID)
	assert.Equal(t, 1, f.cache.invalidations)

	// 第二次运行无变化
	again, err := f.reanalysis.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Changed)
	assert.Equal(t, 0, again.Events)
	assert.Equal(t, 1, f.cache.invalidations)
}

func TestReanalysis_EmptyCatalog(t *testing.T) {
	f := newFixture()

	result, err := f.reanalysis.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Empty(t, f.notifier.published())
}

func TestReanalysis_SettingsError(t *testing.T) {
	f := newFixture(okProduct(1, "Ok"))
	f.options.err = errStore

	_, err := f.reanalysis.Run(context.Background())
	assert.ErrorIs(t, err, errStore)
}
