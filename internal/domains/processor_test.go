package domains

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/bitleak/lmstfy/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weightguard/internal/domains/common"
	"weightguard/internal/domains/common/job"
	"weightguard/internal/model"
	"weightguard/pkg/lmstfyx"
	"weightguard/pkg/logger"
)

type stubChecker struct {
	err     error
	checked []int64
}

func (s *stubChecker) Check(_ context.Context, id int64) (*model.CheckResult, error) {
	s.checked = append(s.checked, id)
	if s.err != nil {
		return nil, s.err
	}
	return &model.CheckResult{ProductID: id}, nil
}

type stubReanalyzer struct{}

func (stubReanalyzer) Run(context.Context) (*model.ReanalysisResult, error) {
	panic("boom")
}

type stubDigest struct{ freq model.Frequency }

func (s *stubDigest) Send(_ context.Context, f model.Frequency) (*model.DigestResult, error) {
	s.freq = f
	return &model.DigestResult{Sent: true}, nil
}

func encode(t *testing.T, action string, data interface{}) *client.Job {
	t.Helper()
	raw, err := json.Marshal(job.New(action, "1", data))
	require.NoError(t, err)
	return &client.Job{ID: "job-1", Queue: "q", Data: raw}
}

func TestGetProcess(t *testing.T) {
	checker := &stubChecker{}
	digest := &stubDigest{}
	proc := GetProcess(logger.NewNop(), &common.Services{
		Checker:    checker,
		Reanalysis: stubReanalyzer{},
		Digest:     digest,
	})
	ctx := context.Background()

	resp := proc(ctx, encode(t, model.ActionProductCheck, model.ProductCheckData{ProductID: 42}))
	assert.Equal(t, lmstfyx.JobRespStatusSuccess, resp.Action)
	assert.Equal(t, []int64{42}, checker.checked)

	resp = proc(ctx, encode(t, model.ActionDigestEmail, model.DigestEmailData{Frequency: model.FrequencyWeekly}))
	assert.Equal(t, lmstfyx.JobRespStatusSuccess, resp.Action)
	assert.Equal(t, model.FrequencyWeekly, digest.freq)

	// panic 被捕获
	resp = proc(ctx, encode(t, model.ActionCatalogReanalyze, nil))
	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
}

func TestGetProcessErrorRouting(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want lmstfyx.JobRespStatus
	}{
		{"not found buried", fmt.Errorf("%w: 9", model.ErrProductNotFound), lmstfyx.JobRespStatusBury},
		{"db error released", errors.New("connection refused"), lmstfyx.JobRespStatusRelease},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := GetProcess(logger.NewNop(), &common.Services{Checker: &stubChecker{err: tt.err}})
			resp := proc(context.Background(), encode(t, model.ActionProductCheck, model.ProductCheckData{ProductID: 9}))
			assert.Equal(t, tt.want, resp.Action)
		})
	}
}

func TestGetProcessInvalidJobs(t *testing.T) {
	proc := GetProcess(logger.NewNop(), &common.Services{Checker: &stubChecker{}})
	ctx := context.Background()

	resp := proc(ctx, &client.Job{ID: "x", Data: []byte("{not json")})
	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)

	resp = proc(ctx, &client.Job{ID: "x", Data: []byte(`{"payload":null}`)})
	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)

	resp = proc(ctx, encode(t, "order_diagnose", nil))
	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)

	resp = proc(ctx, encode(t, model.ActionProductCheck, model.ProductCheckData{}))
	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
}
