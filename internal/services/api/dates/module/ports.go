package module

import (
	"context"

	"datemerge/internal/services/api/dates/domain"
	datessvc "datemerge/internal/services/api/dates/service"
)

// adaptDatesPort exposes the service to other modules
type adaptDatesPort struct{ svc datessvc.Service }

var _ domain.ServicePort = adaptDatesPort{}

func (a adaptDatesPort) Parse(ctx context.Context, in domain.ParseInput) ([]domain.FragmentDTO, error) {
	return a.svc.Parse(ctx, in)
}

func (a adaptDatesPort) Recognize(ctx context.Context, in domain.RecognizeInput) ([]domain.DescriptorDTO, error) {
	return a.svc.Recognize(ctx, in)
}

func (a adaptDatesPort) Evaluate(ctx context.Context, in domain.EvaluateInput) (domain.EvaluateOutput, error) {
	return a.svc.Evaluate(ctx, in)
}

// Merge resolves one merge request
func (a adaptDatesPort) Merge(ctx context.Context, in domain.MergeInput) (domain.MergeOutput, error) {
	return a.svc.Merge(ctx, in)
}

func (a adaptDatesPort) MergeBatch(ctx context.Context, in domain.BatchInput) (domain.BatchOutput, error) {
	return a.svc.MergeBatch(ctx, in)
}

func (a adaptDatesPort) Log(ctx context.Context, limit int) ([]domain.LogRow, error) {
	return a.svc.Log(ctx, limit)
}

func (a adaptDatesPort) Branches(ctx context.Context, days int) ([]domain.BranchRow, error) {
	return a.svc.Branches(ctx, days)
}

// Engine reports the loaded rule pack
func (a adaptDatesPort) Engine(ctx context.Context) domain.EngineInfo { return a.svc.Engine(ctx) }
