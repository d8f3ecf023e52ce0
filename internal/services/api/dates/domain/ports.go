package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Parse(ctx context.Context, in ParseInput) ([]FragmentDTO, error)
	Recognize(ctx context.Context, in RecognizeInput) ([]DescriptorDTO, error)
	Evaluate(ctx context.Context, in EvaluateInput) (EvaluateOutput, error)
	Merge(ctx context.Context, in MergeInput) (MergeOutput, error)
	MergeBatch(ctx context.Context, in BatchInput) (BatchOutput, error)
	Log(ctx context.Context, limit int) ([]LogRow, error)
	Branches(ctx context.Context, days int) ([]BranchRow, error)
	Engine(ctx context.Context) EngineInfo
}
