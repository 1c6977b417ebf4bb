package question

import "context"

type ListOpts struct {
	Category   string
	Difficulty string
	Type       string
	Page       int
	Limit      int
}

type RandomOpts struct {
	Category   string
	Difficulty string
	Type       string
	Count      int
}

type Store interface {
	Create(ctx context.Context, d Draft) (Question, error)
	Get(ctx context.Context, id int64) (Question, error)
	List(ctx context.Context, opts ListOpts) ([]Question, int, error)
	Random(ctx context.Context, opts RandomOpts) ([]Question, error)
	Update(ctx context.Context, id int64, p Patch) (Question, error)
	Delete(ctx context.Context, id int64) error
}
