package testutil

import (
	"context"

	"certivault/internal/cvault"
	"certivault/internal/model"
)

// StubExtractor returns a canned extraction result, or a fixed error.
type StubExtractor struct {
	Result *cvault.Extraction
	Err    error
	Calls  int
}

func (e *StubExtractor) Extract(context.Context, []byte, string) (*cvault.Extraction, error) {
	e.Calls++
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Result, nil
}

// StubRenderer returns fixed document bytes, or a fixed error.
type StubRenderer struct {
	Output []byte
	Err    error
}

func (r *StubRenderer) Render([]*model.Certificate) ([]byte, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Output, nil
}
