// Package storage loads static documents, such as the fallback recipe catalog,
// from local files or S3.
package storage

import (
	"context"
	"errors"
)

// State is a read-only document source.
type State interface {
	Load(ctx context.Context) ([]byte, error)
}

// StaticState is an in-memory State for tests.
type StaticState struct {
	data []byte
	err  error
}

func NewStaticState(data []byte) *StaticState {
	return &StaticState{data: data}
}

func NewStaticStateWithError() *StaticState {
	return &StaticState{err: errors.New("not found")}
}

func (s *StaticState) Load(ctx context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}
