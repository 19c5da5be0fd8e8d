// Package store holds the persistence media the tracker writes its collection
// to, and the codec for the serialized collection.
package store

import "context"

// Medium is a string-keyed get/set store. A missing key is reported with
// ok == false and a nil error.
type Medium interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Memory is an in-process Medium. It is not safe for concurrent use.
type Memory struct {
	values map[string]string
}

// NewMemory returns an empty Memory medium
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}
