package helix

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// MockQuerier is a mock implementation of Querier using testify/mock.
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) Query(ctx context.Context, name string, params map[string]any) (json.RawMessage, error) {
	args := m.Called(ctx, name, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
