package events

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPublisher is a mock implementation of Publisher using testify/mock.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, ev Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
