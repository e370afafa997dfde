package chat

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAnswerer mocks the Answerer interface
type MockAnswerer struct {
	mock.Mock
}

func (m *MockAnswerer) Ask(ctx context.Context, query string) (string, error) {
	args := m.Called(ctx, query)
	return args.String(0), args.Error(1)
}

// blockingAnswerer holds the answer until release is closed, to model
// a turn that is still awaiting the answering service.
type blockingAnswerer struct {
	release chan struct{}
	answer  string
	err     error
}

func newBlockingAnswerer(answer string) *blockingAnswerer {
	return &blockingAnswerer{release: make(chan struct{}), answer: answer}
}

func (b *blockingAnswerer) Ask(ctx context.Context, query string) (string, error) {
	<-b.release
	return b.answer, b.err
}
