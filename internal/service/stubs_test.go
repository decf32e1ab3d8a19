package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/menuwise/backend/internal/ai"
	"github.com/pageza/menuwise/backend/internal/types"
)

// stubCompleter returns a canned completion and records the request.
type stubCompleter struct {
	content string
	err     error
	panics  bool
	calls   int
	last    ai.ChatRequest
}

func (s *stubCompleter) Complete(_ context.Context, req ai.ChatRequest) (string, error) {
	s.calls++
	s.last = req
	if s.panics {
		panic("completer exploded")
	}
	return s.content, s.err
}

type mockAggregator struct{ mock.Mock }

func (m *mockAggregator) GetPreferences(ctx context.Context, email string) (*types.PreferenceDocument, error) {
	args := m.Called(ctx, email)
	if doc := args.Get(0); doc != nil {
		return doc.(*types.PreferenceDocument), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) ExtractMenu(ctx context.Context, image []byte) types.AIResult {
	return m.Called(ctx, image).Get(0).(types.AIResult)
}

type mockClassifier struct{ mock.Mock }

func (m *mockClassifier) Classify(ctx context.Context, menu string, prefs types.ClassificationPreferences) types.AIResult {
	return m.Called(ctx, menu, prefs).Get(0).(types.AIResult)
}

type mockArchiver struct{ mock.Mock }

func (m *mockArchiver) Archive(ctx context.Context, identity *types.Identity, image []byte) (string, error) {
	args := m.Called(ctx, identity, image)
	return args.String(0), args.Error(1)
}
