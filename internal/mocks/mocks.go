// Package mocks holds testify mocks for the domain ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bryanwahyu/resume-analyzer/internal/domain/analysis"
)

type MockAIClient struct {
	mock.Mock
}

func (m *MockAIClient) Analyze(ctx context.Context, resumeText, jobDescription string) (string, error) {
	args := m.Called(ctx, resumeText, jobDescription)
	return args.String(0), args.Error(1)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, r *analysis.Record) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRepository) Recent(ctx context.Context, limit int) ([]analysis.Record, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]analysis.Record)
	return list, args.Error(1)
}

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

type MockOutcomeRecorder struct {
	mock.Mock
}

func (m *MockOutcomeRecorder) AnalysisOutcome(outcome string) {
	m.Called(outcome)
}
