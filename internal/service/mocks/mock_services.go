package mocks

import (
	"context"

	"expense-tracker/internal/models"
	"expense-tracker/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) Extract(ctx context.Context, doc models.UploadedDocument) (*models.ExtractionResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExtractionResult), args.Error(1)
}

func (m *MockReceiptService) Commit(ctx context.Context, userID uuid.UUID, input service.ReceiptExpenseInput) (*models.Expense, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) List(ctx context.Context, userID uuid.UUID) ([]*models.Expense, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Expense), args.Error(1)
}

func (m *MockExpenseService) Add(ctx context.Context, userID uuid.UUID, input service.ManualExpenseInput) (*models.Expense, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

func (m *MockExpenseService) ExportXLSX(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
