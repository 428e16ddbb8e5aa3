package service

import (
	"context"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/interfaces"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"

	"github.com/stretchr/testify/mock"
)

type mockFetcher struct{ mock.Mock }

func (m *mockFetcher) FetchEvent(ctx context.Context, eventID uint64) (*model.EventData, error) {
	args := m.Called(ctx, eventID)
	data, _ := args.Get(0).(*model.EventData)
	return data, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, email interfaces.Email) error {
	return m.Called(ctx, email).Error(0)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) DisplayName(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}
