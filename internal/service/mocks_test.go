package service_test

import (
	"context"
	"time"

	"company-invites/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) ResolveCaller(ctx context.Context, token string) (*domain.Caller, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Caller), args.Error(1)
}

func (m *MockIdentityProvider) CreateAccount(ctx context.Context, req domain.AccountRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, to, subject, html string) (*domain.DeliveryStatus, error) {
	args := m.Called(ctx, to, subject, html)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeliveryStatus), args.Error(1)
}

type MockComposer struct {
	mock.Mock
}

func (m *MockComposer) Compose(item domain.ProvisioningOutcome) (string, string, error) {
	args := m.Called(item)
	return args.String(0), args.String(1), args.Error(2)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) UpsertProfile(ctx context.Context, id, email string) error {
	args := m.Called(ctx, id, email)
	return args.Error(0)
}

func (m *MockUserRepo) AssignCompany(ctx context.Context, userID, companyID string) ([]string, error) {
	args := m.Called(ctx, userID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockInviteAuditRepo struct {
	mock.Mock
}

func (m *MockInviteAuditRepo) CreateBatch(ctx context.Context, entries []domain.InviteAuditEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockInviteAuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

var okStatus = &domain.DeliveryStatus{StatusCode: 202, Status: "Accepted"}
