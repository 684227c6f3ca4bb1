package account

import (
	"context"
	"fmt"
	"testing"

	"github.com/heimu09/ApartXCleaning/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) UpdateRole(ctx context.Context, userID, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}

type mockTokenIssuer struct{ mock.Mock }

func (m *mockTokenIssuer) Issue(ctx context.Context, ident domain.Identity) (domain.TokenPair, error) {
	args := m.Called(ctx, ident)
	pair, _ := args.Get(0).(domain.TokenPair)
	return pair, args.Error(1)
}

func newSvc() (Service, *mockUserStore, *mockTokenIssuer) {
	users := &mockUserStore{}
	tokens := &mockTokenIssuer{}
	return NewService(ServiceDeps{Users: users, Tokens: tokens}), users, tokens
}

var caller = domain.Identity{UserID: "u1"}

func TestProfile(t *testing.T) {
	svc, users, _ := newSvc()
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Email: "ann@example.com"}, nil)

	u, err := svc.Profile(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
}

func TestProfile_Unknown(t *testing.T) {
	svc, users, _ := newSvc()
	users.On("Get", mock.Anything, "u1").Return(nil, fmt.Errorf("user u1: %w", domain.ErrNotFound))

	_, err := svc.Profile(context.Background(), caller)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestProfile_NoIdentity(t *testing.T) {
	svc, users, _ := newSvc()
	_, err := svc.Profile(context.Background(), domain.Identity{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	users.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSelectRole_IssuesPairWithRole(t *testing.T) {
	svc, users, tokens := newSvc()
	users.On("UpdateRole", mock.Anything, "u1", domain.RoleExecutor).Return(nil)
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Role: domain.RoleExecutor}, nil)
	tokens.On("Issue", mock.Anything, domain.Identity{UserID: "u1", Role: domain.RoleExecutor}).
		Return(domain.TokenPair{Access: "a", Refresh: "r"}, nil)

	res, err := svc.SelectRole(context.Background(), caller, domain.RoleExecutor)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleExecutor, res.User.Role)
	assert.Equal(t, "a", res.Tokens.Access)
	tokens.AssertExpectations(t)
}

func TestSelectRole_RejectsUnknownRole(t *testing.T) {
	svc, users, _ := newSvc()
	for _, role := range []string{"", "admin", "Customer"} {
		_, err := svc.SelectRole(context.Background(), caller, role)
		assert.ErrorIs(t, err, domain.ErrValidation, role)
	}
	users.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestSelectRole_AlreadySelected(t *testing.T) {
	svc, users, tokens := newSvc()
	users.On("UpdateRole", mock.Anything, "u1", domain.RoleCustomer).
		Return(fmt.Errorf("role already selected: %w", domain.ErrConflict))

	_, err := svc.SelectRole(context.Background(), caller, domain.RoleCustomer)
	assert.ErrorIs(t, err, domain.ErrConflict)
	tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestSelectRole_UnknownUser(t *testing.T) {
	svc, users, _ := newSvc()
	users.On("UpdateRole", mock.Anything, "u1", domain.RoleCustomer).Return(domain.ErrNotFound)

	_, err := svc.SelectRole(context.Background(), caller, domain.RoleCustomer)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
