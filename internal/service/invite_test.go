package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"company-invites/internal/domain"
	"company-invites/internal/repository"
	"company-invites/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var passwordPattern = regexp.MustCompile(`^[A-Za-z0-9]{13}$`)

type inviteFixture struct {
	idp      *MockIdentityProvider
	users    *MockUserRepo
	audit    *MockInviteAuditRepo
	sender   *MockEmailSender
	composer *MockComposer
	svc      service.InviteService
}

func newInviteFixture(withAudit bool) *inviteFixture {
	f := &inviteFixture{
		idp:      new(MockIdentityProvider),
		users:    new(MockUserRepo),
		sender:   new(MockEmailSender),
		composer: new(MockComposer),
	}
	var audit repository.InviteAuditRepository
	if withAudit {
		f.audit = new(MockInviteAuditRepo)
		audit = f.audit
	}
	f.svc = service.NewInviteService(f.idp, f.users, audit, f.sender, f.composer, nil, service.InviteOptions{PasswordLength: 13})
	return f
}

var caller = &domain.Caller{ID: "caller-1", Email: "boss@x.com", CompanyID: "co-1"}

func TestInviteService_ResolveCaller(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing token", func(t *testing.T) {
		f := newInviteFixture(false)
		_, err := f.svc.ResolveCaller(ctx, "")
		assert.ErrorIs(t, err, service.ErrUnknownCaller)
		f.idp.AssertNotCalled(t, "ResolveCaller", mock.Anything, mock.Anything)
	})

	t.Run("Rejected token", func(t *testing.T) {
		f := newInviteFixture(false)
		f.idp.On("ResolveCaller", ctx, "bad").Return(nil, errors.New("signature invalid"))
		_, err := f.svc.ResolveCaller(ctx, "bad")
		assert.ErrorIs(t, err, service.ErrUnknownCaller)
	})

	t.Run("Record lookup fails", func(t *testing.T) {
		f := newInviteFixture(false)
		f.idp.On("ResolveCaller", ctx, "tok").Return(&domain.Caller{ID: "caller-1"}, nil)
		f.users.On("GetByID", ctx, "caller-1").Return(nil, repository.ErrNotFound)
		_, err := f.svc.ResolveCaller(ctx, "tok")
		assert.ErrorIs(t, err, service.ErrCallerLookup)
	})

	t.Run("No company", func(t *testing.T) {
		f := newInviteFixture(false)
		f.idp.On("ResolveCaller", ctx, "tok").Return(&domain.Caller{ID: "caller-1"}, nil)
		f.users.On("GetByID", ctx, "caller-1").Return(&domain.User{ID: "caller-1", Email: "boss@x.com"}, nil)
		_, err := f.svc.ResolveCaller(ctx, "tok")
		assert.ErrorIs(t, err, service.ErrNoCompany)
	})

	t.Run("Resolved", func(t *testing.T) {
		f := newInviteFixture(false)
		f.idp.On("ResolveCaller", ctx, "tok").Return(&domain.Caller{ID: "caller-1"}, nil)
		f.users.On("GetByID", ctx, "caller-1").Return(&domain.User{ID: "caller-1", Email: "boss@x.com", CompanyID: "co-1"}, nil)
		c, err := f.svc.ResolveCaller(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "co-1", c.CompanyID)
		assert.Equal(t, "boss@x.com", c.Email)
	})
}

func TestInviteService_InviteUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("All stages succeed", func(t *testing.T) {
		f := newInviteFixture(false)
		f.idp.On("CreateAccount", mock.Anything, mock.MatchedBy(func(r domain.AccountRequest) bool {
			return r.Email == "a@x.com" && r.CompanyID == "co-1" && passwordPattern.MatchString(r.Password)
		})).Return("uid-a", nil).Once()
		f.composer.On("Compose", mock.Anything).Return("Invite", "<p/>", nil)
		f.sender.On("Send", mock.Anything, "a@x.com", "Invite", "<p/>").Return(okStatus, nil).Once()
		f.users.On("AssignCompany", mock.Anything, "uid-a", "co-1").Return([]string{"co-1"}, nil).Once()

		out, err := f.svc.InviteUsers(ctx, caller, []string{"a@x.com"}, "")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "a@x.com", out[0].Email)
		assert.Regexp(t, passwordPattern, out[0].Password)
		assert.True(t, out[0].CreationSuccess)
		assert.True(t, out[0].EmailSuccess)
		assert.True(t, out[0].CompanyConnected)
		f.idp.AssertExpectations(t)
		f.sender.AssertExpectations(t)
		f.users.AssertExpectations(t)
	})

	t.Run("Creation rejected", func(t *testing.T) {
		f := newInviteFixture(false)
		f.idp.On("CreateAccount", mock.Anything, mock.Anything).Return("", errors.New("email exists"))

		out, err := f.svc.InviteUsers(ctx, caller, []string{"b@x.com"}, "")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.False(t, out[0].CreationSuccess)
		assert.False(t, out[0].EmailSuccess)
		assert.False(t, out[0].CompanyConnected)
		f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.users.AssertNotCalled(t, "AssignCompany", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Second email fails independently", func(t *testing.T) {
		f := newInviteFixture(false)
		f.idp.On("CreateAccount", mock.Anything, mock.Anything).Return("uid-1", nil)
		f.composer.On("Compose", mock.Anything).Return("Invite", "<p/>", nil)
		f.sender.On("Send", mock.Anything, "c@x.com", mock.Anything, mock.Anything).Return(okStatus, nil)
		f.sender.On("Send", mock.Anything, "d@x.com", mock.Anything, mock.Anything).
			Return(&domain.DeliveryStatus{StatusCode: 500, Status: "Internal Server Error"}, nil)
		f.users.On("AssignCompany", mock.Anything, mock.Anything, "co-1").Return([]string{"co-1"}, nil)

		out, err := f.svc.InviteUsers(ctx, caller, []string{"c@x.com", "d@x.com"}, "")
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "c@x.com", out[0].Email)
		assert.True(t, out[0].EmailSuccess)
		assert.Equal(t, "d@x.com", out[1].Email)
		assert.False(t, out[1].EmailSuccess)
		assert.True(t, out[1].CompanyConnected)
		assert.NotEqual(t, out[0].Password, out[1].Password)
	})

	t.Run("Empty list", func(t *testing.T) {
		f := newInviteFixture(true)
		out, err := f.svc.InviteUsers(ctx, caller, []string{}, "")
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
		f.idp.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
		f.audit.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("Missing emails runs no stage", func(t *testing.T) {
		f := newInviteFixture(false)
		_, err := f.svc.InviteUsers(ctx, caller, nil, "")
		assert.ErrorIs(t, err, service.ErrEmailsRequired)
		f.idp.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
	})

	t.Run("Invalid invite url runs no stage", func(t *testing.T) {
		f := newInviteFixture(false)
		_, err := f.svc.InviteUsers(ctx, caller, []string{"a@x.com"}, "not-a-url")
		assert.ErrorIs(t, err, service.ErrURLRequired)
		f.idp.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
	})

	t.Run("Invite link carries the generated password", func(t *testing.T) {
		f := newInviteFixture(false)
		f.idp.On("CreateAccount", mock.Anything, mock.Anything).Return("uid-1", nil)
		f.composer.On("Compose", mock.MatchedBy(func(o domain.ProvisioningOutcome) bool {
			return o.InviteURL != ""
		})).Return("Invite", "<p/>", nil)
		f.sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(okStatus, nil)
		f.users.On("AssignCompany", mock.Anything, mock.Anything, mock.Anything).Return([]string{"co-1"}, nil)

		out, err := f.svc.InviteUsers(ctx, caller, []string{"a@x.com"}, "https://app.example.com/invite")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "https://app.example.com/invite?email=a%40x.com&password="+out[0].Password, out[0].InviteURL)
	})

	t.Run("Audit failure leaves the response intact", func(t *testing.T) {
		f := newInviteFixture(true)
		f.idp.On("CreateAccount", mock.Anything, mock.Anything).Return("uid-1", nil)
		f.composer.On("Compose", mock.Anything).Return("Invite", "<p/>", nil)
		f.sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(okStatus, nil)
		f.users.On("AssignCompany", mock.Anything, mock.Anything, mock.Anything).Return([]string{"co-1"}, nil)
		f.audit.On("CreateBatch", mock.Anything, mock.MatchedBy(func(entries []domain.InviteAuditEntry) bool {
			return len(entries) == 1 && entries[0].Email == "a@x.com" && entries[0].InvitedBy == "caller-1" &&
				entries[0].CompanyID == "co-1" && entries[0].BatchID != "" && entries[0].CompanyConnected
		})).Return(errors.New("audit table missing")).Once()

		out, err := f.svc.InviteUsers(ctx, caller, []string{"a@x.com"}, "")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.True(t, out[0].CompanyConnected)
		f.audit.AssertExpectations(t)
	})

	t.Run("Cancelled request still settles", func(t *testing.T) {
		f := newInviteFixture(false)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		f.idp.On("CreateAccount", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).Return("uid-1", nil)
		f.composer.On("Compose", mock.Anything).Return("Invite", "<p/>", nil)
		f.sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(okStatus, nil)
		f.users.On("AssignCompany", mock.Anything, mock.Anything, mock.Anything).Return([]string{"co-1"}, nil)

		out, err := f.svc.InviteUsers(cctx, caller, []string{"a@x.com"}, "")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.True(t, out[0].CompanyConnected)
	})
}
