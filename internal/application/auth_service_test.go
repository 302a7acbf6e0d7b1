package application

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/interviewhub/interviewhub-api/internal/domain/entity"
	"github.com/interviewhub/interviewhub-api/internal/infrastructure/postgres"
	"github.com/interviewhub/interviewhub-api/pkg/helpers"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, a *entity.Account) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*entity.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	args := m.Called(ctx, email)
	if a := args.Get(0); a != nil {
		return a.(*entity.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	args := m.Called(ctx, email, passwordHash)
	return args.Error(0)
}

func (m *mockRepo) MarkEmailVerified(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendVerificationMail(ctx context.Context, to, token, displayName string, meta MailMeta) error {
	args := m.Called(ctx, to, token, displayName, meta)
	return args.Error(0)
}

func (m *mockNotifier) SendPasswordResetMail(ctx context.Context, to, token, displayName string, meta MailMeta) error {
	args := m.Called(ctx, to, token, displayName, meta)
	return args.Error(0)
}

func newTestService(repo *mockRepo, notifier *mockNotifier) *AuthService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewAuthService(
		repo,
		helpers.NewTokenCodec("test-secret", time.Hour, 30*time.Minute, 10*time.Minute),
		helpers.NewPasswordHasher(bcrypt.MinCost),
		notifier,
		NewSearchService(nil, "", logger), // disabled
		logger,
	)
}

func mustHash(t *testing.T, s *AuthService, plain string) string {
	t.Helper()
	h, err := s.Hasher.Hash(plain)
	require.NoError(t, err)
	return h
}

func verifiedAccount(t *testing.T, s *AuthService, isAdmin bool) *entity.Account {
	t.Helper()
	return &entity.Account{
		ID:              "acc-1",
		Username:        "dana",
		Email:           "dana@example.com",
		PasswordHash:    mustHash(t, s, "correct-horse"),
		IsAdmin:         isAdmin,
		IsEmailVerified: true,
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})
	acc := verifiedAccount(t, svc, false)

	repo.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil)

	got, sess, err := svc.Login(context.Background(), acc.Email, "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)
	assert.NotEmpty(t, sess.Token)
	assert.True(t, sess.ExpiresAt.After(time.Now()))

	claims, err := svc.Tokens.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, claims.UserID)
	assert.False(t, claims.IsAdmin)
}

func TestLoginAdminClaimCarriesRole(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})
	acc := verifiedAccount(t, svc, true)

	repo.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil)

	_, sess, err := svc.Login(context.Background(), acc.Email, "correct-horse")
	require.NoError(t, err)

	claims, err := svc.Tokens.Verify(sess.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestLoginFailuresCollapseIntoOneError(t *testing.T) {
	// Missing input, unknown email, and wrong password must be
	// indistinguishable to the caller.
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})
	acc := verifiedAccount(t, svc, false)

	repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, postgres.ErrNotFound)
	repo.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil)

	cases := []struct {
		name            string
		email, password string
	}{
		{"empty email", "", "correct-horse"},
		{"empty password", acc.Email, ""},
		{"unknown email", "nobody@example.com", "correct-horse"},
		{"wrong password", acc.Email, "battery-staple"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tc.email, tc.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestLoginUnverifiedEmail(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})
	acc := verifiedAccount(t, svc, false)
	acc.IsEmailVerified = false

	repo.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil)

	_, _, err := svc.Login(context.Background(), acc.Email, "correct-horse")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestRegisterNewAccount(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier)

	repo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, postgres.ErrNotFound)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(a *entity.Account) bool {
		return a.Email == "new@example.com" && !a.IsAdmin && !a.IsEmailVerified && a.PasswordHash != "pass1234"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Account).ID = "acc-new"
	}).Return(nil)
	notifier.On("SendVerificationMail", mock.Anything, "new@example.com", mock.AnythingOfType("string"), "newbie", MailMeta{}).Return(nil)

	a, err := svc.Register(context.Background(), RegisterInput{
		Username: "newbie",
		Email:    "new@example.com",
		Password: "pass1234",
		Branch:   "CSE",
	}, MailMeta{})
	require.NoError(t, err)
	assert.Equal(t, "acc-new", a.ID)
	assert.False(t, a.IsEmailVerified)

	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestRegisterVerifiedDuplicate(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})
	acc := verifiedAccount(t, svc, false)

	repo.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "dana2",
		Email:    acc.Email,
		Password: "pass1234",
	}, MailMeta{})
	assert.ErrorIs(t, err, ErrEmailTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterUnverifiedDuplicateReplacesStale(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier)
	stale := verifiedAccount(t, svc, false)
	stale.IsEmailVerified = false

	repo.On("FindByEmail", mock.Anything, stale.Email).Return(stale, nil)
	repo.On("Delete", mock.Anything, stale.ID).Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	notifier.On("SendVerificationMail", mock.Anything, stale.Email, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "dana",
		Email:    stale.Email,
		Password: "fresh-password",
	}, MailMeta{})
	require.NoError(t, err)
	repo.AssertCalled(t, "Delete", mock.Anything, stale.ID)
}

func TestRegisterDispatchFailureSurfaces(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier)

	repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, postgres.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	notifier.On("SendVerificationMail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "newbie",
		Email:    "new@example.com",
		Password: "pass1234",
	}, MailMeta{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailTaken)
}

func TestForgotPasswordDispatches(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier)
	acc := verifiedAccount(t, svc, false)

	repo.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil)
	notifier.On("SendPasswordResetMail", mock.Anything, acc.Email, mock.AnythingOfType("string"), acc.Username, mock.Anything).Return(nil)

	err := svc.ForgotPassword(context.Background(), acc.Email, MailMeta{IP: "1.2.3.4"})
	require.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})

	repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, postgres.ErrNotFound)

	err := svc.ForgotPassword(context.Background(), "nobody@example.com", MailMeta{})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestForgotPasswordUnverified(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})
	acc := verifiedAccount(t, svc, false)
	acc.IsEmailVerified = false

	repo.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil)

	err := svc.ForgotPassword(context.Background(), acc.Email, MailMeta{})
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestForgotPasswordDispatchFailureHidden(t *testing.T) {
	// A queue outage must not tell the caller anything about delivery.
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier)
	acc := verifiedAccount(t, svc, false)

	repo.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil)
	notifier.On("SendPasswordResetMail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	err := svc.ForgotPassword(context.Background(), acc.Email, MailMeta{})
	assert.NoError(t, err)
}

func TestResetPasswordFlow(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})
	acc := verifiedAccount(t, svc, false)

	tok, _, err := svc.Tokens.Issue(helpers.TokenKindResetPassword, acc.ID, acc.Email, false)
	require.NoError(t, err)

	repo.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil)
	repo.On("UpdatePassword", mock.Anything, acc.Email, mock.MatchedBy(func(hash string) bool {
		ok, verr := svc.Hasher.Verify("new-password", hash)
		return verr == nil && ok
	})).Return(nil)

	err = svc.ResetPassword(context.Background(), tok, acc.Email, "new-password")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestResetPasswordBadToken(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockNotifier{})

	err := svc.ResetPassword(context.Background(), "garbage", "dana@example.com", "new-password")
	assert.ErrorIs(t, err, ErrInvalidResetLink)
}

func TestResetPasswordEmailMismatch(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockNotifier{})

	tok, _, err := svc.Tokens.Issue(helpers.TokenKindResetPassword, "acc-1", "dana@example.com", false)
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), tok, "other@example.com", "new-password")
	assert.ErrorIs(t, err, ErrInvalidResetLink)
}

func TestResetPasswordRejectsAdminToken(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockNotifier{})

	tok, _, err := svc.Tokens.Issue(helpers.TokenKindResetPassword, "acc-1", "admin@example.com", true)
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), tok, "admin@example.com", "new-password")
	assert.ErrorIs(t, err, ErrInvalidResetLink)
}

func TestResetPasswordAccountGone(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})

	tok, _, err := svc.Tokens.Issue(helpers.TokenKindResetPassword, "acc-1", "gone@example.com", false)
	require.NoError(t, err)

	repo.On("FindByEmail", mock.Anything, "gone@example.com").Return(nil, postgres.ErrNotFound)

	err = svc.ResetPassword(context.Background(), tok, "gone@example.com", "new-password")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestVerifyEmailFlow(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})
	acc := verifiedAccount(t, svc, false)
	acc.IsEmailVerified = false

	tok, _, err := svc.Tokens.Issue(helpers.TokenKindVerifyEmail, acc.ID, acc.Email, false)
	require.NoError(t, err)

	repo.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil)
	repo.On("MarkEmailVerified", mock.Anything, acc.Email).Return(nil)

	require.NoError(t, svc.VerifyEmail(context.Background(), tok))
	repo.AssertExpectations(t)
}

func TestVerifyEmailBadToken(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockNotifier{})

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "garbage"), ErrInvalidVerifyLink)
}

func TestVerifyEmailRejectsAdminToken(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockNotifier{})

	tok, _, err := svc.Tokens.Issue(helpers.TokenKindVerifyEmail, "acc-1", "admin@example.com", true)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), tok), ErrInvalidVerifyLink)
}

func TestVerifyEmailAccountGone(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})

	tok, _, err := svc.Tokens.Issue(helpers.TokenKindVerifyEmail, "acc-1", "gone@example.com", false)
	require.NoError(t, err)

	repo.On("FindByEmail", mock.Anything, "gone@example.com").Return(nil, postgres.ErrNotFound)

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), tok), ErrInvalidVerifyLink)
}

func TestSessionStatus(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})
	acc := verifiedAccount(t, svc, true)

	tok, _, err := svc.Tokens.Issue(helpers.TokenKindSession, acc.ID, acc.Email, acc.IsAdmin)
	require.NoError(t, err)

	repo.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil)

	st, err := svc.SessionStatus(context.Background(), tok)
	require.NoError(t, err)
	assert.True(t, st.LoggedIn)
	assert.True(t, st.IsAdmin)
	require.NotNil(t, st.Account)
	assert.Equal(t, acc.ID, st.Account.ID)
}

func TestSessionStatusNeverFailsOnBadTokens(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})

	expiredCodec := helpers.NewTokenCodec("test-secret", -time.Minute, -time.Minute, -time.Minute)
	expired, _, err := expiredCodec.Issue(helpers.TokenKindSession, "acc-1", "dana@example.com", false)
	require.NoError(t, err)
	svc.Tokens = helpers.NewTokenCodec("test-secret", time.Hour, time.Hour, time.Hour)

	goneTok, _, err := svc.Tokens.Issue(helpers.TokenKindSession, "acc-2", "gone@example.com", false)
	require.NoError(t, err)
	repo.On("FindByEmail", mock.Anything, "gone@example.com").Return(nil, postgres.ErrNotFound)

	for name, tok := range map[string]string{
		"empty":        "",
		"garbage":      "garbage",
		"expired":      expired,
		"account gone": goneTok,
	} {
		t.Run(name, func(t *testing.T) {
			st, err := svc.SessionStatus(context.Background(), tok)
			require.NoError(t, err)
			assert.False(t, st.LoggedIn)
			assert.Nil(t, st.Account)
		})
	}
}

func TestSessionStatusStoreFailurePropagates(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})

	tok, _, err := svc.Tokens.Issue(helpers.TokenKindSession, "acc-1", "dana@example.com", false)
	require.NoError(t, err)

	repo.On("FindByEmail", mock.Anything, "dana@example.com").Return(nil, assert.AnError)

	_, err = svc.SessionStatus(context.Background(), tok)
	assert.Error(t, err)
}

func TestDeleteAccount(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})

	repo.On("Delete", mock.Anything, "acc-1").Return(nil)
	require.NoError(t, svc.DeleteAccount(context.Background(), "acc-1"))

	repo.On("Delete", mock.Anything, "acc-gone").Return(postgres.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteAccount(context.Background(), "acc-gone"), ErrAccountNotFound)
}

func TestGetProfile(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{})
	acc := verifiedAccount(t, svc, false)

	repo.On("FindByID", mock.Anything, acc.ID).Return(acc, nil)
	repo.On("FindByID", mock.Anything, "missing").Return(nil, postgres.ErrNotFound)

	got, err := svc.GetProfile(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, acc.Email, got.Email)

	_, err = svc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
