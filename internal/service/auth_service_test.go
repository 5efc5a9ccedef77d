package service

import (
	"context"
	"testing"
	"time"

	"ai-notes-be/internal/dto"
	"ai-notes-be/internal/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "unit-test-secret"

type authServiceFixture struct {
	svc    IAuthService
	uow    *fakeUnitOfWork
	emails *fakeEmailService
}

func newAuthServiceFixture() *authServiceFixture {
	uow := newFakeUnitOfWork()
	emails := &fakeEmailService{}

	svc := NewAuthService(
		&fakeRepoFactory{uow: uow},
		emails,
		nil,
		testJWTSecret,
		nopLogger{},
	)

	return &authServiceFixture{svc: svc, uow: uow, emails: emails}
}

func seedActiveUser(f *authServiceFixture, password string) *entity.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	hashStr := string(hash)
	user := &entity.User{
		Id:            uuid.New(),
		Email:         "ada@example.com",
		FullName:      "Ada Lovelace",
		DisplayName:   "Ada",
		PasswordHash:  &hashStr,
		Status:        entity.UserStatusActive,
		EmailVerified: true,
		CreatedAt:     time.Now(),
	}
	f.uow.users.users = append(f.uow.users.users, user)
	return user
}

func TestRegister(t *testing.T) {
	f := newAuthServiceFixture()

	resp, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "correct horse",
	})

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resp.Email)

	require.Len(t, f.uow.users.users, 1)
	created := f.uow.users.users[0]
	assert.Equal(t, entity.UserStatusPending, created.Status)
	require.NotNil(t, created.PasswordHash)
	assert.NotEqual(t, "correct horse", *created.PasswordHash)

	require.Len(t, f.uow.users.emailTokens, 1)
	assert.Len(t, f.uow.users.emailTokens[0].Token, 6)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthServiceFixture()
	seedActiveUser(f, "whatever")

	_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Ada Again",
		Email:    "ada@example.com",
		Password: "correct horse",
	})

	assert.Error(t, err)
	assert.Len(t, f.uow.users.users, 1)
}

func TestVerifyEmailActivatesUser(t *testing.T) {
	f := newAuthServiceFixture()
	_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	otp := f.uow.users.emailTokens[0].Token

	err = f.svc.VerifyEmail(context.Background(), &dto.VerifyEmailRequest{
		Email: "ada@example.com",
		Token: otp,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.UserStatusActive, f.uow.users.users[0].Status)
	assert.Empty(t, f.uow.users.emailTokens, "otp is single use")
}

func TestVerifyEmailWrongOTP(t *testing.T) {
	f := newAuthServiceFixture()
	user := seedActiveUser(f, "correct horse")
	user.Status = entity.UserStatusPending
	f.uow.users.emailTokens = append(f.uow.users.emailTokens, &entity.EmailVerificationToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     "123456",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	})

	err := f.svc.VerifyEmail(context.Background(), &dto.VerifyEmailRequest{
		Email: "ada@example.com",
		Token: "654321",
	})

	assert.Error(t, err)
	assert.Equal(t, entity.UserStatusPending, f.uow.users.users[0].Status)
}

func TestLogin(t *testing.T) {
	f := newAuthServiceFixture()
	user := seedActiveUser(f, "correct horse")

	resp, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse",
	})

	require.NoError(t, err)
	assert.Empty(t, resp.RefreshToken, "no session without remember me")
	assert.Equal(t, user.Id, resp.User.Id)

	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.Id.String(), claims["user_id"])
}

func TestLoginRememberMeIssuesRefreshToken(t *testing.T) {
	f := newAuthServiceFixture()
	seedActiveUser(f, "correct horse")

	resp, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:      "ada@example.com",
		Password:   "correct horse",
		RememberMe: true,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.RefreshToken)
	require.Len(t, f.uow.users.refreshTokens, 1)
	assert.NotEqual(t, resp.RefreshToken, f.uow.users.refreshTokens[0].TokenHash, "only the hash is stored")
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthServiceFixture()
	seedActiveUser(f, "correct horse")

	_, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong horse",
	})
	assert.Error(t, err)
}

func TestLoginUnverifiedEmail(t *testing.T) {
	f := newAuthServiceFixture()
	user := seedActiveUser(f, "correct horse")
	user.Status = entity.UserStatusPending
	user.EmailVerified = false

	_, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	assert.Error(t, err)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	f := newAuthServiceFixture()
	seedActiveUser(f, "correct horse")

	resp, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:      "ada@example.com",
		Password:   "correct horse",
		RememberMe: true,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), resp.RefreshToken))
	assert.True(t, f.uow.users.refreshTokens[0].Revoked)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	f := newAuthServiceFixture()

	err := f.svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{
		Email: "nobody@example.com",
	})

	assert.NoError(t, err, "must not leak whether the address exists")
	assert.Empty(t, f.uow.users.resetTokens)
}

func TestResetPasswordFlow(t *testing.T) {
	f := newAuthServiceFixture()
	user := seedActiveUser(f, "correct horse")
	oldHash := *user.PasswordHash

	require.NoError(t, f.svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{
		Email: "ada@example.com",
	}))
	require.Len(t, f.uow.users.resetTokens, 1)
	token := f.uow.users.resetTokens[0].Token

	err := f.svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Token:           token,
		NewPassword:     "new password",
		ConfirmPassword: "new password",
	})

	require.NoError(t, err)
	assert.NotEqual(t, oldHash, *f.uow.users.users[0].PasswordHash)
	assert.True(t, f.uow.users.resetTokens[0].Used)

	// The link is single use.
	err = f.svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Token:           token,
		NewPassword:     "another password",
		ConfirmPassword: "another password",
	})
	assert.Error(t, err)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newAuthServiceFixture()
	user := seedActiveUser(f, "correct horse")
	f.uow.users.resetTokens = append(f.uow.users.resetTokens, &entity.PasswordResetToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     "stale-token",
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-2 * time.Hour),
	})

	err := f.svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Token:           "stale-token",
		NewPassword:     "new password",
		ConfirmPassword: "new password",
	})
	assert.Error(t, err)
}
