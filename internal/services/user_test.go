package services_test

import (
	"context"
	"testing"
	"time"

	"sparkmatch-backend/internal/apperrors"
	"sparkmatch-backend/internal/models"
	"sparkmatch-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validSignup() services.SignupRequest {
	return services.SignupRequest{
		Email:       "alice@example.com",
		Name:        "Alice",
		Password:    "correct horse battery",
		Gender:      "female",
		Birth:       time.Date(1992, 6, 15, 0, 0, 0, 0, time.UTC),
		Description: "hello there",
		Location:    &models.Location{Lat: 48.8566, Lon: 2.3522},
	}
}

func newUserFixture() (*services.UserService, *memUserStore) {
	users := newMemUserStore()
	return services.NewUserService(users, "test-key", 3600, bcrypt.MinCost), users
}

func TestSignupSigninRoundtrip(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	user, token, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Empty(t, user.Likes)
	assert.Empty(t, user.Pictures)

	userID, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	signinToken, err := svc.Signin(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	userID, err = svc.ValidateJWT(signinToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestSigninWrongPassword(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	_, err = svc.Signin(ctx, "alice@example.com", "wrong password")
	assert.True(t, apperrors.Is(err, apperrors.Unauthorized))

	_, err = svc.Signin(ctx, "nobody@example.com", "whatever")
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	cases := map[string]func(*services.SignupRequest){
		"bad email":      func(r *services.SignupRequest) { r.Email = "not-an-email" },
		"short name":     func(r *services.SignupRequest) { r.Name = "ab" },
		"long name":      func(r *services.SignupRequest) { r.Name = "abcdefghijklmnopqrstuvwxyz01234" },
		"short password": func(r *services.SignupRequest) { r.Password = "1234567" },
		"bad gender":     func(r *services.SignupRequest) { r.Gender = "robot" },
		"missing birth":  func(r *services.SignupRequest) { r.Birth = time.Time{} },
		"under 18":       func(r *services.SignupRequest) { r.Birth = time.Now().AddDate(-17, 0, 0) },
		"no description": func(r *services.SignupRequest) { r.Description = "" },
		"no location":    func(r *services.SignupRequest) { r.Location = nil },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validSignup()
			mutate(&req)
			_, _, err := svc.Signup(ctx, req)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.Validation))
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, validSignup())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Conflict))
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	svc, users := newUserFixture()
	ctx := context.Background()

	user, _, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	name := "Alicia"
	password := "a brand new password"
	banned := true
	_, err = svc.Update(ctx, user.ID, services.UpdateUserRequest{
		Name:     &name,
		Password: &password,
		Banned:   &banned,
	})
	require.NoError(t, err)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", stored.Name)
	assert.True(t, stored.Banned)
	assert.Equal(t, "alice@example.com", stored.Email, "untouched fields stay")

	_, err = svc.Signin(ctx, "alice@example.com", password)
	require.NoError(t, err, "password change must rehash")

	short := "short"
	_, err = svc.Update(ctx, user.ID, services.UpdateUserRequest{Password: &short})
	assert.True(t, apperrors.Is(err, apperrors.Validation))
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.ValidateJWT("not.a.token")
	assert.True(t, apperrors.Is(err, apperrors.Unauthorized))

	other := services.NewUserService(newMemUserStore(), "other-key", 3600, bcrypt.MinCost)
	token, err := other.GenerateJWT("alice")
	require.NoError(t, err)
	_, err = svc.ValidateJWT(token)
	assert.True(t, apperrors.Is(err, apperrors.Unauthorized), "token signed with another key")
}
