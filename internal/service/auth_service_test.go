package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/plradhouane-dev/gmao/internal/apperr"
	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/model"
	"github.com/plradhouane-dev/gmao/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-do-not-use"

func newAuthFixture(t *testing.T) (*stubUserRepo, service.AuthService, *model.User) {
	t.Helper()
	users := newStubUserRepo()
	svc := service.NewAuthService(users, testSecret, 8*time.Hour, "admin123")

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	perms := model.DefaultPermissions(model.RoleAdmin)
	admin := &model.User{
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Active:       true,
		Permissions:  &perms,
	}
	require.NoError(t, users.Create(context.Background(), admin))
	return users, svc, admin
}

func adminSessionFor(u *model.User) *model.Session {
	return &model.Session{UserID: u.ID, Username: u.Username, Role: u.Role, Perms: *u.Permissions}
}

func TestLoginIssuesFullScopeToken(t *testing.T) {
	_, svc, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.False(t, resp.ForcePasswordChange)

	claims, err := svc.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, service.ScopeFull, claims.Scope)
	assert.Equal(t, "admin", claims.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	_, svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))
}

func TestLoginUnknownUserSameError(t *testing.T) {
	_, svc, _ := newAuthFixture(t)

	_, errUnknown := svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "x"})
	_, errWrongPw := svc.Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "x"})
	require.Error(t, errUnknown)
	require.Error(t, errWrongPw)
	// Identical message: usernames cannot be probed through login.
	assert.Equal(t, errWrongPw.Error(), errUnknown.Error())
}

func TestForcedPasswordChangeFlow(t *testing.T) {
	users, svc, admin := newAuthFixture(t)

	stored, _ := users.FindByID(context.Background(), admin.ID)
	stored.ForcePasswordChange = true
	require.NoError(t, users.Update(context.Background(), stored))

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.True(t, resp.ForcePasswordChange)

	claims, err := svc.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, service.ScopePasswordChange, claims.Scope)

	// Changing the password clears the flag; the next login is full scope.
	require.NoError(t, svc.ChangePassword(context.Background(), admin.ID, dto.ChangePasswordRequest{
		NewPassword: "hunter22",
		Confirm:     "hunter22",
	}))

	resp, err = svc.Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "hunter22"})
	require.NoError(t, err)
	assert.False(t, resp.ForcePasswordChange)
}

func TestChangePasswordValidation(t *testing.T) {
	_, svc, admin := newAuthFixture(t)

	err := svc.ChangePassword(context.Background(), admin.ID, dto.ChangePasswordRequest{
		NewPassword: "short",
		Confirm:     "short",
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = svc.ChangePassword(context.Background(), admin.ID, dto.ChangePasswordRequest{
		NewPassword: "long-enough",
		Confirm:     "does-not-match",
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateUserAppliesRoleDefaults(t *testing.T) {
	_, svc, admin := newAuthFixture(t)

	resp, err := svc.CreateUser(context.Background(), adminSessionFor(admin), dto.CreateUserRequest{
		Username: "marc",
		Password: "secret99",
		Role:     model.RoleTechnician,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Permissions)
	assert.True(t, resp.Permissions.AddInterventions)
	assert.False(t, resp.Permissions.DeleteInterventions)
	assert.False(t, resp.Permissions.ManageUsers)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	_, svc, admin := newAuthFixture(t)

	_, err := svc.CreateUser(context.Background(), adminSessionFor(admin), dto.CreateUserRequest{
		Username: "admin",
		Password: "secret99",
		Role:     model.RoleUser,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateUserRequiresManageUsers(t *testing.T) {
	_, svc, _ := newAuthFixture(t)

	_, err := svc.CreateUser(context.Background(), technicianSession(), dto.CreateUserRequest{
		Username: "eva",
		Password: "secret99",
		Role:     model.RoleUser,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))
}

func TestUpdatePermissionsOverridesRoleDefaults(t *testing.T) {
	_, svc, admin := newAuthFixture(t)
	sess := adminSessionFor(admin)

	created, err := svc.CreateUser(context.Background(), sess, dto.CreateUserRequest{
		Username: "marc",
		Password: "secret99",
		Role:     model.RoleUser,
	})
	require.NoError(t, err)

	id := mustParseUUID(t, created.ID)
	resp, err := svc.UpdatePermissions(context.Background(), sess, id, dto.PermissionsRequest{
		ViewInterventions: true,
		ViewStock:         true,
		DeleteStock:       true, // beyond what the "user" role grants
	})
	require.NoError(t, err)
	assert.True(t, resp.Permissions.DeleteStock)
	assert.False(t, resp.Permissions.AddInterventions)
}

func TestResetPasswordForcesChange(t *testing.T) {
	users, svc, admin := newAuthFixture(t)
	sess := adminSessionFor(admin)

	created, err := svc.CreateUser(context.Background(), sess, dto.CreateUserRequest{
		Username: "marc",
		Password: "secret99",
		Role:     model.RoleUser,
	})
	require.NoError(t, err)
	id := mustParseUUID(t, created.ID)

	require.NoError(t, svc.ResetPassword(context.Background(), sess, id))

	stored, err := users.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, stored.ForcePasswordChange)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("admin123")))
}

func TestDeactivateUser(t *testing.T) {
	_, svc, admin := newAuthFixture(t)
	sess := adminSessionFor(admin)

	created, err := svc.CreateUser(context.Background(), sess, dto.CreateUserRequest{
		Username: "marc",
		Password: "secret99",
		Role:     model.RoleUser,
	})
	require.NoError(t, err)
	id := mustParseUUID(t, created.ID)

	require.NoError(t, svc.DeactivateUser(context.Background(), sess, id))

	// A deactivated account cannot log in.
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "marc", Password: "secret99"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))
}

func TestDeactivateSelfRejected(t *testing.T) {
	_, svc, admin := newAuthFixture(t)
	sess := adminSessionFor(admin)

	err := svc.DeactivateUser(context.Background(), sess, admin.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
