package service

import (
	"context"
	"errors"
	"time"

	"github.com/plradhouane-dev/gmao/internal/apperr"
	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/model"
	"github.com/plradhouane-dev/gmao/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

// Token scopes. A "password_change" token can only call the
// change-password endpoint; everything else requires "full".
const (
	ScopeFull           = "full"
	ScopePasswordChange = "password_change"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// AuthService handles login, the forced-password-change flow, and user
// administration. User administration is gated by the manage-users flag.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	ParseToken(tokenString string) (*Claims, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error

	CreateUser(ctx context.Context, sess *model.Session, req dto.CreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, sess *model.Session) ([]dto.UserResponse, error)
	UpdateUser(ctx context.Context, sess *model.Session, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	UpdatePermissions(ctx context.Context, sess *model.Session, id uuid.UUID, req dto.PermissionsRequest) (*dto.UserResponse, error)
	ResetPassword(ctx context.Context, sess *model.Session, id uuid.UUID) error
	DeactivateUser(ctx context.Context, sess *model.Session, id uuid.UUID) error
}

type authService struct {
	users           repository.UserRepository
	jwtSecret       []byte
	tokenTTL        time.Duration
	initialPassword string
}

func NewAuthService(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration, initialPassword string) AuthService {
	return &authService{
		users:           users,
		jwtSecret:       []byte(jwtSecret),
		tokenTTL:        tokenTTL,
		initialPassword: initialPassword,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	u, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same error as a wrong password so usernames cannot be probed.
			return nil, apperr.AccessDeniedf("invalid credentials")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperr.AccessDeniedf("invalid credentials")
	}

	scope := ScopeFull
	if u.ForcePasswordChange {
		scope = ScopePasswordChange
	}
	token, err := s.issueToken(u, scope)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:         token,
		TokenType:           "bearer",
		ExpiresIn:           int(s.tokenTTL.Seconds()),
		ForcePasswordChange: u.ForcePasswordChange,
		User:                userToResponse(u),
	}, nil
}

func (s *authService) issueToken(u *model.User, scope string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   u.ID.String(),
		Username: u.Username,
		Role:     u.Role,
		Scope:    scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ParseToken validates a signed token and returns its claims. It lives
// on the service so the middleware and the tests share one code path.
func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.AccessDeniedf("invalid or expired token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, apperr.AccessDeniedf("invalid token claims")
	}
	return claims, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error {
	if len(req.NewPassword) < 6 {
		return apperr.Validationf("password must be at least 6 characters")
	}
	if req.NewPassword != req.Confirm {
		return apperr.Validationf("passwords do not match")
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("user not found")
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.ForcePasswordChange = false
	return s.users.Update(ctx, u)
}

func (s *authService) CreateUser(ctx context.Context, sess *model.Session, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !sess.Perms.ManageUsers {
		return nil, apperr.AccessDeniedf("missing manage-users permission")
	}
	if req.Username == "" {
		return nil, apperr.Validationf("username is required")
	}
	if len(req.Password) < 6 {
		return nil, apperr.Validationf("password must be at least 6 characters")
	}
	if !model.ValidRole(req.Role) {
		return nil, apperr.Validationf("unknown role %q", req.Role)
	}

	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, apperr.Conflictf("username %q already taken", req.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	perms := model.DefaultPermissions(req.Role)
	u := &model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
		Permissions:  &perms,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	resp := userToResponse(u)
	return &resp, nil
}

func (s *authService) ListUsers(ctx context.Context, sess *model.Session) ([]dto.UserResponse, error) {
	if !sess.Perms.ManageUsers {
		return nil, apperr.AccessDeniedf("missing manage-users permission")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userToResponse(&users[i]))
	}
	return out, nil
}

func (s *authService) UpdateUser(ctx context.Context, sess *model.Session, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if !sess.Perms.ManageUsers {
		return nil, apperr.AccessDeniedf("missing manage-users permission")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, err
	}

	if req.Role != nil {
		if !model.ValidRole(*req.Role) {
			return nil, apperr.Validationf("unknown role %q", *req.Role)
		}
		u.Role = *req.Role
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, apperr.Validationf("password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	resp := userToResponse(u)
	return &resp, nil
}

// UpdatePermissions replaces the whole flag set. Changing a role via
// UpdateUser does NOT touch flags; this is the only way to change them
// after creation.
func (s *authService) UpdatePermissions(ctx context.Context, sess *model.Session, id uuid.UUID, req dto.PermissionsRequest) (*dto.UserResponse, error) {
	if !sess.Perms.ManageUsers {
		return nil, apperr.AccessDeniedf("missing manage-users permission")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, err
	}

	perms := model.PermissionSet{
		UserID:              u.ID,
		ViewInterventions:   req.ViewInterventions,
		AddInterventions:    req.AddInterventions,
		EditInterventions:   req.EditInterventions,
		DeleteInterventions: req.DeleteInterventions,
		ViewStock:           req.ViewStock,
		AddStock:            req.AddStock,
		EditStock:           req.EditStock,
		DeleteStock:         req.DeleteStock,
		ManageUsers:         req.ManageUsers,
	}
	if err := s.users.UpdatePermissions(ctx, &perms); err != nil {
		return nil, err
	}
	u.Permissions = &perms
	resp := userToResponse(u)
	return &resp, nil
}

// ResetPassword sets the account back to the initial password and raises
// the force-password-change flag, so the next login is scope-restricted.
func (s *authService) ResetPassword(ctx context.Context, sess *model.Session, id uuid.UUID) error {
	if !sess.Perms.ManageUsers {
		return apperr.AccessDeniedf("missing manage-users permission")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("user not found")
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.initialPassword), bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.ForcePasswordChange = true
	return s.users.Update(ctx, u)
}

func (s *authService) DeactivateUser(ctx context.Context, sess *model.Session, id uuid.UUID) error {
	if !sess.Perms.ManageUsers {
		return apperr.AccessDeniedf("missing manage-users permission")
	}
	if id == sess.UserID {
		return apperr.Validationf("cannot deactivate your own account")
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("user not found")
		}
		return err
	}
	return s.users.Deactivate(ctx, id)
}

func userToResponse(u *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:                  u.ID.String(),
		Username:            u.Username,
		Role:                u.Role,
		ForcePasswordChange: u.ForcePasswordChange,
		Active:              u.Active,
	}
	if u.Permissions != nil {
		resp.Permissions = &dto.PermissionsResponse{
			ViewInterventions:   u.Permissions.ViewInterventions,
			AddInterventions:    u.Permissions.AddInterventions,
			EditInterventions:   u.Permissions.EditInterventions,
			DeleteInterventions: u.Permissions.DeleteInterventions,
			ViewStock:           u.Permissions.ViewStock,
			AddStock:            u.Permissions.AddStock,
			EditStock:           u.Permissions.EditStock,
			DeleteStock:         u.Permissions.DeleteStock,
			ManageUsers:         u.Permissions.ManageUsers,
		}
	}
	return resp
}
