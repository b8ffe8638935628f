package dto

// ─── Auth ────────────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	// ForcePasswordChange tells the front end the only usable call is
	// change-password; the issued token carries the restricted scope.
	ForcePasswordChange bool         `json:"force_password_change"`
	User                UserResponse `json:"user"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
	Confirm     string `json:"confirm"      validate:"required"`
}

// ─── Users ───────────────────────────────────────────────────────────────────

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required"`
}

type UpdateUserRequest struct {
	Role     *string `json:"role"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// PermissionsRequest carries the full flag set; an admin edits flags
// individually in the form and submits the resulting set.
type PermissionsRequest struct {
	ViewInterventions   bool `json:"view_interventions"`
	AddInterventions    bool `json:"add_interventions"`
	EditInterventions   bool `json:"edit_interventions"`
	DeleteInterventions bool `json:"delete_interventions"`
	ViewStock           bool `json:"view_stock"`
	AddStock            bool `json:"add_stock"`
	EditStock           bool `json:"edit_stock"`
	DeleteStock         bool `json:"delete_stock"`
	ManageUsers         bool `json:"manage_users"`
}

type PermissionsResponse = PermissionsRequest

type UserResponse struct {
	ID                  string               `json:"id"`
	Username            string               `json:"username"`
	Role                string               `json:"role"`
	ForcePasswordChange bool                 `json:"force_password_change"`
	Active              bool                 `json:"active"`
	Permissions         *PermissionsResponse `json:"permissions,omitempty"`
}
