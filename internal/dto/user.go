package dto

// UpdateProfileRequest updates the shopper profile. Empty fields are left
// unchanged upstream.
type UpdateProfileRequest struct {
	Name        string `json:"name,omitempty" binding:"omitempty,max=160"`
	Phone       string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Address     string `json:"address,omitempty" binding:"omitempty,max=160"`
	DateOfBirth string `json:"date_of_birth,omitempty" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Avatar      string `json:"avatar,omitempty" binding:"omitempty,max=1000"`
}

type ChangePasswordRequest struct {
	Password        string `json:"password" binding:"required,min=6,max=160"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=160"`
	ConfirmPassword string `json:"confirm_password" binding:"required,min=6,max=160,eqfield=NewPassword"`
}

// UpstreamPasswordChange is the body of the upstream PUT /user for a
// password change; the confirmation never leaves this service.
type UpstreamPasswordChange struct {
	Password    string `json:"password"`
	NewPassword string `json:"new_password"`
}
