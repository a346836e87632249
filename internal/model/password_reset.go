package model

import "time"

// ResetCode is a one-time password reset code issued by forgot-password.
// A code is redeemable only while Used is false and the current time is before ExpiresAt.
type ResetCode struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Code      string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used"`
	CreatedAt time.Time  `json:"created_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// Redeemable reports whether the code can still be verified or consumed at now.
func (r *ResetCode) Redeemable(now time.Time) bool {
	return !r.Used && now.Before(r.ExpiresAt)
}

// ResetMailJob is the payload handed to the mail queue after a code is created.
type ResetMailJob struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ForgotPasswordRequest starts the password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,trimmed_email,max=255"`
}

// VerifyResetCodeRequest checks a reset code without consuming it.
// Fields may come from the query string or a JSON body.
type VerifyResetCodeRequest struct {
	Email string `json:"email" form:"email" binding:"required,trimmed_email,max=255"`
	Code  string `json:"code" form:"code" binding:"required,max=64"`
}

// ResetPasswordRequest consumes a reset code and sets a new password.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,trimmed_email,max=255"`
	Code        string `json:"code" binding:"required,max=64"`
	NewPassword string `json:"new_password" binding:"required,bcrypt_max"`
}
