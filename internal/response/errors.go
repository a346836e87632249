package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrAccountDeactivated     ErrCode = "ACCOUNT_DEACTIVATED"
	ErrInsufficientPrivileges ErrCode = "INSUFFICIENT_PRIVILEGES"
	ErrAdminAccessOnly        ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Password reset ────────────────────────────────────────────────
	ErrInvalidResetCode ErrCode = "INVALID_RESET_CODE"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrTokenRequired:
		return "Authentication token required."
	case ErrTokenInvalid:
		return "Could not validate credentials."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrAccountDeactivated:
		return "Account is deactivated."
	case ErrInsufficientPrivileges:
		return "Insufficient privileges."
	case ErrAdminAccessOnly:
		return "Admin access required."

	// ─── Password reset ────────────────────────────────────────────────
	case ErrInvalidResetCode:
		return "Invalid or expired reset code."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Admin not found."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
