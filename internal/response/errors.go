package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials   ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired        ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid         ErrCode = "TOKEN_INVALID"
	ErrInstructorAccessOnly ErrCode = "INSTRUCTOR_ACCESS_ONLY"
	ErrTraineeAccessOnly    ErrCode = "TRAINEE_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Eligibility ───────────────────────────────────────────────────
	ErrUnknownTrainee   ErrCode = "UNKNOWN_TRAINEE"
	ErrAlreadyCertified ErrCode = "ALREADY_CERTIFIED"
	ErrCooldownActive   ErrCode = "COOLDOWN_ACTIVE"

	// ─── Question bank ─────────────────────────────────────────────────
	ErrEmptyBank        ErrCode = "EMPTY_BANK"
	ErrInsufficientBank ErrCode = "INSUFFICIENT_BANK"

	// ─── Sessions ──────────────────────────────────────────────────────
	ErrSessionNotFound     ErrCode = "SESSION_NOT_FOUND"
	ErrSessionNotActive    ErrCode = "SESSION_NOT_ACTIVE"
	ErrDuplicateSubmission ErrCode = "DUPLICATE_SUBMISSION"
	ErrInvalidAnswer       ErrCode = "INVALID_ANSWER"

	// ─── Results ───────────────────────────────────────────────────────
	ErrResultNotFound ErrCode = "RESULT_NOT_FOUND"
	ErrStorePersist   ErrCode = "STORE_PERSIST_ERROR"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Invalid password."
	case ErrTokenRequired:
		return "Authentication token required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."
	case ErrInstructorAccessOnly:
		return "This resource is restricted to instructors."
	case ErrTraineeAccessOnly:
		return "This resource is restricted to trainees."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrUnknownTrainee:
		return "Callsign not found. Contact your instructor to be registered."
	case ErrAlreadyCertified:
		return "You have already passed the final exam. No retake is needed."
	case ErrCooldownActive:
		return "You passed this chapter recently. Retake is available after the cooldown."
	case ErrEmptyBank:
		return "This chapter has no questions yet. Contact your instructor."
	case ErrInsufficientBank:
		return "The final exam bank does not have enough questions. Contact your instructor."
	case ErrSessionNotFound:
		return "Assessment session not found."
	case ErrSessionNotActive:
		return "This assessment session is no longer in progress."
	case ErrDuplicateSubmission:
		return "This assessment was already submitted."
	case ErrInvalidAnswer:
		return "The answer does not match an option on this question."
	case ErrResultNotFound:
		return "Result not found."
	case ErrStorePersist:
		return "Your score was computed but could not be saved yet. It will be retried."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
