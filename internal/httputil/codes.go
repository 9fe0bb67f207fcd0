package httputil

// Machine-readable error codes returned in ErrorResponse.Code
const (
	CodeInternalError      = "internal_error"
	CodeInvalidRequestBody = "invalid_request_body"
	CodeValidationFailed   = "validation_failed"
	CodeTooManyRequests    = "too_many_requests"
	CodeNotFound           = "not_found"
	CodeInvalidID          = "invalid_id"

	CodeInvalidCredentials  = "invalid_credentials"
	CodeEmailAlreadyInUse   = "email_already_in_use"
	CodeUnauthenticated     = "unauthenticated"
	CodeUserNotFound        = "user_not_found"
	CodeIdentityUnavailable = "identity_unavailable"

	CodeCategoryNameTaken = "category_name_taken"
	CodeCategoryHasPosts  = "category_has_posts"
	CodeTagHasPosts       = "tag_has_posts"
	CodeUnknownReference  = "unknown_reference"
)
