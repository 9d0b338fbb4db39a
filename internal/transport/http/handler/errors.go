package handler

const (
	errInternalServer     = "Internal server error"
	errAccountExists      = "Account already exists"
	errInvalidCredentials = "Invalid email or password"
	errTokenInvalid       = "Token is invalid or expired"
	errUserNotFound       = "User not found"
	errContactNotFound    = "Contact not found"
)
