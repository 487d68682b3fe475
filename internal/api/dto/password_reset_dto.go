package dto

// ResetCodeRequest asks for a verification code.
type ResetCodeRequest struct {
	Email string `json:"email"`
}

// ResetCodeVerifyRequest checks a code without consuming it.
type ResetCodeVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResetCodeConfirmRequest consumes a code and sets a new password.
type ResetCodeConfirmRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}
