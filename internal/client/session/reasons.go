package session

// Action names, used for logs, metrics and reasons.
const (
	actionValidate           = "validate"
	actionSignup             = "signup"
	actionSignin             = "signin"
	actionSignout            = "signout"
	actionSendVerification   = "send_verification_code"
	actionVerifyVerification = "verify_verification_code"
	actionChangePassword     = "change_password"
	actionSendForgotCode     = "send_forgot_password_code"
	actionCheckForgotCode    = "check_forgot_password_code"
	actionResetPassword      = "reset_password"
)

// User-facing reasons produced locally.
const (
	ReasonValidateFailed   = "Failed to validate user."
	ReasonNotAuthenticated = "Not authenticated."
	ReasonSignInRequired   = "You must be signed in."
	ReasonPasswordMismatch = "New password and confirm password do not match."
	ReasonFieldsRequired   = "All fields are required."
	ReasonEmailRequired    = "Email is required."
	ReasonCodeRequired     = "Verification code is required."
)

var labels = map[string]string{
	actionValidate:           "Validate",
	actionSignup:             "Signup",
	actionSignin:             "Signin",
	actionSignout:            "Signout",
	actionSendVerification:   "Send verification code",
	actionVerifyVerification: "Verification",
	actionChangePassword:     "Change password",
	actionSendForgotCode:     "Send forgot password code",
	actionCheckForgotCode:    "Check forgot password code",
	actionResetPassword:      "Reset password",
}

func label(action string) string {
	if l, ok := labels[action]; ok {
		return l
	}
	return "Request"
}

// fallbackReason is used when the server reports failure without a message.
func fallbackReason(action string) string {
	if action == actionVerifyVerification {
		return "Verification code failed."
	}
	return label(action) + " failed."
}

// genericReason replaces transport and unexpected errors.
func genericReason(action string) string {
	return label(action) + " failed. Please try again."
}
