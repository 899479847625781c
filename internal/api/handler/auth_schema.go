package handler

// messageResponse is the {"msg": ...} body used for confirmations and
// single-message errors.
type messageResponse struct {
	Msg string `json:"msg"`
}

// errorsResponse is the {"errors": [...]} body used for input failures.
type errorsResponse struct {
	Errors []FieldError `json:"errors"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

func (registerRequest) validationMessages() map[string]string {
	return map[string]string{
		"name":              "Name is required",
		"email":             "Enter a valid email",
		"password":          "Please Enter a password with 6 or more characters",
		"password.maxbytes": "Password must be at most 72 bytes",
	}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (loginRequest) validationMessages() map[string]string {
	return map[string]string{
		"email":    "Enter a valid email",
		"password": "Password is required",
	}
}
