package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request / Response types ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,maxbytes=72"`
	Mobile   string `json:"mobile"   validate:"required,numeric,min=7,max=20"`
	Role     string `json:"role"     validate:"omitempty,max=50"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"            validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,maxbytes=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type tokenStatusResponse struct {
	Valid bool `json:"valid"`
}

type accountResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
	Role   string `json:"role,omitempty"`
}

type listAccountsResponse struct {
	Users []accountResponse `json:"users"`
}

type wipeResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}
