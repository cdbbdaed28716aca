package dto

// PasswordChange is the body of POST /auth/password.
type PasswordChange struct {
	Current string `json:"current"`
	New     string `json:"new"`
	Confirm string `json:"confirm"`
}

// ErrorResponse is written for every failed API request.
type ErrorResponse struct {
	Error string `json:"error"`
}
