package models

// Credentials are sent to POST /auth/login.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is sent to POST /auth/register.
type Registration struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// User is the account summary returned on login.
type User struct {
	ID       MovieID `json:"id,omitempty"`
	Username string  `json:"username"`
	Email    string  `json:"email,omitempty"`
}

// AuthResult is the body of a successful login.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Profile is the body of GET /users/me.
type Profile struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	DOB      string `json:"dob,omitempty"`
}

// ProfileUpdate is the body of PUT /users/me.
type ProfileUpdate struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty"`
	DOB   string `json:"dob,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
