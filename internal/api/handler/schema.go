package handler

import "time"

// --- Users ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
}

type meResponse struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	IsAdmin  bool     `json:"is_admin"`
}

// --- Records ---

type createRecordRequest struct {
	Name        string `json:"name"          validate:"required,max=255"`
	Age         int    `json:"age"           validate:"required,gt=0,lte=150"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Description string `json:"description"   validate:"required"`
	ConnectedTo string `json:"connected_to"  validate:"required,max=255"`
}

type recordResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	DateOfBirth string    `json:"date_of_birth"`
	Description string    `json:"description"`
	ConnectedTo string    `json:"connected_to"`
	CreatedAt   time.Time `json:"created_at"`
}

type recordListResponse struct {
	Count   int              `json:"count"`
	Records []recordResponse `json:"records"`
}

// --- Admin ---

type assignRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type createRoleRequest struct {
	Name string `json:"name" validate:"required,startswith=ROLE_,max=64"`
}

type roleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type auditResponse struct {
	Action     string    `json:"action"`
	Actor      string    `json:"actor,omitempty"`
	Subject    string    `json:"subject"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
