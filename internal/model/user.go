package model

import "time"

// User roles.
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// User represents an LMS account.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginRequest represents the credentials payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and the authenticated user.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UserUpdate is the admin payload for changing a user.
type UserUpdate struct {
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// ReportSummary aggregates platform statistics for the admin reports page.
type ReportSummary struct {
	TotalUsers       int              `json:"totalUsers"`
	TotalCourses     int              `json:"totalCourses"`
	TotalEnrollments int              `json:"totalEnrollments"`
	TotalRevenue     float64          `json:"totalRevenue"`
	MonthlyRevenue   []MonthlyRevenue `json:"monthlyRevenue"`
}

// MonthlyRevenue is one bar of the revenue chart.
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// StoredSession is the persisted login: the bearer token, the user it
// belongs to and the token's expiry (zero when the token carries none).
type StoredSession struct {
	Token     string
	User      User
	ExpiresAt time.Time
}
