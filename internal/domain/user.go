package domain

// Role represents an account role. Only drivers are supported by this
// client; the other roles exist so sessions written by future clients
// can be recognized and rejected.
type Role string

const (
	RoleDriver     Role = "driver"
	RoleDispatcher Role = "dispatcher"
	RoleEmployee   Role = "employee"
	RoleAirline    Role = "airline"
)

// ApprovalStatus represents the moderation state of a driver account.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// User represents a driver account.
type User struct {
	ID       string         `json:"id"`
	Login    string         `json:"login"`
	Password string         `json:"password"`
	FullName string         `json:"fullName"`
	Phone    string         `json:"phone"`
	Role     Role           `json:"role"`
	Status   ApprovalStatus `json:"status"`
	// OnOrder holds the id of the order currently being serviced,
	// empty when the driver is free.
	OnOrder string `json:"onOrder"`
	// IsActive is the driver's availability toggle. Independent of
	// Order.IsActive.
	IsActive bool `json:"isActive"`
}
