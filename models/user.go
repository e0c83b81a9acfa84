package models

import "time"

// Technician application statuses on the user record.
const (
	TechnicianStatusNone     = "NONE"
	TechnicianStatusPending  = "PENDING"
	TechnicianStatusApproved = "APPROVED"
	TechnicianStatusRejected = "REJECTED"
)

// Role names. A user may hold more than one role (e.g. a customer who
// upgraded to technician keeps both).
const (
	RoleCustomer   = "customer"
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
)

// User is the identity/role facet of an account. When the user holds the
// technician role, a Technician document with the same ID carries the
// service-profile facet; the two are joined by ID at read time.
type User struct {
	ID               string    `json:"uid" dynamodbav:"id"`
	Email            string    `json:"email" dynamodbav:"email"`
	Name             string    `json:"name" dynamodbav:"name"`
	Role             string    `json:"role" dynamodbav:"role"`
	Roles            []string  `json:"roles" dynamodbav:"roles"`
	TechnicianStatus string    `json:"technicianStatus" dynamodbav:"technician_status"`
	ProfilePicURL    string    `json:"profilePic,omitempty" dynamodbav:"profile_pic,omitempty"`
	Mobile           string    `json:"mobile,omitempty" dynamodbav:"mobile,omitempty"`
	CreatedAt        time.Time `json:"createdAt" dynamodbav:"created_at"`
}

// HasRole reports whether the user holds the given role in its role set.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user is an administrator.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.HasRole(RoleAdmin)
}
