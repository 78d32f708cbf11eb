package domain

import "time"

// UserRole is the closed set of roles a storefront account can hold.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// Valid reports whether the role is a member of the closed enum.
func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User is the domain model for storefront accounts.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection returned to clients. It never carries the
// password hash.
type PublicUser struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      UserRole   `json:"role"`
	CartItems []CartItem `json:"cart_items"`
}

// Public builds the client-facing projection with the given cart contents.
func (u *User) Public(cart []CartItem) PublicUser {
	if cart == nil {
		cart = []CartItem{}
	}
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CartItems: cart,
	}
}
