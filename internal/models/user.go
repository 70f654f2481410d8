package models

import "time"

// User is a storefront customer account held by the CMS.
type User struct {
	ID         int    `json:"id"`
	DocumentID string `json:"documentId,omitempty"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
	Confirmed  bool   `json:"confirmed,omitempty"`
	Blocked    bool   `json:"blocked,omitempty"`
}

// ProfileUpdate lists the fields a customer may change on their profile.
// Nil fields are left as they are.
type ProfileUpdate struct {
	FirstName  *string `json:"firstName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
	Country    *string `json:"country,omitempty"`
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil &&
		p.Address == nil && p.City == nil && p.PostalCode == nil && p.Country == nil
}

// RegisterRequest is the sign-up payload forwarded to the CMS.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// LoginRequest is the sign-in payload. Identifier is a username or email.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// AuthResponse is what the CMS returns on register and login.
type AuthResponse struct {
	JWT  string `json:"jwt"`
	User User   `json:"user"`
}

// AdminUser is a dashboard operator stored in the local database.
type AdminUser struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string    `json:"-" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReconciliationState is the progress of a hosted-checkout session.
type ReconciliationState string

const (
	ReconciliationClaimed   ReconciliationState = "claimed"
	ReconciliationCompleted ReconciliationState = "completed"
)

// CheckoutReconciliation records which payment session produced which order,
// so a session is turned into an order at most once.
type CheckoutReconciliation struct {
	ID              string              `gorm:"primaryKey;type:varchar(36)"`
	SessionID       string              `gorm:"uniqueIndex;type:varchar(255);not null"`
	State           ReconciliationState `gorm:"type:varchar(20);not null"`
	OrderCode       string              `gorm:"type:varchar(64)"`
	OrderDocumentID string              `gorm:"type:varchar(64)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
