package domain

import "time"

// User is a row of the users table: the application-side profile of an
// authentication account
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CompanyID string    `json:"company_id"` // empty when not associated with a company
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Caller is the authenticated user on whose behalf a request runs
type Caller struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CompanyID string `json:"company_id"`
}

// Account is a locally stored authentication account
type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	CompanyID      string    `json:"company_id"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedOn      time.Time `json:"created_on"`
}
