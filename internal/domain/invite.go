package domain

import "time"

// AccountRequest asks the identity provider for one new account
type AccountRequest struct {
	Email     string
	Password  string
	CompanyID string // stored as account metadata
}

// ProvisioningOutcome is the per-item result of account creation
type ProvisioningOutcome struct {
	UserID          string `json:"-"` // id of the account created for this item
	Email           string `json:"email"`
	Password        string `json:"password"`
	CreationSuccess bool   `json:"creation_success"`
	InviteURL       string `json:"invite_url,omitempty"`
	Error           string `json:"error,omitempty"`
}

// NotificationOutcome extends a provisioning outcome with email delivery
type NotificationOutcome struct {
	ProvisioningOutcome
	EmailSuccess bool   `json:"email_success"`
	Status       string `json:"status,omitempty"`
	EmailError   string `json:"email_error,omitempty"`
}

// FinalOutcome extends a notification outcome with company association.
// It is the record returned to the caller for each requested email.
type FinalOutcome struct {
	NotificationOutcome
	CompanyConnected bool   `json:"company_connected"`
	CompanyError     string `json:"company_error,omitempty"`
}

// DeliveryStatus is the email provider's answer to one send request
type DeliveryStatus struct {
	StatusCode int
	Status     string
}

// OK reports whether the provider unambiguously accepted the message
func (s DeliveryStatus) OK() bool {
	return s.StatusCode >= 200 && s.StatusCode < 300
}

// InviteAuditEntry is one persisted line of an invite batch. Passwords are
// never stored.
type InviteAuditEntry struct {
	ID               int64     `json:"id"`
	BatchID          string    `json:"batch_id"`
	InvitedBy        string    `json:"invited_by"`
	CompanyID        string    `json:"company_id"`
	Email            string    `json:"email"`
	CreationSuccess  bool      `json:"creation_success"`
	EmailSuccess     bool      `json:"email_success"`
	CompanyConnected bool      `json:"company_connected"`
	CreatedOn        time.Time `json:"created_on"`
}
