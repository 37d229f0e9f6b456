package registry

import (
	"time"

	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientType represents the commercial relationship with a client
type ClientType string

const (
	// ClientTypeContract is a client with a standing supply contract
	ClientTypeContract ClientType = "CONTRACT"
	// ClientTypeFree is a walk-in client without a contract
	ClientTypeFree ClientType = "FREE"
)

// IsValid returns true if the client type is valid
func (t ClientType) IsValid() bool {
	switch t {
	case ClientTypeContract, ClientTypeFree:
		return true
	}
	return false
}

// String returns the string representation of ClientType
func (t ClientType) String() string {
	return string(t)
}

// ClientStatus represents the delivery eligibility of a client
type ClientStatus string

const (
	// ClientStatusActive clients can receive deliveries normally
	ClientStatusActive ClientStatus = "ACTIVE"
	// ClientStatusRestricted clients require elevated authorization
	ClientStatusRestricted ClientStatus = "RESTRICTED"
	// ClientStatusBlocked clients cannot be the target of a new delivery
	ClientStatusBlocked ClientStatus = "BLOCKED"
)

// IsValid returns true if the client status is valid
func (s ClientStatus) IsValid() bool {
	switch s {
	case ClientStatusActive, ClientStatusRestricted, ClientStatusBlocked:
		return true
	}
	return false
}

// String returns the string representation of ClientStatus
func (s ClientStatus) String() string {
	return string(s)
}

// Client represents a delivery destination
type Client struct {
	shared.TenantAggregateRoot
	Name       string       `gorm:"type:varchar(200);not null"`
	Address    string       `gorm:"type:varchar(300)"`
	Contact    string       `gorm:"type:varchar(100)"`
	ClientType ClientType   `gorm:"type:varchar(20);not null"`
	Status     ClientStatus `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client
func NewClient(tenantID uuid.UUID, name, address, contact string, clientType ClientType) (*Client, error) {
	if name == "" {
		return nil, shared.NewValidationError("Client name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Client name cannot exceed 200 characters")
	}
	if !clientType.IsValid() {
		return nil, shared.NewValidationError("Invalid client type")
	}

	return &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Address:             address,
		Contact:             contact,
		ClientType:          clientType,
		Status:              ClientStatusActive,
	}, nil
}

// CanReceiveDelivery returns true if the client may be the target of a new
// delivery. Restricted clients pass this check; the elevated-authorization
// requirement is enforced by the caller.
func (c *Client) CanReceiveDelivery() bool {
	return c.Status != ClientStatusBlocked
}

// IsRestricted returns true if deliveries to this client require elevated
// authorization
func (c *Client) IsRestricted() bool {
	return c.Status == ClientStatusRestricted
}

// Block prevents the client from receiving new deliveries
func (c *Client) Block() error {
	if c.Status == ClientStatusBlocked {
		return shared.NewInvalidStateError("Client is already blocked")
	}
	c.Status = ClientStatusBlocked
	c.UpdatedAt = time.Now()
	return nil
}

// Restrict requires elevated authorization for new deliveries
func (c *Client) Restrict() {
	c.Status = ClientStatusRestricted
	c.UpdatedAt = time.Now()
}

// Unblock restores normal delivery eligibility
func (c *Client) Unblock() {
	c.Status = ClientStatusActive
	c.UpdatedAt = time.Now()
}

// UpdateContact updates address and contact information
func (c *Client) UpdateContact(address, contact string) {
	c.Address = address
	c.Contact = contact
	c.UpdatedAt = time.Now()
}
