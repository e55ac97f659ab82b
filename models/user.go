package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/meinhoongagan/booking-platform/utils"
)

type UserRole string

const (
	RoleClient   UserRole = "CLIENT"
	RoleProvider UserRole = "PROVIDER"
)

type AccountType string

const (
	AccountIndividual   AccountType = "INDIVIDUAL"
	AccountOrganization AccountType = "ORGANIZATION"
)

type EmployeeRole string

const (
	EmployeeOwner   EmployeeRole = "OWNER"
	EmployeeAdmin   EmployeeRole = "ADMIN"
	EmployeeManager EmployeeRole = "MANAGER"
	EmployeeStaff   EmployeeRole = "STAFF"
)

// Channel is an OTP delivery channel.
type Channel string

const (
	ChannelEmail    Channel = "EMAIL"
	ChannelSMS      Channel = "SMS"
	ChannelWhatsApp Channel = "WHATSAPP"
)

type User struct {
	ID               uint              `json:"id" gorm:"primaryKey"`
	Email            string            `json:"email" gorm:"uniqueIndex;not null"`
	Password         string            `json:"-" gorm:"not null"`
	Role             UserRole          `json:"role" gorm:"type:varchar(16);not null"`
	Type             AccountType       `json:"type" gorm:"type:varchar(16);not null"`
	Profile          Profile           `json:"profile" gorm:"serializer:json;type:jsonb"`
	EmployeeRole     EmployeeRole      `json:"employee_role,omitempty" gorm:"type:varchar(16)"`
	OrganizationID   *uint             `json:"organization_id,omitempty" gorm:"index"`
	PreferredChannel Channel           `json:"preferred_channel" gorm:"type:varchar(16)"`
	PushSubscription *PushSubscription `json:"-" gorm:"serializer:json;type:jsonb"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ProviderScope is the account that owns services on this user's behalf:
// the organization for employees, the user itself otherwise.
func (u *User) ProviderScope() uint {
	if u.OrganizationID != nil {
		return *u.OrganizationID
	}
	return u.ID
}

func (u *User) IsProvider() bool {
	return u.Role == RoleProvider
}

// Profile holds the fields shared by every account plus exactly one
// type-specific variant matching User.Type.
type Profile struct {
	Name         string               `json:"name"`
	Bio          string               `json:"bio,omitempty"`
	Phone        string               `json:"phone,omitempty"`
	Address      string               `json:"address,omitempty"`
	Website      string               `json:"website,omitempty"`
	AvatarURL    string               `json:"avatar_url,omitempty"`
	Individual   *IndividualDetails   `json:"individual,omitempty"`
	Organization *OrganizationDetails `json:"organization,omitempty"`
}

type IndividualDetails struct {
	DOB              string `json:"dob,omitempty"`
	Gender           string `json:"gender,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
}

type OrganizationDetails struct {
	CompanyName string `json:"company_name,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
	Size        string `json:"size,omitempty"`
}

// Validate checks that the variant present matches the account type.
func (p Profile) Validate(t AccountType) error {
	switch t {
	case AccountIndividual:
		if p.Organization != nil {
			return fmt.Errorf("%w: organization details on an individual account", utils.ErrValidation)
		}
		if p.Individual != nil && p.Individual.DOB != "" {
			if _, err := time.Parse(utils.DateLayout, p.Individual.DOB); err != nil {
				return fmt.Errorf("%w: dob must be YYYY-MM-DD", utils.ErrValidation)
			}
		}
	case AccountOrganization:
		if p.Individual != nil {
			return fmt.Errorf("%w: individual details on an organization account", utils.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown account type %q", utils.ErrValidation, t)
	}
	return nil
}

type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscription is the browser push endpoint registered by a user.
type PushSubscription struct {
	Endpoint string   `json:"endpoint"`
	Keys     PushKeys `json:"keys"`
}

func (s PushSubscription) Validate() error {
	if s.Endpoint == "" || s.Keys.P256dh == "" || s.Keys.Auth == "" {
		return fmt.Errorf("%w: subscription needs endpoint and keys", utils.ErrValidation)
	}
	return nil
}

func ParseRole(v string) (UserRole, error) {
	switch r := UserRole(strings.ToUpper(v)); r {
	case RoleClient, RoleProvider:
		return r, nil
	case "":
		return RoleClient, nil
	}
	return "", fmt.Errorf("%w: invalid role %q", utils.ErrValidation, v)
}

func ParseAccountType(v string) (AccountType, error) {
	switch t := AccountType(strings.ToUpper(v)); t {
	case AccountIndividual, AccountOrganization:
		return t, nil
	case "":
		return AccountIndividual, nil
	}
	return "", fmt.Errorf("%w: invalid account type %q", utils.ErrValidation, v)
}

// ParseEmployeeRole accepts the roles an owner can hand out. OWNER is
// reserved for the organization account itself.
func ParseEmployeeRole(v string) (EmployeeRole, error) {
	switch r := EmployeeRole(strings.ToUpper(v)); r {
	case EmployeeAdmin, EmployeeManager, EmployeeStaff:
		return r, nil
	case "":
		return EmployeeStaff, nil
	}
	return "", fmt.Errorf("%w: invalid employee role %q", utils.ErrValidation, v)
}

// ParseChannel returns fallback when v is empty.
func ParseChannel(v string, fallback Channel) (Channel, error) {
	switch c := Channel(strings.ToUpper(v)); c {
	case ChannelEmail, ChannelSMS, ChannelWhatsApp:
		return c, nil
	case "":
		if fallback == "" {
			return ChannelEmail, nil
		}
		return fallback, nil
	}
	return "", fmt.Errorf("%w: invalid channel %q", utils.ErrValidation, v)
}
