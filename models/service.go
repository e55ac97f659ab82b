package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meinhoongagan/booking-platform/utils"
)

type DeliveryType string

const (
	DeliveryInPerson  DeliveryType = "IN_PERSON"
	DeliveryOnline    DeliveryType = "ONLINE"
	DeliveryHomeVisit DeliveryType = "HOME_VISIT"
)

var DeliveryTypes = []DeliveryType{DeliveryInPerson, DeliveryOnline, DeliveryHomeVisit}

const MinServiceDuration = 15

type Service struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	ProviderID   uint            `json:"provider_id" gorm:"index;not null"`
	Provider     *User           `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	Name         string          `json:"name" gorm:"not null"`
	Description  string          `json:"description"`
	Category     string          `json:"category" gorm:"index"`
	Subcategory  string          `json:"subcategory"`
	DeliveryType DeliveryType    `json:"delivery_type" gorm:"type:varchar(16);index"`
	Duration     int             `json:"duration"` // minutes
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(12,2)"`
	Currency     string          `json:"currency" gorm:"type:varchar(3)"`
	MaxCapacity  int             `json:"max_capacity"`
	Availability Availability    `json:"availability" gorm:"serializer:json;type:jsonb"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `json:"-" gorm:"index"`
}

// Length is the booked span of one appointment for this service.
func (s *Service) Length() time.Duration {
	return time.Duration(s.Duration) * time.Minute
}

func (s *Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", utils.ErrValidation)
	}
	if s.Duration < MinServiceDuration {
		return fmt.Errorf("%w: duration must be at least %d minutes", utils.ErrValidation, MinServiceDuration)
	}
	if s.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", utils.ErrValidation)
	}
	if s.MaxCapacity < 1 {
		return fmt.Errorf("%w: max_capacity must be at least 1", utils.ErrValidation)
	}
	if _, err := ParseDeliveryType(string(s.DeliveryType)); err != nil {
		return err
	}
	return s.Availability.Validate()
}

func ParseDeliveryType(v string) (DeliveryType, error) {
	d := DeliveryType(strings.ToUpper(v))
	for _, known := range DeliveryTypes {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: invalid delivery type %q", utils.ErrValidation, v)
}

// Category is a browsable grouping of services.
type Category struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

var Categories = []Category{
	{Name: "Health", Subcategories: []string{"General Practice", "Dentistry", "Physiotherapy", "Nutrition"}},
	{Name: "Wellness", Subcategories: []string{"Massage", "Yoga", "Meditation", "Spa"}},
	{Name: "Beauty", Subcategories: []string{"Hair", "Nails", "Skincare", "Makeup"}},
	{Name: "Education", Subcategories: []string{"Tutoring", "Language", "Music", "Test Prep"}},
	{Name: "Consulting", Subcategories: []string{"Legal", "Financial", "Career", "Business"}},
	{Name: "Home Services", Subcategories: []string{"Cleaning", "Repairs", "Gardening", "Pet Care"}},
}
