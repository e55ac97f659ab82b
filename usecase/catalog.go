package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meinhoongagan/booking-platform/models"
	"github.com/meinhoongagan/booking-platform/utils"
)

const defaultCurrency = "USD"

type CatalogUsecase struct {
	db *gorm.DB
}

func NewCatalogUsecase(db *gorm.DB) *CatalogUsecase {
	return &CatalogUsecase{db: db}
}

// ServiceInput carries create and update fields. Nil fields keep their
// current value on update and take the default on create.
type ServiceInput struct {
	Name         *string              `json:"name"`
	Description  *string              `json:"description"`
	Category     *string              `json:"category"`
	Subcategory  *string              `json:"subcategory"`
	DeliveryType *string              `json:"delivery_type"`
	Duration     *int                 `json:"duration"`
	Price        *decimal.Decimal     `json:"price"`
	Currency     *string              `json:"currency"`
	MaxCapacity  *int                 `json:"max_capacity"`
	Availability *models.Availability `json:"availability"`
	IsActive     *bool                `json:"is_active"`
}

func (in ServiceInput) apply(s *models.Service) error {
	if in.Name != nil {
		s.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
	if in.Category != nil {
		s.Category = *in.Category
	}
	if in.Subcategory != nil {
		s.Subcategory = *in.Subcategory
	}
	if in.DeliveryType != nil {
		d, err := models.ParseDeliveryType(*in.DeliveryType)
		if err != nil {
			return err
		}
		s.DeliveryType = d
	}
	if in.Duration != nil {
		s.Duration = *in.Duration
	}
	if in.Price != nil {
		s.Price = *in.Price
	}
	if in.Currency != nil {
		s.Currency = strings.ToUpper(*in.Currency)
	}
	if in.MaxCapacity != nil {
		s.MaxCapacity = *in.MaxCapacity
	}
	if in.Availability != nil {
		s.Availability = *in.Availability
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	return nil
}

func (c *CatalogUsecase) providerScope(ctx context.Context, actorID uint) (uint, error) {
	actor, err := loadUser(ctx, c.db, actorID)
	if err != nil {
		return 0, err
	}
	if !actor.IsProvider() {
		return 0, fmt.Errorf("%w: only providers manage services", utils.ErrForbidden)
	}
	return actor.ProviderScope(), nil
}

func (c *CatalogUsecase) Create(ctx context.Context, actorID uint, in ServiceInput) (*models.Service, error) {
	scope, err := c.providerScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	svc := models.Service{
		ProviderID:   scope,
		DeliveryType: models.DeliveryInPerson,
		Currency:     defaultCurrency,
		MaxCapacity:  1,
		Availability: models.Availability{},
		IsActive:     true,
	}
	if err := in.apply(&svc); err != nil {
		return nil, err
	}
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	if err := c.db.WithContext(ctx).Create(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (c *CatalogUsecase) owned(ctx context.Context, actorID, id uint) (*models.Service, error) {
	scope, err := c.providerScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	svc, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != scope {
		return nil, fmt.Errorf("%w: service %d belongs to another provider", utils.ErrForbidden, id)
	}
	return svc, nil
}

func (c *CatalogUsecase) Update(ctx context.Context, actorID, id uint, in ServiceInput) (*models.Service, error) {
	svc, err := c.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(svc); err != nil {
		return nil, err
	}
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	svc.Provider = nil
	if err := c.db.WithContext(ctx).Save(svc).Error; err != nil {
		return nil, err
	}
	return svc, nil
}

// Delete soft-deletes the service; existing appointments keep referencing it.
func (c *CatalogUsecase) Delete(ctx context.Context, actorID, id uint) error {
	svc, err := c.owned(ctx, actorID, id)
	if err != nil {
		return err
	}
	return c.db.WithContext(ctx).Delete(&models.Service{}, svc.ID).Error
}

func (c *CatalogUsecase) Get(ctx context.Context, id uint) (*models.Service, error) {
	var svc models.Service
	err := c.db.WithContext(ctx).Preload("Provider").First(&svc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: service %d", utils.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

type ServiceFilter struct {
	Category     string
	DeliveryType string
	Q            string
	ProviderID   uint
	Sort         string
	Order        string
}

var sortColumns = map[string]string{
	"":         "services.id",
	"name":     "services.name",
	"price":    "services.price",
	"duration": "services.duration",
}

// List searches the catalog. Inactive services are only listed when a
// provider filters on their own scope.
func (c *CatalogUsecase) List(ctx context.Context, actorID uint, f ServiceFilter) ([]models.Service, error) {
	column, ok := sortColumns[strings.ToLower(f.Sort)]
	if !ok {
		return nil, fmt.Errorf("%w: sort must be name, price or duration", utils.ErrValidation)
	}
	order := strings.ToUpper(f.Order)
	switch order {
	case "":
		order = "ASC"
	case "ASC", "DESC":
	default:
		return nil, fmt.Errorf("%w: order must be asc or desc", utils.ErrValidation)
	}

	q := c.db.WithContext(ctx).Model(&models.Service{}).
		Select("services.*").
		Joins("JOIN users ON users.id = services.provider_id").
		Preload("Provider")

	ownScope := false
	if f.ProviderID != 0 {
		q = q.Where("services.provider_id = ?", f.ProviderID)
		if actorID != 0 {
			if actor, err := loadUser(ctx, c.db, actorID); err == nil && actor.IsProvider() {
				ownScope = actor.ProviderScope() == f.ProviderID
			}
		}
	}
	if !ownScope {
		q = q.Where("services.is_active = ?", true)
	}
	if f.Category != "" {
		q = q.Where("LOWER(services.category) = ?", strings.ToLower(f.Category))
	}
	if f.DeliveryType != "" {
		d, err := models.ParseDeliveryType(f.DeliveryType)
		if err != nil {
			return nil, err
		}
		q = q.Where("services.delivery_type = ?", d)
	}
	if term := strings.TrimSpace(f.Q); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where(
			"LOWER(services.name) LIKE ? OR LOWER(services.description) LIKE ? OR LOWER("+profileNameExpr(c.db)+") LIKE ?",
			like, like, like,
		)
	}

	var out []models.Service
	if err := q.Order(column + " " + order).Order("services.id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// profileNameExpr reads users.profile.name on either supported dialect.
func profileNameExpr(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "users.profile->>'name'"
	}
	return "json_extract(users.profile, '$.name')"
}

func (c *CatalogUsecase) Categories() []models.Category {
	return models.Categories
}

func (c *CatalogUsecase) DeliveryTypes() []models.DeliveryType {
	return models.DeliveryTypes
}
