package fleet

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/fleet-ops-system/internal/docstore"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/Temutjin2k/fleet-ops-system/internal/stats"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/fleet-ops-system/pkg/uuid"
)

// CreateDriver stores a new driver.
func (s *Service) CreateDriver(ctx context.Context, driver *models.Driver) (*models.Driver, error) {
	ctx = wrap.WithAction(wrap.WithCompanyID(ctx, driver.CompanyID), "create_driver")

	id, err := uuid.New()
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not generate driver id: %w", err))
	}

	now := s.now()
	driver.ID = id.String()
	driver.CreatedAt = now
	driver.UpdatedAt = now

	if err := s.store.Write(ctx, types.CollectionDrivers, driver.ID, driver); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not store driver: %w", err))
	}

	return driver, nil
}

// ListDrivers returns every driver of a company.
func (s *Service) ListDrivers(ctx context.Context, companyID string) ([]models.Driver, error) {
	docs, err := s.store.Query(ctx, types.CollectionDrivers, []docstore.Filter{docstore.Eq("company_id", companyID)})
	if err != nil {
		return nil, fmt.Errorf("could not list drivers: %w", err)
	}

	drivers, _ := stats.DecodeDrivers(docs)
	return drivers, nil
}

// FindDriverByPhone resolves a driver by phone number. Used for
// OTP-authenticated callers whose identity carries a phone, not an id.
func (s *Service) FindDriverByPhone(ctx context.Context, companyID, phone string) (*models.Driver, error) {
	docs, err := s.store.Query(ctx, types.CollectionDrivers, []docstore.Filter{docstore.Eq("phone_number", phone)})
	if err != nil {
		return nil, fmt.Errorf("could not look up driver: %w", err)
	}

	drivers, _ := stats.DecodeDrivers(docs)
	for i := range drivers {
		if drivers[i].CompanyID == companyID {
			return &drivers[i], nil
		}
	}

	return nil, types.ErrDriverNotFound
}
