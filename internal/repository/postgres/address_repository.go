package postgres

import (
	"context"

	"toutaunclicla/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AddressRepository struct {
	DB *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{
		DB: db,
	}
}

// Create stores the address; a user's first address, or one flagged as
// default, becomes the only default.
func (r *AddressRepository) Create(ctx context.Context, address *domain.Address) error {
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Address{}).Where("usuario_id = ?", address.UserID).Count(&count).Error; err != nil {
			return mapError(err, "address", "failed to count addresses")
		}

		if count == 0 {
			address.IsDefault = true
		}

		if address.IsDefault && count > 0 {
			if err := clearDefault(tx, address.UserID); err != nil {
				return err
			}
		}

		if err := tx.Create(address).Error; err != nil {
			return mapError(err, "address", "failed to create address")
		}

		return nil
	})
}

// FindByUser pages through a user's addresses, default first and then newest.
func (r *AddressRepository) FindByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Address, int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&domain.Address{}).
		Where("usuario_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, mapError(err, "address", "failed to count addresses")
	}

	var addresses []domain.Address
	err = r.DB.WithContext(ctx).
		Where("usuario_id = ?", userID).
		Order("predeterminada DESC, creado_en DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&addresses).Error
	if err != nil {
		return nil, 0, mapError(err, "address", "failed to find addresses")
	}

	return addresses, total, nil
}

func (r *AddressRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (domain.Address, error) {
	var address domain.Address

	err := r.DB.WithContext(ctx).
		Where("id = ? AND usuario_id = ?", id, userID).
		First(&address).Error
	if err != nil {
		return domain.Address{}, mapError(err, "address", "failed to find address")
	}

	return address, nil
}

func (r *AddressRepository) Update(ctx context.Context, address *domain.Address) error {
	result := r.DB.WithContext(ctx).Model(&domain.Address{}).
		Where("id = ? AND usuario_id = ?", address.ID, address.UserID).
		Updates(map[string]any{
			"calle":         address.Street,
			"ciudad":        address.City,
			"provincia":     address.State,
			"codigo_postal": address.PostalCode,
			"pais":          address.Country,
			"telefono":      address.Phone,
		})

	return expectOne(result, "address", "failed to update address")
}

func (r *AddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.DB.WithContext(ctx).
		Where("id = ? AND usuario_id = ?", id, userID).
		Delete(&domain.Address{})

	return expectOne(result, "address", "failed to delete address")
}

// SetDefault clears the user's current default and flags id in one transaction.
func (r *AddressRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearDefault(tx, userID); err != nil {
			return err
		}

		result := tx.Model(&domain.Address{}).
			Where("id = ? AND usuario_id = ?", id, userID).
			Update("predeterminada", true)

		return expectOne(result, "address", "failed to set default address")
	})
}

func clearDefault(tx *gorm.DB, userID uuid.UUID) error {
	err := tx.Model(&domain.Address{}).
		Where("usuario_id = ? AND predeterminada = ?", userID, true).
		Update("predeterminada", false).Error

	return mapError(err, "address", "failed to clear default address")
}
