package address

import (
	"context"
	"strings"

	"toutaunclicla/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AddressRepository contract interface
type AddressRepository interface {
	Create(ctx context.Context, address *domain.Address) error
	FindByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Address, int64, error)
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (domain.Address, error)
	Update(ctx context.Context, address *domain.Address) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
}

type addressService struct {
	addressRepo AddressRepository
	validate    *validator.Validate
}

func NewAddressService(addressRepo AddressRepository, validate *validator.Validate) *addressService {
	return &addressService{
		addressRepo: addressRepo,
		validate:    validate,
	}
}

func (s *addressService) CreateAddress(ctx context.Context, address domain.Address) (domain.Address, error) {
	address = normalize(address)
	if err := s.check(address); err != nil {
		return domain.Address{}, err
	}

	address.ID = uuid.New()
	if err := s.addressRepo.Create(ctx, &address); err != nil {
		return domain.Address{}, err
	}

	return address, nil
}

// ListAddresses returns the default address first, then the newest.
func (s *addressService) ListAddresses(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.Page[domain.Address], error) {
	addresses, total, err := s.addressRepo.FindByUser(ctx, userID, page)
	if err != nil {
		return domain.Page[domain.Address]{}, err
	}

	return domain.NewPage(addresses, page, total), nil
}

func (s *addressService) GetAddress(ctx context.Context, userID, id uuid.UUID) (domain.Address, error) {
	return s.addressRepo.FindByIDForUser(ctx, userID, id)
}

func (s *addressService) UpdateAddress(ctx context.Context, address domain.Address) (domain.Address, error) {
	address = normalize(address)
	if err := s.check(address); err != nil {
		return domain.Address{}, err
	}

	current, err := s.addressRepo.FindByIDForUser(ctx, address.UserID, address.ID)
	if err != nil {
		return domain.Address{}, err
	}

	if err := s.addressRepo.Update(ctx, &address); err != nil {
		return domain.Address{}, err
	}

	address.IsDefault = current.IsDefault
	address.CreatedAt = current.CreatedAt
	return address, nil
}

func (s *addressService) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	return s.addressRepo.Delete(ctx, userID, id)
}

func (s *addressService) SetDefaultAddress(ctx context.Context, userID, id uuid.UUID) (domain.Address, error) {
	if err := s.addressRepo.SetDefault(ctx, userID, id); err != nil {
		return domain.Address{}, err
	}

	return s.addressRepo.FindByIDForUser(ctx, userID, id)
}

func normalize(a domain.Address) domain.Address {
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
	a.Phone = strings.TrimSpace(a.Phone)
	return a
}

func (s *addressService) check(a domain.Address) error {
	rules := []struct {
		field string
		value string
		tag   string
	}{
		{"street", a.Street, "required,max=255"},
		{"city", a.City, "required,max=100"},
		{"state", a.State, "max=100"},
		{"postal_code", a.PostalCode, "required,max=20"},
		{"country", a.Country, "required,max=100"},
		{"phone", a.Phone, "omitempty,e164"},
	}

	details := map[string]any{}
	for _, r := range rules {
		if err := s.validate.Var(r.value, r.tag); err != nil {
			details[r.field] = "invalid " + strings.ReplaceAll(r.field, "_", " ")
		}
	}
	if len(details) > 0 {
		return domain.NewValidationError("invalid address", details)
	}

	return nil
}
