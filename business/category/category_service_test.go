package category

import (
	"context"
	"testing"

	"toutaunclicla/domain"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategories map[uuid.UUID]domain.Category

func (f fakeCategories) Create(_ context.Context, category *domain.Category) error {
	f[category.ID] = *category
	return nil
}

func (f fakeCategories) FindByID(_ context.Context, id uuid.UUID) (domain.Category, error) {
	c, ok := f[id]
	if !ok {
		return domain.Category{}, domain.NewNotFoundError("category")
	}
	return c, nil
}

func (f fakeCategories) FindAll(_ context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(f))
	for _, c := range f {
		out = append(out, c)
	}
	return out, nil
}

func (f fakeCategories) Update(_ context.Context, category *domain.Category) error {
	if _, ok := f[category.ID]; !ok {
		return domain.NewNotFoundError("category")
	}
	f[category.ID] = *category
	return nil
}

func (f fakeCategories) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f[id]; !ok {
		return domain.NewNotFoundError("category")
	}
	delete(f, id)
	return nil
}

func TestCreateCategory(t *testing.T) {
	repo := fakeCategories{}
	svc := NewCategoryService(repo)

	got, err := svc.CreateCategory(context.Background(), &domain.Category{Name: "  Jardín ", Description: "Plantas"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, "Jardín", got.Name)

	all, err := svc.GetAllCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateCategory_BlankName(t *testing.T) {
	svc := NewCategoryService(fakeCategories{})

	_, err := svc.CreateCategory(context.Background(), &domain.Category{Name: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestUpdateCategory(t *testing.T) {
	id := uuid.New()
	repo := fakeCategories{id: {ID: id, Name: "Old"}}
	svc := NewCategoryService(repo)

	got, err := svc.UpdateCategory(context.Background(), &domain.Category{ID: id, Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	_, err = svc.UpdateCategory(context.Background(), &domain.Category{ID: uuid.New(), Name: "Missing"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteCategory(t *testing.T) {
	id := uuid.New()
	svc := NewCategoryService(fakeCategories{id: {ID: id, Name: "Gone"}})

	require.NoError(t, svc.DeleteCategory(context.Background(), id))
	_, err := svc.GetCategoryByID(context.Background(), id)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestGetAllCategories_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCategoryService(fakeCategories{}).GetAllCategories(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
