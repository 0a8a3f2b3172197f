package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/category/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCategories struct {
	items []model.Category
}

func (m *memCategories) Create(_ context.Context, c *model.Category) error {
	c.ID = int64(len(m.items) + 1)
	m.items = append(m.items, *c)
	return nil
}

func (m *memCategories) FindByID(_ context.Context, id int64) (*model.Category, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, nil
}

func (m *memCategories) FindByName(_ context.Context, name string) (*model.Category, error) {
	for i := range m.items {
		if strings.EqualFold(m.items[i].Name, name) {
			return &m.items[i], nil
		}
	}
	return nil, nil
}

func (m *memCategories) FindAll(context.Context, *dto.CategoryFilters) ([]model.Category, int, error) {
	return m.items, len(m.items), nil
}

func TestCreateCategory(t *testing.T) {
	repo := &memCategories{}
	uc := NewCategoryUseCase(repo, logger.NewNop())
	ctx := context.Background()

	c, err := uc.CreateCategory(ctx, &dto.CreateCategoryInput{Name: " Camping ", Description: "outdoor"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, "Camping", c.Name)
	require.NotNil(t, c.Description)

	_, err = uc.CreateCategory(ctx, &dto.CreateCategoryInput{Name: "camping"})
	assert.ErrorIs(t, err, model.ErrAlreadyExists)

	_, err = uc.CreateCategory(ctx, &dto.CreateCategoryInput{Name: ""})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	list, total, err := uc.ListCategories(ctx, &dto.CategoryFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)

	got, err := uc.GetCategory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Camping", got.Name)
}
