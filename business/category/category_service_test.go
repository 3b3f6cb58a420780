//go:build !integration

package category

import (
	"context"
	"errors"
	"testing"

	"techshop/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategories struct {
	rows   map[uint64]domain.Category
	nextID uint64
}

func (f *fakeCategories) Create(_ context.Context, c *domain.Category) error {
	f.nextID++
	c.ID = f.nextID
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeCategories) FindByID(_ context.Context, id uint64) (domain.Category, error) {
	c, ok := f.rows[id]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return c, nil
}

func (f *fakeCategories) FindAll(context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	for _, c := range f.rows {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategories) Update(_ context.Context, c *domain.Category) error {
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, id uint64) error {
	if _, ok := f.rows[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(f.rows, id)
	return nil
}

type recorder struct {
	entries []domain.ActivityLog
}

func (r *recorder) Record(_ context.Context, entry domain.ActivityLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func TestCategoryLifecycle(t *testing.T) {
	rec := &recorder{}
	svc := NewCategoryService(&fakeCategories{rows: map[uint64]domain.Category{}}, rec)
	ctx := context.Background()
	actor := domain.Actor{UserID: 2}

	_, err := svc.CreateCategory(ctx, actor, &domain.Category{Name: "   "})
	var validationErr *domain.ValidationError
	assert.True(t, errors.As(err, &validationErr))

	created, err := svc.CreateCategory(ctx, actor, &domain.Category{Name: " Tablets "})
	require.NoError(t, err)
	assert.Equal(t, "Tablets", created.Name)

	updated, err := svc.UpdateCategory(ctx, actor, &domain.Category{ID: created.ID, Name: "Tablets & E-readers"})
	require.NoError(t, err)
	assert.Equal(t, "Tablets & E-readers", updated.Name)

	_, err = svc.UpdateCategory(ctx, actor, &domain.Category{ID: 99, Name: "Ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.DeleteCategory(ctx, actor, created.ID))
	_, err = svc.GetCategoryByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	_, err = svc.GetCategoryByID(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	require.Len(t, rec.entries, 3)
	assert.Equal(t, domain.ActionDelete, rec.entries[2].Action)
}
