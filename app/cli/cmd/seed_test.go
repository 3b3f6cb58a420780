//go:build !integration

package cmd

import (
	"context"
	"testing"

	"techshop/business/staff"
	"techshop/domain"
	"techshop/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func TestSeedCatalogIsRerunnable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	s := newSeeder(db)

	created, err := s.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	created, err = s.Catalog(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	var categories, products, variants int64
	require.NoError(t, db.Model(&domain.Category{}).Count(&categories).Error)
	require.NoError(t, db.Model(&domain.Product{}).Count(&products).Error)
	require.NoError(t, db.Model(&domain.ProductVariant{}).Count(&variants).Error)
	assert.Equal(t, int64(3), categories)
	assert.Equal(t, int64(5), products)
	assert.Equal(t, int64(4), variants)
}

func TestSeedSuperAdmin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	s := newSeeder(db)

	_, err := s.SuperAdmin(ctx, "admin@techshop.local", "123")
	assert.Error(t, err)

	profile, err := s.SuperAdmin(ctx, "admin@techshop.local", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, profile.Role)
	assert.True(t, profile.IsActive)
	assert.True(t, profile.CanManageStaff)

	var user domain.User
	require.NoError(t, db.Where("email = ?", "admin@techshop.local").First(&user).Error)
	assert.True(t, user.IsVerified)
	assert.Equal(t, domain.UserRoleStaff, user.Role)

	profile, err = s.SuperAdmin(ctx, "admin@techshop.local", "s3cret-pass")
	require.NoError(t, err)
	assert.Zero(t, profile.ID)
}

func TestCreateStaffNeedsRegisteredUser(t *testing.T) {
	db := newTestDB(t)
	s := newSeeder(db)

	_, err := s.staff.CreateStaff(context.Background(), cliActor, staff.CreateStaffInput{
		Email: "nobody@techshop.local",
		Role:  domain.RoleOrderManager,
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
