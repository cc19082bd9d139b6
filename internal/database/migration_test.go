package database

import (
	"path/filepath"
	"testing"

	"money-tracking/internal/config"
	"money-tracking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "migrate_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestMigrateFreshStore(t *testing.T) {
	db := openTestDB(t)

	v, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, Migrate(db))
	v, err = SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, LatestVersion(), v)

	var cats []models.Category
	require.NoError(t, db.Order("id").Find(&cats).Error)
	require.Len(t, cats, 2)
	ids := []string{cats[0].ID, cats[1].ID}
	assert.ElementsMatch(t, []string{models.IncomeCategoryID, models.TransferCategoryID}, ids)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
	require.NoError(t, Seed(db))

	var n int64
	require.NoError(t, db.Model(&models.Category{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestSeedRestoresSystemCategories(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Unscoped().Where("id = ?", models.TransferCategoryID).Delete(&models.Category{}).Error)

	require.NoError(t, Seed(db))
	var cat models.Category
	require.NoError(t, db.Where("id = ?", models.TransferCategoryID).First(&cat).Error)
	assert.Equal(t, models.CategoryTransfer, cat.CategoryType)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:data/x.db?"+sqlitePragmas, sqliteDSN("data/x.db"))
	assert.Equal(t, "file::memory:?cache=shared&"+sqlitePragmas, sqliteDSN("file::memory:?cache=shared"))
}

func TestInitUnknownDriver(t *testing.T) {
	_, err := Init(config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
