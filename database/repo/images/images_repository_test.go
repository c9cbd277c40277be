package images

import (
	"fmt"
	"testing"

	"github.com/picstash/picstash/database/models"
	"github.com/picstash/picstash/database/repo/galleries"
	"github.com/picstash/picstash/internal/apperr"
	"github.com/picstash/picstash/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Gallery{}, &models.Image{}))
	return db
}

func createGallery(t *testing.T, db *gorm.DB, name string) *models.Gallery {
	g := &models.Gallery{Name: name, Slug: utils.Slugify(name)}
	require.NoError(t, galleries.NewRepository(db).Create(g))
	return g
}

func newImage(fileName string, galleryID *uint) *models.Image {
	return &models.Image{
		FileName:  fileName,
		Path:      "uploads/" + fileName,
		GalleryID: galleryID,
	}
}

// galleryCount reloads the denormalized counter straight from the store.
func galleryCount(t *testing.T, db *gorm.DB, id uint) int64 {
	var g models.Gallery
	require.NoError(t, db.First(&g, id).Error)
	return g.ImageCount
}

func TestCreate_IncrementsGalleryCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	g := createGallery(t, db, "Trips")

	require.NoError(t, repo.Create(newImage("a.jpg", &g.ID)))

	assert.Equal(t, int64(1), galleryCount(t, db, g.ID))

	count, err := repo.CountInGallery(g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreate_WithoutGallery(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	img := newImage("a.jpg", nil)
	require.NoError(t, repo.Create(img))

	got, err := repo.GetByID(img.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GalleryID)
}

func TestCreate_MissingGalleryRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	missing := uint(777)
	err := repo.Create(newImage("a.jpg", &missing))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	var count int64
	require.NoError(t, db.Model(&models.Image{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReassign_MovesCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	a := createGallery(t, db, "Gallery A")
	b := createGallery(t, db, "Gallery B")

	first := newImage("a.jpg", &a.ID)
	second := newImage("b.jpg", &a.ID)
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))
	require.Equal(t, int64(2), galleryCount(t, db, a.ID))

	require.NoError(t, repo.Reassign(first, &b.ID))

	assert.Equal(t, int64(1), galleryCount(t, db, a.ID))
	assert.Equal(t, int64(1), galleryCount(t, db, b.ID))

	moved, err := repo.GetByID(first.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.GalleryID)
	assert.Equal(t, b.ID, *moved.GalleryID)
}

func TestReassign_SameGalleryIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	g := createGallery(t, db, "Trips")

	img := newImage("a.jpg", &g.ID)
	require.NoError(t, repo.Create(img))

	require.NoError(t, repo.Reassign(img, &g.ID))

	assert.Equal(t, int64(1), galleryCount(t, db, g.ID))
	got, err := repo.GetByID(img.ID)
	require.NoError(t, err)
	require.NotNil(t, got.GalleryID)
	assert.Equal(t, g.ID, *got.GalleryID)
}

func TestReassign_Unassign(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	g := createGallery(t, db, "Trips")

	img := newImage("a.jpg", &g.ID)
	require.NoError(t, repo.Create(img))

	require.NoError(t, repo.Reassign(img, nil))

	assert.Equal(t, int64(0), galleryCount(t, db, g.ID))
	got, err := repo.GetByID(img.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GalleryID)
}

func TestReassign_MissingTargetRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	g := createGallery(t, db, "Trips")

	img := newImage("a.jpg", &g.ID)
	require.NoError(t, repo.Create(img))

	missing := uint(777)
	err := repo.Reassign(img, &missing)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// The failed move must leave the old membership fully intact.
	assert.Equal(t, int64(1), galleryCount(t, db, g.ID))
	got, err := repo.GetByID(img.ID)
	require.NoError(t, err)
	require.NotNil(t, got.GalleryID)
	assert.Equal(t, g.ID, *got.GalleryID)
}

func TestDeleteWithDetach_DecrementsCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	g := createGallery(t, db, "Trips")

	img := newImage("a.jpg", &g.ID)
	require.NoError(t, repo.Create(img))

	require.NoError(t, repo.DeleteWithDetach(img))

	assert.Equal(t, int64(0), galleryCount(t, db, g.ID))
	_, err := repo.GetByID(img.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestList_FilterByGallery(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	g := createGallery(t, db, "Trips")

	require.NoError(t, repo.Create(newImage("a.jpg", &g.ID)))
	require.NoError(t, repo.Create(newImage("b.jpg", nil)))

	all, err := repo.List(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := repo.List(&g.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "a.jpg", filtered[0].FileName)
}
