package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/picstash/picstash/api/handler/dto"
	"github.com/picstash/picstash/config"
	"github.com/picstash/picstash/database/dbcore"
	"github.com/picstash/picstash/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type fixture struct {
	router *gin.Engine
}

func setupFixture(t *testing.T) *fixture {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ServerDomain: "http://media.test",
		DBType:       "sqlite",
		DBFilePath:   fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		// A shared-cache in-memory SQLite database is dropped once its last
		// connection closes, so the pool must keep at least one idle conn.
		DBMaxIdleConns:      2,
		StorageType:         "local",
		StorageLocalPath:    t.TempDir(),
		CacheType:           "memory",
		CacheResponseTTL:    60,
		RateLimitApiRPS:     10000,
		RateLimitApiBurst:   10000,
		RateLimitExpireTime: time.Minute,
		UploadMaxSizeMB:     5,
	}

	container, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(container.Close)
	require.NoError(t, dbcore.AutoMigrate(container.DB))

	return &fixture{router: NewRouter(container)}
}

func (f *fixture) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	// Non-JSON responses (static files, bare 404s) just leave env zeroed.
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (f *fixture) postJSON(t *testing.T, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return f.do(t, req)
}

func (f *fixture) patchJSON(t *testing.T, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPatch, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return f.do(t, req)
}

func (f *fixture) get(t *testing.T, path string) (*httptest.ResponseRecorder, envelope) {
	return f.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (f *fixture) delete(t *testing.T, path string) (*httptest.ResponseRecorder, envelope) {
	return f.do(t, httptest.NewRequest(http.MethodDelete, path, nil))
}

func (f *fixture) upload(t *testing.T, fileName string, content []byte, fields map[string]string) (*httptest.ResponseRecorder, envelope) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/images", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return f.do(t, req)
}

func (f *fixture) createGallery(t *testing.T, name string) dto.Gallery {
	w, env := f.postJSON(t, "/api/galleries", gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code)

	var g dto.Gallery
	require.NoError(t, json.Unmarshal(env.Data, &g))
	return g
}

func (f *fixture) getGallery(t *testing.T, id uint) dto.Gallery {
	w, env := f.get(t, fmt.Sprintf("/api/galleries/%d", id))
	require.Equal(t, http.StatusOK, w.Code)

	var g dto.Gallery
	require.NoError(t, json.Unmarshal(env.Data, &g))
	return g
}

func (f *fixture) uploadImage(t *testing.T, fileName string, galleryID uint) dto.Image {
	fields := map[string]string{}
	if galleryID != 0 {
		fields["galleryId"] = strconv.FormatUint(uint64(galleryID), 10)
	}
	w, env := f.upload(t, fileName, testPNG(t, 64, 48), fields)
	require.Equal(t, http.StatusCreated, w.Code)

	var img dto.Image
	require.NoError(t, json.Unmarshal(env.Data, &img))
	return img
}

func testPNG(t *testing.T, width, height int) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func TestUploadIntoGallery(t *testing.T) {
	f := setupFixture(t)

	g := f.createGallery(t, "Trips")
	assert.Equal(t, "trips", g.Slug)
	assert.Equal(t, int64(0), g.ImageCount)

	img := f.uploadImage(t, "photo.png", g.ID)
	require.NotNil(t, img.Gallery)
	assert.Equal(t, "Trips", img.Gallery.Name)
	assert.Equal(t, 64, img.Metadata.Width)
	assert.Equal(t, 48, img.Metadata.Height)
	assert.Equal(t, "png", img.Metadata.Format)
	assert.Equal(t, "http://media.test/"+img.Path, img.URL)

	reloaded := f.getGallery(t, g.ID)
	assert.Equal(t, int64(1), reloaded.ImageCount)
	require.Len(t, reloaded.Images, 1)
	assert.Equal(t, img.ID, reloaded.Images[0].ID)
}

func TestMoveImageBetweenGalleries(t *testing.T) {
	f := setupFixture(t)

	a := f.createGallery(t, "Gallery A")
	b := f.createGallery(t, "Gallery B")
	first := f.uploadImage(t, "first.png", a.ID)
	f.uploadImage(t, "second.png", a.ID)
	require.Equal(t, int64(2), f.getGallery(t, a.ID).ImageCount)

	w, env := f.patchJSON(t, fmt.Sprintf("/api/images/%d", first.ID), gin.H{"galleryId": b.ID})
	require.Equal(t, http.StatusOK, w.Code)

	var moved dto.Image
	require.NoError(t, json.Unmarshal(env.Data, &moved))
	require.NotNil(t, moved.Gallery)
	assert.Equal(t, b.ID, moved.Gallery.ID)

	assert.Equal(t, int64(1), f.getGallery(t, a.ID).ImageCount)
	assert.Equal(t, int64(1), f.getGallery(t, b.ID).ImageCount)
}

func TestDeleteGalleryDetachesImages(t *testing.T) {
	f := setupFixture(t)

	g := f.createGallery(t, "Doomed")
	img := f.uploadImage(t, "survivor.png", g.ID)

	w, _ := f.delete(t, fmt.Sprintf("/api/galleries/%d", g.ID))
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = f.get(t, fmt.Sprintf("/api/galleries/%d", g.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The member image survives, unassigned.
	w, env := f.get(t, fmt.Sprintf("/api/images/%d", img.ID))
	require.Equal(t, http.StatusOK, w.Code)
	var got dto.Image
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Nil(t, got.Gallery)
}

func TestDeleteImage(t *testing.T) {
	f := setupFixture(t)

	g := f.createGallery(t, "Trips")
	img := f.uploadImage(t, "gone.png", g.ID)

	// The stored original is reachable over the static route before delete.
	w, _ := f.get(t, "/"+img.Path)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = f.delete(t, fmt.Sprintf("/api/images/%d", img.ID))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, int64(0), f.getGallery(t, g.ID).ImageCount)

	w, _ = f.get(t, fmt.Sprintf("/api/images/%d", img.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.get(t, "/"+img.Path)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	f := setupFixture(t)

	w, env := f.upload(t, "notes.txt", []byte("definitely not an image"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.NotEmpty(t, env.Error.Message)

	// Nothing was written: the image list stays empty.
	_, listEnv := f.get(t, "/api/images")
	var imgs []dto.Image
	require.NoError(t, json.Unmarshal(listEnv.Data, &imgs))
	assert.Empty(t, imgs)
}

func TestDuplicateGalleryNameConflicts(t *testing.T) {
	f := setupFixture(t)

	f.createGallery(t, "Trips")
	w, env := f.postJSON(t, "/api/galleries", gin.H{"name": "Trips"})
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.NotEmpty(t, env.Error.Message)
}

func TestMalformedIDs(t *testing.T) {
	f := setupFixture(t)

	paths := []string{"/api/images/abc", "/api/galleries/abc", "/api/images/0"}
	for _, p := range paths {
		w, _ := f.get(t, p)
		assert.Equal(t, http.StatusBadRequest, w.Code, p)
	}
}

func TestListImagesFilteredByGallery(t *testing.T) {
	f := setupFixture(t)

	g := f.createGallery(t, "Trips")
	f.uploadImage(t, "in.png", g.ID)
	f.uploadImage(t, "out.png", 0)

	_, env := f.get(t, fmt.Sprintf("/api/images?gallery=%d", g.ID))
	var imgs []dto.Image
	require.NoError(t, json.Unmarshal(env.Data, &imgs))
	require.Len(t, imgs, 1)
	assert.Equal(t, "in.png", imgs[0].OriginalName)
}

func TestCachedReadsSeeWrites(t *testing.T) {
	f := setupFixture(t)

	g := f.createGallery(t, "Trips")

	// Prime the response cache, then mutate and read again.
	require.Equal(t, int64(0), f.getGallery(t, g.ID).ImageCount)
	f.uploadImage(t, "new.png", g.ID)
	assert.Equal(t, int64(1), f.getGallery(t, g.ID).ImageCount)
}

func TestHealthAndVersion(t *testing.T) {
	f := setupFixture(t)

	w, env := f.get(t, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, _ = f.get(t, "/version")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}
