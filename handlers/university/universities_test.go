package university_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/database"
	"github.com/EnmanuelReynoso23/el-pensum/database/dbtest"
	"github.com/EnmanuelReynoso23/el-pensum/handlers/handlertest"
	"github.com/EnmanuelReynoso23/el-pensum/handlers/university"
	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/services/comparison"
	"github.com/EnmanuelReynoso23/el-pensum/services/storage/storagetest"
	"github.com/EnmanuelReynoso23/el-pensum/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type countingInvalidator struct{ calls atomic.Int32 }

func (i *countingInvalidator) Invalidate(ctx context.Context) error {
	i.calls.Add(1)
	return nil
}

type fixture struct {
	app         *fiber.App
	db          *gorm.DB
	store       *storagetest.MemoryStore
	invalidator *countingInvalidator
	adminToken  string
	editorToken string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	require.NoError(t, database.NewSeeder(db, zap.NewNop()).SeedCatalog())

	jwt := handlertest.JWTManager()
	admin := handlertest.CreateUser(t, db, "admin@elpensum.do", model.RoleAdmin)
	editor := handlertest.CreateUser(t, db, "editor@elpensum.do", model.RoleEditor)

	f := &fixture{
		db:          db,
		store:       storagetest.NewMemoryStore(),
		invalidator: &countingInvalidator{},
		adminToken:  handlertest.Token(t, jwt, admin),
		editorToken: handlertest.Token(t, jwt, editor),
	}

	resolver := comparison.NewResolver(database.NewCatalogStore(db), time.Second, zap.NewNop())
	h := university.NewUniversityHandler(db, f.invalidator, resolver, f.store)
	mw := middleware.NewAuthMiddleware(jwt, db)
	admins := mw.RequireAdmin()

	app := fiber.New()
	g := app.Group("/universities")
	g.Get("/", h.ListUniversities)
	g.Get("/filter", h.FilterUniversities)
	g.Get("/id", h.GetUniversityID)
	g.Get("/by-program/:programId", h.GetUniversitiesByProgram)
	g.Get("/:id", h.GetUniversity)
	g.Get("/:id/programs", h.GetUniversityPrograms)
	g.Post("/", append(admins, middleware.AdminAuditLog(db, "create", "university"), h.CreateUniversity)...)
	g.Put("/:id", append(admins, middleware.AdminAuditLog(db, "update", "university"), h.UpdateUniversity)...)
	g.Delete("/:id", append(admins, middleware.AdminAuditLog(db, "delete", "university"), h.DeleteUniversity)...)
	g.Post("/:id/logo", append(admins, h.UploadLogo)...)
	g.Post("/:id/campus-images", append(admins, h.UploadCampusImages)...)
	f.app = app
	return f
}

func (f *fixture) do(t *testing.T, r handlertest.Request) (*http.Response, *handlertest.Envelope) {
	return handlertest.Do(t, f.app, r)
}

func (f *fixture) universityID(t *testing.T, name string) uint {
	t.Helper()
	var u model.University
	require.NoError(t, f.db.Where("name = ?", name).First(&u).Error)
	return u.ID
}

func newUniversity(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":     name,
		"country":  "República Dominicana",
		"city":     "Santo Domingo",
		"logo_url": "https://example.edu.do/logo.png",
	}
}

func TestListUniversities(t *testing.T) {
	f := setup(t)

	resp, env := f.do(t, handlertest.Request{Method: http.MethodGet, Path: "/universities?limit=2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page []model.University
	env.Decode(t, &page)
	assert.Len(t, page, 2)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(4), env.Pagination.Total)
	assert.Equal(t, 2, env.Pagination.TotalPages)

	resp, env = f.do(t, handlertest.Request{Method: http.MethodGet, Path: "/universities?search=IBERO"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env.Decode(t, &page)
	require.Len(t, page, 1)
	assert.Equal(t, "Universidad Iberoamericana", page[0].Name)
	assert.Len(t, page[0].Offerings, 2)
}

func TestFilterAndResolveID(t *testing.T) {
	f := setup(t)

	resp, env := f.do(t, handlertest.Request{Method: http.MethodGet, Path: "/universities/filter?name=santo"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []model.University
	env.Decode(t, &found)
	assert.Len(t, found, 2)

	resp, _ = f.do(t, handlertest.Request{Method: http.MethodGet, Path: "/universities/filter"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = f.do(t, handlertest.Request{Method: http.MethodGet, Path: "/universities/id?name=universidad%20iberoamericana"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct{ ID uint }
	env.Decode(t, &got)
	assert.Equal(t, f.universityID(t, "Universidad Iberoamericana"), got.ID)

	resp, _ = f.do(t, handlertest.Request{Method: http.MethodGet, Path: "/universities/id?name=nadie"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, handlertest.Request{Method: http.MethodGet, Path: "/universities/id?name=%20"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUniversity(t *testing.T) {
	f := setup(t)
	id := f.universityID(t, "Universidad Iberoamericana")

	resp, env := f.do(t, handlertest.Request{Method: http.MethodGet, Path: "/universities/" + handlertest.ID(id)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var u model.University
	env.Decode(t, &u)
	assert.Equal(t, "universidad-iberoamericana", u.Slug)
	require.Len(t, u.Offerings, 2)
	assert.NotNil(t, u.Offerings[0].Program)

	resp, _ = f.do(t, handlertest.Request{Method: http.MethodGet, Path: "/universities/0"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = f.do(t, handlertest.Request{Method: http.MethodGet, Path: "/universities/9999"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env = f.do(t, handlertest.Request{Method: http.MethodGet, Path: "/universities/" + handlertest.ID(id) + "/programs"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var offerings []model.Offering
	env.Decode(t, &offerings)
	require.Len(t, offerings, 2)
	assert.Equal(t, "Medicina", offerings[0].Program.Name)
}

func TestGetUniversitiesByProgram(t *testing.T) {
	f := setup(t)
	var medicina model.Program
	require.NoError(t, f.db.Where("name = ?", "Medicina").First(&medicina).Error)

	resp, env := f.do(t, handlertest.Request{Method: http.MethodGet, Path: "/universities/by-program/" + handlertest.ID(medicina.ID)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got []model.University
	env.Decode(t, &got)
	require.Len(t, got, 2)
	assert.Equal(t, "Pontificia Universidad Católica Madre y Maestra", got[0].Name)
	assert.Equal(t, "Universidad Iberoamericana", got[1].Name)
}

func TestCreateUniversity(t *testing.T) {
	f := setup(t)

	resp, _ := f.do(t, handlertest.Request{Method: http.MethodPost, Path: "/universities", Body: newUniversity("Universidad APEC")})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, handlertest.Request{Method: http.MethodPost, Path: "/universities", Body: newUniversity("Universidad APEC"), Token: f.editorToken})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env := f.do(t, handlertest.Request{Method: http.MethodPost, Path: "/universities", Body: newUniversity("Universidad APEC"), Token: f.adminToken})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.University
	env.Decode(t, &created)
	assert.Equal(t, "universidad-apec", created.Slug)
	assert.Equal(t, []string{}, []string(created.CampusImages))
	assert.Equal(t, int32(1), f.invalidator.calls.Load())

	var audit model.AdminAuditLog
	require.NoError(t, f.db.Where("resource = ?", "university").First(&audit).Error)
	assert.Equal(t, "create", audit.Action)
	assert.Equal(t, http.StatusCreated, audit.StatusCode)

	resp, _ = f.do(t, handlertest.Request{Method: http.MethodPost, Path: "/universities", Body: newUniversity("UNIVERSIDAD apec"), Token: f.adminToken})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	invalid := newUniversity("   ")
	delete(invalid, "logo_url")
	resp, env = f.do(t, handlertest.Request{Method: http.MethodPost, Path: "/universities", Body: invalid, Token: f.adminToken})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Error.Fields, "name")
	assert.Contains(t, env.Error.Fields, "logo_url")
}

func TestUpdateUniversity(t *testing.T) {
	f := setup(t)
	id := f.universityID(t, "Universidad Iberoamericana")

	body := newUniversity("UNIBE")
	body["id"] = id + 1
	resp, _ := f.do(t, handlertest.Request{Method: http.MethodPut, Path: "/universities/" + handlertest.ID(id), Body: body, Token: f.adminToken})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body["id"] = id
	resp, env := f.do(t, handlertest.Request{Method: http.MethodPut, Path: "/universities/" + handlertest.ID(id), Body: body, Token: f.adminToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated model.University
	env.Decode(t, &updated)
	assert.Equal(t, "unibe", updated.Slug)

	// keeping its own name is not a conflict
	resp, _ = f.do(t, handlertest.Request{Method: http.MethodPut, Path: "/universities/" + handlertest.ID(id), Body: body, Token: f.adminToken})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body["name"] = "Instituto Tecnológico de Santo Domingo"
	resp, _ = f.do(t, handlertest.Request{Method: http.MethodPut, Path: "/universities/" + handlertest.ID(id), Body: body, Token: f.adminToken})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body["id"] = 9999
	resp, _ = f.do(t, handlertest.Request{Method: http.MethodPut, Path: "/universities/9999", Body: body, Token: f.adminToken})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteUniversity(t *testing.T) {
	f := setup(t)
	id := f.universityID(t, "Universidad Iberoamericana")

	resp, _ := f.do(t, handlertest.Request{Method: http.MethodDelete, Path: "/universities/" + handlertest.ID(id), Token: f.adminToken})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, f.db.Where("university_id = ?", id).Delete(&model.Offering{}).Error)
	resp, _ = f.do(t, handlertest.Request{Method: http.MethodDelete, Path: "/universities/" + handlertest.ID(id), Token: f.adminToken})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	f.db.Model(&model.University{}).Where("id = ?", id).Count(&count)
	assert.Zero(t, count)
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestUploadLogo(t *testing.T) {
	f := setup(t)
	id := f.universityID(t, "Universidad Iberoamericana")

	body, contentType := handlertest.Multipart(t, "logo", "logo.png", pngImage(t, 2000, 1000))
	resp, env := f.do(t, handlertest.Request{
		Method: http.MethodPost, Path: "/universities/" + handlertest.ID(id) + "/logo",
		Raw: body, ContentType: contentType, Token: f.adminToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var u model.University
	env.Decode(t, &u)
	key, ok := f.store.KeyFromURL(u.LogoURL)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(key, "logos/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Equal(t, "image/jpeg", f.store.ContentType(key))

	body, contentType = handlertest.Multipart(t, "logo", "logo.png", []byte("not an image"))
	resp, _ = f.do(t, handlertest.Request{
		Method: http.MethodPost, Path: "/universities/" + handlertest.ID(id) + "/logo",
		Raw: body, ContentType: contentType, Token: f.adminToken,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadCampusImages(t *testing.T) {
	f := setup(t)
	id := f.universityID(t, "Universidad Iberoamericana")

	body, contentType := handlertest.Multipart(t, "images", "campus.png", pngImage(t, 64, 64))
	resp, env := f.do(t, handlertest.Request{
		Method: http.MethodPost, Path: "/universities/" + handlertest.ID(id) + "/campus-images",
		Raw: body, ContentType: contentType, Token: f.adminToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var u model.University
	env.Decode(t, &u)
	require.Len(t, u.CampusImages, 1)
	key, ok := f.store.KeyFromURL(u.CampusImages[0])
	require.True(t, ok)
	assert.True(t, f.store.Has(key))

	var stored model.University
	require.NoError(t, f.db.First(&stored, id).Error)
	assert.Equal(t, u.CampusImages, stored.CampusImages)
}

func TestUploads_WithoutStorage(t *testing.T) {
	db := dbtest.Open(t)
	jwt := handlertest.JWTManager()
	admin := handlertest.CreateUser(t, db, "admin@elpensum.do", model.RoleAdmin)
	uni := model.University{Name: "Universidad APEC", Country: "RD", City: "SD"}
	require.NoError(t, db.Create(&uni).Error)

	resolver := comparison.NewResolver(database.NewCatalogStore(db), time.Second, zap.NewNop())
	h := university.NewUniversityHandler(db, nil, resolver, nil)
	app := fiber.New()
	app.Post("/universities/:id/logo", append(middleware.NewAuthMiddleware(jwt, db).RequireAdmin(), h.UploadLogo)...)

	body, contentType := handlertest.Multipart(t, "logo", "logo.png", pngImage(t, 10, 10))
	resp, _ := handlertest.Do(t, app, handlertest.Request{
		Method: http.MethodPost, Path: "/universities/" + handlertest.ID(uni.ID) + "/logo",
		Raw: body, ContentType: contentType, Token: handlertest.Token(t, jwt, admin),
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
