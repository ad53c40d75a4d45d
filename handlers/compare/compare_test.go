package compare_test

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/config"
	"github.com/EnmanuelReynoso23/el-pensum/database"
	"github.com/EnmanuelReynoso23/el-pensum/database/dbtest"
	"github.com/EnmanuelReynoso23/el-pensum/handlers/compare"
	"github.com/EnmanuelReynoso23/el-pensum/handlers/handlertest"
	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/services/comparison"
	"github.com/EnmanuelReynoso23/el-pensum/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	pucmm = "pontificia-universidad-catolica-madre-y-maestra"
	intec = "instituto-tecnologico-de-santo-domingo"
	unibe = "universidad-iberoamericana"
)

func newApp(t *testing.T, use ...fiber.Handler) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	require.NoError(t, database.NewSeeder(db, zap.NewNop()).SeedCatalog())

	defs, err := config.LoadFieldSet("full")
	require.NoError(t, err)
	fields, err := comparison.FieldsFromConfig(defs)
	require.NoError(t, err)

	svc := comparison.NewService(database.NewCatalogStore(db), fields, time.Second, zap.NewNop())
	h := compare.NewCompareHandler(svc, "full")

	app := fiber.New()
	for _, m := range use {
		app.Use(m)
	}
	app.Get("/compare/fields", h.Fields)
	app.Get("/compare/:slug1/:slug2/:programSlug", h.Compare)
	app.Get("/compare/:slug1/:slug2/:programSlug/export", h.Export)
	return app, db
}

func get(t *testing.T, app *fiber.App, path string) (*http.Response, *handlertest.Envelope) {
	return handlertest.Do(t, app, handlertest.Request{Method: http.MethodGet, Path: path})
}

func TestCompare(t *testing.T) {
	app, _ := newApp(t)

	resp, env := get(t, app, "/compare/"+pucmm+"/"+intec+"/ingenieria-en-sistemas")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view comparison.View
	env.Decode(t, &view)
	assert.Equal(t, "pontificia universidad catolica madre y maestra", view.UniversityName1)
	assert.Equal(t, "instituto tecnologico de santo domingo", view.UniversityName2)
	assert.Equal(t, "ingenieria en sistemas", view.ProgramName)
	assert.True(t, view.Available1)
	assert.True(t, view.Available2)
	assert.Equal(t, "$845,200", view.TotalCost1)
	assert.Equal(t, "$1,018,000", view.TotalCost2)

	require.Len(t, view.Fields, 7)
	enrollment := view.Fields[1]
	assert.Equal(t, "enrollment_cost", enrollment.Key)
	assert.Equal(t, "$5,500", enrollment.Formatted1)
	assert.Equal(t, comparison.ClassBetter, enrollment.Classification1)
	assert.Equal(t, comparison.ClassWorse, enrollment.Classification2)

	syllabus := view.Fields[6]
	assert.Equal(t, "No disponible", syllabus.Formatted1)
	assert.Equal(t, comparison.ClassUnavailable, syllabus.Classification1)
}

func TestCompare_MissingOffering(t *testing.T) {
	app, _ := newApp(t)

	resp, env := get(t, app, "/compare/"+pucmm+"/"+unibe+"/ingenieria-en-sistemas")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view comparison.View
	env.Decode(t, &view)
	assert.True(t, view.Available1)
	assert.False(t, view.Available2)
	assert.Equal(t, "No disponible", view.TotalCost2)
	for _, f := range view.Fields {
		assert.Equal(t, comparison.ClassUnavailable, f.Classification2, f.Key)
	}
}

func TestCompare_Errors(t *testing.T) {
	app, db := newApp(t)

	require.NoError(t, db.Create(&model.University{Name: "Unibe: Santo Domingo", Country: "RD", City: "SD"}).Error)
	require.NoError(t, db.Create(&model.University{Name: "Unibe (Santo Domingo)", Country: "RD", City: "SD"}).Error)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"unknown university", "/compare/" + pucmm + "/universidad-fantasma/medicina", http.StatusNotFound},
		{"unknown program", "/compare/" + pucmm + "/" + intec + "/astrologia", http.StatusNotFound},
		{"ambiguous university", "/compare/" + pucmm + "/unibe-santo-domingo/medicina", http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := get(t, app, tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.False(t, env.Success)
		})
	}
}

func TestCompare_StoreFailure(t *testing.T) {
	app, db := newApp(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	resp, env := get(t, app, "/compare/"+pucmm+"/"+intec+"/medicina")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to load catalog", env.Error.Message)
}

func TestCompare_RequestDeadline(t *testing.T) {
	app, _ := newApp(t, middleware.RequestTimeout(time.Nanosecond))

	resp, env := get(t, app, "/compare/"+pucmm+"/"+intec+"/ingenieria-en-sistemas")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestExport(t *testing.T) {
	app, _ := newApp(t)

	resp, _ := get(t, app, "/compare/"+pucmm+"/"+intec+"/ingenieria-en-sistemas/export")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "spreadsheetml")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition),
		"comparacion_"+pucmm+"_"+intec+"_ingenieria-en-sistemas.xlsx")

	var body bytes.Buffer
	_, err := body.ReadFrom(resp.Body)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&body)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Comparación", "A1")
	require.NoError(t, err)
	assert.Equal(t, "ingenieria en sistemas", title)
}

func TestFields(t *testing.T) {
	app, _ := newApp(t)

	resp, env := get(t, app, "/compare/fields")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got compare.FieldsResponse
	env.Decode(t, &got)
	assert.Equal(t, "full", got.FieldSet)
	assert.Len(t, got.Fields, 7)
	assert.Equal(t, []string{"full", "without_admission"}, got.AvailableSets)
}
