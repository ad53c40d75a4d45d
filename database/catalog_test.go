package database_test

import (
	"context"
	"testing"

	"github.com/EnmanuelReynoso23/el-pensum/database"
	"github.com/EnmanuelReynoso23/el-pensum/database/dbtest"
	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func fixture(t *testing.T, db *gorm.DB) (uni1, uni2 model.University, prog model.Program) {
	t.Helper()

	uni1 = model.University{Name: "Universidad de Ejemplo", Country: "RD", City: "Santo Domingo"}
	uni2 = model.University{Name: "Universidad Autónoma", Country: "RD", City: "Santiago"}
	require.NoError(t, db.Create(&uni1).Error)
	require.NoError(t, db.Create(&uni2).Error)

	prog = model.Program{Name: "Ingeniería en Sistemas"}
	require.NoError(t, db.Create(&prog).Error)
	return
}

func TestCatalogStore_Universities(t *testing.T) {
	db := dbtest.Open(t)
	uni1, uni2, _ := fixture(t, db)
	store := database.NewCatalogStore(db)
	ctx := context.Background()

	got, err := store.FindUniversitiesByName(ctx, "UNIVERSIDAD DE EJEMPLO")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uni1.ID, got[0].ID)
	assert.Equal(t, "universidad-de-ejemplo", got[0].Slug)

	got, err = store.FindUniversitiesByName(ctx, "universidad de")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = store.FindUniversitiesBySlug(ctx, "universidad-autonoma")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uni2.ID, got[0].ID)
}

func TestCatalogStore_Programs(t *testing.T) {
	db := dbtest.Open(t)
	_, _, prog := fixture(t, db)
	store := database.NewCatalogStore(db)
	ctx := context.Background()

	got, err := store.FindProgramsBySlug(ctx, "ingenieria-en-sistemas")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, prog.ID, got[0].ID)

	got, err = store.FindProgramsByName(ctx, "medicina")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalogStore_FindOffering(t *testing.T) {
	db := dbtest.Open(t)
	uni1, uni2, prog := fixture(t, db)
	store := database.NewCatalogStore(db)
	ctx := context.Background()

	cost := 1000.0
	first := model.Offering{UniversityID: uni1.ID, ProgramID: prog.ID, EnrollmentCost: &cost}
	dup := model.Offering{UniversityID: uni1.ID, ProgramID: prog.ID}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&dup).Error)

	got, err := store.FindOffering(ctx, uni1.ID, prog.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
	require.NotNil(t, got.EnrollmentCost)
	assert.Equal(t, 1000.0, *got.EnrollmentCost)

	got, err = store.FindOffering(ctx, uni2.ID, prog.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMigrate_NameUniqueIgnoresCase(t *testing.T) {
	db := dbtest.Open(t)
	fixture(t, db)

	err := db.Create(&model.University{Name: "universidad de ejemplo", Country: "RD", City: "x"}).Error
	assert.Error(t, err)
}

func TestUniversity_CampusImagesRoundTrip(t *testing.T) {
	db := dbtest.Open(t)

	u := model.University{Name: "UNIBE", Country: "RD", City: "SD", CampusImages: []string{"campus/1.jpg", "campus/2.jpg"}}
	require.NoError(t, db.Create(&u).Error)

	var loaded model.University
	require.NoError(t, db.First(&loaded, u.ID).Error)
	assert.Equal(t, []string{"campus/1.jpg", "campus/2.jpg"}, []string(loaded.CampusImages))
}
