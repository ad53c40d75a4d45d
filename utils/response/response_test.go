package response

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestCalculatePagination(t *testing.T) {
	meta := CalculatePagination(2, 10, 25)
	assert.Equal(t, PaginationMeta{CurrentPage: 2, PerPage: 10, Total: 25, TotalPages: 3}, meta)

	meta = CalculatePagination(0, 500, 0)
	assert.Equal(t, 1, meta.CurrentPage)
	assert.Equal(t, 100, meta.PerPage)
	assert.Equal(t, 0, meta.TotalPages)
}

func TestParsePagination(t *testing.T) {
	app := newApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/?page=3&limit=250", nil))
	assert.NoError(t, err)
	assert.Equal(t, "3/100", resp.Header.Get("X-Page"))

	resp, err = app.Test(httptest.NewRequest("GET", "/?page=-1&limit=abc", nil))
	assert.NoError(t, err)
	assert.Equal(t, "1/20", resp.Header.Get("X-Page"))
}

func TestParamID(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := ParamID(c, "id")
		if err != nil {
			return BadRequest(c, err.Error())
		}
		return Success(c, id)
	})

	for path, status := range map[string]int{
		"/items/7":   fiber.StatusOK,
		"/items/0":   fiber.StatusBadRequest,
		"/items/-3":  fiber.StatusBadRequest,
		"/items/abc": fiber.StatusBadRequest,
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		assert.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode, path)
	}
}
