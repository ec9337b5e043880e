package handler

import (
	"errors"
	"net/http"
	"testing"

	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestIngredients(t *testing.T) {
	mockSvc := new(MockIngredientService)
	router := setupRouter()
	NewIngredientHandler(mockSvc, testLogger).RegisterRoutes(router.Group("/api/ingredients"))

	mockSvc.On("List", mock.Anything, "fl").Return([]models.Ingredient{
		{ID: 4, Name: "Flour", MeasurementUnit: "g"},
	}, nil)
	mockSvc.On("List", mock.Anything, "zz").Return([]models.Ingredient(nil), nil)
	mockSvc.On("Get", mock.Anything, int64(9)).Return(nil, service.ErrIngredientNotFound)

	w := doJSON(router, http.MethodGet, "/api/ingredients/?name=fl", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":4,"name":"Flour","measurement_unit":"g"}]`, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/ingredients/?name=zz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/ingredients/9/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTags(t *testing.T) {
	mockSvc := new(MockTagService)
	router := setupRouter()
	NewTagHandler(mockSvc, testLogger).RegisterRoutes(router.Group("/api/tags"))

	mockSvc.On("List", mock.Anything).Return([]models.Tag{
		{ID: 1, Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	}, nil)
	mockSvc.On("Get", mock.Anything, int64(1)).Return(nil, errors.New("connection reset"))

	w := doJSON(router, http.MethodGet, "/api/tags/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Breakfast","color":"#E26C2D","slug":"breakfast"}]`, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/tags/1/", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}
