package controllers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rakawidhi/canteen-app/models"
	"github.com/rakawidhi/canteen-app/utils"
)

func TestGetItemsIsPublic(t *testing.T) {
	e := newTestEnv(t)
	e.seedItem(t, "Nasi Padang", 20, 5)
	e.seedItem(t, "Teh Manis", 3, 10)

	w, envelope := e.request(t, http.MethodGet, "/items", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var items []models.Item
	decodeData(t, envelope, &items)
	assert.Len(t, items, 2)
}

func TestGetItemByID(t *testing.T) {
	e := newTestEnv(t)
	item := e.seedItem(t, "Rawon", 17, 4)

	w, envelope := e.request(t, http.MethodGet, "/items/"+itoa(item.ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Item
	decodeData(t, envelope, &got)
	assert.Equal(t, "Rawon", got.Name)
	assert.True(t, got.IsAvailable)

	w, _ = e.request(t, http.MethodGet, "/items/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetItemsByCategory(t *testing.T) {
	e := newTestEnv(t)
	e.seedItem(t, "Nasi Kuning", 10, 5)

	drink := models.Item{Name: "Jus Alpukat", Price: 8, Category: models.CategoryDrink, Stock: 3, IsAvailable: true}
	assert.NoError(t, e.db.Create(&drink).Error)

	w, envelope := e.request(t, http.MethodGet, "/categories/drink/items", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var items []models.Item
	decodeData(t, envelope, &items)
	if assert.Len(t, items, 1) {
		assert.Equal(t, "Jus Alpukat", items[0].Name)
	}

	w, _ = e.request(t, http.MethodGet, "/categories/dessert/items", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// multipartItem builds the admin create/update form with an inline png.
func multipartItem(t *testing.T, fields map[string]string, imageName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if imageName != "" {
		fw, err := mw.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte("fake image bytes")); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) multipartRequest(t *testing.T, method, path, auth string, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, utils.JSONResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var envelope utils.JSONResponse
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return w, envelope
}

func TestCreateItemEndpoint(t *testing.T) {
	e := newTestEnv(t)
	adminAuth := bearerToken(t, 1, models.RoleAdmin)

	body, contentType := multipartItem(t, map[string]string{
		"name":     "Ayam Bakar",
		"category": models.CategoryFood,
		"price":    "22.5",
		"stock":    "6",
	}, "menu.png")

	w, envelope := e.multipartRequest(t, http.MethodPost, "/items", adminAuth, body, contentType)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Item
	decodeData(t, envelope, &created)
	assert.Equal(t, "Ayam Bakar", created.Name)
	assert.Equal(t, 6, created.Stock)
	assert.True(t, created.IsAvailable)
	assert.True(t, strings.HasPrefix(created.ImageUrl, "/uploads/"))
	assert.True(t, strings.HasSuffix(created.ImageUrl, ".png"))
}

func TestCreateItemRequiresAdmin(t *testing.T) {
	e := newTestEnv(t)
	userAuth := bearerToken(t, 1, "user")

	body, contentType := multipartItem(t, map[string]string{
		"name":     "Ayam Bakar",
		"category": models.CategoryFood,
		"price":    "22.5",
	}, "menu.png")

	w, _ := e.multipartRequest(t, http.MethodPost, "/items", userAuth, body, contentType)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateItemValidation(t *testing.T) {
	e := newTestEnv(t)
	adminAuth := bearerToken(t, 1, models.RoleAdmin)

	// Missing image.
	body, contentType := multipartItem(t, map[string]string{
		"name":     "Ayam Bakar",
		"category": models.CategoryFood,
		"price":    "22.5",
	}, "")
	w, _ := e.multipartRequest(t, http.MethodPost, "/items", adminAuth, body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Non-image upload.
	body, contentType = multipartItem(t, map[string]string{
		"name":     "Ayam Bakar",
		"category": models.CategoryFood,
		"price":    "22.5",
	}, "menu.exe")
	w, _ = e.multipartRequest(t, http.MethodPost, "/items", adminAuth, body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown category.
	body, contentType = multipartItem(t, map[string]string{
		"name":     "Ayam Bakar",
		"category": "dessert",
		"price":    "22.5",
	}, "menu.png")
	w, _ = e.multipartRequest(t, http.MethodPost, "/items", adminAuth, body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateItemEndpoint(t *testing.T) {
	e := newTestEnv(t)
	item := e.seedItem(t, "Lontong", 5, 3)
	adminAuth := bearerToken(t, 1, models.RoleAdmin)

	body, contentType := multipartItem(t, map[string]string{
		"name":  "Lontong Sayur",
		"price": "6.5",
	}, "")
	w, envelope := e.multipartRequest(t, http.MethodPut, "/items/"+itoa(item.ID), adminAuth, body, contentType)
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Item
	decodeData(t, envelope, &updated)
	assert.Equal(t, "Lontong Sayur", updated.Name)
	assert.Equal(t, 6.5, updated.Price)
	// Stock is out of scope for this endpoint.
	assert.Equal(t, 3, updated.Stock)
}

func TestUpdateItemStockEndpoint(t *testing.T) {
	e := newTestEnv(t)
	item := e.seedItem(t, "Perkedel", 2, 0)
	adminAuth := bearerToken(t, 1, models.RoleAdmin)

	path := "/items/" + itoa(item.ID) + "/stock"

	w, envelope := e.request(t, http.MethodPut, path, adminAuth, gin.H{"stock": 12})
	assert.Equal(t, http.StatusOK, w.Code)
	var updated models.Item
	decodeData(t, envelope, &updated)
	assert.Equal(t, 12, updated.Stock)
	assert.True(t, updated.IsAvailable)

	w, _ = e.request(t, http.MethodPut, path, adminAuth, gin.H{"stock": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.request(t, http.MethodPut, "/items/9999/stock", adminAuth, gin.H{"stock": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteItemEndpoint(t *testing.T) {
	e := newTestEnv(t)
	item := e.seedItem(t, "Tahu Isi", 2, 5)
	adminAuth := bearerToken(t, 1, models.RoleAdmin)

	w, _ := e.request(t, http.MethodDelete, "/items/"+itoa(item.ID), adminAuth, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = e.request(t, http.MethodGet, "/items/"+itoa(item.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
