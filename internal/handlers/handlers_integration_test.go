package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/artursniegowski/Recipe-APP-API/internal/handlers"
	"github.com/artursniegowski/Recipe-APP-API/internal/middleware"
	"github.com/artursniegowski/Recipe-APP-API/internal/models"
	"github.com/artursniegowski/Recipe-APP-API/internal/repositories"
	"github.com/artursniegowski/Recipe-APP-API/internal/services"
)

var dbCounter int64

// setupApp builds the full Fiber app over a fresh in-memory SQLite
// database, wired the same way as main.go but without RabbitMQ.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:handlertest%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.Tag{},
		&models.Ingredient{},
	))

	userRepo := repositories.NewGORMUserRepository(db)
	recipeRepo := repositories.NewGORMRecipeRepository(db)
	tagRepo := repositories.NewGORMTagRepository(db)
	ingredientRepo := repositories.NewGORMIngredientRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	recipeService := services.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, nil)
	tagService := services.NewLabelService(tagRepo)
	ingredientService := services.NewLabelService(ingredientRepo)

	userHandler := handlers.NewUserHandler(authService)
	recipeHandler := handlers.NewRecipeHandler(recipeService, t.TempDir())
	tagHandler := handlers.NewLabelHandler(tagService, "Tag", "tags")
	ingredientHandler := handlers.NewLabelHandler(ingredientService, "Ingredient", "ingredients")

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	authRequired := middleware.AuthRequired(authService)

	userHandler.RegisterRoutes(apiV1, authRequired)
	recipeGroup := apiV1.Group("/recipe", authRequired)
	recipeHandler.RegisterRoutes(recipeGroup)
	tagHandler.RegisterRoutes(recipeGroup)
	ingredientHandler.RegisterRoutes(recipeGroup)

	return app, db
}

// doJSON performs a request against the test app. token may be empty.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func registerUser(t *testing.T, app *fiber.App, email, password, name string) {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/user/create/", "", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func obtainToken(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/user/token/", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body["token"])
	return body["token"]
}

// TestMain suppresses request logging for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestUserRegistration(t *testing.T) {
	app, db := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/user/create/", "", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
		"name":     "Test Name",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, "test@example.com", body["email"])
	assert.Equal(t, "Test Name", body["name"])
	// The password never appears in any response shape
	_, hasPassword := body["password"]
	assert.False(t, hasPassword)

	// The stored hash verifies against the submitted plaintext
	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "test@example.com").Error)
	assert.NotEqual(t, "password123", user.Password)
	token := obtainToken(t, app, "test@example.com", "password123")
	assert.NotEmpty(t, token)
}

func TestUserRegistration_DuplicateEmail(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/user/create/", "", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestUserRegistration_PasswordTooShort(t *testing.T) {
	app, db := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/user/create/", "", map[string]string{
		"email":    "test@example.com",
		"password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestUserRegistration_DomainOnlyEmailNormalization(t *testing.T) {
	app, _ := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/user/create/", "", map[string]string{
		"email":    "Joe@EXAMPLE.Com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	// Local part keeps its case, domain is lower-cased
	assert.Equal(t, "Joe@example.com", body["email"])
}

func TestTokenEndpoint(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")

	// Valid credentials yield a token
	token := obtainToken(t, app, "test@example.com", "password123")
	assert.NotEmpty(t, token)

	// Wrong password: 400 and no token
	resp := doJSON(t, app, http.MethodPost, "/api/v1/user/token/", "", map[string]string{
		"email":    "test@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	_, hasToken := body["token"]
	assert.False(t, hasToken)

	// Blank password: 400, not a validation bypass
	resp = doJSON(t, app, http.MethodPost, "/api/v1/user/token/", "", map[string]string{
		"email":    "test@example.com",
		"password": "",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Unknown email: same generic 400
	resp = doJSON(t, app, http.MethodPost, "/api/v1/user/token/", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestMeEndpoint(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "Test Name")

	// Unauthenticated access is rejected
	resp := doJSON(t, app, http.MethodGet, "/api/v1/user/me/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	token := obtainToken(t, app, "test@example.com", "password123")

	resp = doJSON(t, app, http.MethodGet, "/api/v1/user/me/", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var me map[string]interface{}
	decodeBody(t, resp, &me)
	assert.Equal(t, "test@example.com", me["email"])
	assert.Equal(t, "Test Name", me["name"])
	_, hasPassword := me["password"]
	assert.False(t, hasPassword)

	// Partial update: new name and password
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/user/me/", token, map[string]string{
		"name":     "Updated Name",
		"password": "newpassword123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &me)
	assert.Equal(t, "Updated Name", me["name"])

	// The new password authenticates, the old one no longer does
	_ = obtainToken(t, app, "test@example.com", "newpassword123")
	resp = doJSON(t, app, http.MethodPost, "/api/v1/user/token/", "", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRecipesRequireAuthentication(t *testing.T) {
	app, _ := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/recipe/recipes/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/recipe/tags/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func createRecipePayload(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":        title,
		"time_minutes": 22,
		"price":        "10.25",
		"link":         "https://example.com/recipe.pdf",
		"description":  "Sample description",
	}
}

func createRecipeViaAPI(t *testing.T, app *fiber.App, token string, payload map[string]interface{}) map[string]interface{} {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/recipe/recipes/", token, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	return body
}

// doUpload performs a multipart file upload against the test app.
func doUpload(t *testing.T, app *fiber.App, path, token, filename string, content []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRecipeCreateAndRetrieve(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")
	token := obtainToken(t, app, "test@example.com", "password123")

	created := createRecipeViaAPI(t, app, token, createRecipePayload("Sample recipe"))
	id := created["id"].(float64)
	assert.Equal(t, "Sample recipe", created["title"])
	assert.Equal(t, float64(22), created["time_minutes"])
	assert.True(t, decimal.RequireFromString(created["price"].(string)).
		Equal(decimal.RequireFromString("10.25")))

	resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/recipe/recipes/%.0f/", id), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var detail map[string]interface{}
	decodeBody(t, resp, &detail)
	assert.Equal(t, "Sample description", detail["description"])
}

func TestRecipeListShapeAndOrdering(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")
	token := obtainToken(t, app, "test@example.com", "password123")

	createRecipeViaAPI(t, app, token, createRecipePayload("First"))
	createRecipeViaAPI(t, app, token, createRecipePayload("Second"))

	resp := doJSON(t, app, http.MethodGet, "/api/v1/recipe/recipes/", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]interface{}
	decodeBody(t, resp, &list)
	require.Len(t, list, 2)

	// Newest first
	assert.Equal(t, "Second", list[0]["title"])
	assert.Equal(t, "First", list[1]["title"])

	// The list shape has no description and no labels
	_, hasDescription := list[0]["description"]
	assert.False(t, hasDescription)
	_, hasTags := list[0]["tags"]
	assert.False(t, hasTags)
}

func TestRecipeListLimitedToOwner(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "owner@example.com", "password123", "")
	registerUser(t, app, "other@example.com", "password123", "")
	ownerToken := obtainToken(t, app, "owner@example.com", "password123")
	otherToken := obtainToken(t, app, "other@example.com", "password123")

	createRecipeViaAPI(t, app, ownerToken, createRecipePayload("Mine"))
	createRecipeViaAPI(t, app, otherToken, createRecipePayload("Theirs"))

	resp := doJSON(t, app, http.MethodGet, "/api/v1/recipe/recipes/", ownerToken, nil)
	var list []map[string]interface{}
	decodeBody(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Mine", list[0]["title"])
}

func TestRecipeNonOwnerSees404(t *testing.T) {
	app, db := setupApp(t)
	registerUser(t, app, "owner@example.com", "password123", "")
	registerUser(t, app, "other@example.com", "password123", "")
	ownerToken := obtainToken(t, app, "owner@example.com", "password123")
	otherToken := obtainToken(t, app, "other@example.com", "password123")

	created := createRecipeViaAPI(t, app, ownerToken, createRecipePayload("Secret"))
	url := fmt.Sprintf("/api/v1/recipe/recipes/%.0f/", created["id"].(float64))

	// 404, never 403: existence must not leak
	resp := doJSON(t, app, http.MethodGet, url, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, url, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// The row still exists afterwards
	var count int64
	db.Model(&models.Recipe{}).Where("title = ?", "Secret").Count(&count)
	assert.Equal(t, int64(1), count)

	// And the owner can still fetch it
	resp = doJSON(t, app, http.MethodGet, url, ownerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestRecipeDelete(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")
	token := obtainToken(t, app, "test@example.com", "password123")

	created := createRecipeViaAPI(t, app, token, createRecipePayload("Doomed"))
	url := fmt.Sprintf("/api/v1/recipe/recipes/%.0f/", created["id"].(float64))

	resp := doJSON(t, app, http.MethodDelete, url, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, url, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRecipeImageUpload(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")
	token := obtainToken(t, app, "test@example.com", "password123")
	created := createRecipeViaAPI(t, app, token, createRecipePayload("Pancakes"))
	recipeID := created["id"].(float64)
	url := fmt.Sprintf("/api/v1/recipe/recipes/%.0f/upload-image", recipeID)

	resp := doUpload(t, app, url, token, "pancakes.jpg", []byte("fake image bytes"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, recipeID, body["id"])
	firstImage, ok := body["image"].(string)
	require.True(t, ok)
	require.NotEmpty(t, firstImage)

	// The stored file exists and the detail view carries the path
	_, err := os.Stat(firstImage)
	require.NoError(t, err)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/recipe/recipes/%.0f/", recipeID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var detail map[string]interface{}
	decodeBody(t, resp, &detail)
	assert.Equal(t, firstImage, detail["image"])

	// Re-uploading replaces the stored path and removes the old file
	resp = doUpload(t, app, url, token, "pancakes2.png", []byte("other image bytes"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	secondImage := body["image"].(string)
	assert.NotEqual(t, firstImage, secondImage)
	_, err = os.Stat(secondImage)
	require.NoError(t, err)
	_, err = os.Stat(firstImage)
	assert.True(t, os.IsNotExist(err))
}

func TestRecipeImageUpload_BadRequests(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")
	token := obtainToken(t, app, "test@example.com", "password123")
	created := createRecipeViaAPI(t, app, token, createRecipePayload("Pancakes"))
	url := fmt.Sprintf("/api/v1/recipe/recipes/%.0f/upload-image", created["id"].(float64))

	// Multipart body without an image field
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("notimage", "x"))
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Unsupported file type
	resp = doUpload(t, app, url, token, "notes.txt", []byte("not an image"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Detail view still has no image
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/recipe/recipes/%.0f/", created["id"].(float64)), token, nil)
	var detail map[string]interface{}
	decodeBody(t, resp, &detail)
	assert.Equal(t, "", detail["image"])
}

func TestRecipeImageUpload_NonOwnerSees404(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "owner@example.com", "password123", "")
	registerUser(t, app, "other@example.com", "password123", "")
	ownerToken := obtainToken(t, app, "owner@example.com", "password123")
	otherToken := obtainToken(t, app, "other@example.com", "password123")
	created := createRecipeViaAPI(t, app, ownerToken, createRecipePayload("Pancakes"))
	url := fmt.Sprintf("/api/v1/recipe/recipes/%.0f/upload-image", created["id"].(float64))

	resp := doUpload(t, app, url, otherToken, "sneaky.jpg", []byte("img"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRecipeCreateWithLabels_NoDuplicateRows(t *testing.T) {
	app, db := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")
	token := obtainToken(t, app, "test@example.com", "password123")

	payload := createRecipePayload("Curry")
	payload["tags"] = []map[string]string{{"name": "Thai"}, {"name": "Dinner"}}
	first := createRecipeViaAPI(t, app, token, payload)
	assert.Len(t, first["tags"], 2)

	// A second recipe reuses the existing "Thai" tag instead of creating
	// a duplicate row
	payload2 := createRecipePayload("Pad Thai")
	payload2["tags"] = []map[string]string{{"name": "Thai"}}
	second := createRecipeViaAPI(t, app, token, payload2)
	assert.Len(t, second["tags"], 1)

	var count int64
	db.Model(&models.Tag{}).Where("name = ?", "Thai").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRecipePatch_PresenceVersusAbsence(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")
	token := obtainToken(t, app, "test@example.com", "password123")

	payload := createRecipePayload("Sandwich")
	payload["tags"] = []map[string]string{{"name": "Bread"}}
	created := createRecipeViaAPI(t, app, token, payload)
	url := fmt.Sprintf("/api/v1/recipe/recipes/%.0f/", created["id"].(float64))

	// A payload without a tags key leaves the associations untouched
	resp := doJSON(t, app, http.MethodPatch, url, token, map[string]interface{}{
		"title": "Club Sandwich",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var detail map[string]interface{}
	decodeBody(t, resp, &detail)
	assert.Equal(t, "Club Sandwich", detail["title"])
	assert.Len(t, detail["tags"], 1)

	// Replacing "Bread" with "Lunch" drops the old association
	resp = doJSON(t, app, http.MethodPatch, url, token, map[string]interface{}{
		"tags": []map[string]string{{"name": "Lunch"}},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &detail)
	tags := detail["tags"].([]interface{})
	require.Len(t, tags, 1)
	assert.Equal(t, "Lunch", tags[0].(map[string]interface{})["name"])

	// An explicitly empty list clears every association
	resp = doJSON(t, app, http.MethodPatch, url, token, map[string]interface{}{
		"tags": []map[string]string{},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &detail)
	assert.Len(t, detail["tags"], 0)
}

func TestRecipeFilterByTagIDs(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")
	token := obtainToken(t, app, "test@example.com", "password123")

	payload := createRecipePayload("Curry")
	payload["tags"] = []map[string]string{{"name": "Thai"}, {"name": "Dinner"}}
	createRecipeViaAPI(t, app, token, payload)

	payload2 := createRecipePayload("Salad")
	createRecipeViaAPI(t, app, token, payload2)

	// Fetch tag IDs from the tag listing
	resp := doJSON(t, app, http.MethodGet, "/api/v1/recipe/tags/", token, nil)
	var tags []map[string]interface{}
	decodeBody(t, resp, &tags)
	require.Len(t, tags, 2)
	filter := fmt.Sprintf("%.0f,%.0f", tags[0]["id"].(float64), tags[1]["id"].(float64))

	// The curry matches both requested tags but appears once
	resp = doJSON(t, app, http.MethodGet, "/api/v1/recipe/recipes/?tags="+filter, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]interface{}
	decodeBody(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Curry", list[0]["title"])
}

func TestRecipeFilterRejectsNonIntegerIDs(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")
	token := obtainToken(t, app, "test@example.com", "password123")

	resp := doJSON(t, app, http.MethodGet, "/api/v1/recipe/recipes/?tags=1,abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/recipe/recipes/?ingredients=x", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestTagList_AssignedOnly(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")
	token := obtainToken(t, app, "test@example.com", "password123")

	payload := createRecipePayload("Curry")
	payload["tags"] = []map[string]string{{"name": "Dinner"}}
	createRecipeViaAPI(t, app, token, payload)

	// Second recipe linked to the same tag: must not duplicate it below
	payload2 := createRecipePayload("Stew")
	payload2["tags"] = []map[string]string{{"name": "Dinner"}}
	createRecipeViaAPI(t, app, token, payload2)

	// An unassigned tag, created by a recipe that then drops it
	payload3 := createRecipePayload("Scratch")
	payload3["tags"] = []map[string]string{{"name": "Unused"}}
	scratch := createRecipeViaAPI(t, app, token, payload3)
	resp := doJSON(t, app, http.MethodPatch,
		fmt.Sprintf("/api/v1/recipe/recipes/%.0f/", scratch["id"].(float64)), token,
		map[string]interface{}{"tags": []map[string]string{}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/recipe/tags/?assigned_only=1", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var tags []map[string]interface{}
	decodeBody(t, resp, &tags)
	require.Len(t, tags, 1)
	assert.Equal(t, "Dinner", tags[0]["name"])

	// Without the flag both tags appear, name descending
	resp = doJSON(t, app, http.MethodGet, "/api/v1/recipe/tags/", token, nil)
	decodeBody(t, resp, &tags)
	require.Len(t, tags, 2)
	assert.Equal(t, "Unused", tags[0]["name"])
	assert.Equal(t, "Dinner", tags[1]["name"])

	// A non-integer flag value errors instead of being ignored
	resp = doJSON(t, app, http.MethodGet, "/api/v1/recipe/tags/?assigned_only=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestTagRenameAndDelete(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "owner@example.com", "password123", "")
	registerUser(t, app, "other@example.com", "password123", "")
	ownerToken := obtainToken(t, app, "owner@example.com", "password123")
	otherToken := obtainToken(t, app, "other@example.com", "password123")

	payload := createRecipePayload("Curry")
	payload["tags"] = []map[string]string{{"name": "Dinner"}}
	created := createRecipeViaAPI(t, app, ownerToken, payload)
	tagID := created["tags"].([]interface{})[0].(map[string]interface{})["id"].(float64)
	url := fmt.Sprintf("/api/v1/recipe/tags/%.0f/", tagID)

	// Non-owner cannot see or touch the tag
	resp := doJSON(t, app, http.MethodPatch, url, otherToken, map[string]string{"name": "Stolen"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPatch, url, ownerToken, map[string]string{"name": "Supper"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var tag map[string]interface{}
	decodeBody(t, resp, &tag)
	assert.Equal(t, "Supper", tag["name"])

	resp = doJSON(t, app, http.MethodDelete, url, ownerToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/recipe/tags/", ownerToken, nil)
	var tags []map[string]interface{}
	decodeBody(t, resp, &tags)
	assert.Len(t, tags, 0)
}

func TestTagRenameToTakenName(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")
	token := obtainToken(t, app, "test@example.com", "password123")

	payload := createRecipePayload("Curry")
	payload["tags"] = []map[string]string{{"name": "Dinner"}, {"name": "Lunch"}}
	createRecipeViaAPI(t, app, token, payload)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/recipe/tags/", token, nil)
	var tags []map[string]interface{}
	decodeBody(t, resp, &tags)
	require.Len(t, tags, 2)
	var lunchID float64
	for _, tag := range tags {
		if tag["name"] == "Lunch" {
			lunchID = tag["id"].(float64)
		}
	}
	require.NotZero(t, lunchID)

	url := fmt.Sprintf("/api/v1/recipe/tags/%.0f/", lunchID)
	resp = doJSON(t, app, http.MethodPatch, url, token, map[string]string{"name": "Dinner"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Contains(t, body["errors"].(map[string]interface{}), "name")

	// Both tags keep their names
	resp = doJSON(t, app, http.MethodGet, "/api/v1/recipe/tags/", token, nil)
	decodeBody(t, resp, &tags)
	require.Len(t, tags, 2)
	names := []string{tags[0]["name"].(string), tags[1]["name"].(string)}
	assert.ElementsMatch(t, []string{"Dinner", "Lunch"}, names)
}

func TestIngredientEndpoints(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "test@example.com", "password123", "")
	token := obtainToken(t, app, "test@example.com", "password123")

	payload := createRecipePayload("Soup")
	payload["ingredients"] = []map[string]string{{"name": "Salt"}, {"name": "Pepper"}}
	createRecipeViaAPI(t, app, token, payload)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/recipe/ingredients/", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var ingredients []map[string]interface{}
	decodeBody(t, resp, &ingredients)
	require.Len(t, ingredients, 2)
	// Name descending
	assert.Equal(t, "Salt", ingredients[0]["name"])
	assert.Equal(t, "Pepper", ingredients[1]["name"])

	// No create endpoint for ingredients
	resp = doJSON(t, app, http.MethodPost, "/api/v1/recipe/ingredients/", token, map[string]string{"name": "Sugar"})
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()
}

func TestEndToEndCurryScenario(t *testing.T) {
	app, _ := setupApp(t)

	// Register
	resp := doJSON(t, app, http.MethodPost, "/api/v1/user/create/", "", map[string]string{
		"email":    "test@example.com",
		"password": "asdfghjkl;weq",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Obtain token
	token := obtainToken(t, app, "test@example.com", "asdfghjkl;weq")

	// Create the curry
	created := createRecipeViaAPI(t, app, token, map[string]interface{}{
		"title":        "Curry",
		"time_minutes": 30,
		"price":        "2.50",
		"tags":         []map[string]string{{"name": "Thai"}, {"name": "Dinner"}},
	})

	// The detail endpoint shows exactly the two tags
	resp = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/v1/recipe/recipes/%.0f/", created["id"].(float64)), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail map[string]interface{}
	decodeBody(t, resp, &detail)

	assert.Equal(t, "Curry", detail["title"])
	assert.Equal(t, float64(30), detail["time_minutes"])
	assert.True(t, decimal.RequireFromString(detail["price"].(string)).
		Equal(decimal.RequireFromString("2.50")))

	tags := detail["tags"].([]interface{})
	require.Len(t, tags, 2)
	names := map[string]bool{}
	for _, tag := range tags {
		names[tag.(map[string]interface{})["name"].(string)] = true
	}
	assert.True(t, names["Thai"])
	assert.True(t, names["Dinner"])
}
