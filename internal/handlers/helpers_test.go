package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/snailmailtreasures/marketplace/internal/hash"
	"github.com/snailmailtreasures/marketplace/internal/models"
)

type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	DB   *gorm.DB
	Auth *AuthHandler
	Item *ItemHandler
	User *UserHandler

	JWTSecret []byte
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Item{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	secret := []byte("test-jwt-secret")

	return &testEnv{
		T:         t,
		E:         echo.New(),
		DB:        db,
		Auth:      &AuthHandler{DB: db, JWTSecret: secret},
		Item:      &ItemHandler{DB: db},
		User:      &UserHandler{DB: db},
		JWTSecret: secret,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// asUser mimics what the JWT middleware leaves on the context after
// verifying a bearer token.
func (env *testEnv) asUser(c echo.Context, userID string) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": userID})
	c.Set("user", token)
}

func (env *testEnv) createUser(username string) *models.User {
	env.T.Helper()

	pwHash, err := hash.HashPassword("password")
	require.NoError(env.T, err)

	user := &models.User{
		UserName:     username,
		Email:        username + "@example.com",
		PasswordHash: pwHash,
		Favourites:   []string{},
	}
	require.NoError(env.T, env.DB.Create(user).Error)
	return user
}

func (env *testEnv) createItem(ownerID string, price float64) *models.Item {
	env.T.Helper()

	item := &models.Item{
		ItemName:    "Vintage Stamp",
		Description: "a stamp",
		ImageURL:    "gs://stamps/1.jpg",
		Category:    "stamps",
		Price:       price,
		UserID:      ownerID,
	}
	require.NoError(env.T, env.DB.Create(item).Error)
	return item
}

func httpErrorCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T: %v", err, err)
	return he.Code
}
