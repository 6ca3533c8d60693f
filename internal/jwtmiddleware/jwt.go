package jwtmiddleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware guards mutating routes. Tokens are HS256, passed as
// "Authorization: Bearer <token>".
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningMethod: "HS256",
		SigningKey:    secret,
		ContextKey:    "user",
		TokenLookup:   "header:Authorization:Bearer ",
	})
}

// CallerID extracts the authenticated user id from the verified token the
// middleware stored on the context.
func CallerID(c echo.Context) (string, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid id claim")
	}
	return id, nil
}
