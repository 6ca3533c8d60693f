package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/snailmailtreasures/marketplace/internal/handlers"
	"github.com/snailmailtreasures/marketplace/internal/jwtmiddleware"
)

type Deps struct {
	DB            *gorm.DB
	JWTSecret     []byte
	AuthHandler   *handlers.AuthHandler
	ItemHandler   *handlers.ItemHandler
	UserHandler   *handlers.UserHandler
	SearchHandler *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)

	requireAuth := jwtmiddleware.JWTMiddleware(d.JWTSecret)

	items := e.Group("/items")
	items.GET("", d.ItemHandler.GetItems)
	items.GET("/:id", d.ItemHandler.GetItem)
	items.POST("", d.ItemHandler.CreateItem, requireAuth)
	items.PUT("/:id", d.ItemHandler.UpdateItem, requireAuth)
	items.DELETE("/:id", d.ItemHandler.DeleteItem, requireAuth)
	items.PUT("/:id/deal", d.ItemHandler.SetDeal, requireAuth)
	items.PUT("/:id/favorite-count", d.ItemHandler.BumpFavoriteCount, requireAuth)

	users := e.Group("/users")
	users.GET("", d.UserHandler.GetUsers)
	users.GET("/:id", d.UserHandler.GetUser)
	users.PUT("/:id", d.UserHandler.UpdateUser, requireAuth)
	users.DELETE("/:id", d.UserHandler.DeleteUser, requireAuth)
	users.POST("/:id", d.UserHandler.AddFavourite, requireAuth)
	users.DELETE("/:id/favourites/:itemId", d.UserHandler.RemoveFavourite, requireAuth)

	if d.SearchHandler != nil {
		e.GET("/search", d.SearchHandler.Search)
	}
}
