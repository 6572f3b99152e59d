package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"gorm.io/gorm"

	"todohub/internal/auth"
	"todohub/internal/config"
	apperrors "todohub/internal/errors"
	"todohub/internal/handler"
	"todohub/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	db *gorm.DB,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	todoHandler *handler.TodoHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", healthcheck(db))

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/signup", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.GET("/auth/confirm/:token", authHandler.ConfirmEmail)
	api.POST("/auth/request-email", authHandler.RequestEmail)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password", authHandler.ResetPassword)

	// Secured routes. The parse func enforces the access scope and the
	// denylist in one place; handlers read the resolved claims from the
	// context and never trust ids from the request body.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: accessTokenParser(jwtService, tokenStore),
	}))

	secured.POST("/auth/logout", authHandler.Logout)

	secured.GET("/users/me", userHandler.Me)

	secured.GET("/todos", todoHandler.List)
	secured.POST("/todos", todoHandler.Create)
	secured.GET("/todos/:id", todoHandler.Get)
	secured.PUT("/todos/:id", todoHandler.Update)
	secured.DELETE("/todos/:id", todoHandler.Delete)

	// Elevated routes
	elevated := secured.Group("", requireRole(model.RoleAdmin, model.RoleModerator))
	elevated.GET("/todos/all", todoHandler.ListAll)
	elevated.GET("/users", userHandler.ListUsers)
}

// accessTokenParser validates the bearer token as an access token and
// rejects denylisted JTIs. A denylist lookup error counts as revoked.
func accessTokenParser(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) func(c echo.Context, raw string) (interface{}, error) {
	return func(c echo.Context, raw string) (interface{}, error) {
		claims, err := jwtService.ValidateToken(raw, auth.ScopeAccess)
		if err != nil {
			return nil, err
		}
		denied, err := tokenStore.IsAccessTokenDenylisted(c.Request().Context(), claims.ID)
		if err != nil || denied {
			return nil, apperrors.ErrTokenRevoked
		}
		return claims, nil
	}
}

// requireRole gates a route group to the given roles. The role travels in
// the access token claims, so a role change takes effect at next login.
func requireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := handler.CurrentClaims(c)
			if err != nil {
				return err
			}
			if _, ok := allowed[claims.Role]; !ok {
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrForbidden)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}

func healthcheck(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "database is not configured correctly")
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "error connecting to the database")
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "ok"})
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
