// Package app wires the middleware chain and the route table
package app

import (
	"fmt"
	"time"

	"bookswap/exchange-api/app/auth"
	"bookswap/exchange-api/app/book"
	"bookswap/exchange-api/app/root"
	"bookswap/exchange-api/db"
	"bookswap/exchange-api/internal"
	"bookswap/exchange-api/internal/mail"
	"bookswap/exchange-api/internal/service"
	"bookswap/exchange-api/pkg/middleware"
	"bookswap/exchange-api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

func NewRouter() (*gin.Engine, error) {
	makeLogger()

	d := &internal.Deps{
		Argon:  security.New(),
		Mailer: mail.NewSMTP(),
	}

	database, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	d.DB = database

	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("user_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	rateLimit := viper.GetInt("security.rate_limit")

	jwt := middleware.NewJWTMiddleware(database)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	})
	bodyLimit := middleware.BodySizeLimiter(1 << 20)

	m := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/validate		-> Validates a session token
		m.GET("/validate", jwt, root.Validate)

		// POST /api/mail/test		-> Checks the SMTP configuration
		m.POST("/mail/test", func(c *gin.Context) { root.MailCheck(c, d) })
	}

	a := m.Group("/auth", bodyLimit)
	{
		// POST /api/auth/register 	-> Registers a new user and returns a session token
		a.POST("/register", func(c *gin.Context) { auth.Register(c, d) })

		// POST /api/auth/login 	-> Logs in a user and returns a session token
		a.POST("/login", func(c *gin.Context) { auth.Login(c, d) })

		// POST /api/auth/forgotpassword	-> Mails a password reset link
		a.POST("/forgotpassword", func(c *gin.Context) { auth.ForgotPassword(c, d) })

		// POST /api/auth/resetpassword/:resettoken	-> Sets a new password
		a.POST("/resetpassword/:resettoken", func(c *gin.Context) { auth.ResetPassword(c, d) })
	}

	b := m.Group("/books")
	{
		// GET /api/books		-> Returns all listings
		b.GET("", cacheFor(15), func(c *gin.Context) { book.List(c, d) })

		// GET /api/books/search	-> Searches listings with pagination
		b.GET("/search", cacheFor(15), func(c *gin.Context) { book.Search(c, d) })

		// POST /api/books		-> Creates a listing owned by the caller
		b.POST("", jwt, bodyLimit, func(c *gin.Context) { book.Create(c, d) })

		// GET /api/books/user/:userId	-> Returns a user's listings
		b.GET("/user/:userId", jwt, func(c *gin.Context) { book.UserBooks(c, d) })

		// PUT /api/books/:id		-> Updates a listing if the caller owns it
		b.PUT("/:id", jwt, bodyLimit, func(c *gin.Context) { book.Update(c, d) })

		// DELETE /api/books/:id	-> Deletes a listing if the caller owns it
		b.DELETE("/:id", jwt, func(c *gin.Context) { book.Delete(c, d) })
	}

	// Expired reset tokens are already invisible to lookups, sweep
	// them out hourly anyway
	service.ResetTokenCleanup(time.Hour, database)

	return router, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
