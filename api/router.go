// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"skyvault/drive-api/db"
	"skyvault/drive-api/gateway"
	"skyvault/drive-api/internal/service"
	"skyvault/drive-api/pkg/middleware"
	"skyvault/drive-api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var cacheStore = persist.NewMemoryStore(time.Minute)

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Argon  *security.ArgonHash
	GW     *gateway.Gateway
	Stores *Stores
}

func NewRouter() (*API, error) {
	a := &API{}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
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
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	objects, err := gateway.NewS3Objects()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage, %w", err)
	}

	feed, err := gateway.NewRedisFeed()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize change feed, %w", err)
	}

	a.GW = &gateway.Gateway{
		Rows:    gateway.NewGormRows(db),
		Objects: objects,
		Feed:    feed,
	}
	a.Stores = NewStores(a.GW)
	a.Argon = security.New()

	jwt := middleware.NewJWTMiddleware(db)
	maxUploadSize := viper.GetInt64("upload.max_size")

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)
	}

	users := main.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/users 		-> Registers a new user
		users.POST("", a.UserRegister)

		// POST /api/users/login 	-> Logs in a user and returns a JWT cookie
		users.POST("/login", a.UserLogin)

		// POST /api/users/logout 	-> Clears the session and tears down realtime channels
		users.POST("/logout", jwt, a.UserLogout)
	}

	files := main.Group("/files", jwt)
	{
		// GET /api/files 		-> Lists the caller's visible files
		files.GET("", cacheFor(15), a.FileList)

		// POST /api/files         	-> Uploads a new file
		files.POST("", middleware.BodySizeLimiter(maxUploadSize), a.FileUpload)

		// GET /api/files/progress	-> Streams upload progress, ?id= matches the upload_id form field
		files.GET("/progress", a.FileProgress)

		// PATCH /api/files/:id		-> Renames or patches a file
		files.PATCH("/:id", a.FileEdit)

		// DELETE /api/files/:id	-> Moves a file to trash
		files.DELETE("/:id", a.FileDelete)

		// PUT /api/files/:id/share	-> Replaces the sharing list of a file
		files.PUT("/:id/share", a.FileShare)

		// PUT /api/files/:id/unshare	-> Removes users from the sharing list
		files.PUT("/:id/unshare", a.FileUnshare)
	}

	folders := main.Group("/folders", jwt)
	{
		// POST /api/folders		-> Creates a folder
		folders.POST("", a.FolderCreate)
	}

	shared := main.Group("/shared", jwt)
	{
		// GET /api/shared		-> Lists files shared with the caller
		shared.GET("", a.SharedList)

		// POST /api/shared/:id		-> Shares a file with one user by id or email
		shared.POST("/:id", a.SharedAdd)

		// DELETE /api/shared/:id	-> Trashes a file from the shared context
		shared.DELETE("/:id", a.SharedTrash)
	}

	service.OrphanSweep(time.Hour, db, objects)

	return a, nil
}

func makeLogger() {
	level, err := zapcore.ParseLevel(viper.GetString("app.log_level"))
	if err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(cacheStore, time.Second*time.Duration(sec))
}
