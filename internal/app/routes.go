package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paragraf-app/core/internal/middleware"
	"github.com/paragraf-app/core/internal/modules/export"
	"github.com/paragraf-app/core/internal/modules/ingest"
	"github.com/paragraf-app/core/internal/modules/prefetch"
	"github.com/paragraf-app/core/internal/modules/project"
	"github.com/paragraf-app/core/internal/modules/session"
	"github.com/paragraf-app/core/internal/modules/translate"
	"github.com/paragraf-app/core/internal/modules/unit"
	pkgredis "github.com/paragraf-app/core/internal/pkg/redis"
	"github.com/paragraf-app/core/internal/pkg/response"
	"github.com/paragraf-app/core/internal/pkg/taskqueue"
)

var processStart = time.Now()

func (a *App) registerRoutes(rc *pkgredis.Client) error {
	r := a.router
	db := a.db
	authMW := middleware.Auth(a.cfg.AuthToken)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	taskSvc := taskqueue.NewService(rc)

	// Services
	projectSvc := project.NewService(db)
	unitSvc := unit.NewService(db)
	ingestSvc := ingest.NewService(db)
	translateSvc := translate.NewService(a.cfg, a.logger)
	prefetchSvc := prefetch.NewService(unitSvc, projectSvc, translateSvc, taskSvc, a.logger)
	engine := session.NewEngine(rc, unitSvc, prefetchSvc, a.logger, a.cfg.Translate.WindowSize)
	exportSvc := export.NewService(projectSvc, unitSvc)

	uploader, err := export.NewUploader(a.cfg.Export.S3)
	if err != nil {
		return err
	}

	api := r.Group("/api/v1")

	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"timestamp": time.Since(processStart).Milliseconds()})
	})

	ingest.NewHandler(ingestSvc).RegisterRoutes(api, authMW)
	project.NewHandler(projectSvc).RegisterRoutes(api, authMW)
	unit.NewHandler(unitSvc, engine).RegisterRoutes(api, authMW)
	session.NewHandler(engine).RegisterRoutes(api, authMW)
	translate.NewHandler(translateSvc, unitSvc, projectSvc).RegisterRoutes(api, authMW)
	prefetch.NewHandler(prefetchSvc, taskSvc).RegisterRoutes(api, authMW)
	export.NewHandler(exportSvc, uploader).RegisterRoutes(api, authMW)

	return nil
}
