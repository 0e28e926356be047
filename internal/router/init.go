package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/desinetwork/classifieds/internal/application"
	"github.com/desinetwork/classifieds/internal/container"
	pginfra "github.com/desinetwork/classifieds/internal/infrastructure/postgres"
	handlers "github.com/desinetwork/classifieds/internal/interface/http"
	"github.com/desinetwork/classifieds/internal/realtime"
	"github.com/desinetwork/classifieds/internal/router/modules"
	"github.com/desinetwork/classifieds/internal/storage"
	"github.com/desinetwork/classifieds/pkg/response"
)

// InitModules constructs repositories, services and handlers from the
// container singletons and registers every feature module. Called once at
// startup after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	cities := pginfra.NewCityRepository(pool)
	classifieds := pginfra.NewClassifiedRepository(pool)

	hub := container.GetHub()
	backend := container.GetStorage()
	indexer := container.GetIndexer()

	mailerSvc := application.NewQueueMailer(container.GetRabbitPub(), cfg, logger)
	authSvc := application.NewAuthService(users, container.GetJWT(), mailerSvc, logger)
	verificationSvc := application.NewVerificationService(users, mailerSvc, logger)
	citySvc := application.NewCityService(cities, container.GetRedis(), logger)
	classifiedSvc := application.NewClassifiedService(classifieds, backend, hub, indexer, logger)
	adminSvc := application.NewAdminService(users, classifieds, citySvc, backend, hub, indexer, logger)

	container.SetAuthService(authSvc)
	container.SetVerificationService(verificationSvc)
	container.SetCityService(citySvc)
	container.SetClassifiedService(classifiedSvc)
	container.SetAdminService(adminSvc)

	authHandler := handlers.NewAuthHandler(authSvc, verificationSvc, logger)
	cityHandler := handlers.NewCityHandler(citySvc, logger)
	classifiedHandler := handlers.NewClassifiedHandler(classifiedSvc, logger)
	adminHandler := handlers.NewAdminHandler(adminSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, authSvc))
	r.Add(modules.NewCityModule(cityHandler))
	r.Add(modules.NewClassifiedModule(classifiedHandler, authSvc))
	r.Add(modules.NewAdminModule(adminHandler, authSvc))

	r.API.GET("/health", func(c *gin.Context) {
		response.JSON(c, http.StatusOK, gin.H{"status": "ok", "app": cfg.AppName})
	})

	// Local disk backend also serves its files.
	if local, ok := backend.(*storage.Local); ok {
		r.API.Static("/uploads", local.BaseDir())
	}

	ws := realtime.NewHandler(hub, container.GetJWT(), users, logger, cfg.CORSOrigins())
	r.Engine.GET("/ws", ws.Serve)
}
