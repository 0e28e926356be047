package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/config"
	"github.com/desinetwork/classifieds/internal/application"
	"github.com/desinetwork/classifieds/internal/realtime"
	"github.com/desinetwork/classifieds/internal/search"
	"github.com/desinetwork/classifieds/internal/storage"
	"github.com/desinetwork/classifieds/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router modules wire themselves from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	jwtManager *helpers.JWTManager
	backend    storage.Backend
	hub        *realtime.Hub
	indexer    *search.ClassifiedIndexer
	rabbitPub  *helpers.RabbitPublisher

	authService         *application.AuthService
	verificationService *application.VerificationService
	classifiedService   *application.ClassifiedService
	cityService         *application.CityService
	adminService        *application.AdminService
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }

func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }

func SetPGPool(p *pgxpool.Pool) { pgPool = p }
func GetPGPool() *pgxpool.Pool  { return pgPool }

func SetRedis(r *redis.Client) { redisClient = r }
func GetRedis() *redis.Client  { return redisClient }

func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetStorage(b storage.Backend) { backend = b }
func GetStorage() storage.Backend  { return backend }

func SetHub(h *realtime.Hub) { hub = h }
func GetHub() *realtime.Hub  { return hub }

func SetIndexer(x *search.ClassifiedIndexer) { indexer = x }
func GetIndexer() *search.ClassifiedIndexer  { return indexer }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

func SetAuthService(s *application.AuthService) { authService = s }
func GetAuthService() *application.AuthService  { return authService }

func SetVerificationService(s *application.VerificationService) { verificationService = s }
func GetVerificationService() *application.VerificationService  { return verificationService }

func SetClassifiedService(s *application.ClassifiedService) { classifiedService = s }
func GetClassifiedService() *application.ClassifiedService  { return classifiedService }

func SetCityService(s *application.CityService) { cityService = s }
func GetCityService() *application.CityService  { return cityService }

func SetAdminService(s *application.AdminService) { adminService = s }
func GetAdminService() *application.AdminService  { return adminService }
