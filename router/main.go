package router

import (
	"fmt"

	"github.com/EnmanuelReynoso23/el-pensum/config"
	"github.com/EnmanuelReynoso23/el-pensum/database"
	"github.com/EnmanuelReynoso23/el-pensum/handlers"
	admin_handlers "github.com/EnmanuelReynoso23/el-pensum/handlers/admin"
	auth_handlers "github.com/EnmanuelReynoso23/el-pensum/handlers/auth"
	compare_handlers "github.com/EnmanuelReynoso23/el-pensum/handlers/compare"
	offering_handlers "github.com/EnmanuelReynoso23/el-pensum/handlers/offering"
	program_handlers "github.com/EnmanuelReynoso23/el-pensum/handlers/program"
	university_handlers "github.com/EnmanuelReynoso23/el-pensum/handlers/university"
	"github.com/EnmanuelReynoso23/el-pensum/services/comparison"
	"github.com/EnmanuelReynoso23/el-pensum/services/storage"
	"github.com/EnmanuelReynoso23/el-pensum/utils/auth"
	"github.com/EnmanuelReynoso23/el-pensum/utils/cache"
	"github.com/EnmanuelReynoso23/el-pensum/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the long lived components the routes are built from.
// Cache and Objects may be nil when Redis or Spaces are not configured.
type Dependencies struct {
	Config  *config.Config
	Store   *database.GORMStore
	Cache   *cache.RedisCache
	Catalog database.Catalog
	Objects storage.ObjectStore
	Logger  *zap.Logger
}

// SetupRoutes installs the global middleware and every route on app
func SetupRoutes(app *fiber.App, deps Dependencies) error {
	cfg := deps.Config
	db := deps.Store.DB()
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        cfg.Auth.JWTSecret,
		Expiry:        cfg.Auth.AccessExpiry,
		RefreshExpiry: cfg.Auth.RefreshExpiry,
		Issuer:        cfg.Auth.JWTIssuer,
	})

	// Brute force protection needs Redis
	var bruteForceProtection *middleware.BruteForceProtection
	if deps.Cache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(deps.Cache)
	} else {
		log.Warn("redis not configured, brute force protection disabled")
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)
	admins := authMiddleware.RequireAdmin()

	defs, err := config.LoadFieldSet(cfg.Comparison.FieldSet)
	if err != nil {
		return err
	}
	fields, err := comparison.FieldsFromConfig(defs)
	if err != nil {
		return fmt.Errorf("failed to build comparison fields: %w", err)
	}
	comparisonService := comparison.NewService(deps.Catalog, fields, cfg.Comparison.StoreTimeout, log.Named("comparison"))

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	universityHandler := university_handlers.NewUniversityHandler(db, deps.Catalog, comparisonService.Resolver(), deps.Objects)
	programHandler := program_handlers.NewProgramHandler(db, deps.Catalog)
	offeringHandler := offering_handlers.NewOfferingHandler(db, comparisonService.Resolver(), deps.Objects)
	compareHandler := compare_handlers.NewCompareHandler(comparisonService, cfg.Comparison.FieldSet)

	var cacheCheck handlers.Check
	if deps.Cache != nil {
		cacheCheck = deps.Cache.Ping
	}
	healthHandler := handlers.NewHealthHandler(deps.Store.HealthCheck, cacheCheck)

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
		AccessLog:         !cfg.IsProduction(),
		RequestTimeout:    cfg.Server.RequestTimeout,
	}, log)

	// Health check endpoint (public)
	app.Get("/ping", healthHandler.HandleCheckHealth)

	api := app.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)

	// Universities. Fixed paths go before /:id.
	universities := api.Group("/universities")
	universities.Get("/", universityHandler.ListUniversities)
	universities.Get("/filter", universityHandler.FilterUniversities)
	universities.Get("/id", universityHandler.GetUniversityID)
	universities.Get("/by-program/:programId", universityHandler.GetUniversitiesByProgram)
	universities.Get("/:id", universityHandler.GetUniversity)
	universities.Get("/:id/programs", universityHandler.GetUniversityPrograms)
	universities.Post("/", withAudit(admins, db, "university_create", "universities", universityHandler.CreateUniversity)...)
	universities.Put("/:id", withAudit(admins, db, "university_update", "universities", universityHandler.UpdateUniversity)...)
	universities.Delete("/:id", withAudit(admins, db, "university_delete", "universities", universityHandler.DeleteUniversity)...)
	universities.Post("/:id/logo", withAudit(admins, db, "university_logo", "universities", universityHandler.UploadLogo)...)
	universities.Post("/:id/campus-images", withAudit(admins, db, "university_campus_images", "universities", universityHandler.UploadCampusImages)...)

	// Programs
	programs := api.Group("/programs")
	programs.Get("/", programHandler.ListPrograms)
	programs.Get("/:id", programHandler.GetProgram)
	programs.Post("/", withAudit(admins, db, "program_create", "programs", programHandler.CreateProgram)...)
	programs.Put("/:id", withAudit(admins, db, "program_update", "programs", programHandler.UpdateProgram)...)
	programs.Delete("/:id", withAudit(admins, db, "program_delete", "programs", programHandler.DeleteProgram)...)

	// Offerings
	offerings := api.Group("/offerings")
	offerings.Get("/compare", offeringHandler.CompareOfferings)
	offerings.Get("/:id", offeringHandler.GetOffering)
	offerings.Post("/", withAudit(admins, db, "offering_create", "offerings", offeringHandler.CreateOffering)...)
	offerings.Put("/:id", withAudit(admins, db, "offering_update", "offerings", offeringHandler.UpdateOffering)...)
	offerings.Delete("/:id", withAudit(admins, db, "offering_delete", "offerings", offeringHandler.DeleteOffering)...)
	offerings.Post("/:id/syllabus", withAudit(admins, db, "offering_syllabus", "offerings", offeringHandler.UploadSyllabus)...)

	// Comparison
	compare := api.Group("/compare")
	compare.Get("/fields", compareHandler.Fields)
	compare.Get("/:slug1/:slug2/:programSlug/export", compareHandler.Export)
	compare.Get("/:slug1/:slug2/:programSlug", compareHandler.Compare)

	// Admin panel
	admin := api.Group("/admin", admins...)
	admin.Get("/users", func(c *fiber.Ctx) error { return admin_handlers.ListUsers(c, db) })
	admin.Post("/users", middleware.AdminAuditLog(db, "user_create", "users"), func(c *fiber.Ctx) error { return admin_handlers.CreateUser(c, db) })
	admin.Delete("/users/:id", middleware.AdminAuditLog(db, "user_delete", "users"), func(c *fiber.Ctx) error { return admin_handlers.DeleteUser(c, db) })
	admin.Get("/audit-logs", func(c *fiber.Ctx) error { return admin_handlers.ListAuditLogs(c, db) })
	admin.Get("/audit-logs/:id", func(c *fiber.Ctx) error { return admin_handlers.GetAuditLog(c, db) })
	admin.Get("/cron-logs", func(c *fiber.Ctx) error { return admin_handlers.ListCronJobLogs(c, db) })

	return nil
}

// withAudit chains the admin guard, the audit log writer and the handler
func withAudit(guard []fiber.Handler, db *gorm.DB, action, resource string, h fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(guard)+2)
	chain = append(chain, guard...)
	chain = append(chain, middleware.AdminAuditLog(db, action, resource), h)
	return chain
}
