package main

import (
	"context"
	"flag"
	"time"

	"nailbook/cmd/internal/auth"
	"nailbook/cmd/internal/config"
	"nailbook/cmd/internal/domain/sqlite"
	"nailbook/cmd/internal/domain/sqlite/repository"
	cognitoclient "nailbook/cmd/internal/integration/aws/cognito"
	"nailbook/cmd/internal/integration/identity"
	"nailbook/cmd/internal/integration/localidp"
	nbmw "nailbook/cmd/internal/middleware"
	"nailbook/cmd/internal/routes"
	"nailbook/cmd/internal/service"
	"nailbook/cmd/internal/utils/validators"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "nailbook.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	log.SetLevel(logLevel(cfg.Log.Level))

	rules, err := cfg.Rules()
	if err != nil {
		log.Fatal("invalid booking rules: ", err)
	}

	// Init SQLite
	db, err := sqlite.Init(cfg.Database.Path)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}
	if err := sqlite.Seed(db, time.Now().UnixMilli()); err != nil {
		log.Fatal("failed to seed service catalogue: ", err)
	}

	validate := validators.New()
	clock := service.Clock(time.Now)

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	blockedRepo := repository.NewBlockedDateRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	clientRepo := repository.NewClientRepository(db)

	idp, verifier := initIdentity(cfg, db)

	// Getting services
	userService := service.NewUserService(userRepo, clientRepo, validate, idp, clock)
	blockedService := service.NewBlockedDateService(blockedRepo, userRepo, validate, clock)
	catalogueService := service.NewCatalogueService(serviceRepo, userRepo, validate, clock)
	availabilityService := service.NewAvailabilityService(apptRepo, serviceRepo, blockedService, rules, clock)
	apptService := service.NewAppointmentService(apptRepo, userRepo, serviceRepo, clientRepo, blockedService, validate, rules, clock)
	clientService := service.NewClientService(clientRepo, userRepo, apptRepo, serviceRepo, validate, clock, rules.DefaultDurationMinutes)
	calendarService := service.NewCalendarService(apptRepo, userRepo, blockedService, rules, clock)

	// Getting routes
	userRoutes := routes.NewUserDefault(userService)
	apptRoutes := routes.NewAppointmentDefault(apptService)
	blockedRoutes := routes.NewBlockedDateDefault(blockedService)
	catalogueRoutes := routes.NewCatalogueDefault(catalogueService)
	availabilityRoutes := routes.NewAvailabilityDefault(availabilityService)
	clientRoutes := routes.NewClientDefault(clientService)
	calendarRoutes := routes.NewCalendarDefault(calendarService)
	healthRoutes := routes.NewHealthDefault(routes.HealthCheck{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.Log.Level))
	e.Use(middleware.Recover())
	e.Use(nbmw.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	authLimiter := nbmw.NewRateLimiter(1, 5)
	go sweep(authLimiter)
	limited := authLimiter.Middleware()
	authed := auth.Middleware(verifier)

	e.GET("/api/health", healthRoutes.GetHealth)

	// Users
	e.POST("/api/users", userRoutes.CreateUser, limited)
	e.POST("/api/users/login", userRoutes.CreateLogin, limited)
	e.POST("/api/users/verify", userRoutes.VerifySignup, limited)
	e.POST("/api/users/forgot-password", userRoutes.ForgotPassword, limited)
	e.POST("/api/users/reset-password", userRoutes.ResetPassword, limited)
	e.GET("/api/users", userRoutes.GetUsers, authed)
	e.GET("/api/users/:id", userRoutes.GetUser, authed)

	// Service catalogue
	e.GET("/api/services", catalogueRoutes.GetServices)
	e.GET("/api/services/:id", catalogueRoutes.GetService)
	e.POST("/api/services", catalogueRoutes.CreateService, authed)
	e.PUT("/api/services/:id", catalogueRoutes.UpdateService, authed)
	e.DELETE("/api/services/:id", catalogueRoutes.DeleteService, authed)

	// Availability
	e.GET("/api/availability/days", availabilityRoutes.GetDays)
	e.GET("/api/availability/slots", availabilityRoutes.GetSlots)

	// Appointments
	appts := e.Group("/api/appointments", authed)
	appts.GET("", apptRoutes.GetAppointments)
	appts.GET("/user/:id", apptRoutes.GetUserAppointments)
	appts.POST("", apptRoutes.CreateAppointment)
	appts.POST("/walk-in", apptRoutes.CreateWalkIn)
	appts.PUT("/:id", apptRoutes.UpdateAppointment)
	appts.DELETE("/:id", apptRoutes.DeleteAppointment)

	// Blocked dates: reads are public so the booking page can grey out days
	e.GET("/api/blocked-dates", blockedRoutes.GetBlockedDates)
	e.GET("/api/blocked-dates/range", blockedRoutes.GetBlockedRange)
	e.GET("/api/blocked-dates/month/:year/:month", blockedRoutes.GetBlockedMonth)
	e.GET("/api/blocked-dates/check/:date", blockedRoutes.CheckDay)
	e.POST("/api/blocked-dates", blockedRoutes.CreateBlockedDate, authed)
	e.PUT("/api/blocked-dates/:id", blockedRoutes.UpdateBlockedDate, authed)
	e.DELETE("/api/blocked-dates/:id", blockedRoutes.DeleteBlockedDate, authed)
	e.DELETE("/api/blocked-dates/date/:date", blockedRoutes.DeleteBlockedDay, authed)

	// Calendar
	e.GET("/api/calendar", calendarRoutes.GetCalendar, authed)
	e.GET("/api/calendar.ics", calendarRoutes.ExportICS, authed)

	// Clients
	clients := e.Group("/api/clients", authed)
	clients.GET("", clientRoutes.GetClients)
	clients.GET("/with-stats", clientRoutes.GetClientsWithStats)
	clients.GET("/:id", clientRoutes.GetClient)
	clients.GET("/:id/appointments", clientRoutes.GetClientHistory)
	clients.POST("", clientRoutes.CreateClient)
	clients.PUT("/:id", clientRoutes.UpdateClient)
	clients.DELETE("/:id", clientRoutes.DeleteClient)
	clients.POST("/:id/ban", clientRoutes.SetBanned)
	clients.PUT("/:id/roles", clientRoutes.SetRoles)

	log.Infof("nailbook api listening on %s (auth: %s)", cfg.Listen, cfg.Auth.Provider)
	err = e.Start(cfg.Listen)
	if err != nil {
		e.Logger.Fatal(err)
	}
}

// initIdentity picks the account backend and the matching token verifier.
func initIdentity(cfg *config.Config, db *gorm.DB) (identity.Provider, auth.Verifier) {
	if cfg.Auth.Provider == "cognito" {
		settings := cognitoclient.Settings{
			Region:     cfg.Auth.Cognito.Region,
			UserPoolID: cfg.Auth.Cognito.UserPoolID,
			ClientID:   cfg.Auth.Cognito.ClientID,
		}
		cogClient, err := cognitoclient.InitCognitoClient(context.Background(), settings)
		if err != nil {
			log.Fatal("failed to initialize cognito client: ", err)
		}
		return cogClient, auth.NewCognitoVerifier(settings.Region, settings.UserPoolID, settings.ClientID)
	}

	tokens, err := auth.NewHMAC(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal("failed to initialize token signer: ", err)
	}
	creds := repository.NewCredentialRepository(db)
	return localidp.New(creds, tokens, cfg.Auth.TokenTTL), tokens
}

func sweep(rl *nbmw.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.Sweep()
	}
}

func logLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
