package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"ledger-gateway/internal/config"
	"ledger-gateway/internal/controller"
	"ledger-gateway/internal/database/metadata"
	"ledger-gateway/internal/executor"
	"ledger-gateway/internal/mcp"
	"ledger-gateway/internal/middleware"
	"ledger-gateway/internal/model"
	"ledger-gateway/internal/security"
	"ledger-gateway/internal/service"
	"ledger-gateway/internal/tally"
)

func main() {
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional relational sink for incremental ledger persistence
	var sinkDB *gorm.DB
	var sink *tally.Sink
	if cfg.Sink.Enabled {
		sinkDB, err = config.InitSinkDatabase(cfg)
		if err != nil {
			log.Fatal("Failed to initialize sink database:", err)
		}
		sink = tally.NewSink(sinkDB)
	}

	deps := service.Deps{
		Kind:   cfg.DataSource.Kind,
		Schema: metadata.NewSnapshotHolder(),
		Sink:   sink,
		SinkDB: sinkDB,
	}

	var sqlDB *sql.DB
	switch cfg.DataSource.Kind {
	case model.BackendTabular:
		frame, err := executor.LoadFrame(&cfg.DataSource)
		if err != nil {
			log.Fatal("Failed to load tabular source:", err)
		}
		deps.Tabular = executor.NewTabularExecutor(frame)
		deps.Schema.Swap(frame.Catalog())

	case model.BackendTally:
		deps.Tally = tally.NewClient(cfg.Tally)

	default:
		sqlDB, err = sql.Open(cfg.DataSource.DriverName(), cfg.DataSource.DSN())
		if err != nil {
			log.Fatal("Failed to open database:", err)
		}
		deps.SQL = executor.NewSQLExecutor(sqlDB, cfg.DataSource.Type, deps.Schema)
		deps.Extractor = metadata.NewExtractor(sqlDB, cfg.DataSource.Type)

		// A failed introspection leaves the gateway running degraded with
		// an empty snapshot; a later refresh can recover it.
		catalog, err := deps.Extractor.Discover(ctx)
		if err != nil {
			log.Printf("Schema introspection failed, running degraded: %v", err)
		}
		deps.Schema.Swap(catalog)
	}

	if cfg.Fallback.Enabled {
		deps.Generator = service.NewOllamaGenerator(
			cfg.Fallback.Endpoint,
			cfg.Fallback.Model,
			time.Duration(cfg.Fallback.Timeout)*time.Second,
		)
	}

	queryService := service.NewQueryService(deps)

	// MCP mode serves tools over stdio and never binds the HTTP port
	if *mcpMode {
		mcpServer := mcp.NewMCPServer(queryService)
		if err := mcpServer.StartStdio(); err != nil {
			log.Fatal("MCP server failed:", err)
		}
		return
	}

	// Background sync poller, Tally source with a sink only
	if cfg.DataSource.Kind == model.BackendTally && sink != nil && cfg.Sink.AutoRefreshInterval > 0 {
		poller := tally.NewPoller(
			time.Duration(cfg.Sink.AutoRefreshInterval)*time.Second,
			deps.Tally.FullExport,
			sink,
			log.Default(),
		)
		go poller.Run(ctx)
	}

	// Initialize metrics
	middleware.InitMetrics()

	// Initialize security
	jwtManager := security.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.JWTExpiration)
	authMiddleware := security.NewAuthMiddleware(jwtManager)

	// Initialize rate limiting
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPM:             cfg.Security.RateLimitPerMinute,
		Burst:           cfg.Security.RateLimitBurst,
		CleanupInterval: 5 * time.Minute,
	})

	// Initialize controllers
	queryController := controller.NewQueryController(queryService)
	schemaController := controller.NewSchemaController(queryService)
	tallyController := controller.NewTallyController(queryService)
	healthController := controller.NewHealthController(cfg.DataSource.Kind, sqlDB, queryService)

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.Cors())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.PrometheusMiddleware())

	if cfg.Security.EnableRateLimit {
		router.Use(rateLimiter.RateLimit())
	}

	// Always available
	router.GET("/health", healthController.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 group
	api := router.Group("/api/v1")
	if cfg.Security.EnableAuth {
		api.Use(authMiddleware.RequireAuth())
	}
	{
		api.POST("/ask", queryController.Ask)
		api.GET("/schema", schemaController.GetSchema)
		api.POST("/schema/refresh", schemaController.RefreshSchema)

		tallyGroup := api.Group("/tally")
		{
			tallyGroup.POST("/sync", tallyController.Sync)
			tallyGroup.POST("/:operation", tallyController.RunOperation)
		}
	}

	// Start server
	log.Printf("Starting server on port %s", cfg.Server.Port)
	log.Printf("Health check available at: http://localhost:%s/health", cfg.Server.Port)

	if err := router.Run(cfg.Server.Host + ":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
