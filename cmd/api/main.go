package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appconfig "corpanalyst/cmd/internal/config"
	"corpanalyst/cmd/internal/domain/database"
	"corpanalyst/cmd/internal/domain/database/repository"
	"corpanalyst/cmd/internal/http/handler"
	authmiddleware "corpanalyst/cmd/internal/http/middleware"
	"corpanalyst/cmd/internal/infrastructure/aws/storage"
	"corpanalyst/cmd/internal/infrastructure/pdftext"
	"corpanalyst/cmd/internal/infrastructure/proxycurl"
	"corpanalyst/cmd/internal/infrastructure/secapi"
	"corpanalyst/cmd/internal/infrastructure/zoominfo"
	"corpanalyst/cmd/internal/service"
	"corpanalyst/cmd/internal/service/jobs"
	"corpanalyst/cmd/internal/utils/validators"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const envVarsPrefix = "/corpanalyst/prod/"

func main() {
	validate := validator.New()
	validators.Register(validate)

	// Loads env vars depending on environment
	if os.Getenv("GO_ENV") == "production" {
		loadProdEnv() // AWS SSM Parameter Store
	} else {
		// Loads from .env, a missing file just means the shell environment is used
		if err := godotenv.Load(); err != nil {
			log.Warnf("no .env file loaded: %v", err)
		}
	}

	cfg, err := appconfig.Load(validate)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	setLogLevel(cfg.LogLevel)

	// Init cache store
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("unable to open cache store: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Getting repos
	filingRepo := repository.NewFilingRepository(db)
	firmographicRepo := repository.NewFirmographicRepository(db)
	networkRepo := repository.NewProfessionalNetworkRepository(db)

	// Provider clients
	secClient := secapi.NewClient(cfg.SEC.BaseURL, cfg.SEC.APIKey, cfg.HTTPClientTimeout)
	zoomClient := zoominfo.NewClient(cfg.ZoomInfo.BaseURL, cfg.ZoomInfo.Username, cfg.ZoomInfo.Password, cfg.HTTPClientTimeout)
	tokens := zoominfo.NewTokenManager(zoomClient)
	proxycurlClient := proxycurl.NewClient(cfg.Proxycurl.BaseURL, cfg.Proxycurl.APIKey, cfg.HTTPClientTimeout)

	var archive service.FilingArchive
	if cfg.Archive.Bucket != "" {
		s3Client, err := storage.NewStorageClient(ctx, cfg.Archive.Bucket, cfg.Archive.Region)
		if err != nil {
			log.Fatalf("unable to init filing archive: %v", err)
		}
		archive = s3Client
	}

	// Getting services
	filingService := service.NewFilingService(filingRepo, secClient, pdftext.NewExtractor(), archive, cfg.SEC)
	firmographicService := service.NewFirmographicService(firmographicRepo, zoomClient, tokens, cfg.ZoomInfo)
	networkService := service.NewProfessionalNetworkService(networkRepo, proxycurlClient, cfg.Proxycurl)
	reportService := service.NewReportService(filingService, firmographicService, networkService)

	// Getting handlers
	connectorRoutes := handler.NewConnectorRoute(filingService, firmographicService, networkService, reportService, validate)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debugf("%s %s -> %d (%s)", v.Method, v.URIPath, v.Status, v.Latency)
			return nil
		},
	}))

	api := e.Group("/api")
	if cfg.APIAuthSecret != "" {
		api.Use(authmiddleware.NewAuthMiddleware(&authmiddleware.AuthMiddlewareConfig{Secret: cfg.APIAuthSecret}))
	} else {
		log.Warn("API_AUTH_SECRET is not set, /api routes are unauthenticated")
	}

	// Filings
	api.GET("/filings/link", connectorRoutes.GetFilingLink)
	api.GET("/filings/text", connectorRoutes.GetFilingText)

	// Enrichments
	api.GET("/enrichments/firmographic", connectorRoutes.GetFirmographic)
	api.GET("/enrichments/firmographic/search", connectorRoutes.SearchFirmographic)
	api.DELETE("/enrichments/firmographic/:ticker", connectorRoutes.DeleteFirmographic)
	api.GET("/enrichments/professional-network", connectorRoutes.GetProfessionalNetwork)
	api.DELETE("/enrichments/professional-network/:ticker", connectorRoutes.DeleteProfessionalNetwork)

	// Report writer
	api.GET("/companies/:ticker/report-inputs", connectorRoutes.GetReportInputs)

	// Docker Compose healthcheck
	e.GET("/health", healthCheckRoute)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	cleaner := jobs.NewCacheCleaner(map[string]jobs.ExpiringCache{
		"sec_filings":          filingRepo,
		"zoominfo_enrichments": firmographicRepo,
		"nubela_enrichments":   networkRepo,
	}, cfg.Retention.Days, cfg.Retention.SweepInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cleaner.Start(gctx)
		return nil
	})
	g.Go(func() error {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DEBUG)
	case "warn":
		log.SetLevel(log.WARN)
	case "error":
		log.SetLevel(log.ERROR)
	case "off":
		log.SetLevel(log.OFF)
	default:
		log.SetLevel(log.INFO)
	}
}

func loadProdEnv() {
	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appconfig.GetEnv("AWS_REGION", "us-east-2")))
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	client := ssm.NewFromConfig(cfg)
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(envVarsPrefix),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(true),
	})

	prefixLength := len(envVarsPrefix)
	loaded := 0
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			log.Fatalf("unable to load prod environment, %v", err)
		}

		// Export vars
		for _, param := range out.Parameters {
			key := (*param.Name)[prefixLength:]
			if enverr := os.Setenv(key, *param.Value); enverr != nil {
				log.Fatalf("unable to set environment variable, %v", enverr)
			}
			loaded++
		}
	}
	log.Debugf("loaded %d prod environment variables", loaded)
}

func healthCheckRoute(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
