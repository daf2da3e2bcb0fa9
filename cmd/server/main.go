package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Rishikarathore0601/rfp/internal/ai"
	"github.com/Rishikarathore0601/rfp/internal/config"
	"github.com/Rishikarathore0601/rfp/internal/db"
	"github.com/Rishikarathore0601/rfp/internal/extract"
	httpHandlers "github.com/Rishikarathore0601/rfp/internal/http/handlers"
	httpRouter "github.com/Rishikarathore0601/rfp/internal/http/router"
	"github.com/Rishikarathore0601/rfp/internal/logger"
	"github.com/Rishikarathore0601/rfp/internal/mail"
	"github.com/Rishikarathore0601/rfp/internal/repository"
	"github.com/Rishikarathore0601/rfp/internal/service"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Репозитории.
	rfpRepo := repository.NewRFPRepository(dbConn)
	vendorRepo := repository.NewVendorRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)

	// Шлюз модели и экстракторы.
	aiClient := ai.NewClient(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.OllamaTimeout)
	rfpExtractor := extract.NewRFPExtractor(aiClient)
	proposalExtractor := extract.NewProposalExtractor(aiClient)

	// Почта.
	sender := mail.NewSender(cfg)
	dialMailbox := func() (service.MailboxClient, error) {
		return mail.DialMailbox(cfg)
	}

	// Сервисы.
	rfpService := service.NewRFPService(rfpRepo, vendorRepo, rfpExtractor, sender)
	comparisonService := service.NewComparisonService(rfpRepo, proposalRepo, aiClient)
	inboxService := service.NewInboxService(
		dialMailbox,
		rfpRepo,
		vendorRepo,
		proposalRepo,
		proposalExtractor,
		cfg.InboxSubjectFilter,
		cfg.AutoCreateVendors,
	)

	// HTTP хэндлеры.
	rfpHandler := httpHandlers.NewRFPHandler(rfpService, rfpRepo)
	vendorHandler := httpHandlers.NewVendorHandler(vendorRepo)
	proposalHandler := httpHandlers.NewProposalHandler(proposalRepo)
	emailHandler := httpHandlers.NewEmailHandler(rfpService, inboxService, sender)
	comparisonHandler := httpHandlers.NewComparisonHandler(comparisonService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, rfpHandler, vendorHandler, proposalHandler, emailHandler, comparisonHandler, healthHandler)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
