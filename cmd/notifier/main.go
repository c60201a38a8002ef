package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodtruck_order_notifier/internal/app"
	"foodtruck_order_notifier/internal/domain/intake"
	"foodtruck_order_notifier/internal/infra/audio"
	"foodtruck_order_notifier/internal/infra/config"
	idb "foodtruck_order_notifier/internal/infra/database"
	"foodtruck_order_notifier/internal/infra/httpapi"
	"foodtruck_order_notifier/internal/infra/logger"
	"foodtruck_order_notifier/internal/infra/messaging"
	"foodtruck_order_notifier/internal/infra/metrics"
	"foodtruck_order_notifier/internal/infra/scheduler"
	itg "foodtruck_order_notifier/internal/infra/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Food Truck Order Notifier starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	mainLog := logger.Component("main")
	mainLog.WithField("merchant_id", cfg.MerchantID).Info("configuration loaded")

	// Database connection (the Order Store Gateway backend)
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLog.WithError(err).Fatal("could not connect to database")
	}
	defer db.Close()
	mainLog.Info("database connection established")

	orderRepo := idb.NewPostgresOrderRepository(db)
	settingsRepo := idb.NewPostgresSettingsRepository(db)

	// Shared intake state: survives everything except a merchant switch.
	ledger := intake.NewLedger()
	queue := intake.NewQueue()
	state := app.NewIntakeState()
	intakeMetrics := metrics.NewIntakeMetrics(prometheus.DefaultRegisterer)

	// Audio notifier: locked until the first merchant interaction.
	chime := audio.NewChime(func() (audio.Player, error) {
		return audio.NewTonePlayer(audio.DeviceSink(cfg.AudioSink))
	}, cfg.SoundEnabled, logger.Component("audio"))
	defer chime.Close()

	// Confirmation publisher is optional; without a broker, accepts simply
	// skip the side call.
	var publisher app.ConfirmationPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := messaging.Dial(cfg.RabbitMQURL)
		if err != nil {
			mainLog.WithError(err).Fatal("could not connect to rabbitmq")
		}
		defer mqClient.Close()
		publisher, err = messaging.NewConfirmationPublisher(mqClient, logger.Component("messaging"))
		if err != nil {
			mainLog.WithError(err).Fatal("could not set up confirmation publisher")
		}
		mainLog.Info("confirmation publisher initialized")
	} else {
		mainLog.Warn("RABBITMQ_URL not set, confirmation dispatch disabled")
	}

	// Telegram bot (merchant channel + push bridge)
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			logger.Component("telebot").WithError(err).Error("bot handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLog.WithError(err).Fatal("could not create telegram bot")
	}

	notifier := itg.NewMerchantNotifier(itg.NewTelebotAdapter(bot), cfg.MerchantChatID, logger.Component("notifier"))

	intakeService := app.NewIntakeService(orderRepo, settingsRepo, ledger, queue, state,
		notifier, chime, intakeMetrics, logger.Component("intake"), cfg.MerchantID)
	dispatchService := app.NewDispatchService(orderRepo, settingsRepo, queue, state,
		publisher, intakeMetrics, logger.Component("dispatch"))

	itg.RegisterOrderActionHandlers(bot, dispatchService, intakeService, chime)
	mainLog.Info("order action handlers registered")

	// HTTP surface for the rest of the application
	handler := httpapi.NewHandler(intakeService, dispatchService, queue, state, chime, settingsRepo, cfg.MerchantID, logger.Component("http"))
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(handler, logger.Component("http")),
	}
	go func() {
		mainLog.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			mainLog.WithError(err).Fatal("http server failed")
		}
	}()

	poller := scheduler.NewIntakePoller(intakeService, logger.Component("poller"), cfg.PollInterval)
	poller.Start()

	go bot.Start()
	mainLog.Info("application setup complete")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLog.Info("shutting down application...")
	poller.Stop()
	bot.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		mainLog.WithError(err).Warn("http server shutdown failed")
	}
	mainLog.Info("application shut down gracefully")
}
