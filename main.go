package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	alarmapp "temperature-monitor/internal/alarms/application"
	alarmhttp "temperature-monitor/internal/alarms/interfaces/http"
	"temperature-monitor/internal/alarms/notify"
	"temperature-monitor/internal/config"
	"temperature-monitor/internal/observability/metrics"
	subapp "temperature-monitor/internal/subscribers/application"
	"temperature-monitor/internal/subscribers/interfaces/telegram"
	telemetryapp "temperature-monitor/internal/telemetry/application"
	telemetry "temperature-monitor/internal/telemetry/domain"
	telemetrymqtt "temperature-monitor/internal/telemetry/interfaces/mqtt"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("storage error: %v", err)
	}
	defer st.Close()

	metrics.Init(st.db, logger)
	zone := telemetry.FixedZone(cfg.TimezoneOffset)

	subscriberService, err := subapp.NewService(st.subscribers, subapp.WithLogger(logger))
	if err != nil {
		logger.Fatalf("subscriber service error: %v", err)
	}

	var bot *tgbotapi.BotAPI
	var channel notify.Channel = notify.NewLogChannel(logger)
	if cfg.TelegramEnabled() {
		client := &http.Client{Timeout: time.Duration(cfg.Telegram.PollTimeout+10) * time.Second}
		bot, err = tgbotapi.NewBotAPIWithClient(cfg.Telegram.Token, tgbotapi.APIEndpoint, client)
		if err != nil {
			logger.Fatalf("telegram bot error: %v", err)
		}
		logger.Printf("telegram bot authorized as %s", bot.Self.UserName)
		tgChannel, err := notify.NewTelegramChannel(bot)
		if err != nil {
			logger.Fatalf("telegram channel error: %v", err)
		}
		channel = notify.NewMultiChannel(tgChannel, notify.NewLogChannel(logger))
	} else {
		logger.Printf("TELEGRAM_TOKEN not set; alarms are logged only and the bot is disabled")
	}

	tpl, err := notify.NewTemplate(cfg.Alarm.NotifyTemplate)
	if err != nil {
		logger.Fatalf("alarm template error: %v", err)
	}
	broker := alarmhttp.NewSSEBroker(zone)
	evaluator, err := alarmapp.NewEvaluator(st.alarms, subscriberService, channel,
		alarmapp.WithTemplate(tpl),
		alarmapp.WithListener(broker),
		alarmapp.WithSendTimeout(cfg.Alarm.NotifyTimeout),
		alarmapp.WithLogger(logger),
	)
	if err != nil {
		logger.Fatalf("alarm evaluator error: %v", err)
	}
	alarmService, err := alarmapp.NewService(st.alarms)
	if err != nil {
		logger.Fatalf("alarm service error: %v", err)
	}

	ingestService, err := telemetryapp.NewIngestService(st.readings,
		telemetryapp.WithEvaluator(evaluator),
		telemetryapp.WithLatestStore(st.latest),
		telemetryapp.WithOffset(cfg.TimezoneOffset),
		telemetryapp.WithLogger(logger),
	)
	if err != nil {
		logger.Fatalf("ingest service error: %v", err)
	}
	historyService, err := telemetryapp.NewHistoryService(st.readings, telemetryapp.WithHistoryOffset(cfg.TimezoneOffset))
	if err != nil {
		logger.Fatalf("history service error: %v", err)
	}

	router, err := newRouter(routerDeps{
		ingester: ingestService,
		history:  historyService,
		latest:   st.latest,
		alarms:   alarmService,
		broker:   broker,
		window:   cfg.HistoryWindow,
		zone:     zone,
	}, logger)
	if err != nil {
		logger.Fatalf("router error: %v", err)
	}

	var workers sync.WaitGroup
	if bot != nil {
		handler, err := telegram.NewCommandHandler(subscriberService, logger)
		if err != nil {
			logger.Fatalf("telegram handler error: %v", err)
		}
		poller, err := telegram.NewPoller(bot, handler,
			telegram.WithPollTimeout(cfg.Telegram.PollTimeout),
			telegram.WithPollerLogger(logger),
		)
		if err != nil {
			logger.Fatalf("telegram poller error: %v", err)
		}
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := poller.Run(ctx); err != nil {
				logger.Printf("telegram poller error: %v", err)
			}
		}()
	}

	if cfg.MQTT.Broker != "" {
		sub, err := telemetrymqtt.NewSubscriber(telemetrymqtt.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Topic:    cfg.MQTT.Topic,
		}, ingestService, telemetrymqtt.WithLogger(logger))
		if err != nil {
			logger.Fatalf("mqtt subscriber error: %v", err)
		}
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := sub.Run(ctx); err != nil {
				logger.Printf("mqtt subscriber error: %v", err)
			}
		}()
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("http shutdown error: %v", err)
		}
	}()

	logger.Printf("http listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("http server error: %v", err)
		stop()
	}
	<-shutdownDone
	workers.Wait()
	logger.Printf("shutdown complete")
}
