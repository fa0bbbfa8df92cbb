package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"meetmate/internal/config"
	"meetmate/internal/conversation"
	"meetmate/internal/notify"
	"meetmate/internal/scheduler"
	"meetmate/internal/service"
	"meetmate/internal/store"
	"meetmate/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	loc     *time.Location
	httpSrv *http.Server
	repo    store.Repo
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	loc, err := time.LoadLocation(cfg.DefaultTZ)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, loc: loc, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting meetmate",
		zap.String("tz", a.cfg.DefaultTZ),
		zap.String("http", a.cfg.HTTPAddr),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.New()
	sched := scheduler.New(a.log, clk)
	dispatcher := notify.New(telegram.NewSender(a.bot), a.loc, a.log)
	svc := service.New(repo, sched, dispatcher, clk, a.loc, a.log)
	sessions := conversation.NewSessions()
	router := telegram.NewRouter(a.bot, a.log, svc, sessions)

	// Bring persisted future reminders back onto timers before any update
	// is handled.
	if err := svc.Rearm(ctx); err != nil {
		a.log.Error("rearm reminders failed", zap.Error(err))
		return err
	}

	go sched.Run(ctx, svc)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			a.handle(ctx, router, upd)
		}
	}
}

// handle shields the intake loop: one panicking update must not take the
// process down.
func (a *App) handle(ctx context.Context, router *telegram.Router, upd tgbotapi.Update) {
	defer func() {
		if rec := recover(); rec != nil {
			a.log.Error("update handler panicked", zap.Any("panic", rec))
		}
	}()
	router.HandleUpdate(ctx, upd)
}
