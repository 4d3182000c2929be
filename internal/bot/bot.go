// Package bot wires the Telegram transport to the conversation engine and
// the listing services.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/addis-listings/dalal-bot/internal/bot/keyboard"
	apperrors "github.com/addis-listings/dalal-bot/internal/errors"
	"github.com/addis-listings/dalal-bot/internal/flow"
	"github.com/addis-listings/dalal-bot/internal/i18n"
	"github.com/addis-listings/dalal-bot/internal/listing"
	"github.com/addis-listings/dalal-bot/internal/notify"
	"github.com/addis-listings/dalal-bot/internal/user"
	"github.com/addis-listings/dalal-bot/pkg/config"
)

// Bot wraps telebot.Bot with the application dependencies needed to handle
// updates.
type Bot struct {
	telebot     *telebot.Bot
	log         *slog.Logger
	cfg         config.Config
	engine      *flow.Engine
	listings    *listing.Service
	userService *user.Service
	i18n        *i18n.Manager
	notifier    *notify.Notifier
	router      *Router
	errHandler  *apperrors.Handler
}

// New builds a Telegram bot instance configured according to the
// application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	engine *flow.Engine,
	listings *listing.Service,
	userService *user.Service,
	manager *i18n.Manager,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
		Poller: &telebot.LongPoller{
			Timeout: cfg.Bot.PollTimeout,
		},
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)

	b := &Bot{
		telebot:     tb,
		log:         log,
		cfg:         cfg,
		engine:      engine,
		listings:    listings,
		userService: userService,
		i18n:        manager,
		notifier:    notify.New(tb, manager, errHandler, log),
		router:      NewRouter(log),
		errHandler:  errHandler,
	}

	b.setupRouter()
	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations
// such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

// Notifier exposes the notification dispatcher.
func (b *Bot) Notifier() *notify.Notifier {
	return b.notifier
}

func (b *Bot) setupRouter() {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler, b.i18n))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler, b.i18n))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(AuthMiddleware(b.userService, b.i18n, b.log))
	b.router.Use(LastActiveMiddleware(b.userService))

	b.router.SetGate(b.flowGate)
	b.router.SetDefault(b.menuFallback)

	b.router.RegisterCommand(CommandStart, b.handleStart)
	b.router.RegisterCommand(CommandBrowse, b.handleBrowse)
	b.router.RegisterCommand(CommandMyListings, b.handleMyListings)
	b.router.RegisterCommand(CommandPending, b.handlePendingQueue)
	b.router.RegisterCommand(CommandLanguage, b.handleLanguage)

	b.router.RegisterCallback(keyboard.CallbackApprovePrefix, b.handleApprove)
	b.router.RegisterCallback(keyboard.CallbackSoldPrefix, b.handleMarkSold)
	b.router.RegisterCallback(keyboard.CallbackDeletePrefix, b.handleDelete)
	b.router.RegisterCallback(languageCallbackPrefix, b.handleSetLanguage)
	b.router.RegisterCallback(keyboard.CallbackRolePrefix, b.handleSetRole)
}

func (b *Bot) registerTelebotHandlers() {
	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnPhoto, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}
