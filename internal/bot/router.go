package bot

import (
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/addis-listings/dalal-bot/internal/bot/handlers"
)

// GateHandler gets first look at every text, photo, or unclaimed callback
// update. It reports whether it consumed the update; unconsumed slash
// commands fall through to their registered command handlers.
type GateHandler func(c telebot.Context) (handled bool, err error)

// Router dispatches commands, callbacks, and conversation updates.
type Router struct {
	mu             sync.RWMutex
	commands       map[string]handlers.Handler
	callbacks      map[string]handlers.CallbackHandler
	gate           GateHandler
	defaultHandler handlers.Handler
	middlewares    []handlers.Middleware
	log            *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[string]handlers.Handler),
		callbacks:   make(map[string]handlers.CallbackHandler),
		middlewares: make([]handlers.Middleware, 0),
		log:         log,
	}
}

// RegisterCommand registers a handler for a bot command.
func (r *Router) RegisterCommand(cmd string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd] = h
}

// RegisterCallback registers a handler for a callback data prefix.
func (r *Router) RegisterCallback(prefix string, h handlers.CallbackHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[prefix] = h
}

// SetGate installs the conversation gate.
func (r *Router) SetGate(g GateHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = g
}

// SetDefault sets the fallback handler for updates nothing else claimed.
func (r *Router) SetDefault(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultHandler = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Route directs the incoming update to the appropriate handler.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	return r.executeHandler(func(c telebot.Context) error {
		if callback := c.Callback(); callback != nil {
			return r.handleCallback(c, strings.TrimSpace(callback.Data))
		}
		return r.handleMessage(c)
	}, c)
}

func (r *Router) handleCallback(c telebot.Context, data string) error {
	if handler := r.findCallbackHandler(data); handler != nil {
		return handler(c)
	}

	if gate := r.getGate(); gate != nil {
		handled, err := gate(c)
		if err != nil || handled {
			return err
		}
	}

	r.log.Info("no callback handler found", slog.String("data", data))
	return nil
}

func (r *Router) handleMessage(c telebot.Context) error {
	// The conversation gate runs before command dispatch so that an active
	// session sees (and recovers from) slash commands sent mid-flow.
	if gate := r.getGate(); gate != nil {
		handled, err := gate(c)
		if err != nil || handled {
			return err
		}
	}

	if text := c.Text(); strings.HasPrefix(text, "/") {
		if handler := r.getCommandHandler(strings.Fields(text)[0]); handler != nil {
			return handler(c)
		}
	}

	if handler := r.getDefaultHandler(); handler != nil {
		return handler(c)
	}

	return nil
}

func (r *Router) executeHandler(h handlers.Handler, c telebot.Context) error {
	wrapped := r.applyMiddlewares(h)
	if wrapped == nil {
		return nil
	}
	return wrapped(c)
}

func (r *Router) findCallbackHandler(data string) handlers.CallbackHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for prefix, handler := range r.callbacks {
		if strings.HasPrefix(data, prefix) {
			return handler
		}
	}

	return nil
}

func (r *Router) getCommandHandler(cmd string) handlers.Handler {
	r.mu.RLock()
	handler := r.commands[cmd]
	r.mu.RUnlock()
	return handler
}

func (r *Router) getGate() GateHandler {
	r.mu.RLock()
	gate := r.gate
	r.mu.RUnlock()
	return gate
}

func (r *Router) getDefaultHandler() handlers.Handler {
	r.mu.RLock()
	handler := r.defaultHandler
	r.mu.RUnlock()
	return handler
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	if h == nil {
		return nil
	}

	middlewares := r.middlewaresSnapshot()
	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func (r *Router) middlewaresSnapshot() []handlers.Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.middlewares) == 0 {
		return nil
	}

	snapshot := make([]handlers.Middleware, len(r.middlewares))
	copy(snapshot, r.middlewares)
	return snapshot
}
