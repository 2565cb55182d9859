package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"parttime-match/internal/config"
	"parttime-match/internal/delivery/http/handler"
	"parttime-match/internal/delivery/http/middleware"
	"parttime-match/internal/delivery/http/routes"
	v1 "parttime-match/internal/delivery/http/routes/v1"
	"parttime-match/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber     *fiber.App
	Container *Container

	cancel context.CancelFunc
	bg     sync.WaitGroup
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container and HTTP app. The returned cleanup stops
// background workers and releases storage.
func Bootstrap(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	a := New(c)
	return a, a.Shutdown, nil
}

// StartBackground runs the websocket hub, recompute dispatcher, periodic
// sweep and change-feed subscriber until Shutdown.
func (a *App) StartBackground(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)
	c := a.Container

	a.bg.Add(2)
	go func() {
		defer a.bg.Done()
		c.Hub.Run(ctx)
	}()
	go func() {
		defer a.bg.Done()
		if err := c.Subscriber.Run(ctx); err != nil {
			c.Logger.Error("change feed stopped", zap.Error(err))
		}
	}()

	c.Dispatcher.Start(ctx)
	if err := c.Sweeper.Start(ctx); err != nil {
		a.cancel()
		return fmt.Errorf("start sweep: %w", err)
	}
	return nil
}

func (a *App) Shutdown() error {
	if a == nil {
		return nil
	}
	c := a.Container
	if a.cancel != nil {
		c.Sweeper.Stop()
		a.cancel()
		c.Dispatcher.Stop()
		a.bg.Wait()
	}
	return c.Close()
}

func registerGlobalMiddleware(app *fiber.App, log *zap.Logger) {
	if app == nil {
		return
	}

	errMw := middleware.NewErrorMiddleware(log)
	accessMw := middleware.NewAccessLogMiddleware(log)
	app.Use(accessMw.Middleware())
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	handlers := v1.Handlers{
		Auth:   handler.NewAuthHandler(c.Auth),
		User:   handler.NewUserHandler(c.UserUC),
		Seeker: handler.NewSeekerHandler(c.Profiles, c.Recommendations),
		Shop:   handler.NewShopHandler(c.Profiles),
		Post:   handler.NewPostHandler(c.Profiles, c.Recommendations, c.Apps),
		Match:  handler.NewMatchHandler(c.MatchStatus),
	}

	registry := routes.NewRegistry(
		handler.NewHealthHandler(c.Health),
		ws.NewHandler(c.Hub, c.JWT, c.Logger),
		handlers,
		middleware.NewAuthMiddleware(c.JWT),
	)
	registry.Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
