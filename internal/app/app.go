package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/contestvote/internal/auth"
	"github.com/abrezinsky/contestvote/internal/handlers"
	"github.com/abrezinsky/contestvote/internal/logger"
	"github.com/abrezinsky/contestvote/internal/repository"
	"github.com/abrezinsky/contestvote/internal/services"
	"github.com/abrezinsky/contestvote/internal/websocket"
	"github.com/abrezinsky/contestvote/pkg/payout"
)

const shutdownTimeout = 10 * time.Second

// Options configures a new App
type Options struct {
	DBPath       string
	AdminAuth    *auth.Auth
	JWTSecret    string
	Location     *time.Location
	SyncInterval time.Duration
	// Payouts defaults to an HTTP client for PayoutURL
	Payouts     payout.Client
	PayoutURL   string
	PayoutToken string
}

// App holds all application dependencies
type App struct {
	log          logger.Logger
	handlers     *handlers.Handlers
	repo         *repository.Repository
	settings     *services.SettingsService
	hub          *websocket.Hub
	syncInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates and initializes a new application instance
func New(log logger.Logger, opts Options) (*App, error) {
	if opts.AdminAuth == nil {
		return nil, errors.New("admin auth is required")
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = time.Minute
	}

	repo, err := repository.New(opts.DBPath)
	if err != nil {
		return nil, err
	}

	client := opts.Payouts
	if client == nil {
		client = payout.NewHTTPClient(opts.PayoutURL, log)
	}
	if opts.PayoutToken != "" {
		client.SetToken(opts.PayoutToken)
	}

	// Initialize services
	settingsService := services.NewSettingsService(log, repo)
	contestService := services.NewContestService(log, repo, settingsService, opts.Location)
	submissionService := services.NewSubmissionService(log, repo)
	votingService := services.NewVotingService(log, repo, nil)
	resultsService := services.NewResultsService(log, repo, settingsService, client)

	// Wire the hub as broadcaster for votes and status changes
	hub := websocket.New(log, contestService)
	contestService.SetBroadcaster(hub)
	votingService.SetBroadcaster(hub)

	h := handlers.New(handlers.Services{
		Contests:    contestService,
		Submissions: submissionService,
		Voting:      votingService,
		Results:     resultsService,
		Settings:    settingsService,
	}, opts.AdminAuth, auth.NewIdentifier(opts.JWTSecret), hub.ServeWs, log)

	return &App{
		log:          log,
		handlers:     h,
		repo:         repo,
		settings:     settingsService,
		hub:          hub,
		syncInterval: opts.SyncInterval,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Start runs the websocket hub and the contest status sync in the
// background until Close is called or ctx is cancelled
func (a *App) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.hub.Start(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.hub.StartStatusSync(ctx, a.syncInterval)
	}()
}

// Close stops background work and releases the database
func (a *App) Close() error {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		a.wg.Wait()
	}
	return a.repo.Close()
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context, addr string) error {
	a.Start(ctx)

	host := getPreferredIP(realNetworkProvider{})
	if _, port, err := net.SplitHostPort(addr); err == nil && port != "" {
		host = net.JoinHostPort(host, port)
	}
	baseURL := "http://" + host
	a.setDefaultBaseURL(ctx, baseURL)

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Server starting", "url", baseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// setDefaultBaseURL stores baseURL for share links unless an operator
// already configured one. A localhost value is replaced since phones
// scanning a QR code cannot reach it.
func (a *App) setDefaultBaseURL(ctx context.Context, baseURL string) {
	existing, err := a.settings.GetBaseURL(ctx)
	if err != nil {
		a.log.Warn("Failed to read base_url", "error", err)
		return
	}
	if existing != "" && !strings.Contains(existing, "localhost") {
		return
	}

	if err := a.settings.SetBaseURL(ctx, baseURL); err != nil {
		a.log.Warn("Failed to set default base_url", "error", err)
		return
	}
	a.log.Info("Default base URL set", "url", baseURL)
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags           { return r.iface.Flags }
func (r realInterface) Addrs() ([]net.Addr, error) { return r.iface.Addrs() }

// networkProvider lists network interfaces
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the IPv4 address most likely reachable from the
// local network. Private addresses win over public ones; localhost is the
// fallback.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var fallback string
	for _, iface := range ifaces {
		if iface.Flags()&net.FlagUp == 0 || iface.Flags()&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ip := addrIP(addr).To4()
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if ip.IsPrivate() {
				return ip.String()
			}
			if fallback == "" {
				fallback = ip.String()
			}
		}
	}

	if fallback != "" {
		return fallback
	}
	return "localhost"
}

func addrIP(addr net.Addr) net.IP {
	switch v := addr.(type) {
	case *net.IPNet:
		return v.IP
	case *net.IPAddr:
		return v.IP
	}
	return nil
}
