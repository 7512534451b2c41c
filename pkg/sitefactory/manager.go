package sitefactory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"presshq/pressgate/pkg/client"
	"presshq/pressgate/pkg/config"
	"presshq/pressgate/pkg/telemetry/logging"
)

// Manager holds one client per configured site and owns their
// lifecycle. Lookups are by site id; iteration follows configuration
// order, so the first configured site is the default.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]*client.Client
	order   []string
	deps    Deps
	logger  *logging.Logger
}

// NewManager creates an empty manager. Clients are added with Add,
// LoadFromConfig, or Reload.
func NewManager(deps Deps) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Manager{
		clients: make(map[string]*client.Client),
		deps:    deps,
		logger:  logger,
	}
}

// Add builds a client for the site and registers it. An existing
// client with the same id is closed and replaced in place, keeping its
// position in the configuration order.
func (m *Manager) Add(site config.SiteConfig) error {
	c, err := New(site, m.deps)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.clients[site.ID]; ok {
		m.logger.Warn("replacing existing site client", "site", site.ID)
		if cerr := existing.Close(); cerr != nil {
			m.logger.Error("error closing replaced site client", "site", site.ID, "error", cerr)
		}
	} else {
		m.order = append(m.order, site.ID)
	}

	m.clients[site.ID] = c

	m.logger.Info("site registered",
		"site", site.ID,
		"total_sites", len(m.clients),
	)

	return nil
}

// Remove unregisters the site's client and closes it.
func (m *Manager) Remove(siteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[siteID]
	if !ok {
		return fmt.Errorf("site %q not found", siteID)
	}

	if err := c.Close(); err != nil {
		m.logger.Error("error closing site client", "site", siteID, "error", err)
	}

	delete(m.clients, siteID)
	for i, id := range m.order {
		if id == siteID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	m.logger.Info("site removed", "site", siteID, "remaining_sites", len(m.clients))
	return nil
}

// LoadFromConfig builds a client for every configured site. Failures
// are collected per site; sites that load cleanly stay registered.
func (m *Manager) LoadFromConfig(sites []config.SiteConfig) error {
	var errs []error

	for _, site := range sites {
		if err := m.Add(site); err != nil {
			errs = append(errs, err)
			m.logger.Error("failed to load site", "site", site.ID, "error", err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to load %d site(s): %w", len(errs), errors.Join(errs...))
	}

	m.logger.Info("all sites loaded", "count", len(sites))
	return nil
}

// Reload reconciles the manager against a new site list: listed sites
// are built fresh (replacing any existing client), and sites no longer
// listed are closed and removed. Used when the configuration file
// changes on disk.
func (m *Manager) Reload(sites []config.SiteConfig) error {
	keep := make(map[string]bool, len(sites))
	var errs []error

	for _, site := range sites {
		keep[site.ID] = true
		if err := m.Add(site); err != nil {
			errs = append(errs, err)
			m.logger.Error("failed to reload site", "site", site.ID, "error", err)
		}
	}

	for _, id := range m.IDs() {
		if !keep[id] {
			if err := m.Remove(id); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("reload left %d site(s) unresolved: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// Get returns the client for the site id.
func (m *Manager) Get(siteID string) (*client.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.clients[siteID]
	if !ok {
		return nil, fmt.Errorf("site %q not found", siteID)
	}
	return c, nil
}

// Resolve maps a tool-supplied site argument to a client. An empty
// argument selects the default site when exactly one is configured;
// with several sites the caller must name one. Unknown ids report the
// configured alternatives.
func (m *Manager) Resolve(siteID string) (*client.Client, error) {
	if siteID == "" {
		m.mu.RLock()
		n := len(m.order)
		m.mu.RUnlock()

		switch n {
		case 0:
			return nil, errors.New("no sites configured")
		case 1:
			return m.Default()
		default:
			return nil, fmt.Errorf("%d sites are configured, specify one of: %s", n, strings.Join(m.IDs(), ", "))
		}
	}

	c, err := m.Get(siteID)
	if err != nil {
		return nil, fmt.Errorf("site %q not found, configured sites: %s", siteID, strings.Join(m.IDs(), ", "))
	}
	return c, nil
}

// Default returns the first configured site's client.
func (m *Manager) Default() (*client.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.order) == 0 {
		return nil, errors.New("no sites configured")
	}
	return m.clients[m.order[0]], nil
}

// IDs returns the site ids in configuration order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids
}

// List returns the clients in configuration order.
func (m *Manager) List() []*client.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clients := make([]*client.Client, 0, len(m.order))
	for _, id := range m.order {
		clients = append(clients, m.clients[id])
	}
	return clients
}

// Count returns the number of registered sites.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.clients)
}

// SiteCheck is the result of probing one site: reachability of its
// REST API root and acceptance of its configured credentials.
type SiteCheck struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	BaseURL       string `json:"base_url"`
	Reachable     bool   `json:"reachable"`
	Authenticated bool   `json:"authenticated"`
	Error         string `json:"error,omitempty"`
}

// Check probes one site: REST API reachability first, then whether the
// configured credentials are accepted. An unreachable site is not
// probed for authentication.
func Check(ctx context.Context, c *client.Client) SiteCheck {
	profile := c.Profile()
	check := SiteCheck{
		ID:      profile.ID,
		Name:    profile.Name,
		BaseURL: profile.BaseURL,
	}

	if err := c.Ping(ctx); err != nil {
		check.Error = err.Error()
		return check
	}
	check.Reachable = true

	if err := c.Authenticate(ctx); err != nil {
		check.Error = err.Error()
	} else {
		check.Authenticated = true
	}

	return check
}

// CheckAll probes every site in configuration order. Network calls run
// outside the manager lock.
func (m *Manager) CheckAll(ctx context.Context) []SiteCheck {
	clients := m.List()
	checks := make([]SiteCheck, 0, len(clients))
	for _, c := range clients {
		checks = append(checks, Check(ctx, c))
	}
	return checks
}

// CloseAll closes every client and empties the manager. Close errors
// are collected; the manager is cleared regardless.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for id, c := range m.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close client for site %q: %w", id, err))
		}
	}

	m.clients = make(map[string]*client.Client)
	m.order = nil

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	m.logger.Info("site manager closed")
	return nil
}
