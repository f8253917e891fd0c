package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"batrun/internal/config"
	"batrun/internal/domain"
)

// Discoverer builds the ordered list of test units of a tests root
type Discoverer struct {
	config  *config.Config
	scanner *Scanner
	parser  *Parser
	logger  *slog.Logger
}

// NewDiscoverer creates a new Discoverer
func NewDiscoverer(cfg *config.Config, scanner *Scanner, parser *Parser, logger *slog.Logger) *Discoverer {
	return &Discoverer{
		config:  cfg,
		scanner: scanner,
		parser:  parser,
		logger:  logger.With("component", "discovery"),
	}
}

// Discover locates the test units under root and enumerates their
// declarations. The result is sorted by path and stable across calls.
func (d *Discoverer) Discover(ctx context.Context, root string) (*domain.Suite, error) {
	fixturePath := d.fixturePath(root)
	if err := checkFixture(fixturePath); err != nil {
		return nil, err
	}

	fixtureDecls, err := d.parser.Inspect(ctx, fixturePath)
	if err != nil {
		return nil, err
	}

	suite := &domain.Suite{
		Root: root,
		Fixture: domain.Fixture{
			Path:        fixturePath,
			HasSetup:    fixtureDecls.HasSetup,
			HasTeardown: fixtureDecls.HasTeardown,
		},
	}

	files, err := d.scanner.Scan(root)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		decls, err := d.parser.Inspect(ctx, file)
		if err != nil {
			return nil, err
		}

		unitID, err := UnitID(root, file)
		if err != nil {
			return nil, err
		}

		d.logger.Debug("discovered test unit", "unit", unitID, "tests", len(decls.Tests),
			"setup", decls.HasSetup, "teardown", decls.HasTeardown)

		suite.Units = append(suite.Units, domain.TestUnit{
			ID:          unitID,
			Path:        file,
			Functions:   decls.Tests,
			HasSetup:    decls.HasSetup,
			HasTeardown: decls.HasTeardown,
		})
	}

	return suite, nil
}

// UnitID returns the path of file relative to root with its extension
// stripped, using forward slashes.
func UnitID(root, file string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", fmt.Errorf("unit id for %s: %w", file, err)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.ToSlash(rel), nil
}

// ListDevices returns the KNOWN_DEVICES table of the global fixture under root
func (d *Discoverer) ListDevices(ctx context.Context, root string) ([]domain.Device, error) {
	return d.parser.KnownDevices(ctx, d.fixturePath(root))
}

func (d *Discoverer) fixturePath(root string) string {
	return filepath.Join(root, d.config.GlobalFixture)
}
