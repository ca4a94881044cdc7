package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-api-probe/internal/domain"
)

// Package storage keeps a local history of probe outcomes.

// Store records probe outcomes.
type Store interface {
	Close() error
	Record(out domain.Outcome) error
	// Recent returns up to limit unexpired outcomes, newest first. limit <= 0 returns all.
	Recent(limit int) ([]domain.Outcome, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	OutcomeTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultOutcomeTTL      = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.OutcomeTTL <= 0 {
		opts.OutcomeTTL = defaultOutcomeTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                         { return nil }
func (noopStore) Record(domain.Outcome) error          { return nil }
func (noopStore) Recent(int) ([]domain.Outcome, error) { return nil, nil }
