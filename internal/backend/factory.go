package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"custombudget/internal/cli"
	"custombudget/internal/log"
	"custombudget/internal/segment"
	"custombudget/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := cli.InitSQLite(log.Wrap(f.logger, log.ComponentBackend), config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: &sqliteBackend{repo: repo},
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized memory backend")

	return &BackendResult{
		Backend: NewMemory(),
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}

type sqliteBackend struct {
	repo *storage.SQLiteRepository
}

func (b *sqliteBackend) Segment(cityID string) segment.Store {
	return b.repo.Segment(cityID)
}

func (b *sqliteBackend) Cities(ctx context.Context) ([]CityInfo, error) {
	saves, err := b.repo.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CityInfo, len(saves))
	for i, s := range saves {
		out[i] = CityInfo{CityID: s.CityID, Records: s.Records}
	}
	return out, nil
}

// Memory keeps one in-memory store per city for the life of the process.
type Memory struct {
	mu     sync.Mutex
	cities map[string]*segment.Memory
}

func NewMemory() *Memory {
	return &Memory{cities: make(map[string]*segment.Memory)}
}

func (m *Memory) Segment(cityID string) segment.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.cities[cityID]
	if !ok {
		s = segment.NewMemory()
		m.cities[cityID] = s
	}
	return s
}

func (m *Memory) Cities(context.Context) ([]CityInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []CityInfo
	for id, s := range m.cities {
		if n := s.Len(); n > 0 {
			out = append(out, CityInfo{CityID: id, Records: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CityID < out[j].CityID })
	return out, nil
}
