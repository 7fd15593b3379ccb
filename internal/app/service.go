package app

import (
	"fmt"
	"mime/multipart"
	"time"

	"github.com/formula-evergreen/grandstand/internal/files"
	"github.com/formula-evergreen/grandstand/internal/store"
)

// ImageStore is the slice of file management the services need: save an
// upload, release a resource. Releases are best-effort by contract.
type ImageStore interface {
	SaveUpload(subdir string, file multipart.File, header *multipart.FileHeader) (string, error)
	DeleteIfExists(publicPath string) bool
}

type Service struct {
	Config   *Config
	Store    store.RaceStore
	Sessions SessionStore
	Gate     *Gate
	Files    ImageStore

	// Now supplies the current instant for the expiry policy; tests pin it.
	Now func() time.Time
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	raceStore, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	sessions, err := NewSessionStore(config)
	if err != nil {
		raceStore.Close()
		return nil, fmt.Errorf("failed to init sessions: %w", err)
	}

	return &Service{
		Config:   config,
		Store:    raceStore,
		Sessions: sessions,
		Gate:     NewGate(config),
		Files:    files.NewManager(config.Server.PublicDir),
		Now:      time.Now,
	}, nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("sessions: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
