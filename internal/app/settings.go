package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/formula-evergreen/grandstand/internal/metrics"
	"github.com/formula-evergreen/grandstand/internal/models"
	"github.com/formula-evergreen/grandstand/internal/schedule"
)

// SettingsUpdate carries the admin form for the next-race announcement.
// NextRaceDate is naive Pacific wall-clock time; empty means no race date.
type SettingsUpdate struct {
	NextRaceLocation string
	NextRaceDate     string
	RaceDescription  string
}

// GetRaceSettings loads the announcement, lazily creating the row. When the
// announced race is past its Pacific day boundary the announcement is
// cleared and the clearing is persisted, so this read deliberately mutates
// state. The circuit image, if any, is released best-effort.
func (s *Service) GetRaceSettings() (*models.RaceSettings, error) {
	settings, err := s.Store.GetRaceSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load race settings: %w", err)
	}
	if settings == nil {
		settings = &models.RaceSettings{}
		if err := s.Store.CreateRaceSettings(settings); err != nil {
			return nil, fmt.Errorf("failed to create default race settings: %w", err)
		}
		return settings, nil
	}

	if schedule.IsExpired(settings.NextRaceDate, s.Now()) {
		if settings.CircuitImage != nil {
			s.Files.DeleteIfExists(*settings.CircuitImage)
		}
		settings.ClearRace()
		if err := s.Store.UpdateRaceSettings(settings); err != nil {
			return nil, fmt.Errorf("failed to clear expired race: %w", err)
		}
		metrics.RaceExpiriesTotal.Inc()
		logger.Info.Printf("Race expired, cleared next-race announcement")
	}

	return settings, nil
}

// UpdateRaceSettings replaces the announcement text and date. Requires a
// logged-in caller; allow-list membership is not needed here, matching the
// rest of the settings surface.
func (s *Service) UpdateRaceSettings(caller *Identity, update SettingsUpdate) (*models.RaceSettings, error) {
	if err := s.Gate.RequireAuthenticated(caller); err != nil {
		return nil, err
	}

	var raceDate *time.Time
	if input := strings.TrimSpace(update.NextRaceDate); input != "" {
		parsed, err := schedule.ParsePacificInput(input)
		if err != nil {
			return nil, NewValidationError(err.Error())
		}
		raceDate = &parsed
	}

	settings, err := s.loadOrCreateSettings()
	if err != nil {
		return nil, err
	}

	settings.NextRaceLocation = optionalText(update.NextRaceLocation)
	settings.NextRaceDate = raceDate
	settings.RaceDescription = optionalText(update.RaceDescription)

	if err := s.Store.UpdateRaceSettings(settings); err != nil {
		return nil, fmt.Errorf("failed to update race settings: %w", err)
	}

	return settings, nil
}

// ClearNextRace wipes the announcement and releases the circuit image.
func (s *Service) ClearNextRace(caller *Identity) (*models.RaceSettings, error) {
	if err := s.Gate.RequireAuthenticated(caller); err != nil {
		return nil, err
	}

	settings, err := s.loadOrCreateSettings()
	if err != nil {
		return nil, err
	}

	if settings.CircuitImage != nil {
		s.Files.DeleteIfExists(*settings.CircuitImage)
	}
	settings.ClearRace()

	if err := s.Store.UpdateRaceSettings(settings); err != nil {
		return nil, fmt.Errorf("failed to clear next race: %w", err)
	}

	return settings, nil
}

// SetCircuitImage stores a new circuit diagram reference, releasing any
// previous one first.
func (s *Service) SetCircuitImage(caller *Identity, resourceRef string) (*models.RaceSettings, error) {
	if err := s.Gate.RequireAuthenticated(caller); err != nil {
		return nil, err
	}

	settings, err := s.loadOrCreateSettings()
	if err != nil {
		return nil, err
	}

	if settings.CircuitImage != nil {
		s.Files.DeleteIfExists(*settings.CircuitImage)
	}
	settings.CircuitImage = &resourceRef

	if err := s.Store.UpdateRaceSettings(settings); err != nil {
		return nil, fmt.Errorf("failed to set circuit image: %w", err)
	}

	return settings, nil
}

// DeleteCircuitImage releases the diagram and nulls the reference. Unlike
// the other settings operations this one does not lazily create the row: no
// settings means nothing to delete.
func (s *Service) DeleteCircuitImage(caller *Identity) error {
	if err := s.Gate.RequireAuthenticated(caller); err != nil {
		return err
	}

	settings, err := s.Store.GetRaceSettings()
	if err != nil {
		return fmt.Errorf("failed to load race settings: %w", err)
	}
	if settings == nil {
		return ErrNotFound
	}

	if settings.CircuitImage != nil {
		s.Files.DeleteIfExists(*settings.CircuitImage)
	}
	settings.CircuitImage = nil

	if err := s.Store.UpdateRaceSettings(settings); err != nil {
		return fmt.Errorf("failed to delete circuit image: %w", err)
	}

	return nil
}

func (s *Service) loadOrCreateSettings() (*models.RaceSettings, error) {
	settings, err := s.Store.GetRaceSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load race settings: %w", err)
	}
	if settings == nil {
		settings = &models.RaceSettings{}
		if err := s.Store.CreateRaceSettings(settings); err != nil {
			return nil, fmt.Errorf("failed to create default race settings: %w", err)
		}
	}
	return settings, nil
}

func optionalText(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
