package app

import (
	"fmt"
	"strings"

	"github.com/formula-evergreen/grandstand/internal/metrics"
	"github.com/formula-evergreen/grandstand/internal/models"
)

// ListDrivers returns the championship standings, best score first.
func (s *Service) ListDrivers() ([]models.DriverEntry, error) {
	entries, err := s.Store.ListDrivers()
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	return entries, nil
}

// CreateDriver adds a driver to the leaderboard. Admin only.
func (s *Service) CreateDriver(caller *Identity, driverName string, points int) (*models.DriverEntry, error) {
	if err := s.Gate.RequireAuthorized(caller); err != nil {
		return nil, err
	}

	entry := &models.DriverEntry{
		DriverName: strings.TrimSpace(driverName),
		Points:     points,
	}
	if err := entry.Validate(); err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid driver entry: %v", err))
	}

	if err := s.Store.CreateDriver(entry); err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	metrics.DriverMutationsTotal.WithLabelValues("create").Inc()
	return entry, nil
}

// UpdateDriver replaces a driver's name and points. Admin only.
func (s *Service) UpdateDriver(caller *Identity, id int64, driverName string, points int) (*models.DriverEntry, error) {
	if err := s.Gate.RequireAuthorized(caller); err != nil {
		return nil, err
	}

	entry, err := s.Store.GetDriver(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load driver: %w", err)
	}
	if entry == nil {
		return nil, ErrNotFound
	}

	entry.DriverName = strings.TrimSpace(driverName)
	entry.Points = points
	if err := entry.Validate(); err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid driver entry: %v", err))
	}

	if err := s.Store.UpdateDriver(entry); err != nil {
		return nil, fmt.Errorf("failed to update driver: %w", err)
	}

	metrics.DriverMutationsTotal.WithLabelValues("update").Inc()
	return entry, nil
}

// DeleteDriver removes a driver. Admin only. An attached profile picture is
// released best-effort; a failed file delete never blocks the removal.
func (s *Service) DeleteDriver(caller *Identity, id int64) error {
	if err := s.Gate.RequireAuthorized(caller); err != nil {
		return err
	}

	entry, err := s.Store.GetDriver(id)
	if err != nil {
		return fmt.Errorf("failed to load driver: %w", err)
	}
	if entry == nil {
		return ErrNotFound
	}

	if entry.ProfilePicture != nil {
		s.Files.DeleteIfExists(*entry.ProfilePicture)
	}

	if err := s.Store.DeleteDriver(id); err != nil {
		return fmt.Errorf("failed to delete driver: %w", err)
	}

	metrics.DriverMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}

// SetProfilePicture attaches a new avatar reference, releasing any previous
// one first. Admin only.
func (s *Service) SetProfilePicture(caller *Identity, id int64, resourceRef string) (*models.DriverEntry, error) {
	if err := s.Gate.RequireAuthorized(caller); err != nil {
		return nil, err
	}

	entry, err := s.Store.GetDriver(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load driver: %w", err)
	}
	if entry == nil {
		return nil, ErrNotFound
	}

	if entry.ProfilePicture != nil {
		s.Files.DeleteIfExists(*entry.ProfilePicture)
	}
	entry.ProfilePicture = &resourceRef

	if err := s.Store.UpdateDriver(entry); err != nil {
		return nil, fmt.Errorf("failed to set profile picture: %w", err)
	}

	return entry, nil
}

// ClearProfilePicture releases the avatar and nulls the reference. Admin only.
func (s *Service) ClearProfilePicture(caller *Identity, id int64) error {
	if err := s.Gate.RequireAuthorized(caller); err != nil {
		return err
	}

	entry, err := s.Store.GetDriver(id)
	if err != nil {
		return fmt.Errorf("failed to load driver: %w", err)
	}
	if entry == nil {
		return ErrNotFound
	}

	if entry.ProfilePicture != nil {
		s.Files.DeleteIfExists(*entry.ProfilePicture)
	}
	entry.ProfilePicture = nil

	if err := s.Store.UpdateDriver(entry); err != nil {
		return fmt.Errorf("failed to clear profile picture: %w", err)
	}

	return nil
}
