package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/formula-evergreen/grandstand/internal/app"
	"github.com/formula-evergreen/grandstand/internal/files"
	"github.com/formula-evergreen/grandstand/internal/metrics"
)

type SettingsHandler struct {
	service *app.Service
}

func NewSettingsHandler(service *app.Service) *SettingsHandler {
	return &SettingsHandler{
		service: service,
	}
}

// HandleGet serves the announcement. Reading runs the expiry policy, so an
// expired race comes back already cleared and the clearing is persisted.
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetRaceSettings()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NextRaceLocation string `json:"nextRaceLocation"`
		NextRaceDate     string `json:"nextRaceDate"`
		RaceDescription  string `json:"raceDescription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.service.UpdateRaceSettings(caller(h.service, r), app.SettingsUpdate{
		NextRaceLocation: body.NextRaceLocation,
		NextRaceDate:     body.NextRaceDate,
		RaceDescription:  body.RaceDescription,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) HandleUploadCircuitImage(w http.ResponseWriter, r *http.Request) {
	ident := caller(h.service, r)
	if err := h.service.Gate.RequireAuthenticated(ident); err != nil {
		writeError(w, err)
		return
	}

	ref, ok := h.saveUpload(w, r, "circuitImage", "circuits")
	if !ok {
		return
	}

	if _, err := h.service.SetCircuitImage(ident, ref); err != nil {
		h.service.Files.DeleteIfExists(ref)
		writeError(w, err)
		return
	}

	metrics.UploadsTotal.WithLabelValues("circuit").Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"message":      "Circuit image uploaded successfully",
		"circuitImage": ref,
	})
}

func (h *SettingsHandler) HandleDeleteCircuitImage(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCircuitImage(caller(h.service, r)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Circuit image deleted successfully"})
}

func (h *SettingsHandler) HandleClearNextRace(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.ClearNextRace(caller(h.service, r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// saveUpload pulls the named file out of the multipart body, enforces the
// configured size cap and stores it. Reports its own HTTP errors and returns
// ok=false when the response is already written.
func (h *SettingsHandler) saveUpload(w http.ResponseWriter, r *http.Request, field, subdir string) (string, bool) {
	return saveUpload(h.service, w, r, field, subdir)
}

func saveUpload(s *app.Service, w http.ResponseWriter, r *http.Request, field, subdir string) (string, bool) {
	maxSize := s.Config.Uploads.MaxSizeBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+512*1024)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Upload too large or malformed")
		return "", false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "No file uploaded")
		return "", false
	}
	defer file.Close()

	if header.Size > maxSize {
		writeJSONError(w, http.StatusBadRequest, "Upload too large")
		return "", false
	}

	ref, err := s.Files.SaveUpload(subdir, file, header)
	if err != nil {
		if errors.Is(err, files.ErrNotImage) {
			writeJSONError(w, http.StatusBadRequest, "Only image files are allowed")
			return "", false
		}
		writeError(w, err)
		return "", false
	}

	return ref, true
}
