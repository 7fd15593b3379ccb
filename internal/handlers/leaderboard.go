package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/formula-evergreen/grandstand/internal/app"
	"github.com/formula-evergreen/grandstand/internal/metrics"
	"github.com/formula-evergreen/grandstand/internal/models"
)

type LeaderboardHandler struct {
	service *app.Service
}

func NewLeaderboardHandler(service *app.Service) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
	}
}

type driverBody struct {
	DriverName string `json:"driverName"`
	Points     int    `json:"points"`
}

func (h *LeaderboardHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListDrivers()
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.DriverEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *LeaderboardHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body driverBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.service.CreateDriver(caller(h.service, r), body.DriverName, body.Points)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *LeaderboardHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := driverID(w, r)
	if !ok {
		return
	}

	var body driverBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.service.UpdateDriver(caller(h.service, r), id, body.DriverName, body.Points)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *LeaderboardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := driverID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteDriver(caller(h.service, r), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Leaderboard entry deleted successfully"})
}

func (h *LeaderboardHandler) HandleUploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	id, ok := driverID(w, r)
	if !ok {
		return
	}

	ident := caller(h.service, r)
	if err := h.service.Gate.RequireAuthorized(ident); err != nil {
		writeError(w, err)
		return
	}

	ref, ok := saveUpload(h.service, w, r, "profilePicture", "")
	if !ok {
		return
	}

	if _, err := h.service.SetProfilePicture(ident, id, ref); err != nil {
		h.service.Files.DeleteIfExists(ref)
		writeError(w, err)
		return
	}

	metrics.UploadsTotal.WithLabelValues("profile").Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"message":        "Profile picture uploaded successfully",
		"profilePicture": ref,
	})
}

func (h *LeaderboardHandler) HandleDeleteProfilePicture(w http.ResponseWriter, r *http.Request) {
	id, ok := driverID(w, r)
	if !ok {
		return
	}

	if err := h.service.ClearProfilePicture(caller(h.service, r), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile picture deleted successfully"})
}

func driverID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid leaderboard entry id")
		return 0, false
	}
	return id, true
}
