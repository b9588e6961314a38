package monitor

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lab-ups/upsmon/internal/api/transmission"
	"github.com/lab-ups/upsmon/internal/controller"
	"github.com/lab-ups/upsmon/internal/rxlog"
	"github.com/lab-ups/upsmon/internal/stream"
)

type handlers struct {
	ctrl    *controller.Controller
	events  *rxlog.Log
	session *stream.Session
}

// statusView is the cached run status plus the stream's connection indicator.
type statusView struct {
	transmission.RunStatus
	Stream stream.ConnectionState `json:"stream"`
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusView{
		RunStatus: h.ctrl.CachedStatus(),
		Stream:    h.session.ConnectionState(),
	})
}

func (h *handlers) eventList(w http.ResponseWriter, r *http.Request) {
	cat := rxlog.CategoryAll
	if q := r.URL.Query().Get("category"); q != "" {
		cat = rxlog.Category(q)
	}
	writeJSON(w, http.StatusOK, h.events.FilterByCategory(cat))
}

func (h *handlers) counts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.events.Counts())
}

func (h *handlers) start(w http.ResponseWriter, r *http.Request) {
	var req transmission.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.New("request body is not valid JSON"))
		return
	}

	st, err := h.ctrl.RequestStart(r.Context(), &req)
	if err != nil {
		writeControllerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) stop(w http.ResponseWriter, r *http.Request) {
	st, err := h.ctrl.RequestStop(r.Context())
	if err != nil {
		writeControllerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) clear(w http.ResponseWriter, r *http.Request) {
	h.ctrl.ClearLog()
	w.WriteHeader(http.StatusNoContent)
}

// writeControllerError maps the controller's error taxonomy onto HTTP:
// validation failures are the caller's fault, remote failures relay the
// backend's status and message.
func writeControllerError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *controller.ValidationError
	if errors.As(err, &verr) {
		writeError(w, r, http.StatusBadRequest, verr)
		return
	}

	var remoteErr *transmission.RemoteError
	if errors.As(err, &remoteErr) {
		status := remoteErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeError(w, r, status, remoteErr)
		return
	}

	writeError(w, r, http.StatusBadGateway, err)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	AddError(r.Context(), err)
	writeJSON(w, status, map[string]string{"message": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
