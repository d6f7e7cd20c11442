package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/cvdrisk/pkg/common/logger"
	"github.com/synaptica-ai/cvdrisk/pkg/common/models"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
	"github.com/synaptica-ai/cvdrisk/pkg/storage"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/models", h.handleListModels).Methods(http.MethodGet)
	api.HandleFunc("/models/{name}", h.handleGetModel).Methods(http.MethodGet)
	api.HandleFunc("/models/{name}/score", h.handleScore).Methods(http.MethodPost)
	api.HandleFunc("/models/{name}/explain", h.handleExplain).Methods(http.MethodPost)
	api.HandleFunc("/score/batch", h.handleBatch).Methods(http.MethodPost)
	api.HandleFunc("/patients/{id}/score", h.handleScorePatient).Methods(http.MethodPost)
	api.HandleFunc("/patients/{id}/record", h.handleUpdateRecord).Methods(http.MethodPut)
	api.HandleFunc("/patients/{id}/scores", h.handleHistory).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Models())
}

func (h *HTTPHandler) handleGetModel(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Model(mux.Vars(r)["name"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *HTTPHandler) handleScore(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.service.Score(r.Context(), mux.Vars(r)["name"], req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.service.Explain(r.Context(), mux.Vars(r)["name"], req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchScoreRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.service.ScoreBatch(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleScorePatient(w http.ResponseWriter, r *http.Request) {
	var req models.PatientScoreRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}
	resp, err := h.service.ScorePatient(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var fields map[string]interface{}
	if !h.decode(w, r, &fields) {
		return
	}
	rec, err := h.service.UpdateRecord(r.Context(), mux.Vars(r)["id"], fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	logs, err := h.service.History(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if logs == nil {
		logs = []ScoreLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// decode reads a JSON body, keeping numbers exact. It writes the error
// response itself and reports whether decoding succeeded.
func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := r.Body
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		if errors.Is(err, io.EOF) {
			http.Error(w, "empty request body", http.StatusBadRequest)
			return false
		}
		logger.Log.WithError(err).Warn("invalid scoring payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, risk.ErrUnknownModel),
		errors.Is(err, storage.ErrRecordNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case isClientError(err),
		errors.Is(err, storage.ErrEmptyPatientID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrRecordStoreDisabled):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		logger.Log.WithError(err).Error("scoring request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON encodes before writing the header so an encoding failure can
// still become a 500.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Log.WithError(err).Warn("failed to write response")
	}
}
