package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/ruteri/cfn-random-string/api"
	"github.com/ruteri/cfn-random-string/interfaces"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// EventHandler processes one custom resource event. provider.Provider.Handle satisfies it.
type EventHandler func(ctx context.Context, event cfn.Event) (physicalResourceID string, data map[string]interface{}, err error)

// SecretGenerator produces hex secrets of n random bytes.
type SecretGenerator interface {
	Generate(n int) (string, error)
}

// Handler processes HTTP requests for the provider.
type Handler struct {
	handleEvent EventHandler
	generator   SecretGenerator
	log         *slog.Logger
}

// NewHandler creates a new HTTP request handler.
func NewHandler(handleEvent EventHandler, generator SecretGenerator, log *slog.Logger) *Handler {
	return &Handler{
		handleEvent: handleEvent,
		generator:   generator,
		log:         log,
	}
}

// HandleResource runs a CloudFormation custom resource event through the
// provider and returns the resulting response document.
//
// URL format: POST /api/resource
// Request body: cfn.Event JSON
// Response: cfn.Response JSON
func (h *Handler) HandleResource(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var event cfn.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.log.Warn("Failed to decode event", "err", err)
		http.Error(w, "Invalid custom resource event", http.StatusBadRequest)
		return
	}
	if event.RequestType == "" {
		http.Error(w, "Missing RequestType", http.StatusBadRequest)
		return
	}

	physicalResourceID, data, err := h.handleEvent(r.Context(), event)

	response := cfn.NewResponse(&event)
	response.PhysicalResourceID = physicalResourceID
	if response.PhysicalResourceID == "" {
		// CloudFormation rejects responses without a physical id, even failed ones.
		response.PhysicalResourceID = event.RequestID
	}
	if err != nil {
		response.Status = cfn.StatusFailed
		response.Reason = err.Error()
	} else {
		response.Status = cfn.StatusSuccess
		response.Data = data
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGenerate returns a fresh secret. The length query parameter follows
// the same rules as the Length resource property.
//
// URL format: GET /api/generate?length=N
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var length interfaces.Length
	if raw := r.URL.Query().Get("length"); raw != "" {
		if err := length.UnmarshalJSON([]byte(strconv.Quote(raw))); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	secret, err := h.generator.Generate(length.Resolve())
	if err != nil {
		h.log.Error("Failed to generate secret", "err", err)
		status := http.StatusInternalServerError
		if errors.Is(err, interfaces.ErrInvalidLength) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.writeJSON(w, http.StatusOK, api.GenerateResponse{String: secret})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}
