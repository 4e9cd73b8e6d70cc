package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Vallehtelia/StupidHack25/internal/llm"
	"github.com/Vallehtelia/StupidHack25/pkg/persona"
	"github.com/Vallehtelia/StupidHack25/pkg/verdict"
)

const requestIDHeader = "X-Request-ID"

// maxBodyBytes bounds the request body; history is resent on every turn.
const maxBodyBytes = 1 << 20

// ShrekRequest is the body of POST /api/shrek.
type ShrekRequest struct {
	Message             string          `json:"message"`
	ConversationHistory json.RawMessage `json:"conversationHistory,omitempty"`
}

func (api *ShrekAPI) handleShrek(w http.ResponseWriter, r *http.Request) {
	log := api.logger.WithField("request_id", llm.RequestIDFrom(r.Context()))

	var req ShrekRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.WithError(err).Warn("Rejected request body")
		writeVerdict(w, http.StatusBadRequest, verdict.Failure("Invalid request body"))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeVerdict(w, http.StatusBadRequest, verdict.Failure("Message is required"))
		return
	}

	var history []verdict.Turn
	if raw := bytes.TrimSpace(req.ConversationHistory); len(raw) > 0 {
		var err error
		history, err = verdict.ParseHistory(string(raw))
		if err != nil {
			log.WithError(err).Warn("Rejected conversation history")
			writeVerdict(w, http.StatusBadRequest, verdict.Failure("Invalid conversation history format"))
			return
		}
	}

	// Read per request so persona edits apply without a restart.
	instructions, err := persona.Load(api.config.InstructionsPath)
	if err != nil {
		log.WithError(err).Error("Failed to load persona")
		writeVerdict(w, http.StatusInternalServerError, verdict.Failure(err.Error()))
		return
	}

	v, err := api.shaper.Shape(r.Context(), req.Message, history, string(instructions))
	if err != nil {
		writeVerdict(w, http.StatusInternalServerError, verdict.Failure(err.Error()))
		return
	}

	status := http.StatusOK
	if !v.Success {
		status = http.StatusBadGateway
	}

	log.WithFields(logrus.Fields{
		"approved":      v.Approved,
		"success":       v.Success,
		"history_turns": len(history),
	}).Info("Shrek has spoken")

	writeVerdict(w, status, v)
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

func (api *ShrekAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:   "healthy",
		Service:  "swampgate",
		Provider: string(api.provider),
		Model:    llm.GetProfile(api.provider).ModelID,
	})
}

func writeVerdict(w http.ResponseWriter, status int, v verdict.Verdict) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = v.Write(w)
}

// requestIDMiddleware tags every request with an ID, echoes it in the
// response and logs the request once it is done.
func (api *ShrekAPI) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(llm.WithRequestID(r.Context(), id)))

		api.logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"duration":   time.Since(start).String(),
		}).Debug("Handled request")
	})
}

// CORS middleware
func (api *ShrekAPI) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range api.config.Server.CORSOrigins {
			if allowed == "*" {
				if origin == "" {
					origin = "*"
				}
				w.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
			if allowed == origin {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", requestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// spaHandler serves files from staticPath and falls back to indexPath for
// unknown paths, so client-side routes survive a reload.
type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))

	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && fi.IsDir() && !hasIndex(path)) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
}

func hasIndex(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "index.html"))
	return err == nil
}
