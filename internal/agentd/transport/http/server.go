// Package httpx serves the agent backend's REST surface.
package httpx

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opsdesk/vendormail/internal/agentd/service"
	"github.com/opsdesk/vendormail/internal/domain"
)

func NewHandler(agent *service.AgentService) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Get("/agent/config", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, agent.Config())
	})

	r.Get("/agent/status", func(w http.ResponseWriter, _ *http.Request) {
		status, err := agent.Status()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	})

	r.Get("/analytics/summary", func(w http.ResponseWriter, _ *http.Request) {
		summary, err := agent.Analytics()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	})

	r.Get("/logs", func(w http.ResponseWriter, _ *http.Request) {
		entries, err := agent.Logs()
		if err != nil {
			writeError(w, err)
			return
		}
		if entries == nil {
			entries = []domain.LogEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	})

	r.Get("/gmail/poll", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, domain.PollResponse{Items: agent.Poll()})
	})

	r.Post("/seed/vendors", func(w http.ResponseWriter, _ *http.Request) {
		// Body is a reserved parameter list; currently ignored.
		seeded, err := agent.Seed()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.SeedResult{Seeded: seeded})
	})

	r.Post("/ingest/mock-email", func(w http.ResponseWriter, r *http.Request) {
		var draft domain.IngestDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body: " + err.Error()})
			return
		}
		item, err := agent.Ingest(draft)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	})

	r.Post("/agent/run-once", func(w http.ResponseWriter, _ *http.Request) {
		processed, err := agent.RunOnce()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.RunOnceResult{Processed: processed})
	})

	r.Post("/agent/run-loop", func(w http.ResponseWriter, r *http.Request) {
		var req domain.RunLoopRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body: " + err.Error()})
			return
		}
		processed, err := agent.RunLoop(req.MaxSteps)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.RunLoopResult{Processed: processed})
	})

	return r
}

func NewServer(addr string, agent *service.AgentService) *http.Server {
	return &http.Server{Addr: addr, Handler: NewHandler(agent)}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("response encode warning: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if appErr, ok := domain.AsAppError(err); ok {
		switch appErr.Code {
		case domain.CodeInvalidArgument:
			status = http.StatusBadRequest
		case domain.CodeNotFound:
			status = http.StatusNotFound
		case domain.CodeFailedPrecondition:
			status = http.StatusConflict
		}
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
