package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"gitlab.bluewillows.net/root/sambadns/pkg/reconcile"
)

const maxRequestBytes = 64 << 10

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req reconcile.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		msg := fmt.Sprintf("%v: decoding request: %v", reconcile.ErrInvalidInput, err)
		writeJSON(w, http.StatusBadRequest, reconcile.Response{Failed: true, Msg: msg})
		return
	}

	if req.Username == "" && req.Password == "" {
		req.Username, req.Password = s.username, s.password
	}
	if s.forceDryRun {
		req.DryRun = true
	}

	ctx := r.Context()
	if s.applyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.applyTimeout)
		defer cancel()
	}

	resp, err := s.applier.Apply(ctx, req)
	if err != nil {
		s.logger.Warn("apply failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()),
		)
	}
	if s.onResult != nil {
		s.onResult(r.Context(), req, resp)
	}

	writeJSON(w, statusFor(err), resp)
}

// statusFor maps an apply error to an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case reconcile.IsInvalidInput(err):
		return http.StatusBadRequest
	case reconcile.IsConnectionFailure(err):
		return http.StatusBadGateway
	case reconcile.IsExecutionFailure(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
