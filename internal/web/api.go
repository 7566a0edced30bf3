package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/julienschmidt/httprouter"

	"github.com/codefionn/codecompanion/internal/consts"
	"github.com/codefionn/codecompanion/internal/flows"
	"github.com/codefionn/codecompanion/internal/syntax"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = consts.BufferSize1MB

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// statusFor maps a flow error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, flows.ErrInputTooShort), errors.Is(err, flows.ErrInputTooLong):
		return http.StatusBadRequest
	case flows.IsModelError(err), errors.Is(err, flows.ErrNoOutput):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

func (s *Server) handleAPIHighlight(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req HighlightRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	etag := `"` + strconv.FormatUint(xxhash.Sum64String(req.Source), 16) + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, HighlightResponse{HTML: syntax.HighlightJava(req.Source)})
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func (s *Server) handleAPIGenerate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req flows.GenerateJavaCodeInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.flows.GenerateJavaCode(r.Context(), req)
	if err != nil {
		s.log.Warn("generate failed: %v", err)
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIExplain(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req flows.ExplainJavaErrorInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := flows.CheckLength("javaCode", req.JavaCode, consts.MinJavaCodeLength); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.flows.ExplainJavaError(r.Context(), req)
	if err != nil {
		s.log.Warn("explain failed: %v", err)
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, s.openapi)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Model:   s.flows.ModelName(),
		Clients: s.hub.ClientCount(),
	})
}
