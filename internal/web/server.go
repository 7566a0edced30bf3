// Package web serves the companion pages, the JSON API and live analysis.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/codefionn/codecompanion/internal/consts"
	"github.com/codefionn/codecompanion/internal/flows"
	"github.com/codefionn/codecompanion/internal/history"
	"github.com/codefionn/codecompanion/internal/logger"
)

//go:embed static/*
var StaticFiles embed.FS

// DefaultAddr is used when Options.Addr is empty.
const DefaultAddr = "localhost:9002"

// Flows is the part of flows.Service the server needs.
type Flows interface {
	Analyzer
	GenerateJavaCode(ctx context.Context, input flows.GenerateJavaCodeInput) (flows.GenerateJavaCodeOutput, error)
	ModelName() string
}

// HistoryReader lists recent runs.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]*history.Run, error)
}

// Options configure a Server.
type Options struct {
	Addr          string
	Flows         Flows
	History       HistoryReader // optional
	HistoryLimit  int
	AnalysisDelay time.Duration
}

// Server represents the web server
type Server struct {
	addr          string
	flows         Flows
	history       HistoryReader
	historyLimit  int
	analysisDelay time.Duration
	openapi       *openapi3.T
	router        *httprouter.Router
	handler       http.Handler
	httpServer    *http.Server
	listener      net.Listener
	hub           *Hub
	upgrader      websocket.Upgrader
	log           *logger.Logger
}

// NewServer creates a new web server and starts its WebSocket hub.
func NewServer(opts Options) (*Server, error) {
	if opts.Flows == nil {
		return nil, errors.New("web: flows are required")
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = consts.DefaultHistoryLimit
	}
	if opts.AnalysisDelay <= 0 {
		opts.AnalysisDelay = consts.LiveAnalysisDebounce
	}

	// Ensure .js files are served with correct MIME type
	if err := mime.AddExtensionType(".js", "application/javascript"); err != nil {
		logger.Warn("Failed to register .js MIME type: %v", err)
	}

	doc, err := NewOpenAPIDocument()
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAPI document: %w", err)
	}

	srv := &Server{
		addr:          opts.Addr,
		flows:         opts.Flows,
		history:       opts.History,
		historyLimit:  opts.HistoryLimit,
		analysisDelay: opts.AnalysisDelay,
		openapi:       doc,
		router:        httprouter.New(),
		hub:           NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  consts.BufferSize1KB,
			WriteBufferSize: consts.BufferSize1KB,
		},
		log: logger.Global().WithPrefix("web"),
	}
	srv.setupRoutes()
	srv.handler = withRequestLogging(srv.log, withRecovery(srv.log, srv.router))

	go srv.hub.Run()
	return srv, nil
}

func (s *Server) setupRoutes() {
	static, _ := fs.Sub(StaticFiles, "static")
	s.router.ServeFiles("/static/*filepath", http.FS(static))

	s.router.GET("/", s.handleIndex)
	s.router.POST("/generate", s.handleGenerate)
	s.router.POST("/explain", s.handleExplain)
	s.router.GET("/playground", s.handlePlayground)
	s.router.POST("/playground", s.handlePlaygroundSubmit)
	s.router.GET("/history", s.handleHistory)

	s.router.POST("/api/highlight", s.handleAPIHighlight)
	s.router.POST("/api/generate", s.handleAPIGenerate)
	s.router.POST("/api/explain", s.handleAPIExplain)
	s.router.GET("/api/openapi.json", s.handleOpenAPI)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		http.NotFound(w, r)
	})
}

// Handler returns the root handler with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: consts.Timeout10Seconds,
		ReadTimeout:       consts.Timeout60Seconds,
		WriteTimeout:      consts.Timeout2Minutes + consts.Timeout10Seconds,
		ErrorLog:          logger.StdLogger(s.log, slog.LevelError),
	}

	go func() {
		s.log.Info("Web server listening on %s", s.URL())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error: %v", err)
		}
	}()
	return nil
}

// Stop closes live analysis connections and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Stopping web server...")
	s.hub.Stop()

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

// URL returns the address the server is reachable at.
func (s *Server) URL() string {
	addr := s.addr
	if s.listener != nil {
		addr = s.listener.Addr().String()
	}
	return "http://" + addr + "/"
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Render(r.Context(), w); err != nil {
		s.log.Error("Failed to render page: %v", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.render(w, r, http.StatusOK, IndexPage(IndexProps{Tab: r.URL.Query().Get("tab")}))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	props := IndexProps{Tab: "generate", Description: r.FormValue("description")}

	out, err := s.flows.GenerateJavaCode(r.Context(), flows.GenerateJavaCodeInput{Description: props.Description})
	if err != nil {
		s.log.Warn("generate failed: %v", err)
		props.Notice = &Notice{Title: "Error Generating Code", Description: formMessage(err, "Description must be at least 10 characters."), Destructive: true}
		s.render(w, r, statusFor(err), IndexPage(props))
		return
	}

	props.GeneratedCode = out.Code
	props.Notice = &Notice{Title: "Code Generated", Description: "Java code has been successfully generated."}
	s.render(w, r, http.StatusOK, IndexPage(props))
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	props := IndexProps{Tab: "explain", JavaCode: r.FormValue("javaCode")}

	out, err := s.explain(r.Context(), props.JavaCode, consts.MinJavaCodeLength)
	if err != nil {
		s.log.Warn("explain failed: %v", err)
		props.Notice = &Notice{Title: "Error Explaining Code", Description: formMessage(err, "Java code must be at least 10 characters."), Destructive: true}
		s.render(w, r, statusFor(err), IndexPage(props))
		return
	}

	props.Explanation = &ExplainView{HasError: out.HasError, Explanation: out.Explanation}
	description := "No errors found in the code."
	if out.HasError {
		description = "Errors found and explained."
	}
	props.Notice = &Notice{Title: "Analysis Complete", Description: description}
	s.render(w, r, http.StatusOK, IndexPage(props))
}

func (s *Server) handlePlayground(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.render(w, r, http.StatusOK, PlaygroundPage(PlaygroundProps{}))
}

func (s *Server) handlePlaygroundSubmit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	props := PlaygroundProps{JavaCode: r.FormValue("javaCode")}

	out, err := s.explain(r.Context(), props.JavaCode, consts.MinPlaygroundCodeLength)
	if err != nil {
		s.log.Warn("playground analysis failed: %v", err)
		props.Notice = &Notice{Title: "Analysis Error", Description: formMessage(err, "Code cannot be empty."), Destructive: true}
		s.render(w, r, statusFor(err), PlaygroundPage(props))
		return
	}

	props.Result = &ExplainView{HasError: out.HasError, Explanation: out.Explanation}
	description := "Code analyzed successfully. No critical issues found."
	if out.HasError {
		description = "Issues found in your code."
	}
	props.Notice = &Notice{Title: "Analysis Complete", Description: description}
	s.render(w, r, http.StatusOK, PlaygroundPage(props))
}

func (s *Server) explain(ctx context.Context, code string, minLength int) (flows.ExplainJavaErrorOutput, error) {
	if err := flows.CheckLength("javaCode", code, minLength); err != nil {
		return flows.ExplainJavaErrorOutput{}, err
	}
	return s.flows.ExplainJavaError(ctx, flows.ExplainJavaErrorInput{JavaCode: code})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	props := HistoryProps{Enabled: s.history != nil}
	if s.history != nil {
		limit := s.historyLimit
		if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
			limit = n
		}
		runs, err := s.history.Recent(r.Context(), limit)
		if err != nil {
			s.log.Error("failed to load history: %v", err)
			props.Error = "Could not load the history."
		}
		props.Runs = runs
	}
	s.render(w, r, http.StatusOK, HistoryPage(props))
}

// handleWebSocket upgrades a live analysis connection
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("Failed to upgrade WebSocket: %v", err)
		return
	}

	client := NewClient(s.hub, conn, s.flows, s.analysisDelay)
	if !s.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// formMessage picks the message shown in a form notice.
func formMessage(err error, tooShort string) string {
	switch {
	case errors.Is(err, flows.ErrInputTooShort):
		return tooShort
	case errors.Is(err, flows.ErrInputTooLong):
		return "The input is too long for the model. Please shorten it."
	case errors.Is(err, flows.ErrNoOutput):
		return "The AI model did not return any code. Please try again."
	default:
		return err.Error()
	}
}
