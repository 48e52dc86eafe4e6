package server

import (
	"PromptCraft/internal/config"
	"PromptCraft/internal/engine"
	"PromptCraft/internal/prompt"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server HTTP API поверх контроллера: JSON-эндпоинты и поток снимков состояния по WebSocket.
type Server struct {
	cfg      config.ServerConfig
	eng      *engine.Engine
	srv      *http.Server
	logger   *zap.SugaredLogger
	running  atomic.Bool
	upgrader websocket.Upgrader
}

func New(cfg config.ServerConfig, eng *engine.Engine, logger *zap.SugaredLogger) *Server {
	if cfg.BindAddr == "" {
		cfg.BindAddr = "127.0.0.1:8080"
	}
	s := &Server{cfg: cfg, eng: eng, logger: logger}

	s.srv = &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// генерация может идти долго
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler маршруты API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("PUT /api/input", s.handleInput)
	mux.HandleFunc("POST /api/synthesize", s.handleSynthesize)
	mux.HandleFunc("POST /api/actions/{action}", s.handleAction)
	mux.HandleFunc("POST /api/read-aloud", s.handleReadAloud)
	mux.HandleFunc("POST /api/listen", s.handleListen)
	mux.HandleFunc("POST /api/copy", s.handleCopy)
	mux.HandleFunc("GET /api/ws", s.handleWS)
	return mux
}

// Start запускает сервер в отдельной горутине и сразу возвращается. Отмена ctx останавливает сервер.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	go func() {
		s.logger.Infow("API server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) && err != nil {
			s.logger.Errorw("API server stopped with error", "error", err)
		} else {
			s.logger.Infow("API server stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Stop(context.WithoutCancel(ctx))
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeoutCause(ctx, 5*time.Second, errors.New("api server shutdown timeout"))
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnw("graceful shutdown error", "error", err)
		return s.srv.Close()
	}
	return nil
}

func (s *Server) Addr() string { return s.cfg.BindAddr }

type response struct {
	State engine.State `json:"state"`
	Error string       `json:"error,omitempty"`
}

type inputRequest struct {
	UserInput   *string `json:"userInput"`
	DetailLevel *string `json:"detailLevel"`
}

type copyRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.reply(w, nil)
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.UserInput != nil {
		s.eng.SetUserInput(*req.UserInput)
	}
	if req.DetailLevel != nil {
		s.eng.SetDetailLevel(prompt.ParseDetailLevel(*req.DetailLevel))
	}
	s.reply(w, nil)
}

// handleSynthesize поля тела необязательны: недостающие берутся из текущего состояния.
func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !s.decode(w, r, &req) {
		return
	}
	st := s.eng.State()
	input, level := st.UserInput, st.DetailLevel
	if req.UserInput != nil {
		input = *req.UserInput
	}
	if req.DetailLevel != nil {
		level = prompt.ParseDetailLevel(*req.DetailLevel)
	}
	// Вызов бэкенда не прерывается вместе с запросом.
	s.reply(w, s.eng.Synthesize(context.WithoutCancel(r.Context()), input, level))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	s.reply(w, s.eng.RunFollowUp(context.WithoutCancel(r.Context()), r.PathValue("action")))
}

func (s *Server) handleReadAloud(w http.ResponseWriter, r *http.Request) {
	s.reply(w, s.eng.ReadAloud(r.Context()))
}

func (s *Server) handleListen(w http.ResponseWriter, r *http.Request) {
	s.reply(w, s.eng.Listen(r.Context(), s.eng.UserInputField()))
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	var req copyRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.eng.CopyToClipboard(req.Text)
	s.reply(w, nil)
}

// decode пустое тело допустимо.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	s.writeJSON(w, http.StatusBadRequest, response{State: s.eng.State(), Error: "invalid JSON body"})
	return false
}

// reply отдаёт текущее состояние; ошибка операции превращается в статус и короткое сообщение.
func (s *Server) reply(w http.ResponseWriter, err error) {
	status, msg := statusOf(err)
	s.writeJSON(w, status, response{State: s.eng.State(), Error: msg})
}

func statusOf(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, engine.ErrEmptyInput):
		return http.StatusBadRequest, "empty input"
	case errors.Is(err, engine.ErrBusy):
		return http.StatusConflict, "operation already in progress"
	case errors.Is(err, engine.ErrNothingToProcess):
		return http.StatusUnprocessableEntity, "nothing to process"
	case errors.Is(err, engine.ErrUnsupported):
		return http.StatusNotImplemented, "capability is not available"
	case errors.Is(err, engine.ErrUnknownAction):
		return http.StatusNotFound, "unknown action"
	default:
		// Подробности в логе контроллера, в state — общее сообщение.
		return http.StatusBadGateway, "backend failure"
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warnw("write response failed", "error", err)
	}
}
