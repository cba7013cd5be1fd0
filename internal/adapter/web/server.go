package web

import (
	"ImageAnalyst/internal/app/analyst"
	"ImageAnalyst/internal/config"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"
)

//go:embed templates/page.html
var templatesFS embed.FS

// Server веб-интерфейс: форма загрузки, анализ, скачивание обрезанной картинки.
type Server struct {
	cfg      *config.Config
	analyst  *analyst.Analyst
	logger   *zap.SugaredLogger
	page     *template.Template
	markdown goldmark.Markdown
	upgrader websocket.Upgrader
	srv      *http.Server
	running  atomic.Bool
	stopOnce sync.Once
	stopErr  error
}

func New(cfg *config.Config, a *analyst.Analyst, logger *zap.SugaredLogger) *Server {
	s := &Server{
		cfg:      cfg,
		analyst:  a,
		logger:   logger,
		page:     template.Must(template.ParseFS(templatesFS, "templates/page.html")),
		markdown: goldmark.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}

	// ответ модели может идти долго, поэтому WriteTimeout с запасом
	s.srv = &http.Server{
		Addr:              cfg.HTTP.BindAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler маршруты интерфейса. Отдельно от Start, чтобы их можно было поднять в httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /crop", s.handleCrop)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	go func() {
		s.logger.Infow("Web UI listening", "addr", "http://"+s.srv.Addr+"/")
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) && err != nil {
			s.logger.Errorw("Web UI stopped with error", "error", err)
		} else {
			s.logger.Infow("Web UI stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Stop(context.WithoutCancel(ctx))
	}()
	return nil
}

// Stop можно вызывать несколько раз и конкурентно: все вызовы дожидаются одной остановки.
func (s *Server) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeoutCause(ctx, 5*time.Second, errors.New("web ui shutdown timeout"))
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warnw("graceful shutdown error", "error", err)
			s.stopErr = s.srv.Close()
		}
	})
	return s.stopErr
}

func (s *Server) Addr() string { return s.srv.Addr }
