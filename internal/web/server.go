package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"

	"github.com/peterkuimelis/versusbattle/internal/game"
	vbnet "github.com/peterkuimelis/versusbattle/internal/net"
)

//go:embed static
var staticFiles embed.FS

// Options configures the web server.
type Options struct {
	GameAddr        string          // TCP game server the WebSocket bridge dials
	Store           game.LevelStore // read for /api/progress
	Logger          *slog.Logger
	MessageInterval time.Duration // min spacing of browser messages
	MessageBurst    int
}

// ProgressInfo is the JSON body of /api/progress.
type ProgressInfo struct {
	BestLevel int `json:"best_level"`
}

// Server is the browser UI server.
type Server struct {
	opts    Options
	logger  *slog.Logger
	catalog []CardInfo
	mux     *http.ServeMux
}

// NewServer creates a new web server.
func NewServer(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = game.NewMemoryLevelStore()
	}
	if opts.MessageBurst < 1 {
		opts.MessageBurst = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		opts:    opts,
		logger:  logger,
		catalog: buildCatalog(),
		mux:     http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(staticFiles, "static")

	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/progress", s.handleProgress)

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.catalog)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	best, err := s.opts.Store.LoadBestLevel(r.Context())
	if err != nil {
		s.logger.Warn("load best level", "err", err)
		http.Error(w, "could not read progress", http.StatusInternalServerError)
		return
	}
	if best < 1 {
		best = 1
	}
	writeJSON(w, ProgressInfo{BestLevel: best})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// connectMessage is the first message a browser sends on /ws.
type connectMessage struct {
	Type   string `json:"type"`
	Mode   string `json:"mode"`
	Health int    `json:"health"`
}

// handleWebSocket bridges a browser to the TCP game server. The browser
// speaks the same JSON messages as the terminal client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn("websocket accept", "err", err)
		return
	}
	defer wsConn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	logger := s.logger.With("remote", r.RemoteAddr)

	_, connectData, err := wsConn.Read(ctx)
	if err != nil {
		logger.Debug("websocket read connect", "err", err)
		return
	}
	var connectMsg connectMessage
	if err := json.Unmarshal(connectData, &connectMsg); err != nil || connectMsg.Type != "connect" {
		wsConn.Close(websocket.StatusPolicyViolation, "expected connect message")
		return
	}

	var d net.Dialer
	tcpConn, err := d.DialContext(ctx, "tcp", s.opts.GameAddr)
	if err != nil {
		errMsg, _ := json.Marshal(vbnet.ServerMessage{
			Type:   vbnet.MsgError,
			Result: fmt.Sprintf("Could not connect to game server at %s: %v", s.opts.GameAddr, err),
		})
		wsConn.Write(ctx, websocket.MessageText, errMsg)
		wsConn.Close(websocket.StatusNormalClosure, "connection failed")
		return
	}
	defer tcpConn.Close()

	join := vbnet.ClientMessage{Type: vbnet.MsgJoin, Mode: connectMsg.Mode, Health: connectMsg.Health}
	if err := json.NewEncoder(tcpConn).Encode(join); err != nil {
		logger.Warn("tcp write join", "err", err)
		return
	}
	logger.Info("browser joined", "mode", join.Mode)

	done := make(chan struct{})

	// TCP → WebSocket
	go func() {
		defer close(done)
		dec := json.NewDecoder(tcpConn)
		for {
			var msg json.RawMessage
			if err := dec.Decode(&msg); err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					logger.Warn("tcp read", "err", err)
				}
				return
			}
			if err := wsConn.Write(ctx, websocket.MessageText, msg); err != nil {
				logger.Debug("websocket write", "err", err)
				return
			}
		}
	}()

	// WebSocket → TCP, rate limited
	go func() {
		defer cancel()
		limiter := rate.NewLimiter(rate.Every(s.opts.MessageInterval), s.opts.MessageBurst)
		for {
			_, data, err := wsConn.Read(ctx)
			if err != nil {
				return
			}
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			if !json.Valid(data) {
				logger.Debug("dropping malformed browser message")
				continue
			}
			data = append(data, '\n')
			if _, err := tcpConn.Write(data); err != nil {
				logger.Warn("tcp write", "err", err)
				return
			}
		}
	}()

	select {
	case <-done:
		wsConn.Close(websocket.StatusNormalClosure, "game ended")
	case <-ctx.Done():
	}
}

// ListenAndServe starts the HTTP server and shuts it down when ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
