package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type session interface {
	NewGame(ctx context.Context, mode entity.GameMode) (*entity.Game, error)
	PlayHuman(ctx context.Context, row, col int) (*entity.Game, *entity.Suggestion, error)
	Step(ctx context.Context) (*entity.Game, *entity.Suggestion, error)
	Resume(ctx context.Context, id string) (*entity.Game, error)
	Game() (*entity.Game, *entity.Suggestion, error)
}

type trainingSnapshot interface {
	Snapshot() entity.TrainingState
}

type handlerFunc func(ctx context.Context, message *Message) Payload

type Server struct {
	logger   *slog.Logger
	session  session
	training trainingSnapshot
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, session session, training trainingSnapshot) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		session:  session,
		training: training,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionGameState] = server.handleGameState
	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameStep] = server.handleGameStep
	server.handlers[actionGameResume] = server.handleGameResume
	server.handlers[actionTrainingState] = server.handleTrainingState

	return server
}

// Handler exposes the /ws endpoint. ctx bounds every connection.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var closeOnce sync.Once
	closeConn := func() {
		closeOnce.Do(func() {
			if err := conn.Close(); err != nil {
				log.Debug("failed to close connection", "error", err)
			}
		})
	}
	defer closeConn()

	// Unblocks ReadMessage on shutdown.
	go func() {
		<-connCtx.Done()
		closeConn()
	}()

	log.Info("WebSocket connection established", "remote", req.RemoteAddr)

	if err = that.handleMessages(connCtx, conn); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - answers every request on the connection in order.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := conn.ReadJSON(&message); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || ctx.Err() != nil {
				return nil
			}

			if isDecodeError(err) {
				log.Warn("failed to unmarshal message", "error", err)
				if err = conn.WriteJSON(errorMessage("", "invalid message")); err != nil {
					return fmt.Errorf("failed to write response: %w", err)
				}
				continue
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		response := that.dispatch(ctx, &message)
		if err := conn.WriteJSON(response); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
}

func (that *Server) dispatch(ctx context.Context, message *Message) *Message {
	handler, ok := that.handlers[message.Action]
	if !ok {
		that.logger.Warn("unknown action", "action", message.Action)
		return errorMessage(message.Action, "unknown action")
	}

	return newMessage(message.Action, handler(ctx, message))
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
