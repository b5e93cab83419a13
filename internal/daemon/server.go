package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
	"mtasks/internal/infrastructure/config"
)

// Server shares one task store with every local client over a unix socket
type Server struct {
	repo        repository.TaskRepository
	socketPath  string
	logger      zerolog.Logger
	listener    net.Listener
	subscribers map[net.Conn]context.CancelFunc
	conns       map[net.Conn]struct{}
	subMu       sync.Mutex
	wg          sync.WaitGroup
}

// NewServer creates a daemon server for repo
func NewServer(repo repository.TaskRepository, socketPath string, logger zerolog.Logger) *Server {
	return &Server{
		repo:        repo,
		socketPath:  socketPath,
		logger:      logger.With().Str("component", "daemon").Logger(),
		subscribers: make(map[net.Conn]context.CancelFunc),
		conns:       make(map[net.Conn]struct{}),
	}
}

// Listen binds the socket, replacing a stale one
func (s *Server) Listen() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	s.listener = listener
	s.logger.Info().Str("socket", s.socketPath).Msg("daemon listening")
	return nil
}

// Serve accepts connections until the listener is closed
func (s *Server) Serve() error {
	if s.listener == nil {
		return fmt.Errorf("server is not listening")
	}
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("failed to accept connection: %w", err)
		}

		s.subMu.Lock()
		s.conns[conn] = struct{}{}
		s.subMu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Start listens and serves
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// handleConnection handles a single client connection
func (s *Server) handleConnection(conn net.Conn) {
	defer func() {
		s.cleanupSubscriber(conn)
		s.subMu.Lock()
		delete(s.conns, conn)
		s.subMu.Unlock()
		conn.Close()
	}()

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	for {
		var req Request
		if err := decoder.Decode(&req); err != nil {
			return
		}

		// subscribe keeps the connection open for notifications
		if req.Type == RequestSubscribe {
			s.handleSubscribe(conn, decoder, encoder, &req)
			return
		}

		resp := s.handleRequest(context.Background(), &req)
		if err := encoder.Encode(resp); err != nil {
			s.logger.Warn().Err(err).Msg("failed to encode response")
			return
		}

		if req.Type != RequestPing {
			return
		}
	}
}

// handleRequest processes a request and returns a response
func (s *Server) handleRequest(ctx context.Context, req *Request) *Response {
	switch req.Type {
	case RequestPush:
		var payload PushPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return errorResponse(err)
		}
		id, err := s.repo.Push(ctx, payload.UserID, payload.Fields)
		if err != nil {
			return errorResponse(err)
		}
		return &Response{Success: true, Data: PushResult{ID: id}}

	case RequestUpdate:
		var payload UpdatePayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return errorResponse(err)
		}
		if err := s.repo.Update(ctx, payload.UserID, payload.TaskID, payload.Fields()); err != nil {
			return errorResponse(err)
		}
		return &Response{Success: true}

	case RequestRemove:
		var payload TaskPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return errorResponse(err)
		}
		if err := s.repo.Remove(ctx, payload.UserID, payload.TaskID); err != nil {
			return errorResponse(err)
		}
		return &Response{Success: true}

	case RequestGet:
		var payload TaskPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return errorResponse(err)
		}
		fields, err := s.repo.Get(ctx, payload.UserID, payload.TaskID)
		if err != nil {
			return errorResponse(err)
		}
		return &Response{Success: true, Data: Record{ID: payload.TaskID, Fields: fields}}

	case RequestList:
		var payload UserPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return errorResponse(err)
		}
		records, err := s.repo.List(ctx, payload.UserID)
		if err != nil {
			return errorResponse(err)
		}
		return &Response{Success: true, Data: toWireRecords(records)}

	case RequestPing:
		return &Response{Success: true, Data: "pong"}

	default:
		return &Response{
			Success: false,
			Error:   fmt.Sprintf("unknown request type: %s", req.Type),
		}
	}
}

// handleSubscribe streams snapshots of one user's collection until the
// client hangs up or sends unsubscribe
func (s *Server) handleSubscribe(conn net.Conn, decoder *json.Decoder, encoder *json.Encoder, req *Request) {
	var payload UserPayload
	if err := decodePayload(req.Payload, &payload); err != nil {
		encoder.Encode(errorResponse(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.subMu.Lock()
	s.subscribers[conn] = cancel
	s.subMu.Unlock()

	snapshots, err := s.repo.Watch(ctx, payload.UserID)
	if err != nil {
		encoder.Encode(errorResponse(err))
		return
	}

	if err := encoder.Encode(&Response{Success: true, Data: "subscribed"}); err != nil {
		return
	}
	s.logger.Debug().Str("user_id", payload.UserID).Msg("client subscribed")

	// any further input (unsubscribe or EOF) ends the subscription
	go func() {
		var next Request
		_ = decoder.Decode(&next)
		cancel()
	}()

	for snap := range snapshots {
		notification := &Notification{
			Type:    NotificationSnapshot,
			UserID:  snap.UserID,
			Records: toWireRecords(snap.Records),
		}
		if snap.Err != nil {
			notification.Error = snap.Err.Error()
		}
		if err := encoder.Encode(notification); err != nil {
			return
		}
	}
}

// cleanupSubscriber cancels the subscription bound to conn, if any
func (s *Server) cleanupSubscriber(conn net.Conn) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if cancel, exists := s.subscribers[conn]; exists {
		cancel()
		delete(s.subscribers, conn)
	}
}

// Subscribers returns the number of live subscriptions
func (s *Server) Subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subscribers)
}

// Stop closes the listener and every open subscription
func (s *Server) Stop() error {
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}

	s.subMu.Lock()
	for _, cancel := range s.subscribers {
		cancel()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.subMu.Unlock()

	s.wg.Wait()
	os.Remove(s.socketPath)
	return err
}

// GetSocketPath returns the socket path from config
func GetSocketPath(cfg *config.Config) string {
	return filepath.Join(cfg.Daemon.SocketDir, cfg.Daemon.SocketName)
}

// decodePayload decodes request payload into target struct
func decodePayload(payload any, target any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return nil
}

func errorResponse(err error) *Response {
	resp := &Response{Success: false, Error: err.Error()}
	if errors.Is(err, entity.ErrTaskNotFound) {
		resp.Code = CodeNotFound
	}
	return resp
}
