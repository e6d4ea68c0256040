package main

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"

	"skabillium/memo/cmd/resp"
)

var ErrInvalidRequest = errors.New("ERR protocol error: expected an array of bulk strings")

type Server struct {
	addr     string
	ln       net.Listener
	executor *Executor
	metrics  *Metrics
	logger   *slog.Logger

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool
	wg      sync.WaitGroup
	ready   chan struct{}
}

func NewServer(addr string, executor *Executor, metrics *Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:     addr,
		executor: executor,
		metrics:  metrics,
		logger:   logger,
		conns:    make(map[net.Conn]struct{}),
		ready:    make(chan struct{}),
	}
}

// Start listens and serves connections until Stop is called. It returns only
// once every connection handler has finished.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	close(s.ready)

	s.logger.Info("memo server started", "addr", ln.Addr().String())
	err = s.acceptLoop()
	s.wg.Wait()
	s.logger.Info("memo server stopped")
	return err
}

// Addr blocks until the server is listening and returns its address.
func (s *Server) Addr() net.Addr {
	<-s.ready
	return s.ln.Addr()
}

func (s *Server) Stop() {
	<-s.ready

	s.ln.Close()
	s.mu.Lock()
	s.closing = true
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) acceptLoop() error {
	for {
		conn, err := s.ln.Accept()
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		if err != nil {
			s.logger.Warn("accept error", "err", err)
			continue
		}

		s.mu.Lock()
		if s.closing {
			s.mu.Unlock()
			conn.Close()
			continue
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	s.metrics.ConnectionOpened()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("connection handler panic", "remote", conn.RemoteAddr().String(), "panic", r)
		}
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		s.metrics.ConnectionClosed()
		s.wg.Done()
	}()

	logger := s.logger.With("remote", conn.RemoteAddr().String())
	logger.Debug("connection opened")

	sess := s.executor.NewSession()
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	for {
		args, err := readRequest(r)
		if err == io.EOF || errors.Is(err, net.ErrClosed) {
			logger.Debug("connection closed")
			return
		}

		var reply any
		if err != nil {
			reply = err
		} else if len(args) > 0 {
			reply = s.handleRequest(sess, args, logger)
		} else {
			continue
		}

		out, serr := resp.Serialize(reply)
		if serr != nil {
			logger.Error("serialize reply", "err", serr)
			out = resp.SerializeError(errors.New("ERR internal error"))
		}
		if _, err := w.WriteString(out); err != nil {
			logger.Debug("write failed", "err", err)
			return
		}
		if r.Buffered() == 0 {
			if err := w.Flush(); err != nil {
				logger.Debug("flush failed", "err", err)
				return
			}
		}
	}
}

func (s *Server) handleRequest(sess *Session, args []string, logger *slog.Logger) any {
	logger.Debug("request", "exec", StringifyRequest(redactRequest(args)))

	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	reply, err := s.executor.Execute(sess, cmd)
	if err != nil {
		return err
	}
	return reply
}

// redactRequest hides the credentials of auth and hello requests.
func redactRequest(args []string) []string {
	switch strings.ToLower(args[0]) {
	case "auth":
		return []string{args[0], "[redacted]"}
	case "hello":
		for i, a := range args {
			if strings.EqualFold(a, "auth") {
				return append(append([]string{}, args[:i+1]...), "[redacted]")
			}
		}
	}
	return args
}

// readRequest reads either a RESP array of bulk strings or an inline command.
func readRequest(r *bufio.Reader) ([]string, error) {
	v, err := resp.Read(r)
	if errors.Is(err, resp.ErrEmptyLine) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	switch req := v.(type) {
	case string:
		return sanitizeInline(req)
	case []any:
		args := make([]string, 0, len(req))
		for _, a := range req {
			s, ok := a.(string)
			if !ok {
				return nil, ErrInvalidRequest
			}
			args = append(args, s)
		}
		return args, nil
	}

	return nil, ErrInvalidRequest
}

func sanitizeInline(line string) ([]string, error) {
	return sanitize(strings.TrimSpace(line))
}
