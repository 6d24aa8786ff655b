package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/gomud/pkg/config"
	"github.com/arthur-debert/gomud/pkg/errors"
	"github.com/arthur-debert/gomud/pkg/logging"
	"github.com/arthur-debert/gomud/pkg/match"
	"github.com/arthur-debert/gomud/pkg/registry"
	"github.com/arthur-debert/gomud/pkg/telnet"
)

// Executor is a registered command object: *command.Command and its
// derivatives satisfy it.
type Executor interface {
	Execute(ctx context.Context, cmd string) (match.State, error)
	Meta() *match.Object
}

// Session is one connection to one server plus everything scripted on top
// of it.
type Session struct {
	cfg    *config.Config
	logger zerolog.Logger
	out    io.Writer

	ctx  context.Context
	name string
	host string
	port int

	classifier *telnet.Classifier

	mu         sync.Mutex
	conn       net.Conn
	connected  bool
	connCancel context.CancelFunc

	varMu sync.RWMutex
	vars  map[string]string

	idSeq uint64

	aliases      registry.Registry[*match.Matcher]
	triggers     registry.Registry[*match.Matcher]
	commands     registry.Registry[Executor]
	timers       registry.Registry[*Timer]
	gmcpTriggers registry.Registry[*match.GMCPTrigger]

	lineMu  sync.Mutex
	lineBuf bytes.Buffer

	dispMu      sync.Mutex
	gagged      bool
	replacement *string
}

// New creates a session for one server. Nothing connects until Connect.
func New(ctx context.Context, cfg *config.Config, name, host string, port int, out io.Writer) *Session {
	logger := logging.WithFields(map[string]interface{}{
		"component": "session",
		"session":   name,
	})
	s := &Session{
		cfg:          cfg,
		logger:       logger,
		out:          out,
		ctx:          ctx,
		name:         name,
		host:         host,
		port:         port,
		vars:         make(map[string]string),
		aliases:      registry.New[*match.Matcher](),
		triggers:     registry.New[*match.Matcher](),
		commands:     registry.New[Executor](),
		timers:       registry.New[*Timer](),
		gmcpTriggers: registry.New[*match.GMCPTrigger](),
	}
	// The session is both the classifier's reply writer and its sink.
	s.classifier = telnet.NewClassifier(cfg, s, s)
	return s
}

// Name returns the session's name.
func (s *Session) Name() string {
	return s.name
}

// Classifier exposes the telnet state machine, mainly for negotiated state
// lookups (encoding, MSDP/MSSP tables).
func (s *Session) Classifier() *telnet.Classifier {
	return s.classifier
}

// Connected reports whether the session currently has a live connection.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Connect dials the server and starts the read loop. All negotiated state
// from a previous connection is dropped first.
func (s *Session) Connect() error {
	s.mu.Lock()
	if s.connected {
		s.mu.Unlock()
		return errors.Newf(errors.ErrAlreadyExists, "session %s is already connected", s.name)
	}
	s.mu.Unlock()

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		s.Error("cannot connect to %s: %v", addr, err)
		return errors.Wrapf(err, errors.ErrConnectionRefused, "cannot connect to %s", addr)
	}

	cctx, cancel := context.WithCancel(s.ctx)

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.connCancel = cancel
	s.mu.Unlock()

	s.classifier.Reset()
	s.resetLineState()

	s.Info("connected to %s", addr)
	s.logger.Info().Str("addr", addr).Msg("connected")

	go s.readLoop(cctx, conn)
	return nil
}

// Disconnect closes the connection deliberately. In-flight asynchronous
// waits resolve through their cancelled contexts instead of hanging.
func (s *Session) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	cancel := s.connCancel
	s.conn = nil
	s.connected = false
	s.connCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
		s.Info("disconnected from %s", s.host)
	}
}

func (s *Session) readLoop(ctx context.Context, conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			// The whole chunk is classified before the next read; the
			// classifier never suspends.
			s.classifier.Receive(buf[:n])
		}
		if err != nil {
			select {
			case <-ctx.Done():
				// Deliberate disconnect.
			default:
				s.lostConnection(err)
			}
			return
		}
	}
}

// lostConnection handles a transport error or server-side EOF.
func (s *Session) lostConnection(err error) {
	s.logger.Warn().Err(err).Msg("connection lost")
	s.Warning("connection lost: %v", err)
	s.Disconnect()

	if !s.cfg.Client.AutoReconnect {
		return
	}
	wait := time.Duration(s.cfg.Client.ReconnectWait) * time.Second
	s.Info("reconnecting in %v", wait)
	go func() {
		select {
		case <-time.After(wait):
		case <-s.ctx.Done():
			return
		}
		if err := s.Connect(); err != nil {
			s.logger.Warn().Err(err).Msg("reconnect failed")
		}
	}()
}

// Write sends raw bytes on the current connection. The telnet classifier
// uses this path for negotiation replies.
func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return 0, errors.New(errors.ErrSessionDisconnected, "session is not connected")
	}
	return conn.Write(p)
}

// WriteLine sends command text to the server, converted to the session
// encoding. The configured separator splits the text into individual
// commands first, so "n;e;s" goes out as three lines.
func (s *Session) WriteLine(text string) error {
	cmds := strings.Split(text, s.cfg.Client.Seperator)
	payload := strings.Join(cmds, s.cfg.Client.Newline) + s.cfg.Client.Newline

	if _, err := s.Write(s.encodeOutgoing(payload)); err != nil {
		return err
	}
	if s.cfg.Client.EchoInput {
		fmt.Fprintln(s.out, echoStyle.Render(text))
	}
	return nil
}

// resetLineState drops any partially assembled line and display overrides.
func (s *Session) resetLineState() {
	s.lineMu.Lock()
	s.lineBuf.Reset()
	s.lineMu.Unlock()

	s.dispMu.Lock()
	s.gagged = false
	s.replacement = nil
	s.dispMu.Unlock()
}

// Gag suppresses the display of the line currently being dispatched.
func (s *Session) Gag() {
	s.dispMu.Lock()
	s.gagged = true
	s.dispMu.Unlock()
}

// Replace swaps the display of the line currently being dispatched.
func (s *Session) Replace(text string) {
	s.dispMu.Lock()
	s.replacement = &text
	s.dispMu.Unlock()
}

// Info prints a user-visible informational message.
func (s *Session) Info(format string, args ...interface{}) {
	fmt.Fprintln(s.out, infoStyle.String()+" "+fmt.Sprintf(format, args...))
}

// Warning prints a user-visible warning.
func (s *Session) Warning(format string, args ...interface{}) {
	fmt.Fprintln(s.out, warnStyle.String()+" "+fmt.Sprintf(format, args...))
}

// Error prints a user-visible error.
func (s *Session) Error(format string, args ...interface{}) {
	fmt.Fprintln(s.out, errorStyle.String()+" "+fmt.Sprintf(format, args...))
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// StripANSI removes VT100 control sequences from a line.
func StripANSI(text string) string {
	return ansiPattern.ReplaceAllString(text, "")
}
