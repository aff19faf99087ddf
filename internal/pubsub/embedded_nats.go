package pubsub

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
)

// EmbeddedNATSPubSub runs a NATS server with JetStream in-process, so local
// development gets the same bus as production without extra infrastructure.
type EmbeddedNATSPubSub struct {
	*jetStream
	server *server.Server
}

// EmbeddedNATSOptions configures the embedded NATS server
type EmbeddedNATSOptions struct {
	Port       int    // 0 or -1 picks a random free port
	Subject    string // subject events are published on
	StreamName string // JetStream stream name
	StoreDir   string // JetStream storage directory, empty for the default temp dir
}

// DefaultEmbeddedNATSOptions returns sensible defaults for development
func DefaultEmbeddedNATSOptions() EmbeddedNATSOptions {
	return EmbeddedNATSOptions{
		Port:       -1,
		Subject:    DefaultSubject,
		StreamName: DefaultStreamName,
	}
}

// NewEmbeddedNATSPubSub starts the embedded server and connects to it.
func NewEmbeddedNATSPubSub(opts EmbeddedNATSOptions) (*EmbeddedNATSPubSub, error) {
	port := opts.Port
	if port == 0 {
		port = -1
	}
	if opts.Subject == "" {
		opts.Subject = DefaultSubject
	}
	if opts.StreamName == "" {
		opts.StreamName = DefaultStreamName
	}

	serverOpts := &server.Options{
		Host:      "127.0.0.1",
		Port:      port,
		JetStream: true,
		NoSigs:    true,
	}
	if opts.StoreDir != "" {
		serverOpts.StoreDir = opts.StoreDir
	}

	ns, err := server.NewServer(serverOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedded NATS server: %w", err)
	}
	ns.SetLogger(newNATSLogger(), false, false)

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded NATS server failed to start within timeout")
	}

	clientURL := ns.ClientURL()
	logger.Info("Embedded NATS server started", "url", clientURL)

	nc, err := nats.Connect(clientURL, nats.Name("scorebored-embedded"))
	if err != nil {
		ns.Shutdown()
		return nil, fmt.Errorf("failed to connect to embedded NATS: %w", err)
	}

	j, err := newJetStream(nc, opts.Subject, opts.StreamName, nats.MemoryStorage, time.Hour, "embedded-nats")
	if err != nil {
		nc.Close()
		ns.Shutdown()
		return nil, err
	}

	return &EmbeddedNATSPubSub{jetStream: j, server: ns}, nil
}

// Close disconnects and shuts the embedded server down.
func (p *EmbeddedNATSPubSub) Close() {
	logger.Info("Shutting down embedded NATS server")
	p.close()
	if p.server != nil {
		p.server.Shutdown()
		p.server.WaitForShutdown()
	}
}

// GetServerURL returns the client URL of the embedded server.
func (p *EmbeddedNATSPubSub) GetServerURL() string {
	return p.server.ClientURL()
}

// natsLogger routes NATS server logs into the service logger.
type natsLogger struct {
	log *slog.Logger
}

func newNATSLogger() *natsLogger {
	return &natsLogger{log: logger.With("component", "nats")}
}

func (l *natsLogger) Noticef(format string, v ...any) { l.log.Info(fmt.Sprintf(format, v...)) }
func (l *natsLogger) Warnf(format string, v ...any)   { l.log.Warn(fmt.Sprintf(format, v...)) }
func (l *natsLogger) Fatalf(format string, v ...any)  { l.log.Error(fmt.Sprintf(format, v...)) }
func (l *natsLogger) Errorf(format string, v ...any)  { l.log.Error(fmt.Sprintf(format, v...)) }
func (l *natsLogger) Debugf(format string, v ...any)  { l.log.Debug(fmt.Sprintf(format, v...)) }

func (l *natsLogger) Tracef(format string, v ...any) {
	l.log.Debug(fmt.Sprintf(format, v...), "trace", true)
}
