// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"time"

	"github.com/okzk/sdnotify"

	"github.com/ergochat/ircrelay/irc/logger"
	"github.com/ergochat/ircrelay/irc/utils"
)

const (
	shutdownTimeout = 5 * time.Second
)

// Server is the relay: it owns the registries, the router and the listeners.
type Server struct {
	name          string
	config        utils.ConfigStore[Config]
	ctime         time.Time
	logger        *logger.Manager
	sessions      *SessionRegistry
	channels      *ChannelManager
	router        *Router
	metrics       *Metrics
	stats         Stats
	listeners     map[string]IRCListener
	metricsServer *http.Server
	signals       chan os.Signal
	exitSignal    chan struct{}
	shutdownOnce  sync.Once
}

// NewServer returns a new Server listening on the configured addresses.
func NewServer(config *Config, logger *logger.Manager) (*Server, error) {
	server := &Server{
		name:       config.Server.Name,
		ctime:      time.Now().UTC(),
		logger:     logger,
		sessions:   NewSessionRegistry(),
		channels:   NewChannelManager(),
		listeners:  make(map[string]IRCListener),
		signals:    make(chan os.Signal, len(utils.ServerExitSignals)),
		exitSignal: make(chan struct{}),
	}
	server.config.Set(config)
	server.metrics = NewMetrics(server.sessions.Count, server.channels.Count)
	server.router = NewRouter(server.sessions, logger, server.metrics, config.Limits.LineLen)

	if err := server.setupListeners(config); err != nil {
		server.stopListeners()
		return nil, err
	}
	if err := server.setupMetrics(config); err != nil {
		server.stopListeners()
		return nil, err
	}

	return server, nil
}

// Config returns the current configuration.
func (server *Server) Config() *Config {
	return server.config.Get()
}

// Name returns the server name used as the prefix of its own replies.
func (server *Server) Name() string {
	return server.name
}

func (server *Server) setupListeners(config *Config) error {
	addrs := make([]string, 0, len(config.Server.Listeners))
	for addr := range config.Server.Listeners {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	for _, addr := range addrs {
		listenerConf := config.Server.Listeners[addr]
		listener, err := NewListener(server, addr, listenerConf)
		if err != nil {
			return fmt.Errorf("couldn't listen on %s: %w", addr, err)
		}
		server.listeners[addr] = listener
		server.logger.Info("listeners", fmt.Sprintf("now listening on %s, websocket=%t", listener.Addr(), listenerConf.WebSocket))
	}
	return nil
}

func (server *Server) setupMetrics(config *Config) error {
	if !config.Server.Metrics.Enabled {
		return nil
	}
	listener, err := net.Listen("tcp", config.Server.Metrics.Listen)
	if err != nil {
		return fmt.Errorf("couldn't listen for metrics on %s: %w", config.Server.Metrics.Listen, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", server.metrics.Handler())
	server.metricsServer = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.metricsServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.logger.Error("metrics", "metrics server failed", err.Error())
		}
	}()
	server.logger.Info("metrics", fmt.Sprintf("serving metrics on %s", listener.Addr()))
	return nil
}

// ListenerAddrs returns the bound address of each listener, keyed by
// configured address.
func (server *Server) ListenerAddrs() map[string]net.Addr {
	result := make(map[string]net.Addr, len(server.listeners))
	for addr, listener := range server.listeners {
		result[addr] = listener.Addr()
	}
	return result
}

func (server *Server) stopListeners() {
	for addr, listener := range server.listeners {
		if err := listener.Stop(); err != nil {
			server.logger.Error("listeners", "couldn't stop listener", addr, err.Error())
		}
		delete(server.listeners, addr)
	}
}

// Run serves until a shutdown signal arrives or Shutdown is called.
func (server *Server) Run() {
	signal.Notify(server.signals, utils.ServerExitSignals...)
	defer signal.Stop(server.signals)

	sdnotify.Ready()
	server.logger.Info("server", fmt.Sprintf("%s started on %s", Ver, server.name))

	select {
	case sig := <-server.signals:
		server.logger.Info("server", fmt.Sprintf("Shutting down on %v", sig))
	case <-server.exitSignal:
	}

	sdnotify.Stopping()
	server.Shutdown()
}

// Shutdown stops accepting connections and disconnects every session.
// It is safe to call more than once.
func (server *Server) Shutdown() {
	server.shutdownOnce.Do(func() {
		close(server.exitSignal)

		server.stopListeners()
		if server.metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			server.metricsServer.Shutdown(ctx)
			cancel()
		}

		server.sessions.ForEach(func(state *SessionState, out Output) {
			out.Close()
		})
		_, peak := server.stats.GetStats()
		server.logger.Info("server", "Server shut down", fmt.Sprintf("peak of %d connections", peak))
	})
}
