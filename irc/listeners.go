// Copyright (c) 2020 Shivaram Lingamneni <slingamn@cs.stanford.edu>
// released under the MIT license

package irc

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// IRCListener is an abstract wrapper for a listening TCP port.
// Server tracks these by configured listen address.
type IRCListener interface {
	Addr() net.Addr
	Stop() error
}

// NewListener creates a new listener on addr as configured
func NewListener(server *Server, addr string, config ListenerConfig) (result IRCListener, err error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return
	}

	if config.WebSocket {
		return NewWSListener(server, addr, listener), nil
	}
	return NewNetListener(server, addr, listener), nil
}

// NetListener is an IRCListener for a regular stream socket
type NetListener struct {
	listener net.Listener
	server   *Server
	addr     string
}

func NewNetListener(server *Server, addr string, listener net.Listener) *NetListener {
	nl := NetListener{
		server:   server,
		listener: listener,
		addr:     addr,
	}
	go nl.serve()
	return &nl
}

func (nl *NetListener) Addr() net.Addr {
	return nl.listener.Addr()
}

func (nl *NetListener) Stop() error {
	return nl.listener.Close()
}

func (nl *NetListener) serve() {
	for {
		conn, err := nl.listener.Accept()

		if err == nil {
			// hand off the connection
			go nl.server.RunClient(NewIRCStreamConn(conn, nl.server.Config().maxReadQBytes()))
		} else if errors.Is(err, net.ErrClosed) {
			return
		} else {
			nl.server.logger.Error("internal", "accept error", nl.addr, err.Error())
		}
	}
}

// WSListener is a listener for relay-over-websockets (initially HTTP, then
// upgraded to a message-based protocol where each text frame is one line)
type WSListener struct {
	listener   net.Listener
	httpServer *http.Server
	server     *Server
	addr       string
}

func NewWSListener(server *Server, addr string, listener net.Listener) *WSListener {
	result := &WSListener{
		listener: listener,
		server:   server,
		addr:     addr,
	}
	result.httpServer = &http.Server{
		Handler:      http.HandlerFunc(result.handle),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go result.httpServer.Serve(listener)
	return result
}

func (wl *WSListener) Addr() net.Addr {
	return wl.listener.Addr()
}

func (wl *WSListener) Stop() error {
	return wl.httpServer.Close()
}

func (wl *WSListener) handle(w http.ResponseWriter, r *http.Request) {
	wsUpgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		wl.server.logger.Info("internal", "websocket upgrade error", wl.addr, err.Error())
		return
	}

	// avoid a DoS attack from buffering excessively large messages:
	conn.SetReadLimit(int64(wl.server.Config().maxReadQBytes()))

	// the http.Server timeouts were set on the hijacked connection
	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	go wl.server.RunClient(NewIRCWSConn(conn))
}
