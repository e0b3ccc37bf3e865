// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/ergochat/ircrelay/irc/logger"
	"github.com/ergochat/ircrelay/irc/protocol"
	"github.com/ergochat/ircrelay/irc/utils"
)

const (
	quitConnectionClosed = "Connection closed"
	quitReadQExceeded    = "readQ exceeded"
	quitSendQExceeded    = "sendQ exceeded"
)

// Client is the connection worker of one session: it reads lines from
// the connection and runs them against the shared registries, in order.
type Client struct {
	server   *Server
	id       uuid.UUID
	hostname string
	conn     IRCConn
	socket   *Socket
	fakelag  Fakelag

	// set once a QUIT has been relayed, so destroy doesn't announce it again
	quitAnnounced bool
}

// RunClient sets up a new session for conn and runs it until it disconnects.
func (server *Server) RunClient(conn IRCConn) {
	config := server.Config()
	socket := NewSocket(conn, config.Server.MaxSendQBytes)
	hostname := utils.AddrToHostname(conn.RemoteAddr())

	client := &Client{
		server:   server,
		hostname: hostname,
		conn:     conn,
		socket:   socket,
	}
	client.fakelag.Initialize(config.Fakelag)
	client.id = server.sessions.Create(hostname, socket)

	server.metrics.ConnectionAccepted()
	active := server.stats.Add()
	server.logger.Info("connect", fmt.Sprintf("Client connected [%s]", hostname), fmt.Sprintf("%d active connections", active))

	client.run()
}

func (client *Client) run() {
	quitMessage := quitConnectionClosed

	defer func() {
		if r := recover(); r != nil {
			client.server.logger.Error("internal",
				fmt.Sprintf("Client caused panic: %v\n%s", r, debug.Stack()))
			if client.server.Config().RecoverFromErrors() {
				client.server.logger.Error("internal", "Disconnecting client and attempting to recover")
			} else {
				panic(r)
			}
		}
		// ensure client connection gets closed
		client.destroy(quitMessage)
	}()

	for {
		line, err := client.conn.ReadLine()
		if err != nil {
			if errors.Is(err, errReadQ) {
				quitMessage = quitReadQExceeded
			} else if client.socket.SendQExceeded() {
				quitMessage = quitSendQExceeded
			}
			break
		}

		if client.server.logger.IsLoggingRawIO() {
			client.server.logger.Debug(logger.TypeUserInput, client.id.String(), "<- ", string(line))
		}

		client.fakelag.Touch()

		if client.processLine(line) {
			break
		}
	}
}

// processLine parses and runs one line, returning whether the session ends.
func (client *Client) processLine(line []byte) (exiting bool) {
	server := client.server
	config := server.Config()

	msg, err := protocol.ParseLine(string(line), config.RequirePrefix(), config.Limits.LineLen)
	if err == protocol.ErrLineIsEmpty {
		return false
	} else if err != nil {
		server.metrics.ParseError()
		rb := NewResponseBuffer(client)
		if err == protocol.ErrLineTooLong {
			rb.Numeric(protocol.ERR_INPUTTOOLONG, "Input line too long.")
		} else {
			rb.Numeric(protocol.ERR_UNKNOWNCOMMAND, err.Error())
		}
		rb.Send()
		return false
	}

	server.metrics.MessageProcessed(msg.Command)
	return Commands[msg.Command].Run(server, client, msg)
}

// destroy removes the session and closes its connection once queued lines
// are written. Other sessions learn of an unannounced disconnect.
func (client *Client) destroy(quitMessage string) {
	server := client.server

	state, removed := server.sessions.Remove(client.id)
	client.socket.Close()

	if removed && state.Registered && !client.quitAnnounced {
		quit := protocol.NewMessage(state.Prefix(), protocol.Quit, quitMessage)
		server.router.BroadcastAll(&quit)
	}

	active := server.stats.Remove()
	server.logger.Info("connect", fmt.Sprintf("Client disconnected [%s]", client.hostname), fmt.Sprintf("%d active connections", active))
}

// tryRegister completes registration once both names are known and
// welcomes the client.
func (server *Server) tryRegister(client *Client, rb *ResponseBuffer) {
	state, registered := server.sessions.TryRegister(client.id)
	if !registered {
		return
	}
	rb.Numeric(protocol.RPL_WELCOME, state.Nick, "Welcome to the Internet Relay Network "+state.Prefix())
	server.logger.Info("connect", fmt.Sprintf("Client registered [%s] [%s]", state.Nick, state.Prefix()))
}
