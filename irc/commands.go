// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"github.com/ergochat/ircrelay/irc/protocol"
)

// Command represents a command accepted from a client.
type Command struct {
	handler      func(server *Server, client *Client, state SessionState, msg protocol.Message, rb *ResponseBuffer) (exiting bool)
	usablePreReg bool
	minParams    int
}

// Run runs this command with the given client/message.
func (cmd *Command) Run(server *Server, client *Client, msg protocol.Message) (exiting bool) {
	state, err := server.sessions.Get(client.id)
	if err != nil {
		// the session is already gone
		return true
	}

	rb := NewResponseBuffer(client)
	defer rb.Send()

	if !state.Registered && !cmd.usablePreReg {
		rb.Numeric(protocol.ERR_NOTREGISTERED, "You have not registered.")
		return false
	}
	if len(msg.Params) < cmd.minParams {
		rb.Numeric(protocol.ERR_NEEDMOREPARAMS, "Not enough parameters.")
		return false
	}

	// the sender is always who the server says it is
	msg.Prefix = state.Prefix()

	exiting = cmd.handler(server, client, state, msg, rb)
	if exiting {
		return
	}

	// after each command, see if we can send registration to the client
	if !state.Registered {
		server.tryRegister(client, rb)
	}
	return false
}

// Commands holds all commands executable by a client connected to us,
// indexed by protocol.Command.
var Commands [protocol.NumCommands]Command

func init() {
	Commands = [protocol.NumCommands]Command{
		protocol.Unknown: {
			handler: unknownHandler,
		},
		protocol.Nick: {
			handler:      nickHandler,
			usablePreReg: true,
		},
		protocol.User: {
			handler:      userHandler,
			usablePreReg: true,
		},
		protocol.PrivMsg: {
			handler: privmsgHandler,
		},
		protocol.Join: {
			handler:   joinHandler,
			minParams: 1,
		},
		protocol.Part: {
			handler:   partHandler,
			minParams: 1,
		},
		protocol.Away: {
			handler: awayHandler,
		},
		protocol.Quit: {
			handler:      quitHandler,
			usablePreReg: true,
		},
		protocol.Ping: {
			handler:      pingHandler,
			usablePreReg: true,
			minParams:    1,
		},
		protocol.Pong: {
			handler:      pongHandler,
			usablePreReg: true,
		},
		protocol.Error: {
			handler: errorHandler,
		},
	}
}
