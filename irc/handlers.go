// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"fmt"

	"github.com/ergochat/irc-go/ircutils"
	"github.com/google/uuid"

	"github.com/ergochat/ircrelay/irc/protocol"
)

const (
	defaultAwayText = "The recipient is marked as away."
)

// AWAY [<message>]
func awayHandler(server *Server, client *Client, state SessionState, msg protocol.Message, rb *ResponseBuffer) bool {
	var text string
	if len(msg.Params) > 0 {
		text = ircutils.SanitizeText(msg.Params[0], server.Config().Limits.AwayLen)
	}

	var isAway bool
	err := server.sessions.Mutate(client.id, func(s *SessionState) error {
		s.Away = !s.Away
		if s.Away {
			s.AwayMessage = text
		} else {
			s.AwayMessage = ""
		}
		isAway = s.Away
		return nil
	})
	if err != nil {
		return true
	}

	if isAway {
		rb.Numeric(protocol.RPL_NOWAWAY, "You are now away.")
	} else {
		rb.Numeric(protocol.RPL_UNAWAY, "You are no longer away.")
	}
	return false
}

// ERROR <message>
// clients have no business sending this; it is echoed back unchanged
func errorHandler(server *Server, client *Client, state SessionState, msg protocol.Message, rb *ResponseBuffer) bool {
	rb.Add(&msg)
	return false
}

// JOIN <channel>
func joinHandler(server *Server, client *Client, state SessionState, msg protocol.Message, rb *ResponseBuffer) bool {
	name := msg.Params[0]
	if err := validateChannelName(name, server.Config().Limits.ChannelLen); err != nil {
		rb.Numeric(protocol.ERR_NOSUCHCHANNEL, "The given channel name is invalid.")
		return false
	}
	if state.Channel == name {
		return false
	}

	_, created := server.channels.GetOrCreate(name)
	if created {
		server.logger.Info("channels", "Channel created", name)
	}

	err := server.sessions.Mutate(client.id, func(s *SessionState) error {
		s.Channel = name
		return nil
	})
	if err != nil {
		return true
	}

	// membership allows one channel at a time
	if state.Channel != "" {
		part := protocol.NewMessage(msg.Prefix, protocol.Part, state.Channel)
		server.router.SendToChannel(state.Channel, uuid.Nil, &part)
	}
	join := protocol.NewMessage(msg.Prefix, protocol.Join, name)
	server.router.SendToChannel(name, uuid.Nil, &join)
	return false
}

// NICK <nickname>
func nickHandler(server *Server, client *Client, state SessionState, msg protocol.Message, rb *ResponseBuffer) bool {
	if len(msg.Params) == 0 || msg.Params[0] == "" {
		rb.Numeric(protocol.ERR_NONICKNAMEGIVEN, "No nickname was given.")
		return false
	}
	nick := msg.Params[0]
	if err := validateNick(nick, server.Config().Limits.NickLen); err != nil {
		rb.Numeric(protocol.ERR_ERRONEUSNICKNAME, "The given nickname is invalid.")
		return false
	}
	if nick == state.Nick {
		return false
	}

	wasRegistered, err := server.sessions.SetNick(client.id, nick)
	if err == errNicknameInUse {
		rb.Numeric(protocol.ERR_NICKNAMEINUSE, "Nickname is already in use.")
		return false
	} else if err != nil {
		return true
	}

	if wasRegistered {
		server.logger.Info("nick", fmt.Sprintf("%s changed nickname to %s", state.Nick, nick))
		// everyone, the renamed session included, sees the old prefix
		rename := protocol.NewMessage(msg.Prefix, protocol.Nick, nick)
		server.router.BroadcastAll(&rename)
	}
	return false
}

// PART <channel> [<reason>]
func partHandler(server *Server, client *Client, state SessionState, msg protocol.Message, rb *ResponseBuffer) bool {
	name := msg.Params[0]
	if server.channels.Get(name) == nil {
		rb.Numeric(protocol.ERR_NOSUCHCHANNEL, "The given channel was not found.")
		return false
	}
	if state.Channel != name {
		rb.Numeric(protocol.ERR_NOTONCHANNEL, "You are not on that channel.")
		return false
	}

	params := []string{name}
	if len(msg.Params) > 1 {
		params = append(params, msg.Params[1])
	}
	part := protocol.NewMessage(msg.Prefix, protocol.Part, params...)
	server.router.SendToChannel(name, uuid.Nil, &part)

	err := server.sessions.Mutate(client.id, func(s *SessionState) error {
		s.Channel = ""
		return nil
	})
	return err != nil
}

// PING <token>
func pingHandler(server *Server, client *Client, state SessionState, msg protocol.Message, rb *ResponseBuffer) bool {
	pong := protocol.NewMessage(server.name, protocol.Pong, server.name, msg.Params[0])
	rb.Add(&pong)
	return false
}

// PONG [<token>]
func pongHandler(server *Server, client *Client, state SessionState, msg protocol.Message, rb *ResponseBuffer) bool {
	return false
}

// PRIVMSG <target> <text>
func privmsgHandler(server *Server, client *Client, state SessionState, msg protocol.Message, rb *ResponseBuffer) bool {
	if len(msg.Params) != 2 || msg.Params[0] == "" {
		rb.Numeric(protocol.ERR_NORECIPIENT, "No recipient for the message was given.")
		return false
	}
	target := msg.Params[0]

	if target[0] == protocol.ChannelMarker {
		if server.channels.Get(target) == nil {
			rb.Numeric(protocol.ERR_NOSUCHCHANNEL, "The given channel was not found.")
			return false
		}
		server.router.SendToChannel(target, client.id, &msg)
		return false
	}

	recipient, found := server.sessions.LookupNick(target)
	if !found {
		rb.Numeric(protocol.ERR_NOSUCHNICK, "The given nick was not found.")
		return false
	}
	if recipient.Away {
		awayText := recipient.AwayMessage
		if awayText == "" {
			awayText = defaultAwayText
		}
		rb.Numeric(protocol.RPL_AWAY, recipient.Nick, awayText)
		// the sender learns about the away status before the message goes out
		rb.Flush()
	}
	if err := server.router.SendTo(recipient.ID, &msg); err == errNoSuchSession {
		// the recipient quit after the lookup
		rb.Numeric(protocol.ERR_NOSUCHNICK, "The given nick was not found.")
	}
	return false
}

// QUIT [<reason>]
func quitHandler(server *Server, client *Client, state SessionState, msg protocol.Message, rb *ResponseBuffer) bool {
	ack := protocol.NewMessage(server.name, protocol.Error, "User disconnected.")
	rb.Add(&ack)
	rb.Flush()

	if state.Registered {
		server.router.BroadcastExcept(client.id, &msg)
	}
	client.quitAnnounced = true
	return true
}

// USER <username> [<mode> <unused> <realname>]
func userHandler(server *Server, client *Client, state SessionState, msg protocol.Message, rb *ResponseBuffer) bool {
	if len(msg.Params) == 0 || msg.Params[0] == "" {
		// same numeric as a missing NICK parameter
		rb.Numeric(protocol.ERR_NONICKNAMEGIVEN, "No nickname was given.")
		return false
	}
	if state.Registered {
		rb.Numeric(protocol.ERR_ALREADYREGISTRED, "You may not reregister.")
		return false
	}
	username := msg.Params[0]
	if err := validateUsername(username, server.Config().Limits.IdentLen); err != nil {
		rb.Numeric(protocol.ERR_INVALIDUSERNAME, "The given username is invalid.")
		return false
	}

	err := server.sessions.Mutate(client.id, func(s *SessionState) error {
		if s.Registered {
			return errAlreadyRegistered
		}
		s.Username = username
		return nil
	})
	if err == errAlreadyRegistered {
		rb.Numeric(protocol.ERR_ALREADYREGISTRED, "You may not reregister.")
	} else if err != nil {
		return true
	}
	return false
}

// unknownHandler answers verbs outside the command set
func unknownHandler(server *Server, client *Client, state SessionState, msg protocol.Message, rb *ResponseBuffer) bool {
	rb.Numeric(protocol.ERR_UNKNOWNCOMMAND, fmt.Sprintf("Unknown command: %s", msg.Verb))
	return false
}
