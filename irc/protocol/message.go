// Copyright (c) 2026 The ircrelay Authors
// released under the MIT license

// Package protocol implements parsing and serialization of relay protocol lines.
//
// A client line looks like:
//
//	:<prefix> <COMMAND> <param> [<param> ...] [:<trailing with spaces>]
//
// and a server reply looks like:
//
//	:<prefix> <3-digit code> [<param> ...] :<text>
package protocol

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ergochat/irc-go/ircmsg"
)

const (
	// DefaultMaxLineLen is the maximum length of a line, including the CRLF.
	DefaultMaxLineLen = 512

	// ChannelMarker introduces a channel name.
	ChannelMarker = '#'
)

var (
	// ErrLineIsEmpty is returned for blank lines; callers usually skip them.
	ErrLineIsEmpty = errors.New("line is empty")
	// ErrMalformed is returned for lines that cannot be parsed as a message.
	ErrMalformed = errors.New("malformed message")
	// ErrLineTooLong is returned when the line exceeds the configured limit.
	ErrLineTooLong = errors.New("input line too long")
)

// Command is the closed set of verbs the relay knows about.
type Command uint

const (
	Unknown Command = iota
	Nick
	User
	PrivMsg
	Join
	Part
	Away
	Quit
	Ping
	Pong
	Error

	numCommands
)

var commandNames = [numCommands]string{
	Unknown: "",
	Nick:    "NICK",
	User:    "USER",
	PrivMsg: "PRIVMSG",
	Join:    "JOIN",
	Part:    "PART",
	Away:    "AWAY",
	Quit:    "QUIT",
	Ping:    "PING",
	Pong:    "PONG",
	Error:   "ERROR",
}

var commandsByName map[string]Command

func init() {
	commandsByName = make(map[string]Command, numCommands)
	for i, name := range commandNames {
		if name != "" {
			commandsByName[name] = Command(i)
		}
	}
}

// NumCommands is the number of enumerated commands, Unknown included.
const NumCommands = int(numCommands)

// ParseCommand maps a verb to its Command, ignoring case.
// Verbs outside the enumeration map to Unknown.
func ParseCommand(verb string) Command {
	return commandsByName[strings.ToUpper(verb)]
}

func (c Command) String() string {
	if c >= numCommands || c == Unknown {
		return "UNKNOWN"
	}
	return commandNames[c]
}

// Message is a parsed protocol message.
type Message struct {
	// Prefix identifies the sender; the server overwrites it with the
	// sending session's nick!user@host before relaying.
	Prefix  string
	Command Command
	// Verb is the command token as received, upper-cased.
	Verb   string
	Params []string
}

// NewMessage builds an outgoing message.
func NewMessage(prefix string, command Command, params ...string) Message {
	return Message{
		Prefix:  prefix,
		Command: command,
		Verb:    command.String(),
		Params:  params,
	}
}

// Parse parses a line that must start with a prefix.
func Parse(line string) (Message, error) {
	return ParseLine(line, true, 0)
}

// ParseLine parses a single protocol line. If requirePrefix is set, lines
// that do not begin with ':' are rejected. If maxLen is nonzero, it is the
// maximum line length including the (possibly stripped) CRLF.
func ParseLine(line string, requirePrefix bool, maxLen int) (msg Message, err error) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if len(line) == 0 {
		return msg, ErrLineIsEmpty
	}
	if requirePrefix && line[0] != ':' {
		return msg, fmt.Errorf("%w: message must begin with a prefix", ErrMalformed)
	}
	if !utf8.ValidString(line) {
		return msg, fmt.Errorf("%w: line contains invalid UTF-8", ErrMalformed)
	}

	parsed, err := ircmsg.ParseLineStrict(line, true, maxLen)
	switch err {
	case nil:
	case ircmsg.ErrorBodyTooLong:
		return msg, ErrLineTooLong
	case ircmsg.ErrorLineIsEmpty, ircmsg.ErrorCommandMissing:
		return msg, fmt.Errorf("%w: no command found", ErrMalformed)
	case ircmsg.ErrorLineContainsBadChar:
		return msg, fmt.Errorf("%w: line contains invalid characters", ErrMalformed)
	default:
		return msg, fmt.Errorf("%w: %s", ErrMalformed, err.Error())
	}
	if requirePrefix && parsed.Source == "" {
		// ":" followed directly by a space
		return msg, fmt.Errorf("%w: empty prefix", ErrMalformed)
	}

	msg.Prefix = parsed.Source
	msg.Verb = parsed.Command
	msg.Command = ParseCommand(parsed.Command)
	msg.Params = parsed.Params
	return msg, nil
}

func (msg *Message) verb() string {
	if msg.Command == Unknown {
		return msg.Verb
	}
	return msg.Command.String()
}

// Line serializes the message, including the terminating CRLF.
func (msg *Message) Line() (string, error) {
	line, err := msg.LineBytesStrict(0)
	return string(line), err
}

// LineBytesStrict serializes the message, truncating the body to truncateLen
// bytes (including CRLF) if truncateLen is nonzero.
func (msg *Message) LineBytesStrict(truncateLen int) ([]byte, error) {
	out := ircmsg.MakeMessage(nil, msg.Prefix, msg.verb(), msg.Params...)
	return lineBytes(&out, truncateLen)
}

// Response is a numeric reply generated by the server.
type Response struct {
	Prefix string
	Code   string
	// Params are the reply parameters; the last one is the free-text payload.
	Params []string
}

// NewResponse builds a numeric reply.
func NewResponse(prefix, code string, params ...string) Response {
	return Response{
		Prefix: prefix,
		Code:   code,
		Params: params,
	}
}

// Text returns the free-text payload of the reply, if any.
func (r *Response) Text() string {
	if len(r.Params) == 0 {
		return ""
	}
	return r.Params[len(r.Params)-1]
}

// Line serializes the reply, including the terminating CRLF.
func (r *Response) Line() (string, error) {
	line, err := r.LineBytesStrict(0)
	return string(line), err
}

// LineBytesStrict serializes the reply, see (*Message).LineBytesStrict.
func (r *Response) LineBytesStrict(truncateLen int) ([]byte, error) {
	out := ircmsg.MakeMessage(nil, r.Prefix, r.Code, r.Params...)
	if len(r.Params) != 0 {
		out.ForceTrailing()
	}
	return lineBytes(&out, truncateLen)
}

// Serializer is implemented by Message and Response.
type Serializer interface {
	LineBytesStrict(truncateLen int) ([]byte, error)
}

func lineBytes(out *ircmsg.Message, truncateLen int) ([]byte, error) {
	line, err := out.LineBytesStrict(false, truncateLen)
	if err == ircmsg.ErrorBodyTooLong {
		// the truncated line is still sendable
		err = nil
	}
	return line, err
}

// IsChannelName reports whether name can be used as a channel name.
func IsChannelName(name string) bool {
	if len(name) < 2 || name[0] != ChannelMarker {
		return false
	}
	for i := 0; i < len(name); i++ {
		switch c := name[i]; {
		case c <= ' ', c == ',', c == 0x7f:
			return false
		}
	}
	return true
}
