// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"github.com/ergochat/ircrelay/irc/protocol"
)

// ResponseBuffer collects the replies to one command and sends them to
// the issuing session, in order, when the command completes.
type ResponseBuffer struct {
	target   *Client
	messages []protocol.Serializer
}

// NewResponseBuffer returns a new ResponseBuffer.
func NewResponseBuffer(target *Client) *ResponseBuffer {
	return &ResponseBuffer{
		target: target,
	}
}

// Add queues a message.
func (rb *ResponseBuffer) Add(payload protocol.Serializer) {
	rb.messages = append(rb.messages, payload)
}

// Numeric queues a numeric reply from the server.
func (rb *ResponseBuffer) Numeric(code string, params ...string) {
	response := protocol.NewResponse(rb.target.server.name, code, params...)
	rb.Add(&response)
}

// Flush sends the queued messages now, before the command finishes.
func (rb *ResponseBuffer) Flush() (err error) {
	for _, message := range rb.messages {
		if sendErr := rb.target.server.router.SendTo(rb.target.id, message); sendErr != nil && err == nil {
			err = sendErr
		}
	}
	rb.messages = nil
	return
}

// Send sends the queued messages to the target session.
func (rb *ResponseBuffer) Send() error {
	return rb.Flush()
}
