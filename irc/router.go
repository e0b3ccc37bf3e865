// Copyright (c) 2026 The ircrelay Authors
// released under the MIT license

package irc

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ergochat/ircrelay/irc/logger"
	"github.com/ergochat/ircrelay/irc/protocol"
)

// DeliveryFailure records one recipient a fan-out could not reach.
type DeliveryFailure struct {
	ID   uuid.UUID
	Nick string
	Err  error
}

// Router delivers serialized payloads to sessions. Every payload is
// serialized once, truncated to the line length limit.
type Router struct {
	sessions   *SessionRegistry
	logger     *logger.Manager
	metrics    *Metrics
	maxLineLen int
}

// NewRouter returns a Router over sessions.
func NewRouter(sessions *SessionRegistry, logger *logger.Manager, metrics *Metrics, maxLineLen int) *Router {
	return &Router{
		sessions:   sessions,
		logger:     logger,
		metrics:    metrics,
		maxLineLen: maxLineLen,
	}
}

func (router *Router) serialize(payload protocol.Serializer) ([]byte, error) {
	line, err := payload.LineBytesStrict(router.maxLineLen)
	if err != nil {
		router.logger.Error("internal", "could not serialize outgoing line", err.Error())
	}
	return line, err
}

func (router *Router) logOutput(nick string, line []byte) {
	if router.logger.IsLoggingRawIO() {
		router.logger.Debug(logger.TypeUserOutput, nick, strings.TrimSuffix(string(line), "\r\n"))
	}
}

// SendTo delivers payload to one session.
func (router *Router) SendTo(id uuid.UUID, payload protocol.Serializer) error {
	line, err := router.serialize(payload)
	if err != nil {
		return err
	}
	out, err := router.sessions.output(id)
	if err != nil {
		return err
	}
	if err = out.WriteLine(line); err != nil {
		router.metrics.DeliveryFailed(1)
		return err
	}
	router.metrics.LinesSent(1)
	router.logOutput(id.String(), line)
	return nil
}

// BroadcastAll delivers payload to every session.
func (router *Router) BroadcastAll(payload protocol.Serializer) ([]DeliveryFailure, error) {
	return router.fanOut(payload, func(visit func(*SessionState, Output)) {
		router.sessions.ForEach(visit)
	})
}

// BroadcastExcept delivers payload to every session but except.
func (router *Router) BroadcastExcept(except uuid.UUID, payload protocol.Serializer) ([]DeliveryFailure, error) {
	return router.fanOut(payload, func(visit func(*SessionState, Output)) {
		router.sessions.ForEachExcept(except, visit)
	})
}

// SendToChannel delivers payload to the members of channel, skipping except
// (uuid.Nil skips nobody).
func (router *Router) SendToChannel(channel string, except uuid.UUID, payload protocol.Serializer) ([]DeliveryFailure, error) {
	return router.fanOut(payload, func(visit func(*SessionState, Output)) {
		router.sessions.ForEachInChannel(channel, except, visit)
	})
}

// fanOut writes the line to every visited session; a failing recipient
// is recorded and skipped.
func (router *Router) fanOut(payload protocol.Serializer, iterate func(func(*SessionState, Output))) (failures []DeliveryFailure, err error) {
	line, err := router.serialize(payload)
	if err != nil {
		return nil, err
	}

	var sent int
	iterate(func(state *SessionState, out Output) {
		if err := out.WriteLine(line); err != nil {
			failures = append(failures, DeliveryFailure{ID: state.ID, Nick: state.Nick, Err: err})
			return
		}
		sent++
		router.logOutput(state.Nick, line)
	})

	router.metrics.LinesSent(sent)
	router.metrics.DeliveryFailed(len(failures))
	for _, failure := range failures {
		router.logger.Debug("internal", "could not deliver line", failure.ID.String(), failure.Nick, failure.Err.Error())
	}
	return failures, nil
}
