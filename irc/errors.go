// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import "errors"

// Runtime Errors
var (
	errNicknameInUse     = errors.New("nickname in use")
	errNoSuchSession     = errors.New("no such session")
	errAlreadyRegistered = errors.New("already registered")
	errInvalidNickname   = errors.New("invalid nickname")
	errInvalidUsername   = errors.New("invalid username")
	errInvalidChannel    = errors.New("invalid channel name")
)

// Socket Errors
var (
	errReadQ        = errors.New("readQ exceeded")
	errSendQ        = errors.New("sendQ exceeded")
	errSocketClosed = errors.New("socket closed")
)

// Config Errors
var (
	ErrLimitsAreInsane       = errors.New("Limits aren't setup properly, check them and make them sane")
	ErrLineLengthTooSmall    = errors.New("Line length must be 512 or greater (check limits->linelen)")
	ErrLoggerExcludeEmpty    = errors.New("Encountered logging type '-' with no type to exclude")
	ErrLoggerFilenameMissing = errors.New("Logging configuration specifies 'file' method but 'filename' is empty")
	ErrLoggerHasNoTypes      = errors.New("Logger has no types to log")
	ErrNetworkNameMissing    = errors.New("Network name missing")
	ErrNoListenersDefined    = errors.New("Server listening addresses missing")
	ErrServerNameMissing     = errors.New("Server name missing")
	ErrServerNameNotHostname = errors.New("Server name must match the format of a hostname")
)
