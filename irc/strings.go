// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"strings"

	"golang.org/x/text/secure/precis"

	"github.com/ergochat/ircrelay/irc/protocol"
)

const (
	// characters that would make a prefix or a target ambiguous
	disallowedNickChars = " ,*?.!@"
	// leading characters used as target markers
	disallowedNickStart = "#:$&"

	disallowedUsernameChars = " !@:"
)

// isStable reports whether str is valid under profile and left unchanged
// by it; nicknames are matched exactly, so they are never normalized.
func isStable(profile *precis.Profile, str string) bool {
	result, err := profile.String(str)
	return err == nil && result == str
}

// validateNick checks a requested nickname.
func validateNick(nick string, maxLen int) error {
	if nick == "" || len(nick) > maxLen {
		return errInvalidNickname
	}
	if strings.ContainsAny(nick, disallowedNickChars) || strings.ContainsAny(nick[:1], disallowedNickStart) {
		return errInvalidNickname
	}
	if !isStable(precis.UsernameCasePreserved, nick) {
		return errInvalidNickname
	}
	return nil
}

// validateUsername checks the username given with USER.
func validateUsername(username string, maxLen int) error {
	if username == "" || len(username) > maxLen || strings.ContainsAny(username, disallowedUsernameChars) {
		return errInvalidUsername
	}
	if !isStable(precis.UsernameCasePreserved, username) {
		return errInvalidUsername
	}
	return nil
}

// validateChannelName checks a channel name given with JOIN.
func validateChannelName(name string, maxLen int) error {
	if len(name) > maxLen || !protocol.IsChannelName(name) {
		return errInvalidChannel
	}
	return nil
}
