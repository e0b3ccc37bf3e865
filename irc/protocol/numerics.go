// Copyright (c) 2026 The ircrelay Authors
// released under the MIT license

package protocol

// numerics sent by the relay; names follow RFC 2812
const (
	RPL_WELCOME          = "001"
	RPL_AWAY             = "301"
	RPL_UNAWAY           = "305"
	RPL_NOWAWAY          = "306"
	ERR_NOSUCHNICK       = "401"
	ERR_NOSUCHCHANNEL    = "403"
	ERR_NORECIPIENT      = "411"
	ERR_INPUTTOOLONG     = "417"
	ERR_UNKNOWNCOMMAND   = "421"
	ERR_NONICKNAMEGIVEN  = "431"
	ERR_ERRONEUSNICKNAME = "432"
	ERR_NICKNAMEINUSE    = "433"
	ERR_NOTONCHANNEL     = "442"
	ERR_NOTREGISTERED    = "451"
	ERR_NEEDMOREPARAMS   = "461"
	ERR_ALREADYREGISTRED = "462"
	ERR_INVALIDUSERNAME  = "468"
)
