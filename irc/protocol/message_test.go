// Copyright (c) 2026 The ircrelay Authors
// released under the MIT license

package protocol

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type parseTest struct {
	line    string
	prefix  string
	command Command
	params  []string
}

var parseTests = []parseTest{
	{":a!b@c NICK zed", "a!b@c", Nick, []string{"zed"}},
	{":a PRIVMSG #chan :hello world", "a", PrivMsg, []string{"#chan", "hello world"}},
	{":a privmsg bob hi\r\n", "a", PrivMsg, []string{"bob", "hi"}},
	{":a USER guest 0 * :Ronnie Reagan", "a", User, []string{"guest", "0", "*", "Ronnie Reagan"}},
	{":a AWAY", "a", Away, nil},
	{":a QUIT :gone fishing", "a", Quit, []string{"gone fishing"}},
	{":a   JOIN    #room", "a", Join, []string{"#room"}},
	{":a KICK #room bob", "a", Unknown, []string{"#room", "bob"}},
	{":a PRIVMSG bob ::)", "a", PrivMsg, []string{"bob", ":)"}},
	{":a PRIVMSG bob :", "a", PrivMsg, []string{"bob", ""}},
}

func TestParse(t *testing.T) {
	for _, test := range parseTests {
		msg, err := Parse(test.line)
		if err != nil {
			t.Errorf("%q: unexpected error %v", test.line, err)
			continue
		}
		if msg.Prefix != test.prefix {
			t.Errorf("%q: expected prefix %q, got %q", test.line, test.prefix, msg.Prefix)
		}
		if msg.Command != test.command {
			t.Errorf("%q: expected command %v, got %v", test.line, test.command, msg.Command)
		}
		if !reflect.DeepEqual(msg.Params, test.params) {
			t.Errorf("%q: expected params %#v, got %#v", test.line, test.params, msg.Params)
		}
	}
}

func TestParseUnknownVerbIsKept(t *testing.T) {
	msg, err := Parse(":a LIST")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Command != Unknown || msg.Verb != "LIST" {
		t.Errorf("expected Unknown LIST, got %v %q", msg.Command, msg.Verb)
	}
}

func TestParseErrors(t *testing.T) {
	malformed := []string{
		"NICK zed",
		":a!b@c",
		":a ",
		": NICK zed",
		":a NICK z\x00ed",
		"@time=now :a NICK zed",
		":a PRIVMSG bob :\xff\xfe hi",
	}
	for _, line := range malformed {
		_, err := Parse(line)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%q: expected malformed error, got %v", line, err)
		}
	}

	if _, err := Parse("\r\n"); err != ErrLineIsEmpty {
		t.Errorf("expected ErrLineIsEmpty, got %v", err)
	}
}

func TestParseWithoutPrefix(t *testing.T) {
	msg, err := ParseLine("NICK zed", false, 0)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Prefix != "" || msg.Command != Nick || !reflect.DeepEqual(msg.Params, []string{"zed"}) {
		t.Errorf("unexpected parse result %#v", msg)
	}
}

func TestParseTooLong(t *testing.T) {
	line := ":a PRIVMSG bob :" + strings.Repeat("x", DefaultMaxLineLen)
	if _, err := ParseLine(line, true, DefaultMaxLineLen); err != ErrLineTooLong {
		t.Errorf("expected ErrLineTooLong, got %v", err)
	}
	if _, err := ParseLine(line, true, 0); err != nil {
		t.Errorf("unlimited parse should succeed, got %v", err)
	}
}

func TestCommandNames(t *testing.T) {
	for i := 1; i < NumCommands; i++ {
		command := Command(i)
		if ParseCommand(command.String()) != command {
			t.Errorf("%v does not round-trip through its name", command)
		}
		if ParseCommand(strings.ToLower(command.String())) != command {
			t.Errorf("%v should be matched case-insensitively", command)
		}
	}
	if ParseCommand("UNKNOWN") != Unknown {
		t.Error("UNKNOWN must not name a real command")
	}
}

func TestMessageLine(t *testing.T) {
	msg := NewMessage("alice!a@host", PrivMsg, "#room", "hello world")
	line, err := msg.Line()
	if err != nil {
		t.Fatal(err)
	}
	if line != ":alice!a@host PRIVMSG #room :hello world\r\n" {
		t.Errorf("unexpected line %q", line)
	}

	parsed, err := Parse(line)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Prefix != msg.Prefix || parsed.Command != msg.Command || !reflect.DeepEqual(parsed.Params, msg.Params) {
		t.Errorf("parse did not invert serialization: %#v", parsed)
	}

	unknown := Message{Prefix: "a", Command: Unknown, Verb: "LIST"}
	line, _ = unknown.Line()
	if line != ":a LIST\r\n" {
		t.Errorf("unknown verb should serialize as sent, got %q", line)
	}
}

func TestResponseLine(t *testing.T) {
	r := NewResponse("localhost", ERR_NICKNAMEINUSE, "Nickname is already in use.")
	line, err := r.Line()
	if err != nil {
		t.Fatal(err)
	}
	if line != ":localhost 433 :Nickname is already in use.\r\n" {
		t.Errorf("unexpected line %q", line)
	}

	r = NewResponse("localhost", RPL_AWAY, "bob", "gone")
	line, _ = r.Line()
	if line != ":localhost 301 bob :gone\r\n" {
		t.Errorf("text must always be trailing, got %q", line)
	}
	if r.Text() != "gone" {
		t.Errorf("unexpected text %q", r.Text())
	}
}

func TestLineTruncation(t *testing.T) {
	msg := NewMessage("a", PrivMsg, "bob", strings.Repeat("y", 2*DefaultMaxLineLen))
	line, err := msg.LineBytesStrict(DefaultMaxLineLen)
	if err != nil {
		t.Fatal(err)
	}
	if len(line) > DefaultMaxLineLen {
		t.Errorf("line was not truncated: %d bytes", len(line))
	}
	if !strings.HasSuffix(string(line), "\r\n") {
		t.Error("truncated line must keep its terminator")
	}
}

func TestIsChannelName(t *testing.T) {
	for _, name := range []string{"#room", "#a", "#chan-2"} {
		if !IsChannelName(name) {
			t.Errorf("%q should be a channel name", name)
		}
	}
	for _, name := range []string{"", "#", "room", "#a,b", "#a b", "#a\x07"} {
		if IsChannelName(name) {
			t.Errorf("%q should not be a channel name", name)
		}
	}
}
