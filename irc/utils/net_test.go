// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2016 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package utils

import (
	"net"
	"reflect"
	"testing"
)

func assertEqual(supplied, expected interface{}, t *testing.T) {
	if !reflect.DeepEqual(supplied, expected) {
		t.Errorf("expected %v but got %v", expected, supplied)
	}
}

var (
	goodHostnames = []string{
		"localhost",
		"irc.example.com",
		"irc-srv.net.uk",
		"xn--bcher-kva.ch",
		"pentos.",
	}

	badHostnames = []string{
		"-lol-.net.uk",
		"_irc._sctp.lol.net.uk",
		"irc.l%l.net.uk",
		"irc..net.uk",
		".",
		"",
	}
)

func TestIsHostname(t *testing.T) {
	for _, name := range goodHostnames {
		if !IsHostname(name) {
			t.Error("Expected to pass, but could not validate hostname", name)
		}
	}

	for _, name := range badHostnames {
		if IsHostname(name) {
			t.Error("Expected to fail, but successfully validated hostname", name)
		}
	}
}

func TestAddrToHostname(t *testing.T) {
	assertEqual(AddrToHostname(&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 6667}), "127.0.0.1", t)
	assertEqual(AddrToHostname(&net.TCPAddr{IP: net.ParseIP("::1"), Port: 6667}), "0::1", t)
	assertEqual(AddrToHostname(&net.UnixAddr{Name: "/tmp/sock", Net: "unix"}), "127.0.0.1", t)
	assertEqual(AddrToHostname(nil), "unknown", t)

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	assertEqual(AddrToHostname(server.RemoteAddr()), "pipe", t)
}

func TestConfigStore(t *testing.T) {
	var store ConfigStore[string]
	if store.Get() != nil {
		t.Error("empty store should hold nil")
	}
	value := "relay"
	store.Set(&value)
	assertEqual(*store.Get(), "relay", t)
}
