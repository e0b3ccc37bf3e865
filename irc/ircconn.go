// Copyright (c) 2020 Shivaram Lingamneni <slingamn@cs.stanford.edu>
// released under the MIT license

package irc

import (
	"bytes"
	"net"
	"unicode/utf8"

	"github.com/ergochat/irc-go/ircreader"
	"github.com/gorilla/websocket"
)

const (
	initialBufferSize = 1024
)

var (
	crlf = []byte{'\r', '\n'}
)

// IRCConn abstracts away the distinction between a regular
// net.Conn and a websocket. It doesn't expose Read and Write
// because websockets are message-oriented, not stream-oriented.
type IRCConn interface {
	// WriteLines writes complete lines, each including its CRLF.
	WriteLines([][]byte) error
	// ReadLine returns the next line without its terminator.
	ReadLine() (line []byte, err error)
	RemoteAddr() net.Addr

	Close() error
}

// IRCStreamConn is an IRCConn over a regular stream connection.
type IRCStreamConn struct {
	conn   net.Conn
	reader ircreader.Reader
}

// NewIRCStreamConn wraps conn; maxReadQ bounds how much is buffered
// while waiting for a newline.
func NewIRCStreamConn(conn net.Conn, maxReadQ int) *IRCStreamConn {
	var cc IRCStreamConn
	cc.conn = conn
	cc.reader.Initialize(conn, initialBufferSize, maxReadQ)
	return &cc
}

func (cc *IRCStreamConn) RemoteAddr() net.Addr {
	return cc.conn.RemoteAddr()
}

func (cc *IRCStreamConn) WriteLines(buffers [][]byte) (err error) {
	// on Linux, with a plaintext TCP socket, the Go runtime
	// will optimize this into a single writev(2) call:
	_, err = (*net.Buffers)(&buffers).WriteTo(cc.conn)
	return
}

func (cc *IRCStreamConn) ReadLine() (line []byte, err error) {
	line, err = cc.reader.ReadLine()
	if err == ircreader.ErrReadQ {
		err = errReadQ
	}
	return
}

func (cc *IRCStreamConn) Close() (err error) {
	return cc.conn.Close()
}

// IRCWSConn is an IRCConn over a websocket; each text frame carries one line.
type IRCWSConn struct {
	conn *websocket.Conn
}

func NewIRCWSConn(conn *websocket.Conn) IRCWSConn {
	return IRCWSConn{conn: conn}
}

func (wc IRCWSConn) RemoteAddr() net.Addr {
	return wc.conn.RemoteAddr()
}

func (wc IRCWSConn) WriteLines(buffers [][]byte) (err error) {
	for _, buf := range buffers {
		buf = bytes.TrimSuffix(buf, crlf)
		// there's not much we can do about this;
		// silently drop the message
		if !utf8.Valid(buf) {
			continue
		}
		if err = wc.conn.WriteMessage(websocket.TextMessage, buf); err != nil {
			return
		}
	}
	return
}

func (wc IRCWSConn) ReadLine() (line []byte, err error) {
	for {
		var messageType int
		messageType, line, err = wc.conn.ReadMessage()
		if err == websocket.ErrReadLimit {
			return nil, errReadQ
		}
		// on empty message or non-text message, try again, block if necessary
		if err != nil || (messageType == websocket.TextMessage && len(line) != 0) {
			line = bytes.TrimSuffix(line, crlf)
			return
		}
	}
}

func (wc IRCWSConn) Close() (err error) {
	return wc.conn.Close()
}
