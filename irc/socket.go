// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"sync"
)

// Socket is the send queue of one connection. Writes never block: lines
// are buffered and a single writer goroutine at a time drains them.
type Socket struct {
	sync.Mutex

	conn          IRCConn
	maxSendQBytes int

	// trylock held by the goroutine currently writing to conn
	writerSlot chan struct{}

	buffers       [][]byte
	totalLength   int
	closed        bool
	sendQExceeded bool
	finalized     bool
}

// NewSocket returns a new Socket.
func NewSocket(conn IRCConn, maxSendQBytes int) *Socket {
	result := Socket{
		conn:          conn,
		maxSendQBytes: maxSendQBytes,
		writerSlot:    make(chan struct{}, 1),
	}
	return &result
}

// WriteLine queues a line for sending. If the send queue would exceed its
// limit, the socket is closed instead.
func (socket *Socket) WriteLine(data []byte) (err error) {
	if len(data) == 0 {
		return
	}

	var abort bool
	socket.Lock()
	if socket.closed {
		err = errSocketClosed
	} else {
		prospectiveLen := socket.totalLength + len(data)
		if prospectiveLen > socket.maxSendQBytes {
			socket.sendQExceeded = true
			socket.closed = true
			// nothing queued will be sent
			socket.finalized = true
			socket.buffers = nil
			abort = true
			err = errSendQ
		} else {
			socket.buffers = append(socket.buffers, data)
			socket.totalLength = prospectiveLen
		}
	}
	socket.Unlock()

	if abort {
		// the peer is not reading; this also unblocks a writer stuck in WriteLines
		socket.conn.Close()
		return
	}
	socket.wakeWriter()
	return
}

// Close marks the socket closed; lines already queued are still sent,
// then the connection is closed.
func (socket *Socket) Close() error {
	socket.Lock()
	socket.closed = true
	socket.Unlock()

	socket.wakeWriter()
	return nil
}

// IsClosed returns whether the socket is closed.
func (socket *Socket) IsClosed() bool {
	socket.Lock()
	defer socket.Unlock()
	return socket.closed
}

// SendQExceeded returns whether the socket was closed for exceeding its send queue.
func (socket *Socket) SendQExceeded() bool {
	socket.Lock()
	defer socket.Unlock()
	return socket.sendQExceeded
}

func (socket *Socket) wakeWriter() {
	select {
	case socket.writerSlot <- struct{}{}:
		go socket.send()
	default:
	}
}

func (socket *Socket) send() {
	for {
		// we are holding the trylock: actually do the write
		socket.performWrite()
		// surrender the trylock, avoiding a race where a write comes in after
		// we've checked readyToWrite() and it returned false, but while we
		// still hold the trylock:
		<-socket.writerSlot
		// check if more data came in while we held the trylock:
		if !socket.readyToWrite() {
			return
		}
		select {
		case socket.writerSlot <- struct{}{}:
			// got the trylock again, loop back around and write
		default:
			// whoever holds it will observe readyToWrite() after releasing it
			return
		}
	}
}

func (socket *Socket) readyToWrite() bool {
	socket.Lock()
	defer socket.Unlock()
	return len(socket.buffers) != 0 || (socket.closed && !socket.finalized)
}

func (socket *Socket) performWrite() {
	socket.Lock()
	buffers := socket.buffers
	socket.buffers = nil
	socket.totalLength = 0
	closed := socket.closed
	socket.Unlock()

	var err error
	if len(buffers) != 0 {
		err = socket.conn.WriteLines(buffers)
	}

	if closed || err != nil {
		socket.finalize()
	}
}

// finalize closes the connection once.
func (socket *Socket) finalize() {
	socket.Lock()
	alreadyFinalized := socket.finalized
	socket.finalized = true
	socket.closed = true
	socket.buffers = nil
	socket.Unlock()

	if !alreadyFinalized {
		socket.conn.Close()
	}
}
