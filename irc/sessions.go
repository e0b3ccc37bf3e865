// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"sync"

	"github.com/google/uuid"
)

// Output is the write side of a session's connection.
type Output interface {
	// WriteLine queues one serialized line, CRLF included; it must not block.
	WriteLine(line []byte) error
	Close() error
}

// SessionState is a snapshot of one connected session.
type SessionState struct {
	ID         uuid.UUID
	Nick       string
	Username   string
	Hostname   string
	Registered bool
	Away       bool
	// AwayMessage is shown to senders while Away is set
	AwayMessage string
	// Channel is the name of the joined channel, or empty
	Channel string
}

// Prefix returns nick!user@host, or the empty string until both the
// nickname and the username are known.
func (s *SessionState) Prefix() string {
	if s.Nick == "" || s.Username == "" {
		return ""
	}
	return s.Nick + "!" + s.Username + "@" + s.Hostname
}

type sessionEntry struct {
	state SessionState
	out   Output
}

// SessionRegistry keeps track of every connected session by id and by nick.
// Nicknames are unique and matched exactly.
type SessionRegistry struct {
	sync.Mutex // tier 2
	byID       map[uuid.UUID]*sessionEntry
	byNick     map[string]uuid.UUID
}

// NewSessionRegistry returns an empty SessionRegistry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		byID:   make(map[uuid.UUID]*sessionEntry),
		byNick: make(map[string]uuid.UUID),
	}
}

// Create adds a new unregistered session and returns its id.
func (sessions *SessionRegistry) Create(hostname string, out Output) uuid.UUID {
	id := uuid.New()
	sessions.Lock()
	defer sessions.Unlock()
	sessions.byID[id] = &sessionEntry{
		state: SessionState{ID: id, Hostname: hostname},
		out:   out,
	}
	return id
}

// Get returns a snapshot of the session.
func (sessions *SessionRegistry) Get(id uuid.UUID) (state SessionState, err error) {
	sessions.Lock()
	defer sessions.Unlock()
	entry, ok := sessions.byID[id]
	if !ok {
		return state, errNoSuchSession
	}
	return entry.state, nil
}

// Mutate applies fn to a copy of the session's state and stores the result
// unless fn returns an error. The id, nickname and registration flag are
// owned by the registry, changes fn makes to them are discarded.
func (sessions *SessionRegistry) Mutate(id uuid.UUID, fn func(*SessionState) error) error {
	sessions.Lock()
	defer sessions.Unlock()
	entry, ok := sessions.byID[id]
	if !ok {
		return errNoSuchSession
	}
	updated := entry.state
	if err := fn(&updated); err != nil {
		return err
	}
	updated.ID = entry.state.ID
	updated.Nick = entry.state.Nick
	updated.Registered = entry.state.Registered
	entry.state = updated
	return nil
}

// Remove deletes the session, returning its last state.
func (sessions *SessionRegistry) Remove(id uuid.UUID) (state SessionState, ok bool) {
	sessions.Lock()
	defer sessions.Unlock()
	entry, ok := sessions.byID[id]
	if !ok {
		return state, false
	}
	delete(sessions.byID, id)
	if entry.state.Nick != "" && sessions.byNick[entry.state.Nick] == id {
		delete(sessions.byNick, entry.state.Nick)
	}
	return entry.state, true
}

// FindByNick returns the id of the session using nick.
func (sessions *SessionRegistry) FindByNick(nick string) (id uuid.UUID, ok bool) {
	sessions.Lock()
	defer sessions.Unlock()
	id, ok = sessions.byNick[nick]
	return
}

// LookupNick returns a snapshot of the session using nick.
func (sessions *SessionRegistry) LookupNick(nick string) (state SessionState, ok bool) {
	sessions.Lock()
	defer sessions.Unlock()
	id, ok := sessions.byNick[nick]
	if !ok {
		return state, false
	}
	return sessions.byID[id].state, true
}

// SetNick binds nick to the session, failing with errNicknameInUse if it is
// bound to a different session. The check and the update are atomic.
func (sessions *SessionRegistry) SetNick(id uuid.UUID, nick string) (wasRegistered bool, err error) {
	sessions.Lock()
	defer sessions.Unlock()
	entry, ok := sessions.byID[id]
	if !ok {
		return false, errNoSuchSession
	}
	if current, inUse := sessions.byNick[nick]; inUse && current != id {
		return entry.state.Registered, errNicknameInUse
	}
	if entry.state.Nick != "" {
		delete(sessions.byNick, entry.state.Nick)
	}
	entry.state.Nick = nick
	sessions.byNick[nick] = id
	return entry.state.Registered, nil
}

// TryRegister marks the session registered if it has both a nickname and a
// username. It reports true only on the call that performed the transition.
func (sessions *SessionRegistry) TryRegister(id uuid.UUID) (state SessionState, registered bool) {
	sessions.Lock()
	defer sessions.Unlock()
	entry, ok := sessions.byID[id]
	if !ok {
		return state, false
	}
	if entry.state.Registered || entry.state.Nick == "" || entry.state.Username == "" {
		return entry.state, false
	}
	entry.state.Registered = true
	return entry.state, true
}

// ForEach calls fn for every session while holding the registry lock,
// so fn must not call back into the registry. No two iterations interleave.
func (sessions *SessionRegistry) ForEach(fn func(state *SessionState, out Output)) {
	sessions.Lock()
	defer sessions.Unlock()
	for _, entry := range sessions.byID {
		state := entry.state
		fn(&state, entry.out)
	}
}

// ForEachExcept is ForEach, skipping the session except.
func (sessions *SessionRegistry) ForEachExcept(except uuid.UUID, fn func(state *SessionState, out Output)) {
	sessions.ForEach(func(state *SessionState, out Output) {
		if state.ID != except {
			fn(state, out)
		}
	})
}

// ForEachInChannel is ForEach over the members of channel, skipping except
// (pass uuid.Nil to include everyone).
func (sessions *SessionRegistry) ForEachInChannel(channel string, except uuid.UUID, fn func(state *SessionState, out Output)) {
	sessions.ForEach(func(state *SessionState, out Output) {
		if state.Channel == channel && state.ID != except {
			fn(state, out)
		}
	})
}

// Count returns how many sessions are connected.
func (sessions *SessionRegistry) Count() int {
	sessions.Lock()
	defer sessions.Unlock()
	return len(sessions.byID)
}

// output returns the output handle of a session.
func (sessions *SessionRegistry) output(id uuid.UUID) (Output, error) {
	sessions.Lock()
	defer sessions.Unlock()
	entry, ok := sessions.byID[id]
	if !ok {
		return nil, errNoSuchSession
	}
	return entry.out, nil
}
