// Copyright (c) 2026 The ircrelay Authors
// released under the MIT license

package irc

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestSetNickCollision(t *testing.T) {
	sessions := NewSessionRegistry()
	first := sessions.Create("127.0.0.1", &recordingOutput{})
	second := sessions.Create("127.0.0.2", &recordingOutput{})

	if _, err := sessions.SetNick(first, "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := sessions.SetNick(second, "bob"); err != nil {
		t.Fatal(err)
	}
	if _, err := sessions.SetNick(second, "alice"); err != errNicknameInUse {
		t.Fatalf("expected errNicknameInUse, got %v", err)
	}

	firstState, _ := sessions.Get(first)
	secondState, _ := sessions.Get(second)
	assertEqual(firstState.Nick, "alice", t)
	assertEqual(secondState.Nick, "bob", t)

	id, ok := sessions.FindByNick("alice")
	assertEqual(ok, true, t)
	assertEqual(id, first, t)

	// lookups are exact
	if _, ok := sessions.FindByNick("Alice"); ok {
		t.Error("nick lookup should be case-sensitive")
	}
}

func TestSetNickReleasesOldNick(t *testing.T) {
	sessions := NewSessionRegistry()
	first := sessions.Create("h", &recordingOutput{})
	second := sessions.Create("h", &recordingOutput{})

	sessions.SetNick(first, "alice")
	sessions.SetNick(first, "alicia")
	if _, ok := sessions.FindByNick("alice"); ok {
		t.Error("old nick should have been released")
	}
	if _, err := sessions.SetNick(second, "alice"); err != nil {
		t.Errorf("released nick should be available, got %v", err)
	}
	// setting your own nick again is allowed
	if _, err := sessions.SetNick(first, "alicia"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestConcurrentSetNick(t *testing.T) {
	sessions := NewSessionRegistry()
	var ids []uuid.UUID
	for i := 0; i < 32; i++ {
		ids = append(ids, sessions.Create(fmt.Sprintf("host%d", i), &recordingOutput{}))
	}

	var wg sync.WaitGroup
	results := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := sessions.SetNick(id, "contested")
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	var winners int
	for err := range results {
		if err == nil {
			winners++
		} else if err != errNicknameInUse {
			t.Errorf("unexpected error %v", err)
		}
	}
	assertEqual(winners, 1, t)
}

func TestTryRegister(t *testing.T) {
	sessions := NewSessionRegistry()
	id := sessions.Create("h", &recordingOutput{})

	if _, registered := sessions.TryRegister(id); registered {
		t.Fatal("registered without a nick or username")
	}
	sessions.SetNick(id, "alice")
	if _, registered := sessions.TryRegister(id); registered {
		t.Fatal("registered without a username")
	}
	sessions.Mutate(id, func(s *SessionState) error {
		s.Username = "a"
		return nil
	})

	state, registered := sessions.TryRegister(id)
	assertEqual(registered, true, t)
	assertEqual(state.Prefix(), "alice!a@h", t)

	if _, registered := sessions.TryRegister(id); registered {
		t.Error("registration must happen exactly once")
	}
	wasRegistered, _ := sessions.SetNick(id, "alicia")
	assertEqual(wasRegistered, true, t)
}

func TestMutate(t *testing.T) {
	sessions := NewSessionRegistry()
	id := sessions.Create("h", &recordingOutput{})
	sessions.SetNick(id, "alice")

	err := sessions.Mutate(id, func(s *SessionState) error {
		s.Away = true
		s.Channel = "#room"
		// owned by the registry, these are discarded
		s.Nick = "mallory"
		s.Registered = true
		s.ID = uuid.Nil
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	state, _ := sessions.Get(id)
	assertEqual(state.Away, true, t)
	assertEqual(state.Channel, "#room", t)
	assertEqual(state.Nick, "alice", t)
	assertEqual(state.Registered, false, t)
	assertEqual(state.ID, id, t)

	failure := errors.New("rejected")
	err = sessions.Mutate(id, func(s *SessionState) error {
		s.Channel = "#elsewhere"
		return failure
	})
	assertEqual(err, failure, t)
	state, _ = sessions.Get(id)
	assertEqual(state.Channel, "#room", t)

	if err := sessions.Mutate(uuid.New(), func(*SessionState) error { return nil }); err != errNoSuchSession {
		t.Errorf("expected errNoSuchSession, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	sessions := NewSessionRegistry()
	id := sessions.Create("h", &recordingOutput{})
	sessions.SetNick(id, "alice")

	state, ok := sessions.Remove(id)
	assertEqual(ok, true, t)
	assertEqual(state.Nick, "alice", t)

	if _, err := sessions.Get(id); err != errNoSuchSession {
		t.Errorf("expected errNoSuchSession, got %v", err)
	}
	if _, ok := sessions.FindByNick("alice"); ok {
		t.Error("removed session's nick should be free")
	}
	if _, ok := sessions.Remove(id); ok {
		t.Error("second remove should report nothing removed")
	}
	assertEqual(sessions.Count(), 0, t)
}

func TestForEachInChannel(t *testing.T) {
	sessions := NewSessionRegistry()
	join := func(nick, channel string) uuid.UUID {
		id := sessions.Create("h", &recordingOutput{})
		sessions.SetNick(id, nick)
		sessions.Mutate(id, func(s *SessionState) error {
			s.Channel = channel
			return nil
		})
		return id
	}
	alice := join("alice", "#room")
	join("bob", "#room")
	join("carol", "#other")
	join("dave", "")

	members := func(except uuid.UUID) map[string]bool {
		result := make(map[string]bool)
		sessions.ForEachInChannel("#room", except, func(state *SessionState, out Output) {
			result[state.Nick] = true
		})
		return result
	}
	assertEqual(members(uuid.Nil), map[string]bool{"alice": true, "bob": true}, t)
	assertEqual(members(alice), map[string]bool{"bob": true}, t)

	var everyoneElse []string
	sessions.ForEachExcept(alice, func(state *SessionState, out Output) {
		everyoneElse = append(everyoneElse, state.Nick)
	})
	assertEqual(len(everyoneElse), 3, t)
}

func TestPrefix(t *testing.T) {
	state := SessionState{Hostname: "10.0.0.1"}
	assertEqual(state.Prefix(), "", t)
	state.Nick = "alice"
	assertEqual(state.Prefix(), "", t)
	state.Username = "a"
	assertEqual(state.Prefix(), "alice!a@10.0.0.1", t)
}
