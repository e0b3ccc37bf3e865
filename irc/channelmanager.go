// Copyright (c) 2017 Shivaram Lingamneni <slingamn@cs.stanford.edu>
// released under the MIT license

package irc

import (
	"sort"
	"sync"
	"time"
)

// Channel is a named group of sessions. Membership is not stored here:
// a session is a member of the channel whose name its Channel field holds.
type Channel struct {
	name  string
	ctime time.Time
}

// Name returns the channel name.
func (channel *Channel) Name() string {
	return channel.name
}

// Ctime returns the time of the first JOIN.
func (channel *Channel) Ctime() time.Time {
	return channel.ctime
}

// ChannelManager keeps track of all the channels on the server,
// providing synchronization for creation of new channels on first join.
// Channels are never removed.
type ChannelManager struct {
	sync.RWMutex // tier 2
	chans        map[string]*Channel
}

// NewChannelManager returns an empty ChannelManager.
func NewChannelManager() *ChannelManager {
	return &ChannelManager{
		chans: make(map[string]*Channel),
	}
}

// GetOrCreate returns the channel named name, creating it if necessary.
// Concurrent callers for the same name all receive the same *Channel.
func (cm *ChannelManager) GetOrCreate(name string) (channel *Channel, created bool) {
	cm.Lock()
	defer cm.Unlock()
	channel = cm.chans[name]
	if channel == nil {
		channel = &Channel{
			name:  name,
			ctime: time.Now().UTC(),
		}
		cm.chans[name] = channel
		created = true
	}
	return
}

// Get returns an existing channel with name, or nil.
func (cm *ChannelManager) Get(name string) (channel *Channel) {
	cm.RLock()
	defer cm.RUnlock()
	return cm.chans[name]
}

// Count returns the number of channels.
func (cm *ChannelManager) Count() int {
	cm.RLock()
	defer cm.RUnlock()
	return len(cm.chans)
}

// Names returns the sorted channel names.
func (cm *ChannelManager) Names() (result []string) {
	cm.RLock()
	defer cm.RUnlock()
	result = make([]string, 0, len(cm.chans))
	for name := range cm.chans {
		result = append(result, name)
	}
	sort.Strings(result)
	return
}
