// Package presence tracks which voice peers are connected to each room.
// It is process-local and advisory.
package presence

import (
	"sort"
	"sync"
)

// DefaultRoom 事件未帶 room 時使用
const DefaultRoom = "default"

type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{rooms: map[string]map[string]struct{}{}}
}

func roomKey(room string) string {
	if room == "" {
		return DefaultRoom
	}
	return room
}

func (r *Registry) Join(room, peer string) {
	if peer == "" {
		return
	}
	room = roomKey(room)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[room] == nil {
		r.rooms[room] = map[string]struct{}{}
	}
	r.rooms[room][peer] = struct{}{}
}

func (r *Registry) Leave(room, peer string) {
	room = roomKey(room)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(room, peer)
}

func (r *Registry) remove(room, peer string) bool {
	peers, ok := r.rooms[room]
	if !ok {
		return false
	}
	if _, ok := peers[peer]; !ok {
		return false
	}
	delete(peers, peer)
	if len(peers) == 0 {
		delete(r.rooms, room)
	}
	return true
}

// LeaveAll 從所有房間移除 peer，回傳受影響的房間數
func (r *Registry) LeaveAll(peer string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for room := range r.rooms {
		if r.remove(room, peer) {
			n++
		}
	}
	return n
}

// Replace 以完整名單覆寫房間
func (r *Registry) Replace(room string, peers []string) {
	room = roomKey(room)
	r.mu.Lock()
	defer r.mu.Unlock()
	set := make(map[string]struct{}, len(peers))
	for _, p := range peers {
		if p != "" {
			set[p] = struct{}{}
		}
	}
	if len(set) == 0 {
		delete(r.rooms, room)
		return
	}
	r.rooms[room] = set
}

// Peers 依字母排序回傳
func (r *Registry) Peers(room string) []string {
	room = roomKey(room)
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.rooms[room]))
	for p := range r.rooms[room] {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Reset 重連後名單以伺服器為準，先清空
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = map[string]map[string]struct{}{}
}
