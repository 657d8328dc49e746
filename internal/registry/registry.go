package registry

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var errNoConnection = errors.New("client has no connection")

// Client wraps one live websocket connection. Writes are serialized through
// a mutex; a test send-hook can replace the websocket sender.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
	hook func(any)
}

func NewClient(conn *websocket.Conn) *Client { return &Client{conn: conn} }

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(any)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Send delivers a message best-effort. Write failures are swallowed; a dead
// connection is dropped on the next disconnect detection.
func (c *Client) Send(message any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(message)
		return
	}
	if c.conn == nil {
		return
	}
	_ = c.conn.WriteJSON(message)
}

// ReadJSON blocks for the next inbound message. Messages on one channel are
// processed strictly in arrival order by the owning session.
func (c *Client) ReadJSON(v any) error {
	if c.conn == nil {
		return errNoConnection
	}
	return c.conn.ReadJSON(v)
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Registry is the process-wide map from room id to live channels, plus the
// transient set of next-round voters per room. Nothing here is persisted; a
// restart loses all entries and clients re-register on reconnect.
type Registry struct {
	mu    sync.RWMutex
	rooms map[uint][]*Client
	votes map[uint]map[uint]struct{}
}

func New() *Registry {
	return &Registry{
		rooms: make(map[uint][]*Client),
		votes: make(map[uint]map[uint]struct{}),
	}
}

func (r *Registry) Register(roomID uint, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[roomID] = append(r.rooms[roomID], c)
}

func (r *Registry) Unregister(roomID uint, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clients := r.rooms[roomID]
	for i, existing := range clients {
		if existing == c {
			r.rooms[roomID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(r.rooms[roomID]) == 0 {
		delete(r.rooms, roomID)
	}
}

// ClientCount reports the number of live channels registered for a room.
func (r *Registry) ClientCount(roomID uint) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

func (r *Registry) Broadcast(roomID uint, message any) {
	for _, c := range r.snapshot(roomID) {
		c.Send(message)
	}
}

func (r *Registry) BroadcastExcept(roomID uint, message any, except *Client) {
	for _, c := range r.snapshot(roomID) {
		if c == except {
			continue
		}
		c.Send(message)
	}
}

// CloseAll force-closes every channel in the room and clears its entry,
// including any pending votes.
func (r *Registry) CloseAll(roomID uint) {
	r.mu.Lock()
	clients := r.rooms[roomID]
	delete(r.rooms, roomID)
	delete(r.votes, roomID)
	r.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}

// AddVote records a user's vote to advance the round and returns the vote
// count after the addition.
func (r *Registry) AddVote(roomID, userID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.votes[roomID]
	if !ok {
		set = make(map[uint]struct{})
		r.votes[roomID] = set
	}
	set[userID] = struct{}{}
	return len(set)
}

// DiscardVote drops a single user's pending vote, if any.
func (r *Registry) DiscardVote(roomID, userID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.votes[roomID]; ok {
		delete(set, userID)
		if len(set) == 0 {
			delete(r.votes, roomID)
		}
	}
}

func (r *Registry) ClearVotes(roomID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.votes, roomID)
}

// VoteCount reports pending next-round votes for a room.
func (r *Registry) VoteCount(roomID uint) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.votes[roomID])
}

func (r *Registry) snapshot(roomID uint) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]*Client, len(r.rooms[roomID]))
	copy(clients, r.rooms[roomID])
	return clients
}
