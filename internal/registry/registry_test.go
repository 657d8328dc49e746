package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hookedClient(sink *[]any, mu *sync.Mutex) *Client {
	c := NewClient(nil)
	c.SetSendHook(func(msg any) {
		mu.Lock()
		*sink = append(*sink, msg)
		mu.Unlock()
	})
	return c
}

func TestRegisterAndBroadcast(t *testing.T) {
	r := New()
	var mu sync.Mutex
	var got1, got2 []any
	c1 := hookedClient(&got1, &mu)
	c2 := hookedClient(&got2, &mu)

	r.Register(7, c1)
	r.Register(7, c2)
	require.Equal(t, 2, r.ClientCount(7))

	r.Broadcast(7, "hello")
	assert.Equal(t, []any{"hello"}, got1)
	assert.Equal(t, []any{"hello"}, got2)
}

func TestBroadcastExceptSkipsSender(t *testing.T) {
	r := New()
	var mu sync.Mutex
	var got1, got2 []any
	c1 := hookedClient(&got1, &mu)
	c2 := hookedClient(&got2, &mu)
	r.Register(1, c1)
	r.Register(1, c2)

	r.BroadcastExcept(1, "ping", c1)
	assert.Empty(t, got1)
	assert.Equal(t, []any{"ping"}, got2)
}

func TestUnregisterRemovesOnlyThatClient(t *testing.T) {
	r := New()
	var mu sync.Mutex
	var got1, got2 []any
	c1 := hookedClient(&got1, &mu)
	c2 := hookedClient(&got2, &mu)
	r.Register(3, c1)
	r.Register(3, c2)

	r.Unregister(3, c1)
	require.Equal(t, 1, r.ClientCount(3))

	r.Broadcast(3, "msg")
	assert.Empty(t, got1)
	assert.Equal(t, []any{"msg"}, got2)
}

func TestCloseAllClearsRoomAndVotes(t *testing.T) {
	r := New()
	var mu sync.Mutex
	var got []any
	c := hookedClient(&got, &mu)
	r.Register(5, c)
	r.AddVote(5, 10)

	r.CloseAll(5)
	assert.Equal(t, 0, r.ClientCount(5))
	assert.Equal(t, 0, r.VoteCount(5))
}

func TestVotesAreIdempotentPerUser(t *testing.T) {
	r := New()
	assert.Equal(t, 1, r.AddVote(9, 1))
	assert.Equal(t, 1, r.AddVote(9, 1))
	assert.Equal(t, 2, r.AddVote(9, 2))

	r.DiscardVote(9, 1)
	assert.Equal(t, 1, r.VoteCount(9))
	r.ClearVotes(9)
	assert.Equal(t, 0, r.VoteCount(9))
}

func TestSendWithoutConnectionIsNoop(t *testing.T) {
	c := NewClient(nil)
	c.Send("dropped")
	assert.Error(t, c.ReadJSON(&struct{}{}))
}

func TestConcurrentBroadcastAndUnregister(t *testing.T) {
	r := New()
	var mu sync.Mutex
	var got []any
	clients := make([]*Client, 8)
	for i := range clients {
		clients[i] = hookedClient(&got, &mu)
		r.Register(2, clients[i])
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Broadcast(2, "x")
		}()
		c := clients[i]
		go func() {
			defer wg.Done()
			r.Unregister(2, c)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, r.ClientCount(2))
}
