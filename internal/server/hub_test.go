package server

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport records outbound messages and can be told to fail sends.
// Hub tests drive registration directly, so Recv is never used.
type stubTransport struct {
	mu      sync.Mutex
	addr    string
	sent    []string
	sendErr error
	closed  bool
}

func (t *stubTransport) Recv() (string, error) { return "", io.EOF }

func (t *stubTransport) Send(msg string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, msg)
	return nil
}

func (t *stubTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *stubTransport) RemoteAddr() string { return t.addr }

func (t *stubTransport) messages() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.sent...)
}

func newStubSession(hub *Hub, addr string) (*Session, *stubTransport) {
	tr := &stubTransport{addr: addr}
	return NewSession(hub, tr), tr
}

func TestHubRegisterRejectsDuplicate(t *testing.T) {
	configureTest(t, nil)
	hub := NewHub()

	alice, aliceTr := newStubSession(hub, "peer-1")
	require.True(t, hub.Register("alice", alice))

	impostor, impostorTr := newStubSession(hub, "peer-2")
	assert.False(t, hub.Register("alice", impostor))

	assert.Equal(t, []string{"alice"}, hub.Users())
	assert.Equal(t, []string{joinNotice("alice")}, aliceTr.messages())
	assert.Empty(t, impostorTr.messages(), "losing registration must have no side effects")
}

func TestHubConcurrentRegistrationExactlyOneWins(t *testing.T) {
	configureTest(t, nil)
	hub := NewHub()

	const attempts = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < attempts; i++ {
		sess, _ := newStubSession(hub, fmt.Sprintf("peer-%d", i))
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			if hub.Register("alice", s) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(sess)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, hub.Len())
}

func TestHubUnregisterIdempotent(t *testing.T) {
	configureTest(t, nil)
	hub := NewHub()

	alice, aliceTr := newStubSession(hub, "peer-1")
	bob, _ := newStubSession(hub, "peer-2")
	require.True(t, hub.Register("alice", alice))
	require.True(t, hub.Register("bob", bob))

	hub.Unregister("bob")
	hub.Unregister("bob")
	hub.Unregister("ghost")

	assert.Equal(t, []string{"alice"}, hub.Users())
	assert.Equal(t, []string{
		joinNotice("alice"),
		joinNotice("bob"),
		departNotice("bob"),
	}, aliceTr.messages(), "a second removal must not emit another departure notice")
}

func TestHubBroadcastCompletesUnderPartialFailure(t *testing.T) {
	configureTest(t, nil)
	hub := NewHub()

	alice, aliceTr := newStubSession(hub, "peer-1")
	bob, bobTr := newStubSession(hub, "peer-2")
	carol, carolTr := newStubSession(hub, "peer-3")
	require.True(t, hub.Register("alice", alice))
	require.True(t, hub.Register("bob", bob))
	require.True(t, hub.Register("carol", carol))

	bobTr.mu.Lock()
	bobTr.sendErr = errors.New("broken pipe")
	bobTr.mu.Unlock()

	hub.Broadcast(chatRelay("alice", "hello"))

	assert.Contains(t, aliceTr.messages(), "[alice]: hello")
	assert.Contains(t, carolTr.messages(), "[alice]: hello")
	assert.NotContains(t, bobTr.messages(), "[alice]: hello")

	// a failing recipient must not fail the triggering operation either
	dave, daveTr := newStubSession(hub, "peer-4")
	assert.True(t, hub.Register("dave", dave))
	assert.Contains(t, daveTr.messages(), joinNotice("dave"))
	assert.Equal(t, 4, hub.Len(), "failed sends do not proactively disconnect the recipient")
}

func TestHubJoinNoticeReachesAllIncludingNewcomer(t *testing.T) {
	configureTest(t, nil)
	hub := NewHub()

	alice, aliceTr := newStubSession(hub, "peer-1")
	require.True(t, hub.Register("alice", alice))

	bob, bobTr := newStubSession(hub, "peer-2")
	require.True(t, hub.Register("bob", bob))

	assert.Contains(t, aliceTr.messages(), joinNotice("bob"))
	assert.Contains(t, bobTr.messages(), joinNotice("bob"))
}

func TestHubHistoryReplayOnRegister(t *testing.T) {
	configureTest(t, func(cfg *Config) {
		cfg.HistorySize = 10
		cfg.HistoryGreets = 2
	})
	hub := NewHub()

	hub.Broadcast("[alice]: one")
	hub.Broadcast("[alice]: two")
	hub.Broadcast("[alice]: three")

	bob, bobTr := newStubSession(hub, "peer-1")
	require.True(t, hub.Register("bob", bob))

	assert.Equal(t, []string{
		"[alice]: two",
		"[alice]: three",
		joinNotice("bob"),
	}, bobTr.messages(), "newcomer receives the history tail before the join notice")
}

func TestHubNoticesAreNotRecordedInHistory(t *testing.T) {
	configureTest(t, func(cfg *Config) {
		cfg.HistorySize = 10
		cfg.HistoryGreets = 10
	})
	hub := NewHub()

	alice, _ := newStubSession(hub, "peer-1")
	require.True(t, hub.Register("alice", alice))
	hub.Unregister("alice")

	bob, bobTr := newStubSession(hub, "peer-2")
	require.True(t, hub.Register("bob", bob))

	assert.Equal(t, []string{joinNotice("bob")}, bobTr.messages())
}
