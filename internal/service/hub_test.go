package service

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Connections are nil in these tests: the hub only touches the connection
// in Register (read limit), which a zero max message size skips.
func newTestHub() *RoomHub {
	return NewRoomHub(0, 4096, 4096, zap.NewNop())
}

func TestHubDeliversToRegisteredPeer(t *testing.T) {
	h := newTestHub()
	p, cleanup := h.Register("ABCDEF", "p-1", nil)
	defer cleanup()

	h.Send("p-1", EventTick, map[string]int{"elapsed_sec": 3})
	require.Equal(t, 1, len(p.Send))

	var env Envelope
	require.NoError(t, json.Unmarshal(<-p.Send, &env))
	assert.Equal(t, EventTick, env.Event)

	h.Send("somebody-else", EventTick, nil)
	assert.Empty(t, p.Send, "frames for other participants are not delivered")
}

func TestHubDropsFrameWhenBufferFull(t *testing.T) {
	h := newTestHub()
	p, cleanup := h.Register("ABCDEF", "p-1", nil)
	defer cleanup()

	for i := 0; i < cap(p.Send)+10; i++ {
		h.Send("p-1", EventTick, i)
	}
	assert.Equal(t, cap(p.Send), len(p.Send), "overflow is dropped, never blocks")
}

func TestHubSendAfterCleanupIsNoop(t *testing.T) {
	h := newTestHub()
	_, cleanup := h.Register("ABCDEF", "p-1", nil)
	cleanup()

	assert.Zero(t, h.PeerCount("p-1"))
	h.Send("p-1", EventRoomState, nil)
}

// A broadcast racing a disconnect must never send on the closed channel;
// run with -race to verify the close is serialized against the fan-out.
func TestHubSendRacingUnregister(t *testing.T) {
	h := newTestHub()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		_, cleanup := h.Register("ABCDEF", "p-1", nil)

		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				h.Send("p-1", EventAlarm, j)
			}
		}()
		go func() {
			defer wg.Done()
			cleanup()
		}()
		wg.Wait()
	}
	assert.Zero(t, h.PeerCount("p-1"))
}
