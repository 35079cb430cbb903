package websocket

import (
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// HubRef provides an atomic indirection to the currently-active Hub.
// This allows the server to swap in a fresh hub instance after a panic without
// restarting the HTTP server (handlers call Get() for each new connection).
type HubRef struct {
	v atomic.Pointer[Hub]
}

func NewHubRef(initial *Hub) *HubRef {
	r := &HubRef{}
	r.v.Store(initial)
	return r
}

func (r *HubRef) Get() (*Hub, bool) {
	h := r.v.Load()
	return h, h != nil
}

func (r *HubRef) Set(h *Hub) {
	r.v.Store(h)
}

// Supervise runs the referenced hub and replaces it with a fresh one
// whenever Run panics. It returns once a hub stops normally.
func Supervise(ref *HubRef, log logrus.FieldLogger, restartDelay time.Duration) {
	for {
		current, ok := ref.Get()
		if !ok {
			ref.Set(NewHub(log))
			continue
		}
		if !runRecovered(current, log) {
			return
		}
		// Clients still holding the dead hub must not block on it.
		current.Stop()
		ref.Set(NewHub(log))
		time.Sleep(restartDelay)
	}
}

func runRecovered(h *Hub, log logrus.FieldLogger) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			log.WithField("panic", r).Errorf("hub.Run panic\n%s", debug.Stack())
		}
	}()
	h.Run()
	return false
}
