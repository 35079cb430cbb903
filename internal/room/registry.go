package room

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"sync"

	"github.com/maingk/setback-game/internal/game/common"
	"github.com/maingk/setback-game/internal/models"

	"github.com/sirupsen/logrus"
)

var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Registry owns every live room, keyed by id.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	rec Recorder
	log logrus.FieldLogger

	// NewRand seeds each new room's generator. Tests swap it for a seeded one.
	NewRand func() *rand.Rand

	// Publish receives every room's events in commit order. Set it before
	// the first room is created; it must not call back into the room.
	Publish func(roomID string, evs []Event)
}

func NewRegistry(rec Recorder, log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{
		rooms:   map[string]*Room{},
		rec:     rec,
		log:     log,
		NewRand: common.NewRand,
	}
}

func ValidRoomID(id string) error {
	if !roomIDPattern.MatchString(id) {
		return fmt.Errorf("room id %q: %w", id, models.ErrInvalidRoomID)
	}
	return nil
}

// GetOrCreate returns the room with id, creating it when absent.
func (g *Registry) GetOrCreate(id string) (*Room, error) {
	if err := ValidRoomID(id); err != nil {
		return nil, err
	}
	g.mu.RLock()
	r, ok := g.rooms[id]
	g.mu.RUnlock()
	if ok {
		return r, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.rooms[id]; ok {
		return r, nil
	}
	r = New(id, g.NewRand(), g.rec, g.log)
	r.publish = g.Publish
	g.rooms[id] = r
	g.log.WithField("room_id", id).Info("room created")
	return r, nil
}

func (g *Registry) Get(id string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %q: %w", id, models.ErrRoomNotFound)
	}
	return r, nil
}

// Join seats name in room id, creating the room if needed. A room closed
// between lookup and join is recreated once.
func (g *Registry) Join(ctx context.Context, id, name string) (*Room, Member, []Event, error) {
	for attempt := 0; ; attempt++ {
		r, err := g.GetOrCreate(id)
		if err != nil {
			return nil, Member{}, nil, err
		}
		m, evs, err := r.Join(ctx, name)
		if errors.Is(err, models.ErrRoomNotFound) && attempt == 0 {
			continue
		}
		return r, m, evs, err
	}
}

// Remove drops the room unconditionally.
func (g *Registry) Remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.rooms[id]; ok {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		delete(g.rooms, id)
	}
}

// RemoveIfEmpty drops the room once nobody is seated. It reports whether
// the room was removed.
func (g *Registry) RemoveIfEmpty(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[id]
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.emptyLocked() {
		return false
	}
	r.closed = true
	delete(g.rooms, id)
	g.log.WithField("room_id", id).Info("room removed")
	return true
}

// List returns room summaries ordered by id.
func (g *Registry) List() []Summary {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.RUnlock()

	out := make([]Summary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
