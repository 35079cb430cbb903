package room

import (
	"fmt"
	"time"

	"github.com/maingk/setback-game/internal/game/setback"
	"github.com/maingk/setback-game/internal/models"
)

type Summary struct {
	ID         string        `json:"id"`
	Seated     int           `json:"seated"`
	Phase      setback.Phase `json:"phase"`
	HandNumber int           `json:"hand_number"`
	Scores     [2]int        `json:"scores"`
	CreatedAt  time.Time     `json:"created_at"`
}

// View is what anyone may see of a room: the roster and the public game.
type View struct {
	ID      string                          `json:"id"`
	Members [setback.PlayersPerGame]*Member `json:"members"`
	Phase   setback.Phase                   `json:"phase"`
	Game    *setback.Snapshot               `json:"game,omitempty"`
}

func (r *Room) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Summary{ID: r.ID, Phase: r.phase(), CreatedAt: r.CreatedAt}
	for _, m := range r.members {
		if m != nil {
			s.Seated++
		}
	}
	if r.game != nil {
		s.HandNumber = r.game.HandNumber
		s.Scores = r.game.Scores
	}
	return s
}

func (r *Room) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := View{ID: r.ID, Members: r.roster(), Phase: r.phase()}
	if r.game != nil {
		snap := r.game.PublicSnapshot()
		v.Game = &snap
	}
	return v
}

// PlayerView is the seated player's own snapshot, hand included.
func (r *Room) PlayerView(playerID string) (setback.PlayerSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seat, err := r.seatOf(playerID)
	if err != nil {
		return setback.PlayerSnapshot{}, err
	}
	if r.game == nil {
		return setback.PlayerSnapshot{}, fmt.Errorf("room %s: %w", r.ID, models.ErrGameNotStarted)
	}
	return r.game.PlayerSnapshot(seat)
}

func (r *Room) Member(playerID string) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seat, err := r.seatOf(playerID)
	if err != nil {
		return Member{}, err
	}
	return *r.members[seat], nil
}

func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emptyLocked()
}

func (r *Room) emptyLocked() bool {
	for _, m := range r.members {
		if m != nil {
			return false
		}
	}
	return true
}
