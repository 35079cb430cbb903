package room

import (
	"context"
	"fmt"

	"github.com/maingk/setback-game/internal/game/setback"
	"github.com/maingk/setback-game/internal/models"
)

// MaxAutoHands caps how many hands AutoCompleteGame will play in one call.
const MaxAutoHands = 50

// AutoResult summarizes a debug auto-play call.
type AutoResult struct {
	Phase       setback.Phase        `json:"phase"`
	HandNumber  int                  `json:"hand_number"`
	Scores      [2]int               `json:"scores"`
	Actions     []setback.AutoAction `json:"actions,omitempty"`
	HandsPlayed int                  `json:"hands_played,omitempty"`
	Winner      *setback.Team        `json:"winner,omitempty"`
}

func (r *Room) autoResult() AutoResult {
	g := r.game
	res := AutoResult{Phase: g.Phase, HandNumber: g.HandNumber, Scores: g.Scores}
	if w, ok := g.Winner(); ok {
		res.Winner = &w
	}
	return res
}

// stalled keeps the moves an auto-play run made before err stopped it.
func (r *Room) stalled(t *txn, err error) error {
	t.partial = true
	t.emit(r.stateEvents(EventStateChanged)...)
	return err
}

// AutoPlay makes one random legal move for whoever is to act.
func (r *Room) AutoPlay(ctx context.Context) (AutoResult, []Event, error) {
	var res AutoResult
	evs, err := r.run(ctx, "AutoPlay", "", func(t *txn) error {
		if r.game == nil {
			return models.ErrGameNotStarted
		}
		a, ok, err := r.game.AutoPlay(r.rng)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no auto-play in %s: %w", r.game.Phase, models.ErrWrongPhase)
		}
		t.seat = a.Seat
		r.afterMove(t, a.Trick)
		t.emit(r.stateEvents(EventStateChanged)...)
		res = r.autoResult()
		res.Actions = []setback.AutoAction{a}
		return nil
	})
	return res, evs, err
}

// AutoCompleteBidding finishes the auction with random bids.
func (r *Room) AutoCompleteBidding(ctx context.Context) (AutoResult, []Event, error) {
	var res AutoResult
	evs, err := r.run(ctx, "AutoCompleteBidding", "", func(t *txn) error {
		if r.game == nil {
			return models.ErrGameNotStarted
		}
		actions, err := r.game.AutoCompleteBidding(r.rng)
		if err != nil {
			if len(actions) > 0 {
				res = r.autoResult()
				res.Actions = actions
				return r.stalled(t, err)
			}
			return err
		}
		t.emit(r.stateEvents(EventStateChanged)...)
		res = r.autoResult()
		res.Actions = actions
		return nil
	})
	return res, evs, err
}

// AutoCompleteHand plays the current hand to its score.
func (r *Room) AutoCompleteHand(ctx context.Context) (AutoResult, []Event, error) {
	var res AutoResult
	evs, err := r.run(ctx, "AutoCompleteHand", "", func(t *txn) error {
		if r.game == nil {
			return models.ErrGameNotStarted
		}
		actions, err := r.game.AutoCompleteHand(r.rng)
		for _, a := range actions {
			r.afterMove(t, a.Trick)
		}
		if err != nil {
			if len(actions) > 0 {
				res = r.autoResult()
				res.Actions = actions
				return r.stalled(t, err)
			}
			return err
		}
		t.emit(r.stateEvents(EventStateChanged)...)
		res = r.autoResult()
		res.Actions = actions
		return nil
	})
	return res, evs, err
}

// AutoCompleteGame plays whole hands until the game ends or maxHands hands
// have been played. Every finished hand is scored and recorded; individual
// tricks are not announced.
func (r *Room) AutoCompleteGame(ctx context.Context, maxHands int) (AutoResult, []Event, error) {
	if maxHands <= 0 || maxHands > MaxAutoHands {
		maxHands = MaxAutoHands
	}
	var res AutoResult
	evs, err := r.run(ctx, "AutoCompleteGame", "", func(t *txn) error {
		if r.game == nil {
			return models.ErrGameNotStarted
		}
		g := r.game
		if g.Phase == setback.PhaseGameOver {
			return fmt.Errorf("complete game in %s: %w", g.Phase, models.ErrWrongPhase)
		}
		played := 0
		for played < maxHands && g.Phase != setback.PhaseGameOver {
			n, err := g.AutoCompleteGame(r.rng, 1)
			if err != nil {
				res = r.autoResult()
				res.HandsPlayed = played
				return r.stalled(t, err)
			}
			played += n
			r.handDone(t)
		}
		t.emit(r.stateEvents(EventStateChanged)...)
		res = r.autoResult()
		res.HandsPlayed = played
		return nil
	})
	return res, evs, err
}
