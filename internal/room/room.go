package room

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/maingk/setback-game/internal/game/common"
	"github.com/maingk/setback-game/internal/game/setback"
	"github.com/maingk/setback-game/internal/models"
	"github.com/maingk/setback-game/internal/tracing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const maxNameLen = 32

// Recorder persists finished hands and games.
type Recorder interface {
	RecordHand(ctx context.Context, r models.HandResult) error
	RecordGame(ctx context.Context, r models.GameResult) error
}

type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Seat  int    `json:"seat"`
	Ready bool   `json:"ready"`
}

// Room is one table: up to four seated members and at most one game. Every
// intent runs under mu, so a game only ever sees one writer.
type Room struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	members [setback.PlayersPerGame]*Member
	game    *setback.Game
	closed  bool

	// outMu is taken before mu is released so publish sees intents in
	// commit order.
	outMu   sync.Mutex
	publish func(roomID string, evs []Event)

	rng *rand.Rand
	rec Recorder
	log logrus.FieldLogger
}

// New creates an empty room. A nil rng gets its own crypto-seeded generator;
// a nil rec skips persistence.
func New(id string, rng *rand.Rand, rec Recorder, log logrus.FieldLogger) *Room {
	if rng == nil {
		rng = common.NewRand()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Room{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		rng:       rng,
		rec:       rec,
		log:       log.WithField("room_id", id),
	}
}

// txn collects what an intent produced while the room lock was held.
type txn struct {
	seat   int
	events []Event
	hands  []models.HandResult
	games  []models.GameResult
	// partial marks a failed intent that still changed the game; what it
	// produced is published and recorded alongside the error.
	partial bool
}

func (t *txn) emit(evs ...Event) {
	t.events = append(t.events, evs...)
}

// run executes fn under the room lock inside a span, hands the events to
// the publish sink in commit order, then flushes recorder writes with both
// locks released. A failed intent yields a single rejected event addressed
// to playerID, after whatever a partial intent already produced.
func (r *Room) run(ctx context.Context, intent, playerID string, fn func(t *txn) error) ([]Event, error) {
	ctx, span := tracing.StartSpan(ctx, "room."+intent,
		attribute.String("room_id", r.ID),
		attribute.String("player_id", playerID),
	)

	t := &txn{seat: setback.NoSeat}
	r.mu.Lock()
	err := fn(t)
	r.outMu.Lock()
	r.mu.Unlock()

	span.SetAttributes(attribute.Int("seat", t.seat))
	log := r.log.WithFields(logrus.Fields{"intent": intent, "player_id": playerID, "seat": t.seat})
	if err != nil {
		log.WithError(err).Info("intent rejected")
		tracing.EndSpan(span, err)
		var evs []Event
		if t.partial {
			evs = append(evs, t.events...)
		}
		if playerID != "" {
			evs = append(evs, rejected(playerID, t.seat, err))
		}
		r.emitLocked(evs)
		r.outMu.Unlock()
		if t.partial {
			r.flush(ctx, log, t)
		}
		return evs, err
	}
	r.emitLocked(t.events)
	r.outMu.Unlock()

	r.flush(ctx, log, t)
	tracing.EndSpan(span, nil)
	return t.events, nil
}

// emitLocked requires outMu.
func (r *Room) emitLocked(evs []Event) {
	if r.publish != nil && len(evs) > 0 {
		r.publish(r.ID, evs)
	}
}

func (r *Room) flush(ctx context.Context, log logrus.FieldLogger, t *txn) {
	if r.rec == nil {
		return
	}
	for _, h := range t.hands {
		if err := r.rec.RecordHand(ctx, h); err != nil {
			log.WithError(err).WithField("hand_number", h.HandNumber).Error("record hand failed")
		}
	}
	for _, g := range t.games {
		if err := r.rec.RecordGame(ctx, g); err != nil {
			log.WithError(err).WithField("game_id", g.GameID).Error("record game failed")
		}
	}
}

func rejected(playerID string, seat int, err error) Event {
	return Event{Type: EventRejected, To: playerID, Payload: Rejection(seat, err)}
}

// Rejection describes err for the player whose intent failed. Errors with
// no known kind are not echoed.
func Rejection(seat int, err error) RejectedPayload {
	kind := models.ErrorKind(err)
	msg := err.Error()
	if kind == "internal" {
		msg = "internal error"
	}
	return RejectedPayload{Seat: seat, Kind: kind, Message: msg}
}

// Join seats name at the lowest free seat.
func (r *Room) Join(ctx context.Context, name string) (Member, []Event, error) {
	var joined Member
	evs, err := r.run(ctx, "Join", "", func(t *txn) error {
		if r.closed {
			return fmt.Errorf("room %s closed: %w", r.ID, models.ErrRoomNotFound)
		}
		name = strings.TrimSpace(name)
		if name == "" || utf8.RuneCountInString(name) > maxNameLen {
			return fmt.Errorf("name must be 1-%d characters: %w", maxNameLen, models.ErrInvalidName)
		}
		seat := r.freeSeat()
		if seat == setback.NoSeat {
			return fmt.Errorf("room %s: %w", r.ID, models.ErrRoomFull)
		}
		m := &Member{ID: uuid.NewString(), Name: name, Seat: seat}
		r.members[seat] = m
		t.seat = seat
		joined = *m
		t.emit(r.rosterEvent("joined", m.ID))
		return nil
	})
	return joined, evs, err
}

// Leave frees the player's seat. A game still in progress is abandoned and
// the room goes back to waiting for four ready players.
func (r *Room) Leave(ctx context.Context, playerID string) ([]Event, error) {
	return r.run(ctx, "Leave", playerID, func(t *txn) error {
		seat, err := r.seatOf(playerID)
		if err != nil {
			return err
		}
		t.seat = seat
		r.members[seat] = nil
		if r.game != nil {
			if r.game.Phase != setback.PhaseGameOver {
				r.log.WithFields(logrus.Fields{"game_id": r.game.ID, "hand_number": r.game.HandNumber}).Info("game abandoned")
			}
			r.game = nil
		}
		for _, m := range r.members {
			if m != nil {
				m.Ready = false
			}
		}
		t.emit(r.rosterEvent("left", playerID))
		return nil
	})
}

// SetReady toggles the player's ready flag. When all four seats are filled
// and ready a new game starts and its first hand is dealt.
func (r *Room) SetReady(ctx context.Context, playerID string) ([]Event, error) {
	return r.run(ctx, "SetReady", playerID, func(t *txn) error {
		seat, err := r.seatOf(playerID)
		if err != nil {
			return err
		}
		t.seat = seat
		if r.game != nil && r.game.Phase != setback.PhaseGameOver {
			return fmt.Errorf("ready during %s: %w", r.game.Phase, models.ErrWrongPhase)
		}
		m := r.members[seat]
		m.Ready = !m.Ready

		if !r.allReady() {
			t.emit(r.rosterEvent("ready", playerID))
			return nil
		}

		var seats [setback.PlayersPerGame]setback.Seat
		for i, m := range r.members {
			seats[i] = setback.Seat{ID: m.ID, Name: m.Name}
		}
		g := setback.NewGame(uuid.NewString(), r.ID, seats, r.rng)
		if err := g.StartNewHand(); err != nil {
			return err
		}
		r.game = g
		for _, m := range r.members {
			m.Ready = false
		}
		r.log.WithField("game_id", g.ID).Info("game started")
		t.emit(r.rosterEvent("game_started", playerID))
		t.emit(r.stateEvents(EventHandStarted)...)
		return nil
	})
}

func (r *Room) PlaceBid(ctx context.Context, playerID string, amount int) ([]Event, error) {
	return r.move(ctx, "PlaceBid", playerID, func(g *setback.Game, seat int) (*setback.CompletedTrick, error) {
		return nil, g.PlaceBid(seat, amount)
	})
}

func (r *Room) SelectTrump(ctx context.Context, playerID string, suit common.Suit) ([]Event, error) {
	return r.move(ctx, "SelectTrump", playerID, func(g *setback.Game, seat int) (*setback.CompletedTrick, error) {
		return nil, g.SelectTrump(seat, suit)
	})
}

func (r *Room) PlayCard(ctx context.Context, playerID string, index int) ([]Event, error) {
	return r.move(ctx, "PlayCard", playerID, func(g *setback.Game, seat int) (*setback.CompletedTrick, error) {
		return g.PlayCard(seat, index)
	})
}

// StartNextHand deals the next hand once the current one has been scored.
func (r *Room) StartNextHand(ctx context.Context, playerID string) ([]Event, error) {
	return r.run(ctx, "StartNextHand", playerID, func(t *txn) error {
		seat, err := r.seatOf(playerID)
		if err != nil {
			return err
		}
		t.seat = seat
		if r.game == nil {
			return models.ErrGameNotStarted
		}
		if r.game.Phase != setback.PhaseScoring {
			return fmt.Errorf("next hand in %s: %w", r.game.Phase, models.ErrWrongPhase)
		}
		if err := r.game.StartNewHand(); err != nil {
			return err
		}
		t.emit(r.stateEvents(EventHandStarted)...)
		return nil
	})
}

// move runs one seated player's game action and emits the resulting events.
func (r *Room) move(ctx context.Context, intent, playerID string, fn func(*setback.Game, int) (*setback.CompletedTrick, error)) ([]Event, error) {
	return r.run(ctx, intent, playerID, func(t *txn) error {
		seat, err := r.seatOf(playerID)
		if err != nil {
			return err
		}
		t.seat = seat
		if r.game == nil {
			return models.ErrGameNotStarted
		}
		trick, err := fn(r.game, seat)
		if err != nil {
			return err
		}
		r.afterMove(t, trick)
		t.emit(r.stateEvents(EventStateChanged)...)
		return nil
	})
}

// afterMove emits the trick a move resolved and, when it was the last
// trick, the hand and game results.
func (r *Room) afterMove(t *txn, trick *setback.CompletedTrick) {
	if trick == nil {
		return
	}
	t.emit(Event{Type: EventTrickResolved, Payload: TrickPayload{
		WinnerSeat:  trick.WinnerSeat,
		WinningTeam: trick.WinningTeam,
		TrickNumber: trick.TrickNumber,
		Plays:       append([]setback.Play(nil), trick.Plays...),
	}})
	if trick.TrickNumber == setback.TricksPerHand {
		r.handDone(t)
	}
}

// handDone announces and queues for recording the hand that just scored.
func (r *Room) handDone(t *txn) {
	g := r.game
	if g.LastHand == nil {
		return
	}
	hs := *g.LastHand
	hs.Awards = append([]setback.Award(nil), g.LastHand.Awards...)
	t.emit(Event{Type: EventHandScored, Payload: HandScoredPayload{HandNumber: g.HandNumber, Score: hs, Scores: g.Scores}})
	t.hands = append(t.hands, r.handResult())

	if winner, over := g.Winner(); over {
		t.emit(Event{Type: EventGameOver, Payload: GameOverPayload{GameID: g.ID, Winner: winner, Scores: g.Scores, Hands: g.HandNumber}})
		t.games = append(t.games, r.gameResult(winner))
		r.log.WithFields(logrus.Fields{"game_id": g.ID, "winner": winner.String()}).Info("game over")
	}
}

func (r *Room) handResult() models.HandResult {
	g := r.game
	awards, err := json.Marshal(g.LastHand.Awards)
	if err != nil {
		awards = []byte("[]")
	}
	return models.HandResult{
		GameID:      g.ID,
		RoomID:      r.ID,
		HandNumber:  g.HandNumber,
		Dealer:      g.Dealer,
		BidSeat:     g.HighBid.Seat,
		BidAmount:   g.HighBid.Amount,
		Trump:       string(g.Trump),
		TeamAPoints: g.HandPoints[setback.TeamA],
		TeamBPoints: g.HandPoints[setback.TeamB],
		TeamAScore:  g.Scores[setback.TeamA],
		TeamBScore:  g.Scores[setback.TeamB],
		AwardsJSON:  string(awards),
	}
}

func (r *Room) gameResult(winner setback.Team) models.GameResult {
	g := r.game
	type seated struct {
		Seat int          `json:"seat"`
		Name string       `json:"name"`
		Team setback.Team `json:"team"`
	}
	players := make([]seated, 0, setback.PlayersPerGame)
	for _, p := range g.Players {
		players = append(players, seated{Seat: p.Seat, Name: p.Name, Team: p.Team})
	}
	raw, err := json.Marshal(players)
	if err != nil {
		raw = []byte("[]")
	}
	return models.GameResult{
		GameID:      g.ID,
		RoomID:      r.ID,
		Winner:      winner.String(),
		TeamAScore:  g.Scores[setback.TeamA],
		TeamBScore:  g.Scores[setback.TeamB],
		HandsPlayed: g.HandNumber,
		PlayersJSON: string(raw),
	}
}

func (r *Room) freeSeat() int {
	for i, m := range r.members {
		if m == nil {
			return i
		}
	}
	return setback.NoSeat
}

func (r *Room) allReady() bool {
	for _, m := range r.members {
		if m == nil || !m.Ready {
			return false
		}
	}
	return true
}

func (r *Room) seatOf(playerID string) (int, error) {
	for i, m := range r.members {
		if m != nil && m.ID == playerID {
			return i, nil
		}
	}
	return setback.NoSeat, fmt.Errorf("player %q in room %s: %w", playerID, r.ID, models.ErrNotSeated)
}

func (r *Room) phase() setback.Phase {
	if r.game == nil {
		return setback.PhaseWaiting
	}
	return r.game.Phase
}

func (r *Room) roster() [setback.PlayersPerGame]*Member {
	var out [setback.PlayersPerGame]*Member
	for i, m := range r.members {
		if m != nil {
			c := *m
			out[i] = &c
		}
	}
	return out
}

func (r *Room) rosterEvent(reason, playerID string) Event {
	return Event{Type: EventRosterChanged, Payload: RosterPayload{
		RoomID:   r.ID,
		Reason:   reason,
		PlayerID: playerID,
		Members:  r.roster(),
		Phase:    r.phase(),
	}}
}

// stateEvents addresses each seated player's own snapshot to them and the
// public snapshot to spectators.
func (r *Room) stateEvents(typ EventType) []Event {
	var out []Event
	for seat, m := range r.members {
		if m == nil {
			continue
		}
		snap, err := r.game.PlayerSnapshot(seat)
		if err != nil {
			continue
		}
		out = append(out, Event{Type: typ, To: m.ID, Payload: snap})
	}
	return append(out, Event{Type: typ, Watchers: true, Payload: r.game.PublicSnapshot()})
}
