package mux

import (
	"errors"
	"net/http"
	"regexp"
	"sort"

	"recall-server/internal/jwt"
	"recall-server/pkg/playable"
	"recall-server/pkg/recall"
	"recall-server/pkg/room"
	"recall-server/pkg/statesink"
)

var matchIDRx = regexp.MustCompile(`^[A-Za-z0-9_-]{0,64}$`)

type postMatchPlayer struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type postMatchPayload struct {
	MatchID         string            `json:"matchId"`
	Players         []postMatchPlayer `json:"players"`
	ComputerPlayers int               `json:"computerPlayers"`
	Difficulty      recall.Difficulty `json:"difficulty"`
	// IncludeJokers defaults to the server configuration
	IncludeJokers *bool `json:"includeJokers"`
}

type postMatchResponse struct {
	MatchID  string            `json:"matchId"`
	Tokens   map[string]string `json:"tokens"`
	Snapshot *recall.Snapshot  `json:"snapshot"`
}

func (m *Mux) postMatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postMatchPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if !matchIDRx.MatchString(pp.MatchID) {
			writeJSONError(w, http.StatusBadRequest, errors.New("matchId must be at most 64 letters, digits, - or _"))
			return
		}

		specs := make([]recall.PlayerSpec, len(pp.Players))
		for i, p := range pp.Players {
			if p.ID == "" {
				writeJSONError(w, http.StatusBadRequest, errors.New("every player requires an id"))
				return
			}

			specs[i] = recall.PlayerSpec{ID: p.ID, DisplayName: p.DisplayName, IsHuman: true}
		}

		match, err := m.engine.CreateMatch(room.MatchOptions{
			MatchID:         pp.MatchID,
			Players:         specs,
			ComputerPlayers: pp.ComputerPlayers,
			Difficulty:      pp.Difficulty,
			IncludeJokers:   pp.IncludeJokers,
		})
		if err != nil {
			writeRoomError(w, err)
			return
		}

		tokens := make(map[string]string, len(specs))
		for _, spec := range specs {
			token, err := m.signer.Sign(match.ID(), spec.ID)
			if err != nil {
				writeJSONError(w, http.StatusInternalServerError, err)
				return
			}

			tokens[spec.ID] = token
		}

		writeJSON(w, http.StatusCreated, postMatchResponse{
			MatchID:  match.ID(),
			Tokens:   tokens,
			Snapshot: match.Snapshot(),
		})
	}
}

func (m *Mux) getMatches() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		games := m.engine.CurrentGamesMap()
		snaps := make([]*recall.Snapshot, 0, len(games))
		for _, snap := range games {
			snaps = append(snaps, snap)
		}

		// newest first
		sort.Slice(snaps, func(i, j int) bool {
			if !snaps[i].GameStartTime.Equal(snaps[j].GameStartTime) {
				return snaps[i].GameStartTime.After(snaps[j].GameStartTime)
			}

			return snaps[i].MatchID < snaps[j].MatchID
		})

		if offset > int64(len(snaps)) {
			offset = int64(len(snaps))
		}

		snaps = snaps[offset:]
		if len(snaps) > limit {
			snaps = snaps[:limit]
		}

		writeJSON(w, http.StatusOK, snaps)
	}
}

func (m *Mux) getMatchID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := r.Context().Value(ctxMatchKey).(*room.Match)
		writeJSON(w, http.StatusOK, match.Snapshot())
	}
}

// getMatchIDState returns the state as stored by the sink
func (m *Mux) getMatchIDState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := r.Context().Value(ctxMatchKey).(*room.Match)
		st, err := m.engine.Sink().Get(r.Context(), match.ID())
		if err != nil {
			if errors.Is(err, statesink.ErrNotSupported) {
				writeJSONError(w, http.StatusNotImplemented, nil)
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, st)
	}
}

func (m *Mux) getMatchIDView() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := r.Context().Value(ctxMatchKey).(*room.Match)
		seat := r.Context().Value(ctxSeatKey).(jwt.Seat)

		view, err := match.View(seat.PlayerID)
		if err != nil {
			writeRoomError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func (m *Mux) postMatchIDEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload playable.PayloadIn
		if !decodeRequest(w, r, &payload) {
			return
		}

		match := r.Context().Value(ctxMatchKey).(*room.Match)
		seat := r.Context().Value(ctxSeatKey).(jwt.Seat)

		if err := m.engine.SubmitFromSeat(match.ID(), seat.PlayerID, payload.Action, payload.AdditionalData); err != nil {
			writeRoomError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, playable.OK(payload.Context))
	}
}

// writeRoomError maps engine and round errors to a status code
// Anything the engine does not recognize was rejected by the round and is the caller's fault
func writeRoomError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrMatchExists):
		writeJSONError(w, http.StatusConflict, err)
	case errors.Is(err, room.ErrMatchNotFound), errors.Is(err, room.ErrMatchClosed):
		writeJSONError(w, http.StatusNotFound, err)
	case errors.Is(err, room.ErrStartFromSeat):
		writeJSONError(w, http.StatusForbidden, err)
	case errors.Is(err, room.ErrEngineClosed):
		writeJSONError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, room.ErrPanic):
		writeJSONError(w, http.StatusInternalServerError, err)
	default:
		writeJSONError(w, http.StatusBadRequest, err)
	}
}
