package mux

import (
	"context"
	"net/http"
	"strings"

	gmux "github.com/gorilla/mux"

	"recall-server/internal/jwt"
	"recall-server/pkg/room"
)

type ctxKey int

const (
	ctxSeatKey ctxKey = iota
	ctxMatchKey
)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	engine  *room.Engine
	signer  *jwt.Signer

	// store for testing purposes
	seatRouter *gmux.Router
}

// NewMux returns a new HTTP mux
func NewMux(version string, engine *room.Engine, signer *jwt.Signer) *Mux {
	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		engine:  engine,
		signer:  signer,
	}

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodPost).Path("/match").Handler(this.postMatch())
		r.Methods(http.MethodGet).Path("/match").Handler(this.getMatches())

		mr := r.PathPrefix("/match/{id:[A-Za-z0-9_-]+}").Subrouter()
		mr.Use(this.matchMiddleware)
		mr.Methods(http.MethodGet).Path("").Handler(this.getMatchID())
		mr.Methods(http.MethodGet).Path("/state").Handler(this.getMatchIDState())

		// requires a seat token for the match
		this.seatRouter = mr.NewRoute().Subrouter()
		this.seatRouter.Use(this.seatMiddleware)
		this.seatRouter.Methods(http.MethodGet).Path("/view").Handler(this.getMatchIDView())
		this.seatRouter.Methods(http.MethodPost).Path("/event").Handler(this.postMatchIDEvent())
		this.seatRouter.Methods(http.MethodGet).Path("/ws").Handler(this.getMatchIDWS())
	}

	return this
}

// matchMiddleware loads the match named in the path
func (m *Mux) matchMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		match, ok := m.engine.Match(gmux.Vars(r)["id"])
		if !ok {
			writeJSONError(w, http.StatusNotFound, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxMatchKey, match)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// seatMiddleware requires matchMiddleware to execute first
// The token must be bound to a seat of the match
func (m *Mux) seatMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		seat, err := m.signer.Validate(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		match := r.Context().Value(ctxMatchKey).(*room.Match)
		if seat.MatchID != match.ID() {
			writeJSONError(w, http.StatusForbidden, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxSeatKey, seat)
		w.Header().Set("Recall-Player-ID", seat.PlayerID)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}
