package mux

import (
	"context"
	"database/sql"
	"net/http"

	"destinydeck-server/pkg/challenge"
	"destinydeck-server/pkg/character"

	"github.com/gorilla/mux"
)

// getDuel returns the character's duel history, or the active duel with
// ?active=true
func (m *Mux) getDuel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := r.Context().Value(ctxCharacterKey).(*character.Character)

		if r.FormValue("active") == "true" {
			record, err := challenge.ActiveDuelForCharacter(r.Context(), c.ID)
			if err != nil {
				if err == sql.ErrNoRows {
					writeJSONError(w, http.StatusNotFound, nil)
				} else {
					writeJSONError(w, http.StatusInternalServerError, err)
				}
				return
			}

			writeJSON(w, http.StatusOK, record)
			return
		}

		offset, limit, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		records, err := challenge.RecentDuelsForCharacter(r.Context(), c.ID, offset, limit)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, records)
	}
}

func (m *Mux) getDuelUUID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, r.Context().Value(ctxDuelKey).(*challenge.DuelRecord))
	})
}

func (m *Mux) duelMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record, err := challenge.GetDuelRecordByUUID(r.Context(), mux.Vars(r)["uuid"])
		if err != nil {
			writeMaybeNotFoundError(w, err)
			return
		}

		// only the duelists may see their table
		c := r.Context().Value(ctxCharacterKey).(*character.Character)
		if record.ChallengerID != c.ID && record.ChallengedID != c.ID {
			writeJSONError(w, http.StatusForbidden, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxDuelKey, record)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}
