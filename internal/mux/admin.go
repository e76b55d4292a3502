package mux

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"destinydeck-server/pkg/character"

	"github.com/gorilla/mux"
)

type adminPostCharacterIDRequest struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// note: this requires game-master auth
func (m *Mux) postAdminCharacterID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// ParseInt will always succeed because of the route pattern
		characterID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		c, err := character.GetCharacterByID(r.Context(), characterID)
		if err != nil {
			if err == sql.ErrNoRows {
				writeJSONError(w, http.StatusNotFound, nil)
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		var payload adminPostCharacterIDRequest
		if !decodeRequest(w, r, &payload) {
			return
		}

		switch payload.Key {
		case "password":
			value, ok := payload.Value.(string)
			if !ok {
				writeJSONError(w, http.StatusBadRequest, errors.New("password must be a string"))
				return
			}

			if err := c.SetPassword(value); err != nil {
				writeJSONError(w, http.StatusInternalServerError, err)
				return
			}
		case "isGameMaster":
			value, ok := payload.Value.(bool)
			if !ok {
				writeJSONError(w, http.StatusBadRequest, errors.New("isGameMaster must be a boolean"))
				return
			}

			if err := c.SetIsGameMaster(r.Context(), value); err != nil {
				writeJSONError(w, http.StatusInternalServerError, err)
				return
			}
		default:
			writeJSONError(w, http.StatusBadRequest, errors.New("bad payload"))
			return
		}

		writeJSON(w, http.StatusOK, statusOK)
	}
}
