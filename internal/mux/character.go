package mux

import (
	"database/sql"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"destinydeck-server/internal/jwt"
	"destinydeck-server/internal/util"
	"destinydeck-server/pkg/character"

	"github.com/badoux/checkmail"
	"github.com/gorilla/mux"
)

type characterPayload struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Token       string `json:"token"`
}

// characterWithEmail should only be returned in a game-master context, or for the requesting character
type characterWithEmail struct {
	*character.Character
	Email string `json:"email"`
}

var validDisplayNameRx = regexp.MustCompile(`^[\p{L}\p{N} ]{0,40}\z`)
var statusOK = map[string]string{
	"status": "OK",
}

func (m *Mux) postCharacter() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cp characterPayload
		if !decodeRequest(w, r, &cp) {
			return
		}

		if err := m.recaptcha.Verify(cp.Token); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		if !validDisplayNameRx.MatchString(cp.DisplayName) {
			writeJSONError(w, http.StatusBadRequest, errors.New("display name must only contain letters, numbers, and spaces, and be 40 characters or less"))
			return
		}

		if err := checkmail.ValidateFormat(cp.Email); err != nil {
			writeJSONError(w, http.StatusBadRequest, errors.New("missing or invalid email address"))
			return
		}

		if len(cp.Password) < 6 {
			writeJSONError(w, http.StatusBadRequest, errors.New("password must be 6 or more characters"))
			return
		}

		addr := remoteAddr(r)
		at, err := character.LastCharacterCreatedAt(r.Context(), addr)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		if time.Since(at) < m.config.characterCreateDelay {
			writeJSONError(w, http.StatusBadRequest, errors.New("please wait before creating another character"))
			return
		}

		displayName := cp.DisplayName
		if displayName == "" {
			displayName = util.GetRandomName()
		}

		c, err := character.CreateCharacter(r.Context(), cp.Email, displayName, cp.Password, addr)
		if err != nil {
			if err == character.ErrDuplicateKey {
				writeJSONError(w, http.StatusBadRequest, errors.New("email address is already taken"))
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusCreated, &characterWithEmail{
			Character: c,
			Email:     c.Email,
		})
	}
}

type postCharacterIDPayload struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

func (m *Mux) postCharacterID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		// prevent a character from updating another character
		c := r.Context().Value(ctxCharacterKey).(*character.Character)
		if c.ID != characterID {
			writeJSONError(w, http.StatusForbidden, nil)
			return
		}

		var cp postCharacterIDPayload
		if !decodeRequest(w, r, &cp) {
			return
		}

		update := false

		if displayName := cp.DisplayName; displayName != "" {
			if !validDisplayNameRx.MatchString(displayName) {
				writeJSONError(w, http.StatusBadRequest, errors.New("display name must only contain letters, numbers, and spaces"))
				return
			}

			c.DisplayName = displayName
			update = true
		}

		if email := cp.Email; email != "" {
			if err := checkmail.ValidateFormat(email); err != nil {
				writeJSONError(w, http.StatusBadRequest, errors.New("invalid email address"))
				return
			}

			c.Email = email
			update = true
		}

		if update {
			if err := c.Save(r.Context()); err != nil {
				if err == character.ErrDuplicateKey {
					writeJSONError(w, http.StatusBadRequest, errors.New("email address is already taken"))
					return
				}

				writeJSONError(w, http.StatusInternalServerError, err)
				return
			}
		}

		writeJSON(w, http.StatusOK, statusOK)
	}
}

type postCharacterAuthResponse struct {
	JWT       string             `json:"jwt"`
	Character characterWithEmail `json:"character"`
}

func (m *Mux) postCharacterAuth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cp characterPayload
		if !decodeRequest(w, r, &cp) {
			return
		}

		c, err := character.GetCharacterByEmailAndPassword(r.Context(), cp.Email, cp.Password)
		if err != nil {
			if err == character.ErrInvalidEmailOrPassword {
				writeJSONError(w, http.StatusUnauthorized, err)
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		signedToken, err := jwt.Sign(c.ID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, postCharacterAuthResponse{
			JWT: signedToken,
			Character: characterWithEmail{
				Character: c,
				Email:     c.Email,
			},
		})
	}
}

func (m *Mux) getCharacterAuthJWT() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		signedToken := mux.Vars(r)["jwt"]
		userID, err := jwt.ValidUserID(signedToken)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, err)
			return
		}

		c, err := character.GetCharacterByID(r.Context(), userID)
		if err != nil {
			if err == sql.ErrNoRows {
				writeJSONError(w, http.StatusNotFound, errors.New("character does not exist"))
			} else {
				writeJSONError(w, http.StatusInternalServerError, err)
			}

			return
		}

		writeJSON(w, http.StatusOK, characterWithEmail{
			Character: c,
			Email:     c.Email,
		})
	}
}

// note: this requires game-master auth
func (m *Mux) getCharacter() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		characters, err := character.GetCharactersWithSearch(r.Context(), r.FormValue("search"), offset, limit)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		adminCharacters := make([]*characterWithEmail, len(characters))
		for i, c := range characters {
			adminCharacters[i] = &characterWithEmail{
				Character: c,
				Email:     c.Email,
			}
		}

		writeJSON(w, http.StatusOK, adminCharacters)
	}
}
