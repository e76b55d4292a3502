package mux

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"destinydeck-server/internal/config"
	"destinydeck-server/pkg/challenge"
	"destinydeck-server/pkg/character"
	"destinydeck-server/pkg/duel"

	"github.com/badoux/checkmail"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxTotalRounds = 9

type postChallengePayload struct {
	ChallengedID int64  `json:"challengedId"`
	Email        string `json:"email"`
	Type         string `json:"type"`
	Wager        int    `json:"wager"`
	TotalRounds  int    `json:"totalRounds"`
}

var validDuelTypes = map[duel.Type]bool{
	duel.TypeCasual: true,
	duel.TypeRanked: true,
	duel.TypeWager:  true,
}

func (m *Mux) postChallenge() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cp postChallengePayload
		if !decodeRequest(w, r, &cp) {
			return
		}

		duelType := duel.Type(cp.Type)
		if !validDuelTypes[duelType] {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("unknown duel type: %s", cp.Type))
			return
		}

		if cp.TotalRounds <= 0 || cp.TotalRounds%2 == 0 || cp.TotalRounds > maxTotalRounds {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("total rounds must be an odd number between 1 and %d", maxTotalRounds))
			return
		}

		if cp.Wager < 0 {
			writeJSONError(w, http.StatusBadRequest, errors.New("wager must be >= 0"))
			return
		}

		if duelType == duel.TypeWager && cp.Wager == 0 {
			writeJSONError(w, http.StatusBadRequest, errors.New("a wager duel requires a wager amount"))
			return
		}

		if duelType != duel.TypeWager && cp.Wager > 0 {
			writeJSONError(w, http.StatusBadRequest, errors.New("only a wager duel may carry a wager amount"))
			return
		}

		challenger := r.Context().Value(ctxCharacterKey).(*character.Character)
		if err := challenger.CanDuel(); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		if cp.ChallengedID == challenger.ID {
			writeJSONError(w, http.StatusBadRequest, errors.New("you cannot challenge yourself"))
			return
		}

		if cp.ChallengedID > 0 {
			if _, err := character.GetCharacterByID(r.Context(), cp.ChallengedID); err != nil {
				if err == sql.ErrNoRows {
					writeJSONError(w, http.StatusBadRequest, errors.New("challenged character does not exist"))
				} else {
					writeJSONError(w, http.StatusInternalServerError, err)
				}
				return
			}
		} else if cp.Email != "" {
			if err := checkmail.ValidateFormat(cp.Email); err != nil {
				writeJSONError(w, http.StatusBadRequest, errors.New("invalid email address"))
				return
			}
		}

		c, err := challenge.CreateChallenge(r.Context(), challenger.ID, cp.ChallengedID, duelType, cp.Wager, cp.TotalRounds)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		if cp.Email != "" {
			m.sendChallengeInvite(c, challenger.DisplayName, cp.Email)
		}

		writeJSON(w, http.StatusCreated, c)
	}
}

func (m *Mux) sendChallengeInvite(c *challenge.Challenge, challengerName, to string) {
	if m.email == nil {
		return
	}

	inviteURL := fmt.Sprintf("%s/invite/%s", config.Instance().Host, c.InviteToken)

	go func() {
		log := logrus.WithField("to", to).WithField("challenge", c.UUID)
		if err := m.email.SendChallengeInvite(m.emailTemplates, to, challengerName, inviteURL); err != nil {
			log.WithError(err).Error("could not send challenge invite")
		} else {
			log.Info("sent challenge invite")
		}
	}()
}

func (m *Mux) getChallenge() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		c := r.Context().Value(ctxCharacterKey).(*character.Character)
		notifications, err := challenge.PendingForCharacter(r.Context(), c.ID, offset, limit)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, notifications)
	}
}

func (m *Mux) getChallengeInviteToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := challenge.GetChallengeByInviteToken(r.Context(), mux.Vars(r)["token"])
		if err != nil {
			writeMaybeNotFoundError(w, err)
			return
		}

		if c.Status != duel.StatusPending || c.Expired() {
			writeJSONError(w, http.StatusNotFound, nil)
			return
		}

		writeJSON(w, http.StatusOK, c)
	}
}

func (m *Mux) getChallengeUUID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, r.Context().Value(ctxChallengeKey).(*challenge.Challenge))
	})
}

func (m *Mux) postChallengeUUIDAccept() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := r.Context().Value(ctxCharacterKey).(*character.Character)
		ch := r.Context().Value(ctxChallengeKey).(*challenge.Challenge)

		if err := c.CanDuel(); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		record, err := ch.Accept(r.Context(), c.ID)
		if err != nil {
			switch err {
			case challenge.ErrChallengeNotPending, challenge.ErrChallengeExpired:
				writeJSONError(w, http.StatusBadRequest, err)
			case challenge.ErrNotChallenged:
				writeJSONError(w, http.StatusForbidden, err)
			default:
				writeJSONError(w, http.StatusInternalServerError, err)
			}
			return
		}

		writeJSON(w, http.StatusCreated, record)
	})
}

func (m *Mux) postChallengeUUIDDecline() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := r.Context().Value(ctxCharacterKey).(*character.Character)
		ch := r.Context().Value(ctxChallengeKey).(*challenge.Challenge)

		if err := ch.Decline(r.Context(), c.ID); err != nil {
			switch err {
			case challenge.ErrChallengeNotPending:
				writeJSONError(w, http.StatusBadRequest, err)
			case challenge.ErrNotChallenged:
				writeJSONError(w, http.StatusForbidden, err)
			default:
				writeJSONError(w, http.StatusInternalServerError, err)
			}
			return
		}

		writeJSON(w, http.StatusOK, statusOK)
	})
}

func (m *Mux) challengeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ch, err := challenge.GetChallengeByUUID(r.Context(), mux.Vars(r)["uuid"])
		if err != nil {
			writeMaybeNotFoundError(w, err)
			return
		}

		c := r.Context().Value(ctxCharacterKey).(*character.Character)
		if ch.ChallengerID != c.ID && ch.ChallengedID != 0 && ch.ChallengedID != c.ID {
			writeJSONError(w, http.StatusForbidden, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxChallengeKey, ch)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}
