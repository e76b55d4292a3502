package mux

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"destinydeck-server/internal/config"
	"destinydeck-server/internal/email"
	"destinydeck-server/internal/jwt"
	"destinydeck-server/pkg/character"
	"destinydeck-server/pkg/room"

	gmux "github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type ctxKey int

const (
	ctxCharacterKey ctxKey = iota
	ctxChallengeKey
	ctxDuelKey
)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	config         muxConfig
	version        string
	recaptcha      recaptcha
	pitBoss        *room.PitBoss
	email          *email.Client
	emailTemplates *email.Template

	// store for testing purposes
	authRouter  *gmux.Router
	adminRouter *gmux.Router
}

type muxConfig struct {
	// characterCreateDelay is the minimum duration between two character create events from a single remote address
	characterCreateDelay time.Duration
}

// NewMux returns a new HTTP mux
func NewMux(version string) *Mux {
	pitBoss := room.NewPitBoss()
	pitBoss.StartShift()

	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		pitBoss: pitBoss,
		config: muxConfig{
			characterCreateDelay: time.Minute,
		},
		recaptcha: newRecaptcha(),
	}

	this.loadEmail()

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	this.adminRouter = this.authRouter.NewRoute().Subrouter()
	this.adminRouter.Use(this.adminMiddleware)

	const uuidPattern = "{uuid:(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}}"

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodPost).Path("/character").Handler(this.postCharacter())
		r.Methods(http.MethodPost).Path("/character/auth").Handler(this.postCharacterAuth())
		r.Methods(http.MethodGet).Path("/character/auth/{jwt:.*}").Handler(this.getCharacterAuthJWT())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		r.Methods(http.MethodPost).Path("/character/{id:[0-9]+}").Handler(this.postCharacterID())

		r.Methods(http.MethodGet).Path("/challenge").Handler(this.getChallenge())
		r.Methods(http.MethodPost).Path("/challenge").Handler(this.postChallenge())
		r.Methods(http.MethodGet).Path("/challenge/invite/{token}").Handler(this.getChallengeInviteToken())

		cr := r.PathPrefix("/challenge/" + uuidPattern).Subrouter()
		cr.Use(this.challengeMiddleware)

		cr.Methods(http.MethodGet).Path("").Handler(this.getChallengeUUID())
		cr.Methods(http.MethodPost).Path("/accept").Handler(this.postChallengeUUIDAccept())
		cr.Methods(http.MethodPost).Path("/decline").Handler(this.postChallengeUUIDDecline())

		r.Methods(http.MethodGet).Path("/duel").Handler(this.getDuel())

		dr := r.PathPrefix("/duel/" + uuidPattern).Subrouter()
		dr.Use(this.duelMiddleware)

		dr.Methods(http.MethodGet).Path("").Handler(this.getDuelUUID())
		dr.Methods(http.MethodGet).Path("/ws").Handler(this.getDuelUUIDWS())
	}

	// requires game-master access
	// depends on authMiddleware
	{
		r := this.adminRouter
		r.Methods(http.MethodGet).Path("/character").Handler(this.getCharacter())
		r.Methods(http.MethodPost).Path("/admin/character/{id:[0-9]+}").Handler(this.postAdminCharacterID())
	}

	return this
}

func (m *Mux) loadEmail() {
	cfg := config.Instance().Email
	if cfg.Host == "" {
		logrus.Warn("email is not configured; challenge invites will not be sent")
		return
	}

	client, err := email.NewClient(cfg.From, cfg.Sender, cfg.Username, cfg.Password, cfg.Host)
	if err != nil {
		logrus.WithError(err).Fatal("could not load email client")
	}

	templates, err := email.NewTemplate("./templates")
	if err != nil {
		logrus.WithError(err).Fatal("could not load email templates")
	}

	m.email = client
	m.emailTemplates = templates
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
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

		id, err := jwt.ValidUserID(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		c, err := character.GetCharacterByID(r.Context(), id)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxCharacterKey, c)
		w.Header().Set("DestinyDeck-UserID", strconv.FormatInt(c.ID, 10))
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// adminMiddleware requires authMiddleware to execute first
func (m *Mux) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := r.Context().Value(ctxCharacterKey).(*character.Character)
		if !c.IsGameMaster {
			writeJSONError(w, http.StatusForbidden, nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
