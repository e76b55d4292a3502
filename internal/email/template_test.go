package email

import (
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	a := assert.New(t)
	tpl, err := NewTemplate("testdata")
	a.NoError(err)

	out, err := tpl.RenderTemplate("challenge_invite.html", map[string]string{
		"ChallengerName": "Dusty Gambler",
		"InviteURL":      "https://destinydeck.dev/invite/abc123",
	})
	a.NoError(err)
	a.Contains(out, "<p>Dusty Gambler has called you out.</p>")
	a.Contains(out, `<a href="https://destinydeck.dev/invite/abc123">`)

	_, err = tpl.RenderTemplate("no-such-template.html", nil)
	a.Error(err)
}

func TestSendChallengeInvite(t *testing.T) {
	a := assert.New(t)
	client, err := NewClient("Destiny Deck <no-reply@destinydeck.dev>", "no-reply@destinydeck.dev", "user", "pw", "localhost:587")
	a.NoError(err)

	tpl, err := NewTemplate("testdata")
	a.NoError(err)

	var gotTo []string
	var gotMsg string
	defaultSender = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	a.NoError(client.SendChallengeInvite(tpl, "rival@destinydeck.dev", "Dusty Gambler", "https://destinydeck.dev/invite/abc123"))
	a.Equal([]string{"rival@destinydeck.dev"}, gotTo)
	a.Contains(gotMsg, "Subject: Dusty Gambler has challenged you to a duel")
	a.Contains(gotMsg, "has called you out")
}
