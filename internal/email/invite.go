package email

import "fmt"

// SendChallengeInvite emails an invite link for a challenge
func (c *Client) SendChallengeInvite(tpl *Template, to, challengerName, inviteURL string) error {
	msg, err := tpl.RenderTemplate("challenge_invite.html", map[string]string{
		"ChallengerName": challengerName,
		"InviteURL":      inviteURL,
	})
	if err != nil {
		return err
	}

	return c.SendSimple(to, fmt.Sprintf("%s has challenged you to a duel", challengerName), msg)
}
