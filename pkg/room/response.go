package room

import "destinydeck-server/pkg/game"

func newErrorResponse(ctx string, err error) *game.Response {
	return &game.Response{
		Key:     "error",
		Value:   err.Error(),
		Context: ctx,
	}
}
