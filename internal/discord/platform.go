package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

// Platform moves members through the REST API. It implements voice.Platform.
type Platform struct {
	s *discordgo.Session
}

func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{s: s}
}

func (p *Platform) MoveMember(ctx context.Context, guildID, userID, channelID string) error {
	dest := channelID
	return statusError(p.s.GuildMemberMove(guildID, userID, &dest, discordgo.WithContext(ctx)))
}

// restStatus exposes the HTTP status of a Discord REST failure so the retry
// layer can tell rate limits and server errors from permanent ones.
type restStatus struct {
	err  *discordgo.RESTError
	code int
}

func (e *restStatus) Error() string   { return e.err.Error() }
func (e *restStatus) Unwrap() error   { return e.err }
func (e *restStatus) StatusCode() int { return e.code }

func statusError(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return &restStatus{err: rest, code: rest.Response.StatusCode}
	}
	return err
}
