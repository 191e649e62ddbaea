package discord

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/core"
)

// interactionResponder answers one application command interaction.
type interactionResponder struct {
	s *discordgo.Session
	i *discordgo.Interaction

	mu       sync.Mutex
	deferred bool
	replied  bool
}

func (r *interactionResponder) Defer(ephemeral bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deferred || r.replied {
		return nil
	}

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{},
	}
	if ephemeral {
		resp.Data.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := r.s.InteractionRespond(r.i, resp); err != nil {
		return fmt.Errorf("defer interaction: %w", err)
	}
	r.deferred = true
	return nil
}

func (r *interactionResponder) Send(reply core.Reply) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var flags discordgo.MessageFlags
	if reply.Ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	switch {
	case r.replied:
		msg, err := r.s.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{
			Content: reply.Content,
			Embeds:  reply.Embeds,
			Flags:   flags,
		})
		if err != nil {
			return "", fmt.Errorf("followup: %w", err)
		}
		return msg.ID, nil

	case r.deferred:
		embeds := reply.Embeds
		if embeds == nil {
			embeds = []*discordgo.MessageEmbed{}
		}
		msg, err := r.s.InteractionResponseEdit(r.i, &discordgo.WebhookEdit{
			Content: &reply.Content,
			Embeds:  &embeds,
		})
		if err != nil {
			return "", fmt.Errorf("edit deferred response: %w", err)
		}
		r.replied = true
		return msg.ID, nil

	default:
		err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: reply.Content,
				Embeds:  reply.Embeds,
				Flags:   flags,
			},
		})
		if err != nil {
			return "", fmt.Errorf("respond: %w", err)
		}
		r.replied = true

		msg, err := r.s.InteractionResponse(r.i)
		if err != nil {
			return "", fmt.Errorf("fetch response: %w", err)
		}
		return msg.ID, nil
	}
}
