// Package discord connects the club commands, the call tracker and the music
// player to a discordgo session.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/fcmerged/pitchbot/internal/calltracker"
	"github.com/fcmerged/pitchbot/internal/core"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessageReactions

// Bot is a Discord bot
type Bot struct {
	dg       *discordgo.Session
	registry *core.Registry
	tracker  *calltracker.Tracker
	// guildID pins command registration to one guild when set.
	guildID string
	log     zerolog.Logger

	mu sync.Mutex
	// registered holds the definition hash last pushed to each guild.
	registered map[string]string
}

// NewSession creates an unopened session. Adapters built on it can be handed
// to commands before the gateway connects.
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = intents
	dg.StateEnabled = true
	dg.State.TrackVoice = true
	dg.State.TrackMembers = true
	dg.State.TrackChannels = true
	return dg, nil
}

func New(dg *discordgo.Session, registry *core.Registry, tracker *calltracker.Tracker, guildID string, logger zerolog.Logger) *Bot {
	return &Bot{
		dg:         dg,
		registry:   registry,
		tracker:    tracker,
		guildID:    guildID,
		log:        logger.With().Str("component", "discord").Logger(),
		registered: make(map[string]string),
	}
}

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onVoiceStateUpdate)
	b.dg.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.onInteractionCreate(ctx, s, i)
	})

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("❎ Shutdown signal received. Cleaning up...")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("✅ Discord bot is running")
}

// onGuildCreate fires for every guild at startup and after reconnects. It
// seeds the call tracker with whoever is already in voice and makes sure the
// guild has the current command set.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Unavailable {
		return
	}
	log := b.log.With().Str("guild_id", g.ID).Logger()

	opened := b.tracker.Seed(g.ID, presences(g.Guild))
	log.Info().Str("guild", g.Name).Int("seeded", opened).Msg("guild available")

	if b.guildID != "" && b.guildID != g.ID {
		return
	}
	if err := b.registerCommands(g.ID); err != nil {
		log.Error().Err(err).Msg("failed to register commands")
	}
}

func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	ev := voiceEvent(v, func(channelID string) string {
		ch, err := s.State.Channel(channelID)
		if err != nil {
			return ""
		}
		return ch.Name
	})
	if ev.BeforeChannelID == ev.AfterChannelID {
		return
	}
	if err := b.tracker.Handle(ev); err != nil {
		b.log.Error().Err(err).
			Str("guild_id", ev.GuildID).
			Str("user_id", ev.UserID).
			Msg("failed to record voice session")
	}
}

func (b *Bot) onInteractionCreate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()

	cctx := &core.Context{
		Ctx:       ctx,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Invoker:   invoker(i.Interaction),
		Options:   core.NewOptions(data.Options, data.Resolved),
		Reply:     &interactionResponder{s: s, i: i.Interaction},
		Log:       b.log,
	}
	if err := b.registry.Dispatch(cctx, data.Name); err != nil {
		b.log.Warn().Err(err).Str("command", data.Name).Msg("interaction not handled")
	}
}

// registerCommands overwrites the guild's commands in one call, skipping the
// request when the definitions have not changed since the last push.
func (b *Bot) registerCommands(guildID string) error {
	defs := b.registry.SlashDefinitions()
	sum := hashCommands(defs)

	b.mu.Lock()
	same := b.registered[guildID] == sum
	b.mu.Unlock()
	if same {
		return nil
	}

	appID, err := b.appID()
	if err != nil {
		return err
	}
	if _, err := b.dg.ApplicationCommandBulkOverwrite(appID, guildID, defs); err != nil {
		return fmt.Errorf("bulk overwrite: %w", err)
	}

	b.mu.Lock()
	b.registered[guildID] = sum
	b.mu.Unlock()
	b.log.Info().Str("guild_id", guildID).Int("commands", len(defs)).Msg("slash commands registered")
	return nil
}

func (b *Bot) appID() (string, error) {
	if b.dg.State.User != nil && b.dg.State.User.ID != "" {
		return b.dg.State.User.ID, nil
	}
	user, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("fetch self: %w", err)
	}
	return user.ID, nil
}

// invoker names the member behind an interaction: server nickname, then
// global display name, then username.
func invoker(i *discordgo.Interaction) core.Invoker {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return core.Invoker{ID: i.Member.User.ID, DisplayName: displayName(i.Member, i.Member.User)}
	case i.User != nil:
		return core.Invoker{ID: i.User.ID, DisplayName: displayName(nil, i.User)}
	}
	return core.Invoker{}
}

func displayName(m *discordgo.Member, u *discordgo.User) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u == nil {
		return ""
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
