package core

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/config"
)

var ErrPanic = errors.New("command panicked")

type Middleware func(Command) Command

// Recorder counts handled commands by outcome.
type Recorder interface {
	CommandHandled(command, outcome string)
}

const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// Default is the chain every club command runs behind.
func Default(rec Recorder) []Middleware {
	return []Middleware{
		WithRecover(),
		WithCommandLogger(rec),
		WithErrorReply(),
		WithGuildOnly(rec),
	}
}

// WithGuildOnly rejects invocations from direct messages.
func WithGuildOnly(rec Recorder) Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx *Context) error {
				if ctx.GuildID == "" {
					if rec != nil {
						rec.CommandHandled(cmd.Name(), OutcomeRejected)
					}
					return ctx.Fail("This command can only be used in a server.")
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithRecover turns a panic into ErrPanic so one bad command cannot take the
// event loop down.
func WithRecover() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx *Context) (err error) {
				defer func() {
					if r := recover(); r != nil {
						ctx.Log.Error().
							Str("command", cmd.Name()).
							Bytes("stack", debug.Stack()).
							Msgf("panic: %v", r)
						err = fmt.Errorf("%w: /%s: %v", ErrPanic, cmd.Name(), r)
					}
				}()
				return cmd.Run(ctx)
			},
		}
	}
}

// WithErrorReply converts an error into a reply. Missing settings are shown
// as they are; anything else becomes a generic message.
func WithErrorReply() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx *Context) error {
				err := cmd.Run(ctx)
				if err == nil {
					return nil
				}
				if errors.Is(err, config.ErrMissingSetting) {
					return ctx.Fail("Bot is not configured properly: " + err.Error())
				}
				return ctx.Fail(fmt.Sprintf("Something went wrong while running /%s.", cmd.Name()))
			},
		}
	}
}

// WithCommandLogger logs every execution with its duration and outcome.
func WithCommandLogger(rec Recorder) Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx *Context) error {
				start := time.Now()
				err := cmd.Run(ctx)

				outcome := OutcomeOK
				ev := ctx.Log.Info()
				if err != nil {
					outcome = OutcomeError
					ev = ctx.Log.Error().Err(err)
				}
				ev.Str("command", cmd.Name()).
					Str("guild_id", ctx.GuildID).
					Str("channel_id", ctx.ChannelID).
					Str("user_id", ctx.Invoker.ID).
					Str("user", ctx.Invoker.DisplayName).
					Dur("took", time.Since(start)).
					Msg("command handled")

				if rec != nil {
					rec.CommandHandled(cmd.Name(), outcome)
				}
				return err
			},
		}
	}
}

type wrappedCommand struct {
	Command
	wrap func(ctx *Context) error
}

func (w *wrappedCommand) Run(ctx *Context) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
