// Package bot adapts the QA pipeline to Discord: the /ask slash command,
// feedback buttons, and the thumbs-down commentary modal.
package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/jordieb/landy/internal/config"
	"github.com/jordieb/landy/internal/qa"
	"github.com/jordieb/landy/internal/upstream"
	"github.com/jordieb/landy/internal/vectordb"
	"github.com/jordieb/landy/pkg/logging"
)

const issueURL = "https://github.com/jordieb/landy/issues/new"

// Discord caps message content at 2000 characters.
const maxMessageLen = 2000

// Bot owns the Discord session and the slash-command lifecycle. All pipeline
// dependencies are injected; nothing is created at import time.
type Bot struct {
	session *discordgo.Session
	qa      qa.Service
	limiter *userRateLimiter
	guildID string
	logger  *logging.Logger

	registered *discordgo.ApplicationCommand
}

func New(token string, svc qa.Service, guildID string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}

	b := &Bot{
		session: session,
		qa:      svc,
		limiter: newUserRateLimiter(config.AskRatePerMinute, config.AskBurst),
		guildID: guildID,
		logger:  logging.NewLogger("Bot"),
	}

	session.Identify.Intents = discordgo.IntentsGuilds
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)

	return b, nil
}

// Start opens the gateway connection and registers the /ask command. With an
// empty guild id the command registers globally (propagation can take up to
// an hour on Discord's side).
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}

	cmd, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.guildID, &discordgo.ApplicationCommand{
		Name:        "ask",
		Description: "Ask Landy a DFO-related question",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "question",
				Description: "Your question about the game",
				Required:    true,
			},
		},
	})
	if err != nil {
		b.session.Close()
		return fmt.Errorf("registering /ask command: %w", err)
	}
	b.registered = cmd
	return nil
}

// Stop deregisters the command and closes the gateway connection.
func (b *Bot) Stop() error {
	if b.registered != nil {
		if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.guildID, b.registered.ID); err != nil {
			b.logger.Error("Failed to deregister command", "error", err)
		}
	}
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	b.logger.Info(s.State.User.Username + " is ready and online!")
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == "ask" {
			b.handleAsk(s, i)
		}
	case discordgo.InteractionMessageComponent:
		b.handleFeedbackButton(s, i)
	case discordgo.InteractionModalSubmit:
		b.handleFeedbackModal(s, i)
	}
}

func (b *Bot) handleAsk(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	question := i.ApplicationCommandData().Options[0].StringValue()

	if !b.limiter.Allow(user.ID) {
		b.respondEphemeral(s, i, "Easy there! Give me a minute to catch up before asking again.")
		return
	}

	// Defer first: the pipeline takes longer than Discord's 3s response
	// window.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		b.logger.Error("Failed to defer interaction", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.PipelineTimeout)
	defer cancel()

	answer, err := b.qa.Answer(ctx, question, user.ID)
	if err != nil {
		b.logger.Error("Failed to answer question", "asker", user.ID, "error", err)
		b.followUp(s, i, askErrorMessage(err), nil)
		return
	}

	content := fmt.Sprintf(
		"> Q: %s\n\nAnswer below:\n\n%s\n\n*Please give this answer feedback with the buttons below!*",
		question, answer.Text,
	)
	b.followUp(s, i, truncate(content), feedbackButtons(answer.QuestionID))
}

func (b *Bot) followUp(s *discordgo.Session, i *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content:    content,
		Components: components,
	})
	if err != nil {
		// The interaction may simply have expired; nothing left to do.
		b.logger.Error("Failed to send follow-up", "error", err)
	}
}

func (b *Bot) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("Failed to respond", "error", err)
	}
}

// askErrorMessage maps pipeline failures to user-facing text. The raw error
// never reaches the channel.
func askErrorMessage(err error) string {
	switch {
	case errors.Is(err, qa.ErrEmptyQuestion):
		return "I need an actual question to work with!"
	case errors.Is(err, vectordb.ErrNoIndex):
		return "My knowledge base isn't loaded right now. Please ping an admin to run the ingest job."
	case upstream.IsRetryable(err):
		return "The answer service is a bit overloaded. Please try again in a minute."
	default:
		return fmt.Sprintf(
			"You broke it >:[ good job.\n\nPlease create a new issue at %s describing what you asked.",
			issueURL,
		)
	}
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

func truncate(content string) string {
	if len(content) <= maxMessageLen {
		return content
	}
	cut := content[:maxMessageLen-3]
	// Avoid splitting a multi-byte rune at the boundary.
	for len(cut) > 0 && (cut[len(cut)-1]&0xC0) == 0x80 {
		cut = cut[:len(cut)-1]
	}
	if len(cut) > 0 && cut[len(cut)-1] >= 0xC0 {
		cut = cut[:len(cut)-1]
	}
	return cut + "..."
}
