package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jordieb/landy/internal/config"
	"github.com/jordieb/landy/internal/transcript"
)

// Custom ID layout: "fb:up:<question-id>", "fb:down:<question-id>" for the
// buttons and "fbmodal:<question-id>" for the commentary modal.
const (
	buttonPrefixUp   = "fb:up:"
	buttonPrefixDown = "fb:down:"
	modalPrefix      = "fbmodal:"
)

func feedbackButtons(questionID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Emoji:    &discordgo.ComponentEmoji{Name: "👍"},
					Style:    discordgo.SuccessButton,
					CustomID: buttonPrefixUp + questionID,
				},
				discordgo.Button{
					Emoji:    &discordgo.ComponentEmoji{Name: "👎"},
					Style:    discordgo.DangerButton,
					CustomID: buttonPrefixDown + questionID,
				},
			},
		},
	}
}

func (b *Bot) handleFeedbackButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, buttonPrefixUp):
		b.recordPositive(s, i, strings.TrimPrefix(customID, buttonPrefixUp))
	case strings.HasPrefix(customID, buttonPrefixDown):
		b.openCommentaryModal(s, i, strings.TrimPrefix(customID, buttonPrefixDown))
	}
}

func (b *Bot) recordPositive(s *discordgo.Session, i *discordgo.InteractionCreate, questionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), config.DatabaseTimeout)
	defer cancel()

	if err := b.qa.Feedback(ctx, questionID, true, nil); err != nil {
		b.logger.Error("Failed to record feedback", "question_id", questionID, "error", err)
		b.respondEphemeral(s, i, feedbackErrorMessage(err))
		return
	}
	b.respondEphemeral(s, i, "Thanks for the thumbs up! 🎉")
}

// openCommentaryModal asks the thumbs-down voter what went wrong before
// anything is persisted. The vote is recorded on modal submit.
func (b *Bot) openCommentaryModal(s *discordgo.Session, i *discordgo.InteractionCreate, questionID string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: modalPrefix + questionID,
			Title:    "Sorry about that!",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "commentary",
							Label:       "Feedback? Resource links welcome!",
							Style:       discordgo.TextInputParagraph,
							Placeholder: "What was wrong with the answer?",
							Required:    false,
							MaxLength:   1000,
						},
					},
				},
			},
		},
	})
	if err != nil {
		b.logger.Error("Failed to open feedback modal", "error", err)
	}
}

func (b *Bot) handleFeedbackModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	if !strings.HasPrefix(data.CustomID, modalPrefix) {
		return
	}
	questionID := strings.TrimPrefix(data.CustomID, modalPrefix)

	var commentary *string
	if row, ok := data.Components[0].(*discordgo.ActionsRow); ok && len(row.Components) > 0 {
		if input, ok := row.Components[0].(*discordgo.TextInput); ok {
			if text := strings.TrimSpace(input.Value); text != "" {
				commentary = &text
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DatabaseTimeout)
	defer cancel()

	if err := b.qa.Feedback(ctx, questionID, false, commentary); err != nil {
		b.logger.Error("Failed to record feedback", "question_id", questionID, "error", err)
		b.respondEphemeral(s, i, feedbackErrorMessage(err))
		return
	}
	b.respondEphemeral(s, i, "Thanks for letting me know. I'll do better next time!")
}

func feedbackErrorMessage(err error) string {
	if errors.Is(err, transcript.ErrUnknownQuestion) {
		return "I can't find that answer anymore, so the feedback has nowhere to go. Sorry!"
	}
	return "Something went sideways saving your feedback. Please try again later."
}
