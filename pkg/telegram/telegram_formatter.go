package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/utils"
)

// FormatTriageResultMessage formats a single evaluation outcome into a
// Markdown string for Telegram.
func FormatTriageResultMessage(headline string, result *dto.PipelineResult) string {
	var builder strings.Builder

	if result.Accepted {
		builder.WriteString("✅ *Material Headline Accepted*\n\n")
	} else {
		builder.WriteString(fmt.Sprintf("🚫 *Headline Rejected* (%s)\n\n", result.RejectionStage))
	}

	builder.WriteString(fmt.Sprintf("📰 %s\n", headline))
	builder.WriteString(fmt.Sprintf("🆔 `%s`\n\n", result.EvaluationID))

	for _, stage := range result.Stages {
		var stageIcon string
		if stage.Passed {
			stageIcon = "🟢"
		} else {
			stageIcon = "🔴"
		}
		builder.WriteString(fmt.Sprintf("%s *%s*", stageIcon, stage.Stage))
		if stage.Confidence != nil {
			builder.WriteString(fmt.Sprintf(" (%.2f)", *stage.Confidence))
		}
		if stage.ReasonCode != "" {
			builder.WriteString(fmt.Sprintf(" - %s", stage.ReasonCode))
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	if result.Recipe != nil {
		builder.WriteString(fmt.Sprintf("🎯 *Recipe:* %s (P%d)\n", result.Recipe.Recipe, result.Recipe.Priority))
		if len(result.Recipe.MaterialTickers) > 0 {
			builder.WriteString(fmt.Sprintf("📌 *Tickers:* %s\n", strings.Join(result.Recipe.MaterialTickers, ", ")))
		}
		if len(result.Recipe.OverrideCategories) > 0 {
			builder.WriteString(fmt.Sprintf("🧩 *Overrides:* %s\n", strings.Join(result.Recipe.OverrideCategories, ", ")))
		}
	}

	builder.WriteString(fmt.Sprintf("\n🕒 %s\n", utils.PrettyDate(result.EvaluatedAt)))
	return builder.String()
}

// FormatTriageDigestForTelegram formats a batch of accepted headlines into
// multiple Markdown strings for Telegram, ensuring each message does not
// exceed the specified maximum length.
func FormatTriageDigestForTelegram(entries []dto.TriageDigestEntry) []string {
	if len(entries) == 0 {
		return []string{"No material headlines in this digest window."}
	}

	const maxLen = 4090
	var messages []string
	var currentMessage strings.Builder
	part := 1

	// Helper function to start a new message part with the correct header
	startNewPart := func() {
		currentMessage.Reset()
		var header string
		if part == 1 {
			header = "📰 *Material Headline Digest* 📰\n\n"
		} else {
			header = fmt.Sprintf("---*Material Headline Digest Part %d*---\n\n", part)
		}
		currentMessage.WriteString(header)
	}

	// Start the first part
	startNewPart()

	for _, e := range entries {
		var entryBuilder strings.Builder
		entryBuilder.WriteString(fmt.Sprintf("📈 *- - - - - %s - - - - -*\n", strings.Join(e.MaterialTickers, ", ")))
		entryBuilder.WriteString(fmt.Sprintf("💬 %s\n", e.Headline))

		var recipeIcon string
		switch e.Recipe {
		case dto.RecipeQuantitativeCatalyst:
			recipeIcon = "💲"
		case dto.RecipeStrategicCatalyst:
			recipeIcon = "♟️"
		default:
			recipeIcon = "🧩"
		}
		entryBuilder.WriteString(fmt.Sprintf("%s *Recipe:* %s (P%d)\n", recipeIcon, e.Recipe, e.Priority))
		entryBuilder.WriteString(fmt.Sprintf("🕒 %s\n", utils.PrettyDate(e.EvaluatedAt)))

		// Add a newline for spacing between entries
		entryBuilder.WriteString("\n")

		entryString := entryBuilder.String()

		// Check if adding the new entry exceeds the max length. We assume a single entry doesn't exceed the limit.
		if currentMessage.Len()+len(entryString) > maxLen {
			// Finalize the current message and add it to the slice
			messages = append(messages, currentMessage.String())

			// Start a new part
			part++
			startNewPart()
		}

		// Add the entry to the current message
		currentMessage.WriteString(entryString)
	}

	// Add the final message part to the slice
	messages = append(messages, currentMessage.String())

	return messages
}

func FormatErrorAlertMessage(time time.Time, errType string, errMsg string, data string) string {
	return fmt.Sprintf(`📛 [ERROR ALERT]
%s
🔧 %s
⚠️ %s

📄 Data: %s
`, utils.PrettyDate(time), errType, errMsg, data)
}
