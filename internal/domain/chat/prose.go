package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/citysafe/crimebot/internal/infra/llm/chatgpt"
	"github.com/citysafe/crimebot/pkg/metrics"
)

// renderReply produces the conversational text for a turn. Without a chat
// client the deterministic template text is the reply; with one, the LLM
// rewords it under strict instructions to preserve the exact values.
func (s *service) renderReply(ctx context.Context, resp Response) string {
	deterministic := deterministicReply(resp)
	if s.client == nil {
		return deterministic
	}

	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		Messages: []chatgpt.Message{
			{Role: "system", Content: s.systemPrompt()},
			{Role: "user", Content: buildProseContext(resp)},
		},
	})
	if err != nil {
		s.logger.Warn("prose generation failed, using deterministic reply", "error", err)
		return deterministic
	}
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		s.logger.Warn("prose generation returned no content, using deterministic reply")
		return deterministic
	}

	usage := metrics.TokenUsage{
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		TotalTokens:      completion.Usage.TotalTokens,
	}
	s.logger.Debug("prose generation complete",
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"total_tokens", usage.TotalTokens)
	return strings.TrimSpace(completion.Choices[0].Message.Content)
}

func deterministicReply(resp Response) string {
	switch resp.Kind {
	case KindMissingInfo:
		return resp.MissingInfo.FollowUpQuestion
	case KindPrediction:
		return resp.Prediction.Explanation
	case KindWeeklyForecast:
		return resp.Weekly.Format()
	case KindOracleError:
		return "Crime prediction is unavailable: " + resp.OracleError.Message
	default:
		return ""
	}
}

func (s *service) systemPrompt() string {
	base := strings.TrimSpace(s.cfg.Prompt)
	if base == "" {
		base = "You are a helpful public-safety assistant reporting crime risk predictions."
	}
	return base
}

// buildProseContext frames the structured result for the LLM. The
// instructions exist so the prose layer can never invent or rescale a
// probability: the deterministic strings are the single source of truth.
func buildProseContext(resp Response) string {
	var b strings.Builder
	b.WriteString("### Crime Prediction Context:\n")

	switch resp.Kind {
	case KindMissingInfo:
		b.WriteString("IMPORTANT: DO NOT MAKE A PREDICTION. Required parameters are missing.\n\n")
		fmt.Fprintf(&b, "Missing information: %s\n", strings.Join(resp.MissingInfo.MissingFields, ", "))
		fmt.Fprintf(&b, "Follow-up needed: %s\n\n", resp.MissingInfo.FollowUpQuestion)
		b.WriteString("Do not make up any crime probabilities. Ask the user for the missing information.\n")
		return b.String()

	case KindOracleError:
		b.WriteString("IMPORTANT: DO NOT MAKE A PREDICTION. The prediction model is unavailable.\n\n")
		fmt.Fprintf(&b, "Error: %s\n", resp.OracleError.Message)
		b.WriteString("Tell the user that crime prediction is currently unavailable. Never invent a probability.\n")
		return b.String()

	case KindWeeklyForecast:
		b.WriteString(resp.Weekly.Format())
		b.WriteString("\n\nPresent this weekly forecast conversationally, keeping every percentage exactly as given.\n")
		return b.String()

	case KindPrediction:
		fmt.Fprintf(&b, "Crime probability: %.1f%% (IMPORTANT: always present this exact percentage value in your response)\n\n", resp.Prediction.Probability*100)
		fmt.Fprintf(&b, "%s\n\n", resp.Prediction.Explanation)
	}

	b.WriteString("IMPORTANT INSTRUCTIONS:\n")
	b.WriteString("1. When reporting the probability in your response, always use the exact percentage value provided above.\n")
	b.WriteString("2. Never convert to a different scale or format.\n")
	b.WriteString("3. If any parameters are missing, ask for them instead of providing a prediction.\n")
	b.WriteString("4. Never make up crime probabilities - only use the exact values provided.\n")
	return b.String()
}
