package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/citysafe/crimebot/internal/infra/llm/chatgpt"
)

type stubChatClient struct {
	reply string
	err   error
	calls int
	last  chatgpt.ChatCompletionRequest
}

func (c *stubChatClient) CreateChatCompletion(_ context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	c.calls++
	c.last = req
	if c.err != nil {
		return chatgpt.ChatCompletionResponse{}, c.err
	}
	var resp chatgpt.ChatCompletionResponse
	resp.Choices = []struct {
		Message chatgpt.Message `json:"message"`
	}{
		{Message: chatgpt.Message{Role: "assistant", Content: c.reply}},
	}
	return resp, nil
}

func predictionResponse() Response {
	return Response{
		Kind: KindPrediction,
		Prediction: &Prediction{
			Probability: 0.423,
			Explanation: "deterministic explanation with 42.3%",
		},
	}
}

func TestRenderReplyWithoutClient(t *testing.T) {
	svc, _ := newTestService()

	reply := svc.renderReply(context.Background(), predictionResponse())
	require.Equal(t, "deterministic explanation with 42.3%", reply)
}

func TestRenderReplyUsesClient(t *testing.T) {
	client := &stubChatClient{reply: "There is a 42.3% chance of crime tonight."}
	svc, _ := newTestService()
	svc.client = client
	svc.cfg.Model = "gpt-test"

	reply := svc.renderReply(context.Background(), predictionResponse())

	require.Equal(t, "There is a 42.3% chance of crime tonight.", reply)
	require.Equal(t, 1, client.calls)
	require.Equal(t, "gpt-test", client.last.Model)
	require.Len(t, client.last.Messages, 2)
	require.Contains(t, client.last.Messages[1].Content, "42.3%")
	require.Contains(t, client.last.Messages[1].Content, "exact percentage value")
}

func TestRenderReplyFallsBackOnClientError(t *testing.T) {
	svc, _ := newTestService()
	svc.client = &stubChatClient{err: errors.New("rate limited")}

	reply := svc.renderReply(context.Background(), predictionResponse())
	require.Equal(t, "deterministic explanation with 42.3%", reply)
}

func TestRenderReplyFallsBackOnEmptyChoice(t *testing.T) {
	svc, _ := newTestService()
	svc.client = &stubChatClient{reply: "   "}

	reply := svc.renderReply(context.Background(), predictionResponse())
	require.Equal(t, "deterministic explanation with 42.3%", reply)
}

func TestBuildProseContextForMissingInfo(t *testing.T) {
	got := buildProseContext(Response{
		Kind: KindMissingInfo,
		MissingInfo: &MissingInfo{
			MissingFields:    []string{FieldDate, FieldTime},
			FollowUpQuestion: "when?",
		},
	})

	require.Contains(t, got, "DO NOT MAKE A PREDICTION")
	require.Contains(t, got, "date, time")
	require.Contains(t, got, "when?")
}

func TestBuildProseContextForOracleError(t *testing.T) {
	got := buildProseContext(Response{
		Kind:        KindOracleError,
		OracleError: &OracleError{Message: "model is not loaded"},
	})

	require.Contains(t, got, "model is unavailable")
	require.Contains(t, got, "model is not loaded")
	require.Contains(t, got, "Never invent a probability")
}
