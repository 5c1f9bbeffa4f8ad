package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"github.com/kirillkom/resume-router/internal/infrastructure/llm"
)

func TestReplyTextJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Domain: "), genai.Text("IT\n")}},
		}},
	}
	assert.Equal(t, "Domain: IT", replyText(resp))
}

func TestReplyTextWithoutCandidates(t *testing.T) {
	assert.Empty(t, replyText(nil))
	assert.Empty(t, replyText(&genai.GenerateContentResponse{}))
	assert.Empty(t, replyText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}

func TestStatusErrorMapsGoogleAPIError(t *testing.T) {
	err := statusError(fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota exceeded"}))

	var statusErr *llm.StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "quota exceeded")
}
