package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/infrastructure/llm"
)

type modelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type Client struct {
	runtime modelInvoker
	modelID string
}

// New loads the default AWS credential chain for region.
func New(ctx context.Context, region, modelID string) (*Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Client{runtime: bedrockruntime.NewFromConfig(awsCfg), modelID: modelID}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	payload, err := c.requestBody(prompt, opts)
	if err != nil {
		return "", fmt.Errorf("marshal bedrock request: %w", err)
	}

	resp, err := c.runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invoke model: %w", err)
	}

	reply, err := c.replyText(resp.Body)
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", fmt.Errorf("bedrock invoke model: %w", llm.ErrEmptyCompletion)
	}
	return reply, nil
}

func (c *Client) requestBody(prompt string, opts domain.CompletionOptions) ([]byte, error) {
	switch {
	case c.isAnthropicModel():
		return json.Marshal(map[string]any{
			"prompt":               "\n\nHuman: " + prompt + "\n\nAssistant:",
			"max_tokens_to_sample": opts.MaxTokens,
			"temperature":          opts.Temperature,
		})
	case c.isTitanModel():
		return json.Marshal(map[string]any{
			"inputText": prompt,
			"textGenerationConfig": map[string]any{
				"maxTokenCount": opts.MaxTokens,
				"temperature":   opts.Temperature,
			},
		})
	default:
		return json.Marshal(map[string]any{
			"prompt":      prompt,
			"max_tokens":  opts.MaxTokens,
			"temperature": opts.Temperature,
		})
	}
}

func (c *Client) replyText(body []byte) (string, error) {
	switch {
	case c.isAnthropicModel():
		var resp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("decode claude response: %w", err)
		}
		return strings.TrimSpace(resp.Completion), nil
	case c.isTitanModel():
		var resp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("decode titan response: %w", err)
		}
		if len(resp.Results) == 0 {
			return "", nil
		}
		return strings.TrimSpace(resp.Results[0].OutputText), nil
	default:
		var resp struct {
			Output     string `json:"output"`
			Text       string `json:"text"`
			Generation string `json:"generation"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("decode bedrock response: %w", err)
		}
		for _, candidate := range []string{resp.Output, resp.Text, resp.Generation} {
			if strings.TrimSpace(candidate) != "" {
				return strings.TrimSpace(candidate), nil
			}
		}
		return "", nil
	}
}

func (c *Client) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

func (c *Client) isTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
