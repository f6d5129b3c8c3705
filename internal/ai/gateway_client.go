package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type GatewayClientConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	SiteURL    string
	AppName    string
}

// GatewayClient talks to an OpenAI-chat-completion-compatible gateway. It
// performs exactly one attempt per call: fallback and degradation live in
// the artifact builder, not here.
type GatewayClient struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	siteURL    string
	appName    string
}

func NewGatewayClient(config GatewayClientConfig) *GatewayClient {
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = "https://openrouter.ai/api/v1"
	}
	if config.Timeout <= 0 {
		config.Timeout = 45 * time.Second
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	if strings.TrimSpace(config.AppName) == "" {
		config.AppName = "LeadForge"
	}

	return &GatewayClient{
		apiKey:     strings.TrimSpace(config.APIKey),
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		timeout:    config.Timeout,
		httpClient: config.HTTPClient,
		siteURL:    strings.TrimSpace(config.SiteURL),
		appName:    strings.TrimSpace(config.AppName),
	}
}

func (c *GatewayClient) Available() bool {
	return c.apiKey != ""
}

func (c *GatewayClient) Generate(ctx context.Context, request GenerateRequest) (GenerateResult, error) {
	encoded, err := c.encodePayload(request, false)
	if err != nil {
		return GenerateResult{}, err
	}
	return c.callChatCompletions(ctx, encoded, request.Model)
}

func (c *GatewayClient) encodePayload(request GenerateRequest, stream bool) ([]byte, error) {
	if !c.Available() {
		return nil, ErrGatewayUnavailable
	}
	if strings.TrimSpace(request.Model) == "" {
		return nil, errors.New("model is required")
	}
	if strings.TrimSpace(request.Input) == "" {
		return nil, errors.New("input is required")
	}

	messages := make([]map[string]string, 0, 2)
	if strings.TrimSpace(request.Instructions) != "" {
		messages = append(messages, map[string]string{
			"role":    "system",
			"content": strings.TrimSpace(request.Instructions),
		})
	}
	messages = append(messages, map[string]string{
		"role":    "user",
		"content": request.Input,
	})

	options := request.Options
	if options.Temperature <= 0 {
		options.Temperature = defaultTemperature
	}
	if options.MaxOutputTokens <= 0 {
		options.MaxOutputTokens = defaultMaxTokens
	}

	payload := map[string]any{
		"model":       request.Model,
		"messages":    messages,
		"temperature": options.Temperature,
		"max_tokens":  options.MaxOutputTokens,
	}
	if options.TopP > 0 {
		payload["top_p"] = options.TopP
	}
	if options.FrequencyPenalty != 0 {
		payload["frequency_penalty"] = options.FrequencyPenalty
	}
	if options.PresencePenalty != 0 {
		payload["presence_penalty"] = options.PresencePenalty
	}
	if stream {
		payload["stream"] = true
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal gateway payload: %w", err)
	}
	return encoded, nil
}

func (c *GatewayClient) newRequest(ctx context.Context, payload []byte) (*http.Request, context.CancelFunc, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)

	httpRequest, err := http.NewRequestWithContext(
		timeoutCtx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(payload),
	)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("create gateway request: %w", err)
	}
	httpRequest.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Accept", "application/json")
	if c.siteURL != "" {
		httpRequest.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.appName != "" {
		httpRequest.Header.Set("X-Title", c.appName)
	}
	return httpRequest, cancel, nil
}

func (c *GatewayClient) callChatCompletions(
	ctx context.Context,
	payload []byte,
	requestedModel string,
) (GenerateResult, error) {
	httpRequest, cancel, err := c.newRequest(ctx, payload)
	if err != nil {
		return GenerateResult{}, err
	}
	defer cancel()

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return GenerateResult{}, fmt.Errorf("gateway timeout: %w", err)
		}
		return GenerateResult{}, fmt.Errorf("gateway transport error: %w", err)
	}
	defer httpResponse.Body.Close()

	body, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("read gateway body: %w", err)
	}

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return GenerateResult{}, newGatewayError(httpResponse.StatusCode, body)
	}

	var raw chatCompletionsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return GenerateResult{}, fmt.Errorf("decode gateway response: %w", err)
	}

	text := extractCompletionText(raw)
	if strings.TrimSpace(text) == "" {
		return GenerateResult{}, errors.New("gateway response without text output")
	}

	return GenerateResult{
		Text:    text,
		ModelID: firstNonEmpty(strings.TrimSpace(raw.Model), requestedModel),
		Usage: TokenUsage{
			InputTokens:  raw.Usage.PromptTokens,
			OutputTokens: raw.Usage.CompletionTokens,
			TotalTokens:  raw.Usage.TotalTokens,
		},
	}, nil
}

func newGatewayError(statusCode int, body []byte) *GatewayError {
	message := strings.TrimSpace(string(body))
	if len(message) > 700 {
		message = message[:700]
	}
	return &GatewayError{StatusCode: statusCode, Message: message}
}

type chatCompletionsResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content any    `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func extractCompletionText(response chatCompletionsResponse) string {
	if len(response.Choices) == 0 {
		return ""
	}
	content := response.Choices[0].Message.Content
	switch typed := content.(type) {
	case string:
		return strings.TrimSpace(typed)
	case []any:
		fragments := make([]string, 0, len(typed))
		for _, item := range typed {
			fragment, ok := item.(map[string]any)
			if !ok {
				continue
			}
			textValue, _ := fragment["text"].(string)
			if strings.TrimSpace(textValue) == "" {
				continue
			}
			fragments = append(fragments, strings.TrimSpace(textValue))
		}
		return strings.TrimSpace(strings.Join(fragments, "\n"))
	default:
		return ""
	}
}
