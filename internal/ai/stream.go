package ai

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const streamDoneSentinel = "[DONE]"

// ChunkHandler receives each incremental text fragment as it arrives.
type ChunkHandler func(chunk string)

// GenerateStream issues a streaming completion and decodes the
// server-sent-event response line by line, invoking onChunk per fragment.
// The [DONE] sentinel or connection close both count as normal completion.
// The accumulated text is returned so callers do not have to re-join chunks.
func (c *GatewayClient) GenerateStream(
	ctx context.Context,
	request GenerateRequest,
	onChunk ChunkHandler,
) (GenerateResult, error) {
	encoded, err := c.encodePayload(request, true)
	if err != nil {
		return GenerateResult{}, err
	}

	httpRequest, cancel, err := c.newRequest(ctx, encoded)
	if err != nil {
		return GenerateResult{}, err
	}
	defer cancel()
	httpRequest.Header.Set("Accept", "text/event-stream")

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return GenerateResult{}, fmt.Errorf("gateway timeout: %w", err)
		}
		return GenerateResult{}, fmt.Errorf("gateway transport error: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 4096))
		return GenerateResult{}, newGatewayError(httpResponse.StatusCode, body)
	}

	var (
		accumulated strings.Builder
		modelID     string
	)

	scanner := bufio.NewScanner(httpResponse.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == streamDoneSentinel {
			break
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// Malformed events are skipped, not fatal; the stream decides
			// completion, not individual chunks.
			continue
		}
		if event.Model != "" {
			modelID = event.Model
		}
		for _, choice := range event.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			accumulated.WriteString(choice.Delta.Content)
			if onChunk != nil {
				onChunk(choice.Delta.Content)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return GenerateResult{}, err
		}
		// Connection close mid-stream terminates the stream; whatever text
		// arrived is the completion.
	}

	text := strings.TrimSpace(accumulated.String())
	if text == "" {
		return GenerateResult{}, errors.New("gateway stream without text output")
	}

	return GenerateResult{
		Text:    text,
		ModelID: firstNonEmpty(modelID, request.Model),
	}, nil
}

type streamEvent struct {
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}
