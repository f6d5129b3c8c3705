package ai

import (
	"context"
	"log"
	"sync"
)

// GenerateWithModels fans the same prompt out to every model concurrently
// and joins on all of them. Failed models are logged and left out of the
// result map; a missing key means "that model produced nothing", never an
// error for the batch as a whole.
func (c *GatewayClient) GenerateWithModels(
	ctx context.Context,
	request GenerateRequest,
	models []string,
	logger *log.Logger,
) map[string]GenerateResult {
	results := make(map[string]GenerateResult, len(models))
	if len(models) == 0 {
		return results
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, model := range models {
		if model == "" {
			continue
		}
		wg.Add(1)
		go func(model string) {
			defer wg.Done()

			perModel := request
			perModel.Model = model
			result, err := c.Generate(ctx, perModel)
			if err != nil {
				if logger != nil {
					logger.Printf("multi-model generate failed model=%s err=%v", model, err)
				}
				return
			}

			mu.Lock()
			results[model] = result
			mu.Unlock()
		}(model)
	}
	wg.Wait()

	return results
}
