package ai

import "strings"

type TaskKind string

const (
	TaskStructure    TaskKind = "structure"
	TaskDesign       TaskKind = "design"
	TaskCode         TaskKind = "code"
	TaskContent      TaskKind = "content"
	TaskOptimization TaskKind = "optimization"
)

type ModelProfile struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

// ModelRouterConfig overrides the per-task model table. Empty entries keep
// the defaults; the mapping is configuration, not a decision procedure.
type ModelRouterConfig struct {
	StructureModel    string
	DesignModel       string
	CodeModel         string
	ContentModel      string
	OptimizationModel string
}

type ModelRouter struct {
	config ModelRouterConfig
}

func NewModelRouter(config ModelRouterConfig) *ModelRouter {
	if strings.TrimSpace(config.StructureModel) == "" {
		config.StructureModel = "anthropic/claude-3.5-sonnet"
	}
	if strings.TrimSpace(config.DesignModel) == "" {
		config.DesignModel = "openai/gpt-4o"
	}
	if strings.TrimSpace(config.CodeModel) == "" {
		config.CodeModel = "anthropic/claude-3.5-sonnet"
	}
	if strings.TrimSpace(config.ContentModel) == "" {
		config.ContentModel = "openai/gpt-4o-mini"
	}
	if strings.TrimSpace(config.OptimizationModel) == "" {
		config.OptimizationModel = "openai/gpt-4o-mini"
	}

	return &ModelRouter{config: config}
}

func (r *ModelRouter) Select(task TaskKind) ModelProfile {
	switch task {
	case TaskStructure:
		return ModelProfile{
			Model:           r.config.StructureModel,
			Temperature:     0.4,
			MaxOutputTokens: defaultMaxTokens,
		}
	case TaskDesign:
		return ModelProfile{
			Model:           r.config.DesignModel,
			Temperature:     defaultTemperature,
			MaxOutputTokens: defaultMaxTokens,
		}
	case TaskCode:
		return ModelProfile{
			Model:           r.config.CodeModel,
			Temperature:     0.2,
			MaxOutputTokens: defaultMaxTokens,
		}
	case TaskContent:
		return ModelProfile{
			Model:           r.config.ContentModel,
			Temperature:     defaultTemperature,
			MaxOutputTokens: 2000,
		}
	case TaskOptimization:
		return ModelProfile{
			Model:           r.config.OptimizationModel,
			Temperature:     0.3,
			MaxOutputTokens: 1500,
		}
	default:
		return ModelProfile{
			Model:           r.config.ContentModel,
			Temperature:     defaultTemperature,
			MaxOutputTokens: 2000,
		}
	}
}
