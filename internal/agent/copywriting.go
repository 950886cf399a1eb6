package agent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/prompt"
)

// CopywritingAgent writes the ad script for one platform.
type CopywritingAgent struct {
	*Base
}

func NewCopywritingAgent(base *Base) *CopywritingAgent {
	return &CopywritingAgent{Base: base}
}

// Write returns the generated script. When every backend fails the inline
// error message is returned as the script.
func (a *CopywritingAgent) Write(ctx context.Context, insights domain.Insights, product domain.ProductInfo, platform domain.Platform) string {
	platform = platform.OrGeneral()
	data := prompt.CopywritingData{
		Product:      productData(product),
		PainPoints:   insights.PainPoints,
		Language:     insights.Language,
		Topics:       insights.Topics,
		Summary:      string(insights.Summary),
		Instructions: prompt.CopyInstructions(platform),
	}

	text := a.render(prompt.TemplateCopywriting, data, func() string { return prompt.FallbackCopywriting(data) })
	script, ok := a.generateText(ctx, StageCopywriting, text)
	script = strings.TrimSpace(script)
	if !ok {
		a.logger.Error("Copywriting failed, keeping error text as script",
			zap.String("platform", platform.String()),
		)
		return script
	}

	a.logger.Info("Ad script written",
		zap.String("platform", platform.String()),
		zap.Int("chars", len(script)),
	)
	return script
}
