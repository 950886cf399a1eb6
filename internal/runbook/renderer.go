package runbook

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
	"github.com/dsaidinesh/adsynth-backedn/pkg/errors"
)

//go:embed templates/*.md templates/*.tmpl
var templateFS embed.FS

type pageData struct {
	ProductName     string
	PlatformTitle   string
	Script          string
	PlatformSection string
	Budget          string
}

// Renderer produces the markdown production guide for a finished script.
type Renderer struct {
	page     *template.Template
	sections map[domain.Platform]string
	budget   string
}

func NewRenderer() (*Renderer, error) {
	page, err := template.ParseFS(templateFS, "templates/runbook.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse runbook template: %w", err)
	}

	sections := make(map[domain.Platform]string, len(domain.AllPlatforms))
	for _, platform := range domain.AllPlatforms {
		content, err := templateFS.ReadFile("templates/" + string(platform) + ".md")
		if err != nil {
			return nil, fmt.Errorf("load runbook section %s: %w", platform, err)
		}
		sections[platform] = string(content)
	}

	budget, err := templateFS.ReadFile("templates/budget.md")
	if err != nil {
		return nil, fmt.Errorf("load runbook budget section: %w", err)
	}

	return &Renderer{page: page, sections: sections, budget: string(budget)}, nil
}

// Render returns the runbook markdown. Unknown platforms get the general guide.
func (r *Renderer) Render(platform domain.Platform, script string, product domain.ProductInfo) (string, error) {
	name := strings.TrimSpace(product.Name)
	if name == "" {
		return "", errors.NewValidationError("product name is required for a runbook", "product_name", product.Name)
	}

	platform = platform.OrGeneral()

	var buf bytes.Buffer
	err := r.page.Execute(&buf, pageData{
		ProductName:     name,
		PlatformTitle:   util.Capitalize(string(platform)),
		Script:          script,
		PlatformSection: r.sections[platform],
		Budget:          r.budget,
	})
	if err != nil {
		return "", fmt.Errorf("render runbook: %w", err)
	}
	return buf.String(), nil
}

// FileName is the artifact name for a product's runbook on platform.
func FileName(platform domain.Platform, productName string) string {
	return fmt.Sprintf("runbook_%s_%s.md", platform.OrGeneral(), util.Slugify(productName))
}
