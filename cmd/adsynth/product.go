package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
)

// resolveProduct picks the product file, then the flag values, then the
// built-in sample. Flag values override fields loaded from a file.
func resolveProduct(path string, flags domain.ProductInfo) (domain.ProductInfo, error) {
	var product domain.ProductInfo
	switch {
	case path != "":
		loaded, err := loadProductFile(path)
		if err != nil {
			return domain.ProductInfo{}, err
		}
		product = mergeProduct(loaded, flags)
	case flags != (domain.ProductInfo{}):
		product = flags
	default:
		product = domain.DefaultProduct()
	}

	product = product.Normalize()
	if err := product.Validate(); err != nil {
		return domain.ProductInfo{}, err
	}
	return product, nil
}

func loadProductFile(path string) (domain.ProductInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ProductInfo{}, fmt.Errorf("failed to read product file: %w", err)
	}

	var product domain.ProductInfo
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &product)
	case ".json":
		err = json.Unmarshal(data, &product)
	default:
		return domain.ProductInfo{}, fmt.Errorf("unsupported product file type %q (use .json, .yaml or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return domain.ProductInfo{}, fmt.Errorf("failed to parse product file %s: %w", path, err)
	}
	return product, nil
}

func mergeProduct(base, override domain.ProductInfo) domain.ProductInfo {
	pick := func(current, next string) string {
		if strings.TrimSpace(next) != "" {
			return next
		}
		return current
	}
	base.Name = pick(base.Name, override.Name)
	base.Description = pick(base.Description, override.Description)
	base.TargetAudience = pick(base.TargetAudience, override.TargetAudience)
	base.UseCases = pick(base.UseCases, override.UseCases)
	base.Niche = pick(base.Niche, override.Niche)
	base.Keywords = pick(base.Keywords, override.Keywords)
	base.CampaignGoal = pick(base.CampaignGoal, override.CampaignGoal)
	return base
}
