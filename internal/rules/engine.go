// Package rules provides the YAML-based merchant and keyword tables used for
// merchant canonicalization and category classification.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rumor-ml/commons.systems/smsparse/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

// MerchantEntry maps a case-insensitive substring to a canonical display name.
type MerchantEntry struct {
	Match   string `yaml:"match"`
	Display string `yaml:"display"`
}

// CategoryBlock holds the merchant entries and fallback keywords for one
// category. Blocks must appear in the fixed priority order
// (domain.CategoryPriority) so tie-breaks stay deterministic.
type CategoryBlock struct {
	Category  string          `yaml:"category"`
	Merchants []MerchantEntry `yaml:"merchants"`
	Keywords  []string        `yaml:"keywords"`
}

// RuleSet represents the top-level YAML structure.
type RuleSet struct {
	Categories []CategoryBlock `yaml:"categories"`
}

// MerchantMatch is the result of a known-merchant lookup.
type MerchantMatch struct {
	Display  string
	Category domain.Category
}

// Engine performs merchant and keyword matching. It is immutable after
// construction and safe for concurrent use.
type Engine struct {
	blocks []CategoryBlock // In fixed priority order; match/keyword strings lowercased.
}

// NewEngine creates an engine from YAML table data.
// Validation enforces the invariants classification depends on: known
// categories, no duplicates, blocks in fixed priority order, non-empty
// match strings. Match and keyword strings are lowercased at load so the
// hot path only lowercases the input text.
func NewEngine(data []byte) (*Engine, error) {
	var ruleSet RuleSet
	if err := yaml.Unmarshal(data, &ruleSet); err != nil {
		return nil, fmt.Errorf("failed to parse YAML rules (check syntax, indentation, and field names): %w", err)
	}

	if len(ruleSet.Categories) == 0 {
		return nil, fmt.Errorf("rules must define at least one category block")
	}

	priorityIndex := make(map[domain.Category]int, len(domain.CategoryPriority))
	for i, c := range domain.CategoryPriority {
		priorityIndex[c] = i
	}

	lastIndex := -1
	for i, block := range ruleSet.Categories {
		cat := domain.Category(block.Category)
		if !domain.ValidateCategory(cat) {
			return nil, fmt.Errorf("block %d: invalid category %q", i, block.Category)
		}
		if cat == domain.CategoryOther {
			return nil, fmt.Errorf("block %d: %q is the implicit fallback and cannot have a block", i, block.Category)
		}

		idx := priorityIndex[cat]
		if idx <= lastIndex {
			return nil, fmt.Errorf("block %d (%s): category blocks must follow the fixed priority order %v", i, block.Category, domain.CategoryPriority)
		}
		lastIndex = idx

		if len(block.Merchants) == 0 && len(block.Keywords) == 0 {
			return nil, fmt.Errorf("block %d (%s): must define merchants or keywords", i, block.Category)
		}

		for j, m := range block.Merchants {
			if strings.TrimSpace(m.Match) == "" {
				return nil, fmt.Errorf("block %d (%s): merchant %d has empty match", i, block.Category, j)
			}
			if strings.TrimSpace(m.Display) == "" {
				return nil, fmt.Errorf("block %d (%s): merchant %q has empty display name", i, block.Category, m.Match)
			}
		}
		for j, kw := range block.Keywords {
			if strings.TrimSpace(kw) == "" {
				return nil, fmt.Errorf("block %d (%s): keyword %d is empty", i, block.Category, j)
			}
		}
	}

	// Normalize into a private copy so the engine owns its tables.
	blocks := make([]CategoryBlock, len(ruleSet.Categories))
	for i, block := range ruleSet.Categories {
		normalized := CategoryBlock{Category: block.Category}
		for _, m := range block.Merchants {
			normalized.Merchants = append(normalized.Merchants, MerchantEntry{
				Match:   strings.ToLower(strings.TrimSpace(m.Match)),
				Display: strings.TrimSpace(m.Display),
			})
		}
		for _, kw := range block.Keywords {
			normalized.Keywords = append(normalized.Keywords, strings.ToLower(strings.TrimSpace(kw)))
		}
		blocks[i] = normalized
	}

	return &Engine{blocks: blocks}, nil
}

// LoadEmbedded loads the embedded rules.yaml tables.
func LoadEmbedded() (*Engine, error) {
	engine, err := NewEngine(embeddedRules)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rules (possible binary corruption): %w", err)
	}
	return engine, nil
}

// LoadFromFile loads tables from a filesystem path.
func LoadFromFile(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	engine, err := NewEngine(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %q: %w", path, err)
	}
	return engine, nil
}

// CanonicalMerchant scans text for any known merchant name and returns the
// canonical display name and category of the first hit. Blocks are scanned
// in priority order, entries in table order, so "uber eats" (Food) is found
// before "uber" (Travel).
func (e *Engine) CanonicalMerchant(text string) (MerchantMatch, bool) {
	lower := strings.ToLower(text)
	for _, block := range e.blocks {
		for _, m := range block.Merchants {
			if strings.Contains(lower, m.Match) {
				return MerchantMatch{
					Display:  m.Display,
					Category: domain.Category(block.Category),
				}, true
			}
		}
	}
	return MerchantMatch{}, false
}

// Classify guesses a category for a transaction.
// Lookup order: (1) merchant name against the merchant tables; (2) raw text
// against each category's keyword list; (3) Other. The first matching
// category in priority order wins.
func (e *Engine) Classify(merchant, rawText string) domain.Category {
	if merchant != "" {
		lowerMerchant := strings.ToLower(merchant)
		for _, block := range e.blocks {
			for _, m := range block.Merchants {
				if strings.Contains(lowerMerchant, m.Match) {
					return domain.Category(block.Category)
				}
			}
		}
	}

	lowerText := strings.ToLower(rawText)
	for _, block := range e.blocks {
		for _, kw := range block.Keywords {
			if strings.Contains(lowerText, kw) {
				return domain.Category(block.Category)
			}
		}
	}

	return domain.CategoryOther
}

// Blocks returns a copy of the category blocks for inspection/debugging.
func (e *Engine) Blocks() []CategoryBlock {
	result := make([]CategoryBlock, len(e.blocks))
	for i, block := range e.blocks {
		result[i] = CategoryBlock{
			Category:  block.Category,
			Merchants: append([]MerchantEntry(nil), block.Merchants...),
			Keywords:  append([]string(nil), block.Keywords...),
		}
	}
	return result
}
