package statement

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Rule maps a description pattern to a vendor category. Patterns are matched
// case-insensitively as regular expressions, so plain substrings work as-is
// and combined rules like `STRIPE.*Z\.AI` are possible.
type Rule struct {
	Category string `yaml:"category"`
	Pattern  string `yaml:"pattern"`
}

// DefaultRules is the reference rule set for AI/cloud vendor spend. Order is
// significant: combined rules come before any broader fallback because the
// first matching rule wins.
func DefaultRules() []Rule {
	return []Rule{
		{Category: "OpenRouter AI", Pattern: `OPENROUTER`},
		{Category: "Anthropic AI", Pattern: `ANTHROPIC`},
		{Category: "RunPod GPU", Pattern: `RUNPOD`},
		{Category: "Kie.ai", Pattern: `KIE\.AI|KIE AI`},
		{Category: "BudgieAI", Pattern: `BUDGIEAI|BUDGIE AI`},
		{Category: "DigitalOcean", Pattern: `DIGITALOCEAN`},
		{Category: "Z.AI Service", Pattern: `STRIPE.*Z\.AI`},
		{Category: "Google Cloud", Pattern: `GOOGLE.*CLOUD`},
	}
}

// LoadRules reads an ordered rule list from a YAML file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}

	return rules, nil
}

type compiledRule struct {
	category Category
	pattern  *regexp.Regexp
}

// Classifier tags transaction descriptions with vendor categories using an
// ordered rule list.
type Classifier struct {
	rules []compiledRule
}

// NewClassifier compiles the rules, preserving their order.
func NewClassifier(rules []Rule) (*Classifier, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		pattern, err := regexp.Compile(`(?i)` + rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling rule %q: %w", rule.Category, err)
		}
		compiled = append(compiled, compiledRule{
			category: Category(rule.Category),
			pattern:  pattern,
		})
	}
	return &Classifier{rules: compiled}, nil
}

// Classify returns the category of the first rule matching the description,
// or CategoryOther when no rule matches. It is a pure function of the
// description and the configured rule list.
func (c *Classifier) Classify(description string) Category {
	for _, rule := range c.rules {
		if rule.pattern.MatchString(description) {
			return rule.category
		}
	}
	return CategoryOther
}
