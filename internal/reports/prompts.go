package reports

import (
	"errors"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// PromptPair is the template pair for one report type: the system prompt sets
// the analyst persona, the user template carries the aggregated data. User
// templates use text/template placeholders.
type PromptPair struct {
	System string `koanf:"system"`
	User   string `koanf:"user"`
}

// Prompts holds all narrative templates. It is loaded once at startup,
// load-or-fail, and injected into the report service; nothing mutates it
// afterwards.
type Prompts struct {
	MarketShare          PromptPair        `koanf:"market_share"`
	AudienceSegmentation PromptPair        `koanf:"audience_segmentation"`
	EventMetrics         PromptPair        `koanf:"event_metrics"`
	FocusInstructions    map[string]string `koanf:"focus_instructions"`
}

// LoadPrompts reads and validates the prompt template file.
func LoadPrompts(path string) (*Prompts, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load prompts %s: %w", path, err)
	}

	var p Prompts
	if err := k.UnmarshalWithConf("", &p, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("parse prompts %s: %w", path, err)
	}

	for name, pair := range map[string]PromptPair{
		"market_share":          p.MarketShare,
		"audience_segmentation": p.AudienceSegmentation,
		"event_metrics":         p.EventMetrics,
	} {
		if pair.System == "" || pair.User == "" {
			return nil, fmt.Errorf("prompts %s: %w", name, errors.New("missing system or user template"))
		}
	}
	return &p, nil
}

// FocusInstruction returns the extra instruction for an event-report focus,
// or the empty string for an unknown focus.
func (p *Prompts) FocusInstruction(focus string) string {
	return p.FocusInstructions[focus]
}
