package engine

import (
	"github.com/chaturanga836/docstore/internal/common"
	"github.com/chaturanga836/docstore/internal/rules"
	"github.com/chaturanga836/docstore/internal/validation"
)

// LoadRules validates and parses text as the engine's active ruleset. Once
// loaded, every Put/Delete/Get/Query/CommitBatch is gated against it; an
// engine with no rules loaded allows everything.
func (e *Engine) LoadRules(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guard("load_rules", func() error {
		if err := validation.Rules(text); err != nil {
			return common.Wrap(common.ErrValidation, "load_rules", "", err)
		}
		rs, err := rules.Parse(text)
		if err != nil {
			return common.Wrap(common.ErrValidation, "load_rules", "", err)
		}
		e.rules = rs
		return nil
	})
}
