package llm

import "fmt"

// Engines holds the configured hint engines keyed by name. Vision and
// speech-to-text always go through OpenAI; only the text hint is
// switchable.
type Engines struct {
	byName []HintEngine
	def    HintEngine
}

func NewEngines(def HintEngine, extra ...HintEngine) *Engines {
	return &Engines{byName: append([]HintEngine{def}, extra...), def: def}
}

// Hint returns the engine for name, or the default when name is empty.
func (e *Engines) Hint(name string) (HintEngine, error) {
	if name == "" {
		return e.def, nil
	}
	for _, eng := range e.byName {
		if eng.Name() == name {
			return eng, nil
		}
	}
	return nil, fmt.Errorf("unknown llm engine: %s", name)
}
