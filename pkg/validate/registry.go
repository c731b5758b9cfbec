package validate

import (
	"fmt"
	"sync"

	"github.com/corevalidate/middleware/pkg/logger"
	"github.com/corevalidate/middleware/pkg/sliceutil"
)

var registryLog = logger.New("validate:registry")

// Registry is the in-memory table of validator definitions. Reads
// (List, Get, applicable-set computation) vastly outnumber writes
// (Register/Unregister/SetEnabled), so it is guarded by a RWMutex.
type Registry struct {
	mu         sync.RWMutex
	defs       map[string]*ValidatorDefinition
	order      []string
	nextOrder  int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*ValidatorDefinition)}
}

// Register installs def. A new id is appended to the List order, which
// breaks priority ties in the stable sort; a re-registered id keeps its
// place. Returns InvalidValidatorConfig
// if def fails the invariants in the data model and is not installed.
func (r *Registry) Register(def *ValidatorDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.ID]; !exists {
		r.order = append(r.order, def.ID)
	}
	def.registrationOrder = r.nextOrder
	r.nextOrder++
	r.defs[def.ID] = def

	registryLog.Printf("registered validator %s (kind=%s priority=%d)", def.ID, def.Kind, def.Priority)
	return nil
}

// Unregister removes def by id, returning whether it was present.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.defs[id]; !ok {
		return false
	}
	delete(r.defs, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// SetEnabled flips def.Enabled for id, returning whether id was found.
func (r *Registry) SetEnabled(id string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.defs[id]
	if !ok {
		return false
	}
	def.Enabled = enabled
	return true
}

// Get returns the definition for id, or nil if not registered.
func (r *Registry) Get(id string) *ValidatorDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defs[id]
}

// List returns every registered definition in registration order.
func (r *Registry) List() []*ValidatorDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ValidatorDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id])
	}
	return out
}

// validateDefinition enforces validator definition invariants at registration time.
func validateDefinition(def *ValidatorDefinition) error {
	if def == nil {
		return newError(ErrInvalidValidatorConfig, "definition is nil", nil)
	}
	if def.ID == "" {
		return newError(ErrInvalidValidatorConfig, "id is required", nil)
	}
	if def.Priority < 0 {
		return newError(ErrInvalidValidatorConfig, fmt.Sprintf("priority must be >= 0, got %d", def.Priority), nil)
	}
	if def.Behavior.TimeoutMS == 0 {
		return newError(ErrInvalidValidatorConfig, "timeout_ms must be > 0", nil)
	}

	switch cfg := def.KindConfig.(type) {
	case StaticConfig:
		if def.Kind != KindStatic {
			return newError(ErrInvalidValidatorConfig, "kind_config is StaticConfig but kind is not static", nil)
		}
		if cfg.Command == "" {
			return newError(ErrInvalidValidatorConfig, "static validator requires a command", nil)
		}
	case AiCriticConfig:
		if def.Kind != KindAiCritic {
			return newError(ErrInvalidValidatorConfig, "kind_config is AiCriticConfig but kind is not ai_critic", nil)
		}
		if cfg.Provider == "" || cfg.SystemPrompt == "" {
			return newError(ErrInvalidValidatorConfig, "ai_critic validator requires a provider and system_prompt", nil)
		}
	case CustomConfig:
		if def.Kind != KindCustom {
			return newError(ErrInvalidValidatorConfig, "kind_config is CustomConfig but kind is not custom", nil)
		}
		if cfg.Fn == nil {
			return newError(ErrInvalidValidatorConfig, "custom validator requires a function", nil)
		}
	case CompositeConfig:
		if def.Kind != KindComposite {
			return newError(ErrInvalidValidatorConfig, "kind_config is CompositeConfig but kind is not composite", nil)
		}
		if len(def.Children) == 0 {
			return newError(ErrInvalidValidatorConfig, "composite validator requires at least one child", nil)
		}
		if sliceutil.Contains(def.Children, def.ID) {
			return newError(ErrInvalidValidatorConfig, fmt.Sprintf("composite validator %q cannot list itself as a child", def.ID), nil)
		}
		seen := make([]string, 0, len(def.Children))
		for _, childID := range def.Children {
			if sliceutil.Contains(seen, childID) {
				return newError(ErrInvalidValidatorConfig, fmt.Sprintf("composite validator %q lists duplicate child id %q", def.ID, childID), nil)
			}
			seen = append(seen, childID)
		}
	default:
		return newError(ErrInvalidValidatorConfig, "kind_config is required", nil)
	}

	return nil
}
