package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func staticDef(id string, priority int32) *ValidatorDefinition {
	return &ValidatorDefinition{
		ID:       id,
		Kind:     KindStatic,
		Enabled:  true,
		Priority: priority,
		Triggers: map[TriggerKind]struct{}{TriggerPreWrite: {}},
		Behavior: Behavior{TimeoutMS: 1000, OnTimeout: OnTimeoutWarning},
		KindConfig: StaticConfig{Command: "true"},
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(staticDef("v1", 5)))

	got := r.Get("v1")
	require.NotNil(t, got)
	require.Equal(t, int32(5), got.Priority)
}

func TestRegistryRejectsInvalidConfig(t *testing.T) {
	r := NewRegistry()
	def := staticDef("v1", 5)
	def.KindConfig = StaticConfig{Command: ""}

	err := r.Register(def)
	require.Error(t, err)
	require.Nil(t, r.Get("v1"))
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(staticDef("v1", 5)))
	require.True(t, r.Unregister("v1"))
	require.False(t, r.Unregister("v1"))
	require.Nil(t, r.Get("v1"))
}

func TestRegistrySetEnabled(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(staticDef("v1", 5)))
	require.True(t, r.SetEnabled("v1", false))
	require.False(t, r.Get("v1").Enabled)
	require.False(t, r.SetEnabled("missing", true))
}

func TestRegistryListStableOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(staticDef("c", 1)))
	require.NoError(t, r.Register(staticDef("a", 1)))
	require.NoError(t, r.Register(staticDef("b", 1)))

	list := r.List()
	require.Len(t, list, 3)
	require.Equal(t, "c", list[0].ID)
	require.Equal(t, "a", list[1].ID)
	require.Equal(t, "b", list[2].ID)
}

func TestRegistryInvariantTimeoutRequired(t *testing.T) {
	r := NewRegistry()
	def := staticDef("v1", 0)
	def.Behavior.TimeoutMS = 0
	require.Error(t, r.Register(def))
}

func TestRegistryInvariantAiCriticRequiresProviderAndPrompt(t *testing.T) {
	r := NewRegistry()
	def := &ValidatorDefinition{
		ID:         "critic",
		Kind:       KindAiCritic,
		Enabled:    true,
		Behavior:   Behavior{TimeoutMS: 1000},
		KindConfig: AiCriticConfig{Provider: "", SystemPrompt: ""},
	}
	require.Error(t, r.Register(def))
}

func TestRegistryInvariantCompositeRequiresChildren(t *testing.T) {
	r := NewRegistry()
	def := &ValidatorDefinition{
		ID:         "composite",
		Kind:       KindComposite,
		Enabled:    true,
		Behavior:   Behavior{TimeoutMS: 1000},
		KindConfig: CompositeConfig{},
	}
	require.Error(t, r.Register(def))
}
