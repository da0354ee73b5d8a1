package tabs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/tabstorm/internal/doc"
)

func TestDescribe(t *testing.T) {
	fx := newFixture(t, nil)
	id := fx.create(t, 3)
	require.NoError(t, fx.cmds.Move(fx.ctx, MoveParams{ContainerID: id, SlotIndex: 2, Direction: Left}))
	require.NoError(t, fx.cmds.SetActive(fx.ctx, SetActiveParams{ContainerID: id, SlotIndex: 2}))

	info, err := fx.f.Describe(id)
	require.NoError(t, err)
	want := ContainerInfo{
		ID: id,
		Tabs: []TabInfo{
			{Slot: 0, Title: "Tab 1"},
			{Slot: 2, Title: "Tab 3", Active: true},
			{Slot: 1, Title: "Tab 2"},
		},
		ActiveSlot: 2,
		Path:       []int{0},
	}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Errorf("Describe mismatch (-want +got):\n%s", diff)
	}

	_, err = fx.f.Describe("tabs-missing")
	assert.ErrorIs(t, err, ErrContainerNotFound)
}

func TestStateTransitions(t *testing.T) {
	fx := newFixture(t, nil)
	assert.Equal(t, StateAbsent, fx.f.State("tabs-1"))

	id := fx.create(t, 1)
	assert.Equal(t, StateStable, fx.f.State(id))

	var during State
	require.NoError(t, fx.cmds.run(fx.ctx, "probe", id, func(tx *doc.Tx) error {
		during = fx.f.State(id)
		return nil
	}))
	assert.Equal(t, StateBuilding, during)
	assert.Equal(t, StateStable, fx.f.State(id))

	fx.f.Registry().Unregister(id)
	assert.Equal(t, StateOrphaned, fx.f.State(id))
	assert.Equal(t, "orphaned", StateOrphaned.String())
}

func TestSetDefaults(t *testing.T) {
	fx := newFixture(t, nil)

	assert.ErrorIs(t, fx.f.SetDefaults(Settings{DefaultTabCount: 3, MaxTabs: 2}), ErrInvalidSettings)
	assert.ErrorIs(t, fx.f.SetDefaults(Settings{DefaultTabCount: 1, MaxTabs: 0}), ErrInvalidSettings)

	require.NoError(t, fx.f.SetDefaults(Settings{
		DefaultTabCount: 4,
		MaxTabs:         8,
		Templates:       Templates{Title: "Section %d", Content: "Write here"},
	}))
	id, err := fx.cmds.Create(fx.ctx, CreateParams{})
	require.NoError(t, err)

	info, err := fx.f.Describe(id)
	require.NoError(t, err)
	require.Len(t, info.Tabs, 4)
	assert.Equal(t, "Section 4", info.Tabs[3].Title)
	assert.Equal(t, "Write here", fx.parts(t, id).Panels[0].TextContent())
}

func TestStartTwiceFails(t *testing.T) {
	fx := newFixture(t, nil)
	assert.ErrorIs(t, fx.f.Start(fx.ctx), ErrAlreadyStarted)

	require.NoError(t, fx.f.Stop())
	require.NoError(t, fx.f.Start(fx.ctx))
}

func TestSchemaRegistration(t *testing.T) {
	fx := newFixture(t, nil)
	s := fx.doc.Schema()
	assert.True(t, s.IsAllowed("Root", KindContainer))
	assert.True(t, s.IsAllowed(KindTabPanel, "Paragraph"))
	assert.False(t, s.IsAllowed(KindTabPanel, KindContainer))
}

func TestValidateReportsViolations(t *testing.T) {
	fx := newFixture(t, nil)
	require.NoError(t, fx.f.Stop())
	id := "tabs-v"
	c := BuildContainer(id, 2, DefaultTemplates())
	p, err := ResolveParts(c)
	require.NoError(t, err)
	p.Panels[1].SetAttr(AttrSlotIndex, 7)
	p.Headers[0].SetAttr(AttrIsActive, false)
	p.AppendControl.RemoveAttr(AttrContainerID)
	fx.edit(t, func(tx *doc.Tx) error { return tx.Append(fx.doc.Root(), c) })

	rules := map[Rule]int{}
	for _, v := range Validate(fx.doc.Root()) {
		rules[v.Rule]++
		assert.Equal(t, id, v.ContainerID)
		assert.NotEmpty(t, v.String())
	}
	assert.Equal(t, map[Rule]int{RulePairing: 2, RuleSingleActive: 1, RuleIDPropagation: 1}, rules)

	regViolations := ValidateRegistry(fx.doc.Root(), fx.f.Registry())
	require.Len(t, regViolations, 1)
	assert.Equal(t, RuleRegistry, regViolations[0].Rule)
}
