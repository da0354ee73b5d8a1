package tabs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/tabstorm/internal/doc"
	"github.com/dshills/tabstorm/internal/doc/node"
)

type fixture struct {
	ctx  context.Context
	doc  *doc.Document
	f    *Feature
	cmds *Commands
	logs *observer.ObservedLogs
}

func newFixture(t *testing.T, docOpts []doc.Option, opts ...Option) *fixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	d := doc.New(append([]doc.Option{doc.WithLogger(logger)}, docOpts...)...)
	f := New(d, append([]Option{WithIDGenerator(NewSequenceGenerator(1)), WithLogger(logger)}, opts...)...)
	require.NoError(t, f.Start(context.Background()))
	t.Cleanup(func() { _ = f.Stop() })

	return &fixture{ctx: context.Background(), doc: d, f: f, cmds: f.Commands(), logs: logs}
}

func intPtr(n int) *int { return &n }

func (fx *fixture) create(t *testing.T, n int) string {
	t.Helper()
	id, err := fx.cmds.Create(fx.ctx, CreateParams{TabCount: intPtr(n)})
	require.NoError(t, err)
	return id
}

func (fx *fixture) parts(t *testing.T, id string) *Parts {
	t.Helper()
	n, ok := fx.f.Registry().Resolve(id)
	require.True(t, ok, "container %s not registered", id)
	p, err := ResolveParts(n)
	require.NoError(t, err)
	return p
}

// requireHealthy asserts every container invariant and registry coherence.
func (fx *fixture) requireHealthy(t *testing.T) {
	t.Helper()
	require.Empty(t, Validate(fx.doc.Root()), "tree violations")
	require.Empty(t, ValidateRegistry(fx.doc.Root(), fx.f.Registry()), "registry violations")
}

func slotsOf(nodes []*node.Node) []int {
	out := make([]int, 0, len(nodes))
	for _, n := range nodes {
		s, _ := SlotIndex(n)
		out = append(out, s)
	}
	return out
}

func activeOf(nodes []*node.Node) []int {
	out := []int{}
	for _, n := range nodes {
		if IsActive(n) {
			s, _ := SlotIndex(n)
			out = append(out, s)
		}
	}
	return out
}

// assertActive checks that exactly the pair at slot is active.
func assertActive(t *testing.T, p *Parts, slot int) {
	t.Helper()
	assert.Equal(t, []int{slot}, activeOf(p.Headers), "active headers")
	assert.Equal(t, []int{slot}, activeOf(p.Panels), "active panels")
}

// edit runs a raw transaction that bypasses the tab commands.
func (fx *fixture) edit(t *testing.T, fn func(tx *doc.Tx) error) {
	t.Helper()
	require.NoError(t, fx.doc.RunAtomic(fx.ctx, "raw edit", fn))
}
