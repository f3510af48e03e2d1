package samples_test

import (
	"testing"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/flow"
	"github.com/aretw0/seqflow/pkg/parser"
	"github.com/aretw0/seqflow/pkg/samples"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"auth", "basic", "checkout", "cycle"}, samples.Names())
}

func TestGet_UnknownFallsBackToDefault(t *testing.T) {
	def, ok := samples.Get(samples.Default)
	require.True(t, ok)

	got, ok := samples.Get("does-not-exist")
	assert.False(t, ok)
	assert.Equal(t, def, got)
}

func TestSamplesParseCleanly(t *testing.T) {
	for _, name := range samples.Names() {
		t.Run(name, func(t *testing.T) {
			src, ok := samples.Get(name)
			require.True(t, ok)

			d, stats := parser.ParseWithStats(src)
			assert.False(t, d.IsEmpty())
			assert.Zero(t, stats.Unmatched, "unmatched lines %v", stats.UnmatchedLines)
			assert.NotEmpty(t, flow.Build(d.Connections).Sources())
		})
	}
}

func TestCheckoutSample_MarkerVariety(t *testing.T) {
	src, _ := samples.Get("checkout")
	d := parser.Parse(src)

	kinds := map[domain.ConnectionKind]bool{}
	for _, c := range d.Messages() {
		kinds[c.Kind] = true
	}
	for _, k := range []domain.ConnectionKind{
		domain.ConnSolid, domain.ConnDouble, domain.ConnParallel,
		domain.ConnBreak, domain.ConnCircleStart, domain.ConnReverseDashed,
	} {
		assert.True(t, kinds[k], "missing %s", k)
	}

	orders, ok := d.Entity("Orders")
	require.True(t, ok)
	assert.Equal(t, domain.KindDatabase, orders.Kind)
}
