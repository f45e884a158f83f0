package domain_test

import (
	"testing"

	"github.com/fewston/stile/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type booking struct {
	Kind       string
	NeedsVenue bool
	Venue      string
	When       string
}

func bookingGraph(t *testing.T) *domain.Graph[booking] {
	t.Helper()
	g, err := domain.NewGraph[booking](
		domain.StepDef[booking]{
			ID: "kind",
			Next: func(b *booking) (domain.Step, bool) {
				if b.NeedsVenue {
					return "venue", true
				}
				return "when", true
			},
		},
		domain.StepDef[booking]{ID: "venue", Next: domain.Always[booking]("when")},
		domain.StepDef[booking]{ID: "when", Next: domain.Always[booking]("confirm")},
		domain.StepDef[booking]{ID: "confirm", Kind: domain.KindConfirmation},
	)
	require.NoError(t, err)
	return g
}

func TestNewGraph_Validation(t *testing.T) {
	t.Run("empty graph rejected", func(t *testing.T) {
		_, err := domain.NewGraph[booking]()
		var gerr *domain.GraphError
		require.ErrorAs(t, err, &gerr)
	})

	t.Run("duplicate step rejected", func(t *testing.T) {
		_, err := domain.NewGraph[booking](
			domain.StepDef[booking]{ID: "kind"},
			domain.StepDef[booking]{ID: "kind"},
		)
		var gerr *domain.GraphError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, domain.Step("kind"), gerr.Step)
	})

	t.Run("no terminal step rejected", func(t *testing.T) {
		_, err := domain.NewGraph[booking](
			domain.StepDef[booking]{ID: "a", Next: domain.Always[booking]("b")},
			domain.StepDef[booking]{ID: "b", Next: domain.Always[booking]("a")},
		)
		var gerr *domain.GraphError
		require.ErrorAs(t, err, &gerr)
	})
}

func TestGraph_Resolve(t *testing.T) {
	g := bookingGraph(t)

	t.Run("branch included when venue required", func(t *testing.T) {
		path, err := g.Resolve(&booking{NeedsVenue: true})
		require.NoError(t, err)
		assert.Equal(t, []domain.Step{"kind", "venue", "when", "confirm"}, path)
	})

	t.Run("branch skipped when venue not required", func(t *testing.T) {
		path, err := g.Resolve(&booking{NeedsVenue: false})
		require.NoError(t, err)
		assert.Equal(t, []domain.Step{"kind", "when", "confirm"}, path)
	})

	t.Run("cycle reported as graph error", func(t *testing.T) {
		cyclic, err := domain.NewGraph[booking](
			domain.StepDef[booking]{ID: "a", Next: domain.Always[booking]("b")},
			domain.StepDef[booking]{ID: "b", Next: domain.Always[booking]("a")},
			domain.StepDef[booking]{ID: "end"},
		)
		require.NoError(t, err)

		_, err = cyclic.Resolve(&booking{})
		var gerr *domain.GraphError
		require.ErrorAs(t, err, &gerr)
	})

	t.Run("rule yielding undeclared step reported", func(t *testing.T) {
		bad, err := domain.NewGraph[booking](
			domain.StepDef[booking]{ID: "a", Next: domain.Always[booking]("missing")},
			domain.StepDef[booking]{ID: "end"},
		)
		require.NoError(t, err)

		_, err = bad.Resolve(&booking{})
		var gerr *domain.GraphError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, domain.Step("missing"), gerr.Step)
	})
}

func TestSession_Lifecycle(t *testing.T) {
	t.Run("zero session is uninitialized", func(t *testing.T) {
		var s domain.Session[booking]
		assert.False(t, s.Initialized())
	})

	t.Run("reset initializes and discards progress", func(t *testing.T) {
		s := domain.NewSession[booking]("X1")
		s.DTO.Kind = "office"
		s.MarkCompleted("kind")

		s.Reset("X2")
		assert.True(t, s.Initialized())
		assert.Equal(t, "X2", s.Identity)
		assert.Empty(t, s.DTO.Kind)
		assert.Empty(t, s.Completed)
	})

	t.Run("mark completed is idempotent", func(t *testing.T) {
		s := domain.NewSession[booking]("X1")
		s.MarkCompleted("kind")
		s.MarkCompleted("kind")
		assert.Equal(t, []domain.Step{"kind"}, s.Completed)
		assert.True(t, s.HasCompleted("kind"))
		assert.False(t, s.HasCompleted("when"))
	})
}
