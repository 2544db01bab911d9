//go:build integration

package supervisor_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ddsearch/internal/ds"
	"ddsearch/internal/egg"
	"ddsearch/internal/store"

	"github.com/stretchr/testify/suite"
)

// PipelineIntegrationSuite drives the DS and EGG driver loops together
// against a real temp-file sqlite store, the way the supervisor wires them
// in production, and checks the end-to-end scenarios and invariants.
type PipelineIntegrationSuite struct {
	suite.Suite
	st     *store.Store
	cancel context.CancelFunc
	group  *errgroup.Group
}

func (s *PipelineIntegrationSuite) SetupTest() {
	st, err := store.Open("")
	s.Require().NoError(err)
	s.st = st

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	g, gctx := errgroup.WithContext(ctx)
	s.group = g
	log := zap.NewNop()
	g.Go(func() error { return ds.Run(gctx, s.st, log, 0) })
	g.Go(func() error { return egg.Run(gctx, s.st, log, 0) })
}

func (s *PipelineIntegrationSuite) TearDownTest() {
	s.cancel()
	_ = s.group.Wait()
	s.Require().NoError(s.st.Close())
}

func (s *PipelineIntegrationSuite) insertFact(data string) {
	s.T().Helper()
	inserted, err := s.st.InsertOrIgnore(context.Background(), "facts", data)
	s.Require().NoError(err)
	s.Require().True(inserted)
}

func (s *PipelineIntegrationSuite) insertIdea(data string) {
	s.T().Helper()
	inserted, err := s.st.InsertOrIgnore(context.Background(), "ideas", data)
	s.Require().NoError(err)
	s.Require().True(inserted)
}

func (s *PipelineIntegrationSuite) eventuallyFact(data string) {
	s.T().Helper()
	s.Require().Eventually(func() bool {
		rows, err := s.st.ReadNewFacts(context.Background(), 0)
		if err != nil {
			return false
		}
		for _, r := range rows {
			if r.Data == data {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}

func (s *PipelineIntegrationSuite) TestModusPonens() {
	s.insertFact("----\n(unary human socrates)\n")
	s.insertFact("(unary human `x)\n----\n(unary mortal `x)\n")
	s.eventuallyFact("----\n(unary mortal socrates)\n")
}

func (s *PipelineIntegrationSuite) TestMultiPremiseLeavesIdea() {
	s.insertFact("----\n(unary p a)\n")
	s.insertFact("(unary p `x)\n(unary q `x)\n----\n(unary r `x)\n")
	s.eventuallyFact("(unary q a)\n----\n(unary r a)\n")

	s.Require().Eventually(func() bool {
		rows, err := s.st.ReadNewIdeas(context.Background(), 0)
		if err != nil {
			return false
		}
		for _, r := range rows {
			if r.Data == "----\n(unary q a)\n" {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}

func (s *PipelineIntegrationSuite) TestChainedInference() {
	s.insertFact("----\n(unary human socrates)\n")
	s.insertFact("(unary human `x)\n----\n(unary mortal `x)\n")
	s.insertFact("(unary mortal `x)\n----\n(unary finite `x)\n")
	s.eventuallyFact("----\n(unary finite socrates)\n")
}

func (s *PipelineIntegrationSuite) TestEqualitySymmetry() {
	s.insertFact("----\n(binary == a b)\n")
	s.insertIdea("----\n(binary == b a)\n")
	s.eventuallyFact("----\n(binary == b a)\n")
}

func (s *PipelineIntegrationSuite) TestTransitivity() {
	s.insertFact("----\n(binary == a b)\n")
	s.insertFact("----\n(binary == b c)\n")
	s.insertIdea("----\n(binary == a c)\n")
	s.eventuallyFact("----\n(binary == a c)\n")
}

func (s *PipelineIntegrationSuite) TestCongruence() {
	s.insertFact("----\n(binary == x y)\n")
	s.insertIdea("----\n(binary == (unary f x) (unary f y))\n")
	s.eventuallyFact("----\n(binary == (unary f x) (unary f y))\n")
}

func (s *PipelineIntegrationSuite) TestPatternVariableEquality() {
	s.insertFact("----\n(binary == (unary a `x) (unary b `x))\n")
	s.insertIdea("----\n(binary == (unary b t) (unary a t))\n")
	s.eventuallyFact("----\n(binary == (unary b t) (unary a t))\n")
}

func (s *PipelineIntegrationSuite) TestSubstitutionViaCongruence() {
	s.insertFact("----\n(unary f x)\n")
	s.insertFact("----\n(binary == x y)\n")
	s.insertIdea("----\n(unary f y)\n")
	s.eventuallyFact("----\n(unary f y)\n")
}

func (s *PipelineIntegrationSuite) TestFixedPointProducesNoNewRows() {
	s.insertFact("----\n(unary human socrates)\n")
	s.insertFact("(unary human `x)\n----\n(unary mortal `x)\n")
	s.eventuallyFact("----\n(unary mortal socrates)\n")

	time.Sleep(5 * ds.Tick)
	rows, err := s.st.ReadNewFacts(context.Background(), 0)
	s.Require().NoError(err)
	count := 0
	for _, r := range rows {
		if r.Data == "----\n(unary mortal socrates)\n" {
			count++
		}
	}
	s.Equal(1, count, "I1: a fact's row count must stay 1 once the fixed point is reached")
}

func TestPipelineIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PipelineIntegrationSuite))
}
