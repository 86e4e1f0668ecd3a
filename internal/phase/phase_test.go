package phase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/phase"
)

func TestInitial(t *testing.T) {
	st := phase.Initial("p1")
	assert.Equal(t, phase.Gather, st.CurrentPhase)
	assert.Equal(t, phase.Active, st.StatusOf(phase.Gather))
	for _, p := range []phase.Phase{phase.Compare, phase.Decide, phase.Verify} {
		assert.Equal(t, phase.Locked, st.StatusOf(p), p.String())
	}
}

func TestComplete_GatherUnlocksTheRest(t *testing.T) {
	st, err := phase.Initial("p1").Complete(phase.Gather)
	require.NoError(t, err)

	assert.Equal(t, phase.Completed, st.StatusOf(phase.Gather))
	assert.Equal(t, phase.Active, st.StatusOf(phase.Compare))
	assert.Equal(t, phase.Active, st.StatusOf(phase.Decide))
	assert.Equal(t, phase.Active, st.StatusOf(phase.Verify))
	assert.Equal(t, phase.Compare, st.CurrentPhase)
}

func TestComplete_LaterPhaseUnlocksNextOnly(t *testing.T) {
	st := phase.Initial("p1")
	st.Phases[phase.Compare] = phase.Active
	st.CurrentPhase = phase.Compare

	next, err := st.Complete(phase.Compare)
	require.NoError(t, err)
	assert.Equal(t, phase.Completed, next.StatusOf(phase.Compare))
	assert.Equal(t, phase.Active, next.StatusOf(phase.Decide))
	assert.Equal(t, phase.Locked, next.StatusOf(phase.Verify))
	assert.Equal(t, phase.Decide, next.CurrentPhase)

	// receiver untouched
	assert.Equal(t, phase.Active, st.StatusOf(phase.Compare))
}

func TestComplete_Locked(t *testing.T) {
	_, err := phase.Initial("p1").Complete(phase.Decide)
	assert.ErrorIs(t, err, phase.ErrPhaseLocked)

	_, err = phase.Initial("p1").Complete(phase.Phase(9))
	assert.ErrorIs(t, err, phase.ErrUnknownPhase)
}

func TestNavigate(t *testing.T) {
	st := phase.Initial("p1")
	_, err := st.Navigate(phase.Verify)
	assert.ErrorIs(t, err, phase.ErrPhaseLocked)

	st, err = st.Complete(phase.Gather)
	require.NoError(t, err)
	st, err = st.Navigate(phase.Verify)
	require.NoError(t, err)
	assert.Equal(t, phase.Verify, st.CurrentPhase)

	st, err = st.Navigate(phase.Gather)
	require.NoError(t, err)
	assert.Equal(t, phase.Gather, st.CurrentPhase)
}

func TestParse(t *testing.T) {
	p, err := phase.Parse("2")
	require.NoError(t, err)
	assert.Equal(t, phase.Compare, p)

	p, err = phase.Parse("Decide")
	require.NoError(t, err)
	assert.Equal(t, phase.Decide, p)

	_, err = phase.Parse("5")
	assert.ErrorIs(t, err, phase.ErrUnknownPhase)
	_, err = phase.Parse("ship")
	assert.ErrorIs(t, err, phase.ErrUnknownPhase)
}

func TestDerive(t *testing.T) {
	done := time.Now()

	st := phase.Derive("p1", phase.Facts{BidCount: 2, RequirementsCompletedAt: &done})
	assert.Equal(t, phase.Completed, st.StatusOf(phase.Gather))
	assert.Equal(t, phase.Compare, st.CurrentPhase)

	st = phase.Derive("p1", phase.Facts{BidCount: 1, RequirementsCompletedAt: &done})
	assert.Equal(t, phase.Active, st.StatusOf(phase.Gather))

	st = phase.Derive("p1", phase.Facts{BidCount: 3})
	assert.Equal(t, phase.Gather, st.CurrentPhase)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, error) { return nil, errors.New("redis down") }
func (failingCache) Set(context.Context, string, []byte) error    { return errors.New("redis down") }

func TestStore_TrustsCacheForSameProject(t *testing.T) {
	ctx := context.Background()
	store := phase.NewStore(phase.NewMemoryCache(), logger.Nop())

	calls := 0
	facts := func(context.Context) (phase.Facts, error) {
		calls++
		return phase.Facts{}, nil
	}

	_, err := store.Navigate(ctx, "u1", "p1", phase.Gather, facts)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Facts now say Gather is done, but the cached state for p1 wins.
	done := time.Now()
	facts = func(context.Context) (phase.Facts, error) {
		calls++
		return phase.Facts{BidCount: 4, RequirementsCompletedAt: &done}, nil
	}
	st, err := store.Load(ctx, "u1", "p1", facts)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, phase.Active, st.StatusOf(phase.Gather))
}

func TestStore_RederivesWhenProjectChanges(t *testing.T) {
	ctx := context.Background()
	store := phase.NewStore(phase.NewMemoryCache(), logger.Nop())
	none := func(context.Context) (phase.Facts, error) { return phase.Facts{}, nil }

	_, err := store.Load(ctx, "u1", "p1", none)
	require.NoError(t, err)

	done := time.Now()
	st, err := store.Load(ctx, "u1", "p2", func(context.Context) (phase.Facts, error) {
		return phase.Facts{BidCount: 2, RequirementsCompletedAt: &done}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "p2", st.ProjectID)
	assert.Equal(t, phase.Completed, st.StatusOf(phase.Gather))
}

func TestStore_CompletePersists(t *testing.T) {
	ctx := context.Background()
	cache := phase.NewMemoryCache()
	store := phase.NewStore(cache, logger.Nop())
	none := func(context.Context) (phase.Facts, error) { return phase.Facts{}, nil }

	_, err := store.Complete(ctx, "u1", "p1", phase.Gather, none)
	require.NoError(t, err)

	raw, err := cache.Get(ctx, phase.Key("u1"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"current_phase":2`)

	st, err := store.Load(ctx, "u1", "p1", none)
	require.NoError(t, err)
	assert.Equal(t, phase.Active, st.StatusOf(phase.Verify))
}

func TestStore_ToleratesCacheFailure(t *testing.T) {
	store := phase.NewStore(failingCache{}, logger.Nop())
	st, err := store.Complete(context.Background(), "u1", "p1", phase.Gather, func(context.Context) (phase.Facts, error) {
		return phase.Facts{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, phase.Compare, st.CurrentPhase)
}

func TestStore_FactsError(t *testing.T) {
	store := phase.NewStore(phase.NewMemoryCache(), logger.Nop())
	_, err := store.Load(context.Background(), "u1", "p1", func(context.Context) (phase.Facts, error) {
		return phase.Facts{}, errors.New("db gone")
	})
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "bidsmart_phase_state:abc", phase.Key("abc"))
}

func TestDeriveAnalysisStatus(t *testing.T) {
	now := time.Now()
	old := now.Add(-11 * time.Minute)
	recent := now.Add(-2 * time.Minute)
	edge := now.Add(-phase.AnalysisTimeoutAfter)
	summary := "replace furnace"
	scoped := models.ContractorBid{ScopeSummary: &summary}
	bare := models.ContractorBid{}

	tests := []struct {
		name    string
		project models.Project
		bids    []models.ContractorBid
		want    phase.AnalysisStatus
	}{
		{"comparing", models.Project{Status: models.ProjectComparing}, nil, phase.AnalysisComplete},
		{"completed", models.Project{Status: models.ProjectCompleted}, nil, phase.AnalysisComplete},
		{"cancelled", models.Project{Status: models.ProjectCancelled}, nil, phase.AnalysisFailed},
		{"partial scope", models.Project{Status: models.ProjectAnalyzing, AnalysisQueuedAt: &old}, []models.ContractorBid{scoped, bare}, phase.AnalysisPartial},
		{"timed out", models.Project{Status: models.ProjectAnalyzing, AnalysisQueuedAt: &old}, []models.ContractorBid{bare}, phase.AnalysisTimeout},
		{"exactly at the limit", models.Project{Status: models.ProjectAnalyzing, AnalysisQueuedAt: &edge}, nil, phase.AnalysisProcessing},
		{"recently queued", models.Project{Status: models.ProjectAnalyzing, AnalysisQueuedAt: &recent}, nil, phase.AnalysisProcessing},
		{"all scoped", models.Project{Status: models.ProjectAnalyzing, AnalysisQueuedAt: &recent}, []models.ContractorBid{scoped, scoped}, phase.AnalysisProcessing},
		{"draft never times out", models.Project{Status: models.ProjectDraft, AnalysisQueuedAt: &old}, nil, phase.AnalysisProcessing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, phase.DeriveAnalysisStatus(tt.project, tt.bids, now))
		})
	}
}
