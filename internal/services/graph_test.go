package services_test

import (
	"context"
	"sync"
	"testing"

	"sparkmatch-backend/internal/apperrors"
	"sparkmatch-backend/internal/models"
	"sparkmatch-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraphFixture(t *testing.T, ids ...string) (*services.GraphService, *memUserStore) {
	t.Helper()
	users := newMemUserStore()
	for _, id := range ids {
		require.NoError(t, users.Create(context.Background(), testUser(id)))
	}
	return services.NewGraphService(users), users
}

func TestAddLikeAppendsInOrder(t *testing.T) {
	graph, users := newGraphFixture(t, "alice", "bob", "carol")
	ctx := context.Background()

	require.NoError(t, graph.AddLike(ctx, "alice", "bob"))
	require.NoError(t, graph.AddLike(ctx, "alice", "carol"))

	alice, err := users.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, alice.Likes)
}

func TestAddLikeDuplicateIsConflict(t *testing.T) {
	graph, _ := newGraphFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, graph.AddLike(ctx, "alice", "bob"))
	err := graph.AddLike(ctx, "alice", "bob")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Conflict))
}

func TestAddRelationValidation(t *testing.T) {
	graph, _ := newGraphFixture(t, "alice")
	ctx := context.Background()

	err := graph.AddNope(ctx, "alice", "")
	assert.True(t, apperrors.Is(err, apperrors.Validation))

	err = graph.AddReveal(ctx, "alice", "ghost")
	assert.True(t, apperrors.Is(err, apperrors.NotFound))

	err = graph.AddLike(ctx, "ghost", "alice")
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
}

func TestMatchesAreMutual(t *testing.T) {
	graph, _ := newGraphFixture(t, "alice", "bob", "carol")
	ctx := context.Background()

	require.NoError(t, graph.AddLike(ctx, "alice", "bob"))
	require.NoError(t, graph.AddLike(ctx, "bob", "alice"))
	require.NoError(t, graph.AddLike(ctx, "alice", "carol"))

	aliceMatches, err := graph.Matches(ctx, "alice")
	require.NoError(t, err)
	bobMatches, err := graph.Matches(ctx, "bob")
	require.NoError(t, err)

	require.Len(t, aliceMatches, 1)
	assert.Equal(t, "bob", aliceMatches[0].ID)
	require.Len(t, bobMatches, 1)
	assert.Equal(t, "alice", bobMatches[0].ID)

	// carol never liked back, so she matches nobody
	carolMatches, err := graph.Matches(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, carolMatches)
}

func TestOneSidedLikeMatchesNobody(t *testing.T) {
	graph, _ := newGraphFixture(t, "alice", "bob")
	ctx := context.Background()

	require.NoError(t, graph.AddLike(ctx, "alice", "bob"))

	aliceMatches, err := graph.Matches(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, aliceMatches)

	bobMatches, err := graph.Matches(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobMatches)
}

func TestAroundSortsByDistanceAscending(t *testing.T) {
	users := newMemUserStore()
	ctx := context.Background()

	at := func(id string, lat, lon float64) *models.User {
		u := testUser(id)
		u.Location = models.Location{Lat: lat, Lon: lon}
		return u
	}
	require.NoError(t, users.Create(ctx, at("center", 48.8566, 2.3522)))   // Paris
	require.NoError(t, users.Create(ctx, at("far", 40.7128, -74.006)))    // New York
	require.NoError(t, users.Create(ctx, at("near", 48.8606, 2.3376)))    // Louvre
	require.NoError(t, users.Create(ctx, at("medium", 51.5074, -0.1278))) // London

	graph := services.NewGraphService(users)
	around, err := graph.Around(ctx, "center")
	require.NoError(t, err)

	require.Len(t, around, 3)
	assert.Equal(t, "near", around[0].ID)
	assert.Equal(t, "medium", around[1].ID)
	assert.Equal(t, "far", around[2].ID)
}

func TestAddReportAppends(t *testing.T) {
	graph, users := newGraphFixture(t, "alice", "bob")
	ctx := context.Background()

	report, err := graph.AddReport(ctx, "bob", "alice", "spam")
	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)

	bob, err := users.GetByID(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bob.Reports, 1)
	assert.Equal(t, "alice", bob.Reports[0].Reporter)
	assert.Equal(t, "spam", bob.Reports[0].Reason)

	_, err = graph.AddReport(ctx, "bob", "alice", "")
	assert.True(t, apperrors.Is(err, apperrors.Validation))
}

// staleReadUserStore hands out the same initial snapshot on every read, so
// two interleaved read-modify-write mutations both start from stale state.
type staleReadUserStore struct {
	mu       sync.Mutex
	snapshot *models.User
	saved    *models.User
}

func (s *staleReadUserStore) Create(_ context.Context, _ *models.User) error { return nil }

func (s *staleReadUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.snapshot.ID {
		return cloneUser(s.snapshot), nil
	}
	return testUser(id), nil
}

func (s *staleReadUserStore) GetByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, apperrors.New(apperrors.NotFound, "user not found")
}

func (s *staleReadUserStore) GetAll(_ context.Context) ([]*models.User, error) {
	return nil, nil
}

func (s *staleReadUserStore) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = cloneUser(user)
	return nil
}

func (s *staleReadUserStore) Delete(_ context.Context, _ string) error { return nil }

// Documents the lost-update window on concurrent document mutation: there
// is no per-aggregate serialization and no version check, so two mutations
// racing on the same user document resolve to last-write-wins and one of
// them vanishes.
func TestConcurrentRelationMutationLosesUpdate(t *testing.T) {
	store := &staleReadUserStore{snapshot: testUser("alice")}
	graph := services.NewGraphService(store)
	ctx := context.Background()

	require.NoError(t, graph.AddLike(ctx, "alice", "bob"))
	require.NoError(t, graph.AddLike(ctx, "alice", "carol"))

	require.NotNil(t, store.saved)
	assert.Equal(t, []string{"carol"}, store.saved.Likes,
		"second write started from a stale read and overwrote the first like")
	assert.NotContains(t, store.saved.Likes, "bob")
}
