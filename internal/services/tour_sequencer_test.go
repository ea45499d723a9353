package services

import (
	"context"
	"delivery-tour-service/internal/domain"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSequencer() *TourSequencer {
	return NewTourSequencer(DefaultSchedule())
}

func TestSequenceTieKeepsFirstOrder(t *testing.T) {
	rg := buildGraph(t, triangleMap(t), newRequest("t", delivery(1, 2, 8), delivery(2, 3, 8)))

	seq, err := newTestSequencer().Sequence(context.Background(), rg, testDay)
	require.NoError(t, err)

	// Both directions are 2750m; lexicographic order wins.
	assert.Equal(t, []int{0, 1, 2, 0}, seq.Order)
	assert.Equal(t, 2750.0, seq.LengthMeters)
	assert.Equal(t, []time.Time{at(8, 0, 0), at(8, 3, 0), at(8, 11, 0), at(8, 21, 0)}, seq.Times)
	assert.False(t, seq.BudgetExhausted)
}

func TestSequencePrefersShorterDirection(t *testing.T) {
	m := newTestMap(t, 1, []int64{1, 2, 3}, []domain.Segment{
		seg(1, 2, 750), seg(2, 3, 750), seg(3, 1, 750),
		seg(2, 1, 3000), seg(3, 2, 3000), seg(1, 3, 3000),
	})
	rg := buildGraph(t, m, newRequest("t", delivery(1, 3, 8), delivery(2, 2, 8)))

	seq, err := newTestSequencer().Sequence(context.Background(), rg, testDay)
	require.NoError(t, err)

	// Stop 2 is intersection 2, reached first along the one-way loop.
	assert.Equal(t, []int{0, 2, 1, 0}, seq.Order)
	assert.Equal(t, 2250.0, seq.LengthMeters)
}

func TestSequenceWaitsForTimeWindow(t *testing.T) {
	rg := buildGraph(t, triangleMap(t), newRequest("t", delivery(1, 2, 9), delivery(2, 3, 8)))

	seq, err := newTestSequencer().Sequence(context.Background(), rg, testDay)
	require.NoError(t, err)

	// Visiting 2 first means waiting until 9:00 and reaching 3 after its
	// window closed.
	assert.Equal(t, []int{0, 2, 1, 0}, seq.Order)
	assert.Equal(t, 2750.0, seq.LengthMeters)
	assert.Equal(t, []time.Time{at(8, 0, 0), at(8, 5, 0), at(9, 0, 0), at(9, 8, 0)}, seq.Times)
}

func TestSequenceInfeasibleTimeWindows(t *testing.T) {
	rg := buildGraph(t, triangleMap(t), newRequest("t", delivery(1, 2, 8), delivery(2, 3, 8)))

	schedule := DefaultSchedule()
	schedule.DepartHour = 10
	_, err := NewTourSequencer(schedule).Sequence(context.Background(), rg, testDay)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInfeasibleTimeWindow))
	assert.True(t, domain.IsComputingError(err))
}

func TestSequenceUnreachableStop(t *testing.T) {
	tests := []struct {
		name string
		m    func(t *testing.T) *domain.RoadMap
	}{
		{
			name: "isolated",
			m: func(t *testing.T) *domain.RoadMap {
				return newTestMap(t, 1, []int64{1, 2, 3}, both(1, 2, 750))
			},
		},
		{
			name: "no way back",
			m: func(t *testing.T) *domain.RoadMap {
				return newTestMap(t, 1, []int64{1, 2, 3}, both(1, 2, 750), []domain.Segment{seg(2, 3, 750)})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rg := buildGraph(t, tt.m(t), newRequest("t", delivery(1, 2, 8), delivery(2, 3, 8)))

			_, err := newTestSequencer().Sequence(context.Background(), rg, testDay)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrUnreachableStop))
			assert.Contains(t, err.Error(), testID(2).String())
		})
	}
}

func TestSequenceZeroDeliveries(t *testing.T) {
	rg := buildGraph(t, triangleMap(t), newRequest("t"))

	seq, err := newTestSequencer().Sequence(context.Background(), rg, testDay)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, seq.Order)
	assert.Equal(t, []time.Time{at(8, 0, 0)}, seq.Times)
	assert.Zero(t, seq.LengthMeters)
}

func TestSequenceCanceledContext(t *testing.T) {
	rg := buildGraph(t, triangleMap(t), newRequest("t", delivery(1, 2, 8)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestSequencer().Sequence(ctx, rg, testDay)
	assert.ErrorIs(t, err, context.Canceled)
}

// gridMap is a 3x3 grid of two-way streets with uneven lengths; the
// warehouse is the corner 1.
//
//	1 - 2 - 3
//	|   |   |
//	4 - 5 - 6
//	|   |   |
//	7 - 8 - 9
func gridMap(t *testing.T) *domain.RoadMap {
	return newTestMap(t, 1, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9},
		both(1, 2, 750), both(2, 3, 1250),
		both(4, 5, 100), both(5, 6, 750),
		both(7, 8, 1250), both(8, 9, 100),
		both(1, 4, 100), both(4, 7, 750),
		both(2, 5, 1250), both(5, 8, 100),
		both(3, 6, 100), both(6, 9, 1250),
	)
}

func gridRequest() *domain.TourRequest {
	return newRequest("grid",
		delivery(1, 3, 8),
		delivery(2, 9, 9),
		delivery(3, 5, 8),
		delivery(4, 7, 9),
		delivery(5, 2, 8),
		delivery(6, 6, 9),
		delivery(7, 8, 9),
	)
}

func TestSequenceBranchAndBoundMatchesEnumeration(t *testing.T) {
	rg := buildGraph(t, gridMap(t), gridRequest())

	enumerating := newTestSequencer()
	want, err := enumerating.Sequence(context.Background(), rg, testDay)
	require.NoError(t, err)

	searching := newTestSequencer()
	searching.PermutationLimit = 0
	searching.SearchBudget = time.Minute
	got, err := searching.Sequence(context.Background(), rg, testDay)
	require.NoError(t, err)

	assert.Equal(t, want.Order, got.Order)
	assert.Equal(t, want.Times, got.Times)
	assert.Equal(t, want.LengthMeters, got.LengthMeters)
	assert.False(t, got.BudgetExhausted)
}

func TestSequenceEnumerationIsOptimal(t *testing.T) {
	request := gridRequest()
	rg := buildGraph(t, gridMap(t), request)

	seq, err := newTestSequencer().Sequence(context.Background(), rg, testDay)
	require.NoError(t, err)

	s := newTestSequencer()
	best := -1.0
	var visit func(order []int, used []bool)
	visit = func(order []int, used []bool) {
		if len(order) == rg.VertexCount() {
			closed := append(append([]int(nil), order...), 0)
			if _, ok := s.timeline(rg, closed, testDay); !ok {
				return
			}
			length := 0.0
			for k := 1; k < len(closed); k++ {
				length += rg.Cost(closed[k-1], closed[k])
			}
			if best < 0 || length < best {
				best = length
			}
			return
		}
		for v := 1; v < rg.VertexCount(); v++ {
			if !used[v] {
				used[v] = true
				visit(append(order, v), used)
				used[v] = false
			}
		}
	}
	visit([]int{0}, make([]bool, rg.VertexCount()))

	require.Positive(t, best)
	assert.InDelta(t, best, seq.LengthMeters, 1e-9)
}

type steppingClock struct {
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func TestSequenceBranchAndBoundBudgetExhausted(t *testing.T) {
	const n = 9
	deliveries := make([]domain.DeliveryRequest, 0, n)
	for i := 1; i <= n; i++ {
		deliveries = append(deliveries, delivery(i, int64(i), 8))
	}
	rg := buildGraph(t, starMap(t, n), newRequest("star", deliveries...))

	clock := &steppingClock{now: at(6, 0, 0), step: time.Second}
	s := newTestSequencer()
	s.PermutationLimit = 0
	s.SearchBudget = 12 * time.Second
	s.Clock = clock.Now

	seq, err := s.Sequence(context.Background(), rg, testDay)
	require.NoError(t, err)
	assert.True(t, seq.BudgetExhausted)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 0}, seq.Order)
	assert.Equal(t, 1800.0, seq.LengthMeters)
}

func TestSequenceBranchAndBoundNothingFoundInBudget(t *testing.T) {
	rg := buildGraph(t, gridMap(t), gridRequest())

	clock := &steppingClock{now: at(6, 0, 0), step: time.Hour}
	s := newTestSequencer()
	s.PermutationLimit = 0
	s.SearchBudget = time.Minute
	s.Clock = clock.Now

	_, err := s.Sequence(context.Background(), rg, testDay)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInfeasibleTimeWindow))
	assert.Contains(t, err.Error(), "within 1m0s")
}
