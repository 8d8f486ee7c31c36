package reconcile_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cardsync/internal/isapi"
	"github.com/agentstation/cardsync/internal/isapi/isapitest"
	"github.com/agentstation/cardsync/internal/reconcile"
	"github.com/agentstation/cardsync/pkg/cardid"
	"github.com/agentstation/cardsync/pkg/errors"
	"github.com/agentstation/cardsync/pkg/logging"
)

func newEngine(t *testing.T, panel *isapitest.Panel, opts ...reconcile.Option) *reconcile.Engine {
	t.Helper()
	opts = append([]reconcile.Option{reconcile.WithPagePause(0)}, opts...)
	return reconcile.New(panel.Client(t), opts...)
}

func hexRange(from, to int) []string {
	var out []string
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprintf("%X", 0xA0000+i))
	}
	return out
}

func decimals(t *testing.T, hexes []string) []string {
	t.Helper()
	out, err := cardid.NormalizeHex(hexes)
	require.NoError(t, err)
	return out
}

func assertSlotInvariant(t *testing.T, panel *isapitest.Panel) {
	t.Helper()
	for _, e := range panel.Employees() {
		assert.LessOrEqual(t, e.NumOfCard, 5, "employee %s", e.EmployeeNo)
	}
}

func TestSynchronizeEmptyPanel(t *testing.T) {
	panel := isapitest.New(t)
	engine := newEngine(t, panel)

	result, err := engine.Synchronize(context.Background(), []string{"85EF77B4", "7290FDE1"}, "user")
	require.NoError(t, err)

	require.Len(t, panel.Employees(), 1)
	assert.Equal(t, "user1", panel.Employees()[0].EmployeeNo)
	assert.Equal(t, []string{"2247063476", "1922104801"}, panel.CardsOf("user1"))
	assert.Equal(t, []string{"user1"}, result.CreatedEmployees())
	assert.Equal(t, 2, result.Added())
	assert.False(t, result.NoOp)
}

func TestSynchronizeIdempotent(t *testing.T) {
	panel := isapitest.New(t)
	engine := newEngine(t, panel)
	desired := hexRange(1, 12)
	ctx := context.Background()

	_, err := engine.Synchronize(ctx, desired, "user")
	require.NoError(t, err)
	before := panel.MutatingCalls()

	result, err := engine.Synchronize(ctx, desired, "user")
	require.NoError(t, err)
	assert.True(t, result.NoOp)
	assert.Empty(t, result.Plan.ToAdd)
	assert.Empty(t, result.Plan.ToDelete)
	assert.Equal(t, before, panel.MutatingCalls())
}

func TestSynchronizeConverges(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "0000000001", "0000000002", "0000000003")
	panel.AddEmployee("user2", "0000000004", "0000000005", "0000000006", "0000000007", "0000000008")
	engine := newEngine(t, panel)

	desired := append([]string{"2", "5", "7"}, hexRange(1, 9)...)
	_, err := engine.Synchronize(context.Background(), desired, "user")
	require.NoError(t, err)

	assert.ElementsMatch(t, decimals(t, desired), panel.CardNumbers())
	assertSlotInvariant(t, panel)
}

func TestDeleteThenAdd(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "0000000010", "0000000011")
	engine := newEngine(t, panel)

	result, err := engine.Synchronize(context.Background(), []string{"B", "C"}, "user")
	require.NoError(t, err)

	assert.Equal(t, []string{"0000000010"}, result.Deleted)
	assert.Equal(t, []string{"c"}, result.Plan.ToAdd)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "user1", result.Assignments[0].EmployeeID)
	assert.Equal(t, []string{"c"}, result.Assignments[0].Cards)
	assert.Equal(t, 1, panel.Calls(isapi.EndpointCardRecord))
	assert.ElementsMatch(t, []string{"0000000011", "0000000012"}, panel.CardNumbers())
}

func TestUnpaddedPanelNumbers(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "16", "17")
	engine := newEngine(t, panel)

	result, err := engine.Synchronize(context.Background(), []string{"11"}, "user")
	require.NoError(t, err)

	assert.Equal(t, []string{"16"}, result.Deleted)
	assert.Empty(t, result.Plan.ToAdd)
	assert.Zero(t, panel.Calls(isapi.EndpointCardRecord))
	assert.Equal(t, []string{"17"}, panel.CardNumbers())
}

func TestFreeSlotsFirst(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "0000000001", "0000000002", "0000000003")
	engine := newEngine(t, panel)

	assignments, err := engine.CreateCards(context.Background(), hexRange(1, 5), "user")
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	assert.Equal(t, "user1", assignments[0].EmployeeID)
	assert.False(t, assignments[0].Created)
	assert.Equal(t, hexRangeLower(1, 2), assignments[0].Cards)

	assert.Equal(t, "user2", assignments[1].EmployeeID)
	assert.True(t, assignments[1].Created)
	assert.Equal(t, hexRangeLower(3, 5), assignments[1].Cards)

	assert.Len(t, panel.CardsOf("user1"), 5)
	assert.Len(t, panel.CardsOf("user2"), 3)
	assertSlotInvariant(t, panel)
}

func hexRangeLower(from, to int) []string {
	out := hexRange(from, to)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out
}

func TestCreateCardsNewEmployeesNumberAfterMatches(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "0000000001", "0000000002", "0000000003", "0000000004", "0000000005")
	panel.AddEmployee("user2", "0000000006", "0000000007", "0000000008", "0000000009", "0000000010")
	engine := newEngine(t, panel)

	assignments, err := engine.CreateCards(context.Background(), hexRange(1, 7), "user")
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, "user3", assignments[0].EmployeeID)
	assert.Equal(t, "user4", assignments[1].EmployeeID)
	assert.Len(t, assignments[1].Cards, 2)
	assertSlotInvariant(t, panel)
}

func TestCreateCardsEmpty(t *testing.T) {
	panel := isapitest.New(t)
	engine := newEngine(t, panel)

	assignments, err := engine.CreateCards(context.Background(), nil, "user")
	require.NoError(t, err)
	assert.Empty(t, assignments)
	assert.Zero(t, panel.Calls(isapi.EndpointUserSearch))
}

func TestCreateCardsInvalidHex(t *testing.T) {
	panel := isapitest.New(t)
	engine := newEngine(t, panel)

	_, err := engine.CreateCards(context.Background(), []string{"85EF77B4", "zz"}, "user")
	assert.True(t, errors.IsValidationError(err))
	assert.Zero(t, panel.MutatingCalls())
}

func TestSnapshotTrustedWhenCountMatches(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "0000000001", "0000000002")
	engine := newEngine(t, panel, reconcile.WithSnapshot([]string{"0000000001", "0000000002"}))

	plan, err := engine.Plan(context.Background(), []string{"1", "2"}, "user")
	require.NoError(t, err)
	assert.True(t, plan.SnapshotUsed)
	assert.True(t, plan.Empty())
	assert.Zero(t, panel.Calls(isapi.EndpointCardSearch))
	assert.Equal(t, 1, panel.Calls(isapi.EndpointCardCount))
}

func TestSnapshotMismatchFallsBackToScan(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "0000000001", "0000000002", "0000000003")
	log := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), log.Logger)
	engine := newEngine(t, panel, reconcile.WithSnapshot([]string{"0000000001"}))

	result, err := engine.DryRun(ctx, []string{"1", "2", "3"}, "user")
	require.NoError(t, err)
	assert.False(t, result.Plan.SnapshotUsed)
	assert.True(t, result.NoOp)
	assert.True(t, result.DryRun)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 1, panel.Calls(isapi.EndpointCardSearch))
	log.AssertContains(t, "snapshot holds 1 cards but panel reports 3")
}

func TestDryRunDoesNotWrite(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "0000000001")
	engine := newEngine(t, panel)

	result, err := engine.DryRun(context.Background(), []string{"2"}, "user")
	require.NoError(t, err)
	assert.Equal(t, []string{"0000000001"}, result.Plan.ToDelete)
	assert.Equal(t, []string{"2"}, result.Plan.ToAdd)
	assert.Zero(t, panel.MutatingCalls())
}

func TestFilterLimitsScope(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("guard1", "0000000100")
	panel.AddEmployee("user1", "0000000001")
	engine := newEngine(t, panel)

	result, err := engine.Synchronize(context.Background(), []string{"2"}, "user")
	require.NoError(t, err)
	assert.Equal(t, []string{"0000000001"}, result.Deleted)
	assert.ElementsMatch(t, []string{"0000000100", "0000000002"}, panel.CardNumbers())
}

func TestDeleteFailureAborts(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "0000000001", "0000000002", "0000000003")
	panel.FailAfter(isapi.EndpointCardDelete, 1)
	engine := newEngine(t, panel)

	result, err := engine.Synchronize(context.Background(), []string{"A"}, "user")
	require.Error(t, err)
	assert.True(t, errors.IsPanelUnavailable(err))
	assert.Equal(t, []string{"0000000001"}, result.Deleted)
	assert.Zero(t, panel.Calls(isapi.EndpointCardRecord))

	_, err = engine.Synchronize(context.Background(), []string{"A"}, "user")
	require.NoError(t, err)
	assert.Equal(t, []string{"0000000010"}, panel.CardNumbers())
}
