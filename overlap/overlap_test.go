package overlap

import (
	"context"
	"slices"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hexzone/cell"
	"github.com/hupe1980/hexzone/cellset"
	"github.com/hupe1980/hexzone/testutil"
)

var strategies = []Strategy{Indexed, Scan}

func TestDetect_Disjoint(t *testing.T) {
	rng := testutil.NewRNG(1)
	a := cell.MustParse("85283473fffffff")
	b := cell.MustParse("85283083fffffff")

	regions := []Region{
		{Name: "a", Cells: rng.Descendants(a, 7, 30)},
		{Name: "b", Cells: rng.Descendants(b, 7, 30)},
	}

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			report, err := Detect(t.Context(), regions, WithStrategy(s))
			require.NoError(t, err)
			assert.True(t, report.Empty())
			assert.Equal(t, 0, report.Conflicts())
		})
	}
}

func TestDetect_AncestorConflict(t *testing.T) {
	coarse := cell.MustParse("85283473fffffff")
	child := coarse.Children()[2].Children()[5]
	require.Equal(t, 7, child.Resolution())

	regions := []Region{
		{Name: "zone", Cells: []cell.Cell{coarse}},
		{Name: "site", Cells: []cell.Cell{child, cell.MustParse("8928308280fffff")}},
	}

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			report, err := Detect(t.Context(), regions, WithStrategy(s))
			require.NoError(t, err)
			assert.Equal(t, Report{
				"zone": {"site": {{A: coarse, B: child}}},
			}, report)
			assert.Equal(t, 1, report.Conflicts())
		})
	}
}

func TestDetect_EqualCellsOnce(t *testing.T) {
	c := cell.MustParse("8928308280fffff")
	regions := []Region{
		{Name: "x", Cells: []cell.Cell{c}},
		{Name: "y", Cells: []cell.Cell{c}},
	}
	for _, s := range strategies {
		report, err := Detect(t.Context(), regions, WithStrategy(s))
		require.NoError(t, err)
		assert.Equal(t, []Pair{{A: c, B: c}}, report["x"]["y"], s.String())
	}
}

func TestDetect_DuplicateName(t *testing.T) {
	regions := []Region{{Name: "same"}, {Name: "other"}, {Name: "same"}}
	_, err := Detect(t.Context(), regions)
	assert.ErrorIs(t, err, ErrDuplicateRegion)
}

func TestDetect_InvalidCell(t *testing.T) {
	_, err := Detect(t.Context(), []Region{{Name: "bad", Cells: []cell.Cell{7}}})
	assert.ErrorIs(t, err, cell.ErrInvalidCell)
}

func TestDetect_FewRegions(t *testing.T) {
	report, err := Detect(t.Context(), nil)
	require.NoError(t, err)
	assert.True(t, report.Empty())

	report, err = Detect(t.Context(), []Region{{Name: "only", Cells: []cell.Cell{cell.MustParse("8029fffffffffff")}}})
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func randomRegions(t *testing.T, seed int64) []Region {
	t.Helper()
	rng := testutil.NewRNG(seed)
	root := rng.Cell(1)

	var regions []Region
	for i, name := range []string{"alpha", "bravo", "charlie", "delta"} {
		var cells []cell.Cell
		cells = append(cells, rng.Descendants(root, 3+i, 40)...)
		cells = append(cells, rng.Descendants(root, 2, 2)...)
		set, err := cellset.Compact(cells)
		require.NoError(t, err)
		regions = append(regions, Region{Name: name, Cells: set})
	}
	return regions
}

func TestDetect_StrategiesAgree(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		regions := randomRegions(t, seed)

		indexed, err := Detect(t.Context(), regions, WithStrategy(Indexed), WithWorkers(3))
		require.NoError(t, err)
		scan, err := Detect(t.Context(), regions, WithStrategy(Scan), WithWorkers(3), WithChunkSize(4))
		require.NoError(t, err)

		assert.Equal(t, indexed, scan, "seed %d", seed)
		assert.False(t, indexed.Empty(), "seed %d", seed)
	}
}

func TestDetect_OrderIndependent(t *testing.T) {
	regions := randomRegions(t, 42)

	want, err := Detect(t.Context(), regions)
	require.NoError(t, err)

	reversed := slices.Clone(regions)
	slices.Reverse(reversed)
	got, err := Detect(t.Context(), reversed)
	require.NoError(t, err)

	assert.Equal(t, want.Canonical(), got.Canonical())
	assert.Equal(t, want.Conflicts(), got.Conflicts())
}

func TestDetect_Cancelled(t *testing.T) {
	regions := randomRegions(t, 7)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	for _, s := range strategies {
		_, err := Detect(ctx, regions, WithStrategy(s))
		assert.ErrorIs(t, err, context.Canceled, s.String())
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("scan")
	require.NoError(t, err)
	assert.Equal(t, Scan, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, Indexed, s)

	_, err = ParseStrategy("bogus")
	assert.Error(t, err)
}

func TestPair_JSON(t *testing.T) {
	p := Pair{A: cell.MustParse("85283473fffffff"), B: cell.MustParse("8928308280fffff")}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `["85283473fffffff","8928308280fffff"]`, string(data))

	var back Pair
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}
