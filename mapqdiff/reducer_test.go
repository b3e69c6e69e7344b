package mapqdiff

import (
	"fmt"
	"testing"

	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type obs struct {
	name string
	mapq uint8
	set  SetID
}

func reduce(t *testing.T, input []obs) []Row {
	var rows []Row
	r := NewReducer(func(row Row) error {
		rows = append(rows, row)
		return nil
	})
	for _, o := range input {
		require.NoError(t, r.Observe(o.name, o.mapq, o.set))
	}
	require.NoError(t, r.Flush())
	return rows
}

func TestReducer(t *testing.T) {
	tests := []struct {
		input    []obs
		expected []Row
	}{
		{nil, nil},
		{
			[]obs{{"r1", 30, Set1}, {"r1", 40, Set1}, {"r1", 20, Set2}, {"r2", 10, Set1}},
			[]Row{{"r1", 40, 2, 20, 1}, {"r2", 10, 1, 0, 0}},
		},
		{
			[]obs{{"r1", 5, Set2}, {"r1", 7, Set2}, {"r1", 7, Set2}},
			[]Row{{"r1", 0, 0, 7, 3}},
		},
		{
			// Not name-sorted: r1 is reported twice.
			[]obs{{"r1", 10, Set1}, {"r2", 10, Set2}, {"r1", 99, Set1}},
			[]Row{{"r1", 10, 1, 0, 0}, {"r2", 0, 0, 10, 1}, {"r1", 99, 1, 0, 0}},
		},
		{
			[]obs{{"r1", 0, Set1}, {"r1", 254, Set2}},
			[]Row{{"r1", 0, 1, 254, 1}},
		},
	}
	for i, test := range tests {
		expect.EQ(t, reduce(t, test.input), test.expected, "test %d", i)
	}
}

func TestReducerPermutationInvariance(t *testing.T) {
	group := []obs{{"q", 12, Set1}, {"q", 60, Set2}, {"q", 3, Set1}, {"q", 60, Set2}, {"q", 41, Set1}}
	want := reduce(t, group)
	require.Equal(t, []Row{{"q", 41, 3, 60, 2}}, want)
	for shift := 1; shift < len(group); shift++ {
		permuted := append(append([]obs{}, group[shift:]...), group[:shift]...)
		assert.Equal(t, want, reduce(t, permuted), "shift %d", shift)
	}
	reversed := make([]obs, len(group))
	for i, o := range group {
		reversed[len(group)-1-i] = o
	}
	assert.Equal(t, want, reduce(t, reversed))
}

func TestReducerFlushIsIdempotent(t *testing.T) {
	n := 0
	r := NewReducer(func(Row) error { n++; return nil })
	require.NoError(t, r.Flush())
	require.NoError(t, r.Observe("a", 1, Set1))
	require.NoError(t, r.Flush())
	require.NoError(t, r.Flush())
	expect.EQ(t, n, 1)
	expect.EQ(t, r.NumValid(), int64(1))
}

func TestReducerOwnsName(t *testing.T) {
	var rows []Row
	r := NewReducer(func(row Row) error { rows = append(rows, row); return nil })
	// Decoders hand out names that alias a recycled buffer.
	buf := []byte("read1")
	require.NoError(t, r.Observe(gunsafe.BytesToString(buf), 10, Set1))
	copy(buf, "read2")
	require.NoError(t, r.Observe(gunsafe.BytesToString(buf), 20, Set2))
	require.NoError(t, r.Flush())
	expect.EQ(t, rows, []Row{{"read1", 10, 1, 0, 0}, {"read2", 0, 0, 20, 1}})
}

func TestReducerEmitError(t *testing.T) {
	failure := fmt.Errorf("disk full")
	r := NewReducer(func(Row) error { return failure })
	require.NoError(t, r.Observe("a", 1, Set1))
	require.Equal(t, failure, r.Observe("b", 1, Set1))
}

func TestAbsDiff(t *testing.T) {
	expect.EQ(t, Row{Max1: 40, Max2: 20}.AbsDiff(), 20)
	expect.EQ(t, Row{Max1: 0, Max2: 254}.AbsDiff(), 254)
	expect.EQ(t, Row{Max1: 254, Max2: 0}.AbsDiff(), 254)
	expect.EQ(t, Row{Max1: 7, Max2: 7}.AbsDiff(), 0)
}
