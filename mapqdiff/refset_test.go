package mapqdiff_test

import (
	"fmt"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/mapqdiff/mapqdiff"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestParseRefNames(t *testing.T) {
	expect.EQ(t, mapqdiff.ParseRefNames("chr1"), []string{"chr1"})
	expect.EQ(t, mapqdiff.ParseRefNames("chr1,chr2,HLA-A*01:01"), []string{"chr1", "chr2", "HLA-A*01:01"})
	expect.EQ(t, mapqdiff.ParseRefNames("a,,b"), []string{"a", "", "b"})
	expect.EQ(t, mapqdiff.ParseRefNames(" a"), []string{" a"})
}

func TestResolveRefs(t *testing.T) {
	s, err := mapqdiff.ResolveRefs(header, []string{"D", "A", "D"})
	require.NoError(t, err)
	expect.EQ(t, s.IDs(), []int{0, 3})
	expect.EQ(t, s.Len(), 2)
	expect.True(t, s.Contains(0))
	expect.False(t, s.Contains(1))
	expect.True(t, s.Contains(3))
	expect.False(t, s.Contains(-1))
	expect.False(t, s.Contains(4))

	_, err = mapqdiff.ResolveRefs(header, []string{"A", "a"})
	require.Error(t, err)
	expect.True(t, errors.Is(errors.NotExist, err))
}

func TestResolveRefsManyRefs(t *testing.T) {
	// Exercise sets that span more than one bitset word.
	var refs []*sam.Reference
	for i := 0; i < 200; i++ {
		ref, err := sam.NewReference(fmt.Sprintf("contig%d", i), "", "", 100, nil, nil)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	h, err := sam.NewHeader(nil, refs)
	require.NoError(t, err)
	s, err := mapqdiff.ResolveRefs(h, []string{"contig199", "contig64", "contig63", "contig0"})
	require.NoError(t, err)
	expect.EQ(t, s.IDs(), []int{0, 63, 64, 199})
	for i := 0; i < 200; i++ {
		want := i == 0 || i == 63 || i == 64 || i == 199
		expect.EQ(t, s.Contains(i), want, "tid %d", i)
	}
}

func TestOverlap(t *testing.T) {
	a, err := mapqdiff.ResolveRefs(header, []string{"A", "B", "C"})
	require.NoError(t, err)
	b, err := mapqdiff.ResolveRefs(header, []string{"C", "D", "B"})
	require.NoError(t, err)
	expect.EQ(t, mapqdiff.Overlap(a, b), []int{1, 2})
	c, err := mapqdiff.ResolveRefs(header, []string{"D"})
	require.NoError(t, err)
	expect.EQ(t, len(mapqdiff.Overlap(a, c)), 0)
}
