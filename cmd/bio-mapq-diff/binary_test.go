package main

import (
	"io/ioutil"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"v.io/x/lib/gosh"
)

const testSAM = `@HD	VN:1.3	SO:queryname
@SQ	SN:chr1	LN:1000
@SQ	SN:chr2	LN:1000
@SQ	SN:chrEBV	LN:1000
r1	0	chr1	1	30	4M	*	0	0	ACGT	IIII
r1	256	chr2	1	40	4M	*	0	0	ACGT	IIII
r1	256	chrEBV	1	20	4M	*	0	0	ACGT	IIII
r2	4	*	0	0	*	*	0	0	ACGT	IIII
r3	0	chrEBV	1	255	4M	*	0	0	ACGT	IIII
r4	0	chrEBV	1	7	4M	*	0	0	ACGT	IIII
`

func buildBinary(t *testing.T) (*gosh.Shell, string) {
	sh := gosh.NewShell(t)
	bin := gosh.BuildGoPkg(sh, sh.MakeTempDir(), "github.com/grailbio/mapqdiff/cmd/bio-mapq-diff")
	return sh, bin
}

func requireExitCode(t *testing.T, err error, code int) {
	exitErr, ok := err.(*exec.ExitError)
	require.True(t, ok, "expected an exit error, got %v", err)
	assert.Equal(t, code, exitErr.ExitCode())
}

func TestBinary(t *testing.T) {
	sh, bin := buildBinary(t)
	defer sh.Cleanup()
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tmpDir, "in.sam")
	require.NoError(t, ioutil.WriteFile(path, []byte(testSAM), 0644))

	stdout, stderr := sh.Cmd(bin, path, "human", "chr1,chr2", "ebv", "chrEBV").StdoutStderr()
	assert.Equal(t, `read_name,top_mapq_human,count_human,top_mapq_ebv,count_ebv,abs_diff_mapq
r1,40,2,20,1,20
r4,0,0,7,1,7
`, stdout)
	for _, line := range []string{
		"INFO: target_count: 3\n",
		`INFO: tid 2 = "chrEBV"` + "\n",
		`INFO: set1: resolved tid is 1 for "chr2"` + "\n",
		"INFO: # valid alignments: 4\n",
		"INFO: # unmapped reads: 2\n",
		"INFO: # alignments outside specified sets: 0\n",
	} {
		assert.Contains(t, stderr, line)
	}
}

func TestBinaryWrongArity(t *testing.T) {
	sh, bin := buildBinary(t)
	defer sh.Cleanup()

	cmd := sh.Cmd(bin, "a", "b", "c")
	cmd.ExitErrorIsOk = true
	stdout, stderr := cmd.StdoutStderr()
	requireExitCode(t, cmd.Err, 1)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Arg1: BAM file sorted by name")
	assert.Contains(t, stderr, "Arg5: Set2 of reference names (comma separated)")
	assert.Contains(t, stderr, "ERROR: #arguments must be 5. observed: 3")
}

func TestBinaryUnknownReference(t *testing.T) {
	sh, bin := buildBinary(t)
	defer sh.Cleanup()
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tmpDir, "in.sam")
	require.NoError(t, ioutil.WriteFile(path, []byte(testSAM), 0644))

	cmd := sh.Cmd(bin, path, "human", "chr1,chrX", "ebv", "chrEBV")
	cmd.ExitErrorIsOk = true
	_, stderr := cmd.StdoutStderr()
	requireExitCode(t, cmd.Err, 1)
	assert.Regexp(t, `ERROR: .*reference "chrX" not found`, stderr)
}
