package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostMachineInfo(t *testing.T) {
	info := Host{}.MachineInfo()
	for _, key := range []string{"node", "goos", "goarch", "numcpu", "goversion"} {
		assert.NotEmpty(t, info[key], "key %q", key)
	}
}

func TestGitCommitInfo_OutsideRepository(t *testing.T) {
	// A fresh temp dir is never a git repository.
	info := Git{Dir: t.TempDir()}.CommitInfo()
	require.Equal(t, map[string]string{"id": "unknown"}, info)
}
