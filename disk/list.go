package disk

import (
	"path/filepath"
	"sort"
)

// candidatePatterns are the device node globs this system enumerates as
// candidate whole disks, the Linux analogue of the C source's
// GetAvailableDisks drive-letter scan.
var candidatePatterns = []string{
	"/dev/sd*",
	"/dev/nvme*n*",
	"/dev/vd*",
	"/dev/loop*",
}

// List enumerates device nodes that look like whole disks or images:
// /dev/sd*, /dev/nvme*n*, /dev/vd* and /dev/loop* (spec.md SUPPLEMENTED
// FEATURES #1). It does not open or validate any of them; callers pass a
// chosen entry to Open.
func List() ([]string, error) {
	seen := make(map[string]struct{})
	for _, pattern := range candidatePatterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}
