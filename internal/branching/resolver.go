// Package branching decides whether a continuation stays on its checkpoint's
// branch or forks a new one. Both decisions are pure functions of the
// checkpoint's artifact version chain and the video's existing branch names,
// so retried continuations resolve to the same name.
package branching

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/video-pipeline/internal/db"
)

// WasEdited reports whether any artifact of the checkpoint carries a version
// above 1. The version chain is the sole signal of user edits; no explicit
// "edited" flag is persisted anywhere.
func WasEdited(artifacts []db.Artifact) bool {
	for _, a := range artifacts {
		if a.Version > 1 {
			return true
		}
	}
	return false
}

// Resolve returns the branch a continuation of the checkpoint should run on,
// and whether that branch is a new fork. Un-edited checkpoints continue on
// their own branch; edited ones fork a sibling named after the root branch
// with the smallest unused integer suffix (main -> main-1 -> main-2).
func Resolve(cp *db.CheckpointWithArtifacts, existingBranches []string) (branchName string, forked bool) {
	if !WasEdited(cp.Artifacts) {
		return cp.BranchName, false
	}
	return nextBranchName(RootName(cp.BranchName), existingBranches), true
}

// RootName strips a fork suffix from a branch name: "main-2" -> "main".
// Names without a numeric suffix are returned unchanged.
func RootName(branch string) string {
	idx := strings.LastIndex(branch, "-")
	if idx <= 0 {
		return branch
	}
	if _, err := strconv.Atoi(branch[idx+1:]); err != nil {
		return branch
	}
	return branch[:idx]
}

// nextBranchName scans the existing names for the smallest unused
// root-N suffix, starting at 1.
func nextBranchName(root string, existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[name] = true
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", root, i)
		if !taken[candidate] {
			return candidate
		}
	}
}
