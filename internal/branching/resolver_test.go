package branching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/video-pipeline/internal/db"
)

func artifact(key string, version int) db.Artifact {
	return db.Artifact{
		ID:           uuid.New(),
		ArtifactKey:  key,
		ArtifactType: db.ArtifactTypeSpec,
		Version:      version,
	}
}

func checkpoint(branch string, artifacts ...db.Artifact) *db.CheckpointWithArtifacts {
	return &db.CheckpointWithArtifacts{
		Checkpoint: db.Checkpoint{ID: uuid.New(), BranchName: branch, PhaseNumber: 1},
		Artifacts:  artifacts,
	}
}

func TestWasEdited(t *testing.T) {
	assert.False(t, WasEdited(nil), "no artifacts means no edits")
	assert.False(t, WasEdited([]db.Artifact{artifact("spec", 1), artifact("storyboard", 1)}))
	assert.True(t, WasEdited([]db.Artifact{artifact("spec", 1), artifact("spec", 2)}))
}

func TestResolveUnedited(t *testing.T) {
	branch, forked := Resolve(checkpoint("main", artifact("spec", 1)), []string{"main"})
	assert.Equal(t, "main", branch)
	assert.False(t, forked)
}

func TestResolveEditedForksSibling(t *testing.T) {
	cp := checkpoint("main", artifact("spec", 1), artifact("spec", 2))

	branch, forked := Resolve(cp, []string{"main"})
	assert.Equal(t, "main-1", branch)
	assert.True(t, forked)
}

func TestResolveSkipsTakenSuffixes(t *testing.T) {
	cp := checkpoint("main", artifact("spec", 2))

	branch, forked := Resolve(cp, []string{"main", "main-1"})
	assert.Equal(t, "main-2", branch, "must never reuse main-1")
	assert.True(t, forked)

	branch, _ = Resolve(cp, []string{"main", "main-1", "main-3"})
	assert.Equal(t, "main-2", branch, "smallest unused suffix wins")
}

func TestResolveFromForkedBranchUsesRootName(t *testing.T) {
	cp := checkpoint("main-1", artifact("spec", 2))

	branch, forked := Resolve(cp, []string{"main", "main-1"})
	assert.Equal(t, "main-2", branch, "suffix derives from the root name, not main-1-1")
	assert.True(t, forked)
}

func TestResolveIsDeterministic(t *testing.T) {
	cp := checkpoint("main", artifact("spec", 3))
	existing := []string{"main", "main-1"}

	first, _ := Resolve(cp, existing)
	for i := 0; i < 10; i++ {
		again, _ := Resolve(cp, existing)
		assert.Equal(t, first, again)
	}
}

func TestRootName(t *testing.T) {
	cases := map[string]string{
		"main":      "main",
		"main-1":    "main",
		"main-12":   "main",
		"main-v2":   "main-v2",
		"draft-cut": "draft-cut",
	}
	for input, want := range cases {
		assert.Equal(t, want, RootName(input), "RootName(%q)", input)
	}
}
