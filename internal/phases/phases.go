// Package phases defines the fixed linear phase sequence of the video
// pipeline and the typed payload each phase produces. Payloads are validated
// here, at the store boundary, before anything is persisted.
package phases

// Phase numbers. The pipeline is a fixed linear sequence; there is no DAG.
const (
	PhasePlan         = 1
	PhaseStoryboard   = 2
	PhaseRenderChunks = 3
	PhaseRefine       = 4

	// PhaseCount is the number of the final phase.
	PhaseCount = 4
)

var phaseNames = map[int]string{
	PhasePlan:         "plan",
	PhaseStoryboard:   "storyboard",
	PhaseRenderChunks: "render_chunks",
	PhaseRefine:       "refine",
}

// Name returns the canonical name of a phase number, or "" if out of range.
func Name(phase int) string {
	return phaseNames[phase]
}

// Number returns the phase number for a name, or 0 if unknown.
func Number(name string) int {
	for n, candidate := range phaseNames {
		if candidate == name {
			return n
		}
	}
	return 0
}
