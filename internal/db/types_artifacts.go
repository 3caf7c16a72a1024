package db

import (
	"time"

	"github.com/google/uuid"
)

// Artifact type constants
const (
	ArtifactTypeSpec       = "spec"
	ArtifactTypeStoryboard = "storyboard"
	ArtifactTypeVideoChunk = "video_chunk"
	ArtifactTypeAudio      = "audio"
	ArtifactTypeFinalVideo = "final_video"
)

// Artifact is a versioned reference to a phase output blob. Bytes live in
// external blob storage; only the location and metadata are persisted here.
// Successive edits to the same artifact_key create a new row with
// version = previous + 1 and parent_artifact_id pointing at the prior row.
type Artifact struct {
	ID               uuid.UUID              `json:"id"`
	CheckpointID     uuid.UUID              `json:"checkpoint_id"`
	ArtifactType     string                 `json:"artifact_type"`
	ArtifactKey      string                 `json:"artifact_key"`
	Version          int                    `json:"version"`
	S3URL            string                 `json:"s3_url"`
	S3Key            string                 `json:"s3_key"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	ParentArtifactID *uuid.UUID             `json:"parent_artifact_id,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// ArtifactInput represents input for creating an artifact version
type ArtifactInput struct {
	CheckpointID     uuid.UUID
	ArtifactType     string
	ArtifactKey      string
	Version          int
	S3URL            string
	S3Key            string
	Metadata         map[string]interface{}
	ParentArtifactID *uuid.UUID
}

// CurrentArtifacts reduces a full artifact set to the highest version per
// artifact_key, preserving the input order of first appearance.
func CurrentArtifacts(artifacts []Artifact) []Artifact {
	latest := make(map[string]int) // artifact_key -> index into result
	var result []Artifact
	for _, a := range artifacts {
		if idx, ok := latest[a.ArtifactKey]; ok {
			if a.Version > result[idx].Version {
				result[idx] = a
			}
			continue
		}
		latest[a.ArtifactKey] = len(result)
		result = append(result, a)
	}
	return result
}
