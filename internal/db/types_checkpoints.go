package db

import (
	"time"

	"github.com/google/uuid"
)

// Checkpoint status constants
const (
	CheckpointStatusPending  = "pending"
	CheckpointStatusApproved = "approved"
)

// DefaultBranch is the branch name assigned to a video's first checkpoint.
const DefaultBranch = "main"

// Checkpoint represents a persisted pause point after one pipeline phase.
// Checkpoints are never deleted; they form the audit trail of a video's
// generation history.
type Checkpoint struct {
	ID                 uuid.UUID              `json:"id"`
	VideoID            uuid.UUID              `json:"video_id"`
	BranchName         string                 `json:"branch_name"`
	PhaseNumber        int                    `json:"phase_number"`
	Version            int                    `json:"version"`
	Status             string                 `json:"status"`
	CostUSD            float64                `json:"cost_usd"`
	PhaseOutput        map[string]interface{} `json:"phase_output,omitempty"`
	ParentCheckpointID *uuid.UUID             `json:"parent_checkpoint_id,omitempty"`
	UserID             uuid.UUID              `json:"user_id"`
	CreatedAt          time.Time              `json:"created_at"`
	ApprovedAt         *time.Time             `json:"approved_at,omitempty"`
}

// CheckpointInput represents input for creating a checkpoint
type CheckpointInput struct {
	VideoID            uuid.UUID
	BranchName         string
	PhaseNumber        int
	PhaseOutput        map[string]interface{}
	CostUSD            float64
	UserID             uuid.UUID
	ParentCheckpointID *uuid.UUID
}

// CheckpointWithArtifacts bundles a checkpoint with every artifact row
// attached to it, including superseded versions.
type CheckpointWithArtifacts struct {
	Checkpoint
	Artifacts []Artifact `json:"artifacts"`
}

// CheckpointNode is one node of a checkpoint tree. Siblings represent
// divergent branches forked from the same point.
type CheckpointNode struct {
	Checkpoint Checkpoint        `json:"checkpoint"`
	Children   []*CheckpointNode `json:"children"`
}

// BranchSummary describes the tip of one branch of a video.
type BranchSummary struct {
	BranchName         string    `json:"branch_name"`
	LatestCheckpointID uuid.UUID `json:"latest_checkpoint_id"`
	PhaseNumber        int       `json:"phase_number"`
	Status             string    `json:"status"`
	CanContinue        bool      `json:"can_continue"`
}
