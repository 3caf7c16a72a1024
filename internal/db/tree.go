package db

import (
	"sort"

	"github.com/google/uuid"
)

// BuildCheckpointTree assembles a flat checkpoint set into a forest. A single
// pass groups checkpoints by parent_checkpoint_id, then children are attached
// recursively starting from the roots (nil parent). Children are ordered by
// created_at ascending; siblings are divergent branches from the same point.
func BuildCheckpointTree(checkpoints []Checkpoint) []*CheckpointNode {
	byParent := make(map[uuid.UUID][]Checkpoint)
	var roots []Checkpoint
	for _, cp := range checkpoints {
		if cp.ParentCheckpointID == nil {
			roots = append(roots, cp)
			continue
		}
		byParent[*cp.ParentCheckpointID] = append(byParent[*cp.ParentCheckpointID], cp)
	}

	sortByCreated(roots)
	var forest []*CheckpointNode
	for _, root := range roots {
		forest = append(forest, attachChildren(root, byParent))
	}
	return forest
}

func attachChildren(cp Checkpoint, byParent map[uuid.UUID][]Checkpoint) *CheckpointNode {
	node := &CheckpointNode{Checkpoint: cp}
	children := byParent[cp.ID]
	sortByCreated(children)
	for _, child := range children {
		node.Children = append(node.Children, attachChildren(child, byParent))
	}
	return node
}

func sortByCreated(checkpoints []Checkpoint) {
	sort.SliceStable(checkpoints, func(i, j int) bool {
		return checkpoints[i].CreatedAt.Before(checkpoints[j].CreatedAt)
	})
}

// SummarizeBranches reduces a video's checkpoints to one summary per branch.
// The branch tip is the checkpoint with the highest phase number on that
// branch; can_continue reports an approved tip with no child yet.
func SummarizeBranches(checkpoints []Checkpoint) []BranchSummary {
	tips := make(map[string]Checkpoint)
	hasChild := make(map[uuid.UUID]bool)
	var order []string
	for _, cp := range checkpoints {
		if cp.ParentCheckpointID != nil {
			hasChild[*cp.ParentCheckpointID] = true
		}
		tip, ok := tips[cp.BranchName]
		if !ok {
			order = append(order, cp.BranchName)
		}
		if !ok || cp.PhaseNumber > tip.PhaseNumber {
			tips[cp.BranchName] = cp
		}
	}

	var summaries []BranchSummary
	for _, name := range order {
		tip := tips[name]
		summaries = append(summaries, BranchSummary{
			BranchName:         name,
			LatestCheckpointID: tip.ID,
			PhaseNumber:        tip.PhaseNumber,
			Status:             tip.Status,
			CanContinue:        tip.Status == CheckpointStatusApproved && !hasChild[tip.ID],
		})
	}
	return summaries
}
