package models

import "github.com/google/uuid"

// ReactionGroup is the display projection of all reactions with the same
// value on one message.
type ReactionGroup struct {
	Value     string      `json:"value"`
	Count     int         `json:"count"`
	MemberIDs []uuid.UUID `json:"member_ids"`
}

// GroupReactions folds reactions into one group per value, in the order
// each value was first seen. A member is listed once per group even if the
// input contains duplicates. The input slice is not modified.
func GroupReactions(reactions []Reaction) []ReactionGroup {
	groups := make([]ReactionGroup, 0)
	index := make(map[string]int)
	seen := make(map[string]map[uuid.UUID]struct{})

	for _, r := range reactions {
		i, ok := index[r.Value]
		if !ok {
			i = len(groups)
			index[r.Value] = i
			seen[r.Value] = make(map[uuid.UUID]struct{})
			groups = append(groups, ReactionGroup{Value: r.Value, MemberIDs: make([]uuid.UUID, 0, 1)})
		}
		if _, dup := seen[r.Value][r.MemberID]; dup {
			continue
		}
		seen[r.Value][r.MemberID] = struct{}{}
		groups[i].Count++
		groups[i].MemberIDs = append(groups[i].MemberIDs, r.MemberID)
	}
	return groups
}
