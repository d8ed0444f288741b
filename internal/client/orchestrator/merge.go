package orchestrator

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/oskolki/internal/client/models"
	"github.com/dmitrijs2005/oskolki/internal/common"
)

// MergePolicy decides how a fetched holiday list combines with the one in
// memory.
type MergePolicy string

const (
	// MergeRemote replaces the local list with the fetched one.
	MergeRemote MergePolicy = "remote"
	// MergeUnionRemoteWins keeps local-only holidays; on an id present on
	// both sides the fetched record is kept.
	MergeUnionRemoteWins MergePolicy = "union-remote-wins"
	// MergeUnionLocalWins is the union with the local record kept on
	// collision.
	MergeUnionLocalWins MergePolicy = "union-local-wins"
)

func ParseMergePolicy(s string) (MergePolicy, error) {
	switch p := MergePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return MergeRemote, nil
	case MergeRemote, MergeUnionRemoteWins, MergeUnionLocalWins:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown holiday merge policy %q", common.ErrValidation, s)
}

// mergeHolidays returns the merged list: fetched order first, then
// local-only entries in their local order.
func mergeHolidays(local, fetched []models.Holiday, policy MergePolicy) []models.Holiday {
	if policy == MergeRemote || policy == "" {
		return append([]models.Holiday{}, fetched...)
	}

	localByID := make(map[string]models.Holiday, len(local))
	for _, h := range local {
		localByID[h.ID] = h
	}

	out := make([]models.Holiday, 0, len(local)+len(fetched))
	seen := make(map[string]struct{}, len(fetched))
	for _, h := range fetched {
		seen[h.ID] = struct{}{}
		if l, ok := localByID[h.ID]; ok && policy == MergeUnionLocalWins {
			out = append(out, l)
			continue
		}
		out = append(out, h)
	}
	for _, h := range local {
		if _, ok := seen[h.ID]; !ok {
			out = append(out, h)
		}
	}
	return out
}
