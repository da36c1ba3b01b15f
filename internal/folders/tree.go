// Package folders derives hierarchical views from the flat folder collection.
// Every function is pure: it reads the slice it is given and nothing else.
//
// Stored parent links are not validated on write, so traversals keep a visited
// set and walk with an explicit stack.
package folders

import (
	"fmt"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/models"
)

// Node is one folder with its children, in stored order.
type Node struct {
	Folder   models.Folder
	Children []*Node
}

// ChildrenOf returns the folders whose parent is parentID, preserving their
// relative order. A nil parentID selects root folders.
func ChildrenOf(folders []models.Folder, parentID *string) []models.Folder {
	out := []models.Folder{}
	for _, f := range folders {
		if models.SameParent(f.ParentID, parentID) {
			out = append(out, f)
		}
	}
	return out
}

func childIndex(folders []models.Folder) map[string][]string {
	idx := make(map[string][]string)
	for _, f := range folders {
		if f.ParentID != nil {
			idx[*f.ParentID] = append(idx[*f.ParentID], f.ID)
		}
	}
	return idx
}

// DescendantIDs returns every folder id reachable from rootID through the
// parent relation, rootID excluded, in depth-first order. Reaching a folder
// twice, rootID included, means the stored links contain a cycle and is
// reported as common.ErrDataIntegrity.
func DescendantIDs(folders []models.Folder, rootID string) ([]string, error) {
	children := childIndex(folders)

	out := []string{}
	visited := map[string]bool{rootID: true}
	stack := reverse(children[rootID])

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[id] {
			return nil, fmt.Errorf("%w: folder %s is reachable from %s more than once", common.ErrDataIntegrity, id, rootID)
		}
		visited[id] = true
		out = append(out, id)
		stack = append(stack, reverse(children[id])...)
	}
	return out, nil
}

// CascadeScope is the set of folder ids removed when rootID is deleted.
func CascadeScope(folders []models.Folder, rootID string) (map[string]bool, error) {
	ids, err := DescendantIDs(folders, rootID)
	if err != nil {
		return nil, err
	}
	scope := make(map[string]bool, len(ids)+1)
	scope[rootID] = true
	for _, id := range ids {
		scope[id] = true
	}
	return scope, nil
}

// BuildTree materialises the forest below parentID. Folders caught in a cycle
// are never reachable from a root and do not appear.
func BuildTree(folders []models.Folder, parentID *string) []*Node {
	byParent := make(map[string][]models.Folder)
	var roots []models.Folder
	for _, f := range folders {
		switch {
		case models.SameParent(f.ParentID, parentID):
			roots = append(roots, f)
		case f.ParentID != nil:
			byParent[*f.ParentID] = append(byParent[*f.ParentID], f)
		}
	}

	out := make([]*Node, 0, len(roots))
	visited := map[string]bool{}
	if parentID != nil {
		visited[*parentID] = true
	}
	var stack []*Node
	for _, f := range roots {
		if visited[f.ID] {
			continue
		}
		visited[f.ID] = true
		n := &Node{Folder: f}
		out = append(out, n)
		stack = append(stack, n)
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range byParent[n.Folder.ID] {
			if visited[c.ID] {
				continue
			}
			visited[c.ID] = true
			child := &Node{Folder: c}
			n.Children = append(n.Children, child)
			stack = append(stack, child)
		}
	}
	return out
}

// Path returns the chain of folders from the root down to id, id included.
// It is empty when id is unknown and stops early if the chain loops.
func Path(folders []models.Folder, id string) []models.Folder {
	byID := make(map[string]models.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}

	var rev []models.Folder
	seen := map[string]bool{}
	cur, ok := byID[id]
	for ok && !seen[cur.ID] {
		seen[cur.ID] = true
		rev = append(rev, cur)
		if cur.ParentID == nil {
			break
		}
		cur, ok = byID[*cur.ParentID]
	}
	return reverseFolders(rev)
}

func reverse(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

func reverseFolders(in []models.Folder) []models.Folder {
	out := make([]models.Folder, len(in))
	for i, f := range in {
		out[len(in)-1-i] = f
	}
	return out
}
