package domain

// SpaceNode is one node of the organization's space hierarchy.
type SpaceNode struct {
	ID       int64
	Name     string
	Children []SpaceNode
}

// Find walks the subtree rooted at n following ids and returns the visited nodes.
// The first id must be n itself.
func (n SpaceNode) Find(ids []int64) ([]SpaceNode, bool) {
	if len(ids) == 0 || ids[0] != n.ID {
		return nil, false
	}

	visited := []SpaceNode{n}
	current := n
	for _, id := range ids[1:] {
		found := false
		for _, child := range current.Children {
			if child.ID == id {
				current = child
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
		visited = append(visited, current)
	}
	return visited, true
}

type EntityKind string

const (
	EntityKindMeters                     EntityKind = "meters"
	EntityKindStores                     EntityKind = "stores"
	EntityKindTenants                    EntityKind = "tenants"
	EntityKindEnergyStoragePowerStations EntityKind = "energystoragepowerstations"
)

// Entity is a selectable meter, store, station, ... scoped to a space.
type Entity struct {
	ID   int64
	Name string
}
