package adapters

import (
	"github.com/de-tools/ems-atlas/pkg/models/api"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/models/store"
)

func MapStoreSpaceToDomain(node store.SpaceNode) domain.SpaceNode {
	children := make([]domain.SpaceNode, 0, len(node.Children))
	for _, c := range node.Children {
		children = append(children, MapStoreSpaceToDomain(c))
	}
	return domain.SpaceNode{
		ID:       node.ID,
		Name:     node.Name,
		Children: children,
	}
}

// MapDomainSpaceToCascader renames id/name to value/label for cascading selectors.
func MapDomainSpaceToCascader(node domain.SpaceNode) api.CascaderOption {
	var children []api.CascaderOption
	for _, c := range node.Children {
		children = append(children, MapDomainSpaceToCascader(c))
	}
	return api.CascaderOption{
		Value:    node.ID,
		Label:    node.Name,
		Children: children,
	}
}

func MapStoreEntitiesToDomain(entities []store.Entity) []domain.Entity {
	result := make([]domain.Entity, 0, len(entities))
	for _, e := range entities {
		result = append(result, domain.Entity{ID: e.ID, Name: e.Name})
	}
	return result
}

func MapDomainEntitiesToApi(entities []domain.Entity) []api.Entity {
	result := make([]api.Entity, 0, len(entities))
	for _, e := range entities {
		result = append(result, api.Entity{Value: e.ID, Label: e.Name})
	}
	return result
}
