package schema

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity name is not registered.
var ErrNotFound = errors.New("entity not found")

// Entry binds a logical entity name to its table descriptor.
type Entry struct {
	Entity     string
	Descriptor TableDescriptor
}

// Registry maps logical entity names to table descriptors. It has no
// mutation path once built.
type Registry struct {
	entities []string
	byName   map[string]TableDescriptor
}

// NewRegistry builds a registry from entries, keeping their order.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{
		entities: make([]string, 0, len(entries)),
		byName:   make(map[string]TableDescriptor, len(entries)),
	}
	for _, e := range entries {
		if e.Entity == "" {
			return nil, errors.New("entity name is required")
		}
		if _, dup := r.byName[e.Entity]; dup {
			return nil, fmt.Errorf("entity %s registered twice", e.Entity)
		}
		if e.Descriptor.name == "" {
			return nil, fmt.Errorf("entity %s has no descriptor", e.Entity)
		}
		r.entities = append(r.entities, e.Entity)
		r.byName[e.Entity] = e.Descriptor
	}
	return r, nil
}

// Describe returns the descriptor registered for entity.
func (r *Registry) Describe(entity string) (TableDescriptor, error) {
	d, ok := r.byName[entity]
	if !ok {
		return TableDescriptor{}, fmt.Errorf("%w: %q", ErrNotFound, entity)
	}
	return d, nil
}

// Entities returns the registered entity names in registration order.
func (r *Registry) Entities() []string {
	names := make([]string, len(r.entities))
	copy(names, r.entities)
	return names
}

// Default is the relief schema.
var Default = mustRegistry(
	Entry{"Disaster", MustTableDescriptor("disaster", Single("disaster_id"),
		"disaster_id", "type", "severity", "start_date", "end_date", "city", "district", "state")},
	Entry{"ReliefCamp", MustTableDescriptor("relief_camp", Single("camp_id"),
		"camp_id", "name", "village", "taluk", "district", "state", "capacity", "camp_status",
		"open_date", "close_date", "disaster_id")},
	Entry{"Volunteer", MustTableDescriptor("volunteer", Single("volunteer_id"),
		"volunteer_id", "name", "phone", "availability")},
	Entry{"Victim", MustTableDescriptor("victim", Single("victim_id"),
		"victim_id", "name", "age", "gender", "village", "taluk", "district", "state", "camp_id")},
	Entry{"Resource", MustTableDescriptor("resource", Single("resource_id"),
		"resource_id", "category", "item_name", "unit")},
	Entry{"Stocked_At", MustTableDescriptor("stocked_at", Composite("camp_id", "resource_id"),
		"camp_id", "resource_id", "current_qty", "reorder_level")},
	Entry{"AssignedTo", MustTableDescriptor("assigned_to", Composite("camp_id", "volunteer_id", "date"),
		"camp_id", "volunteer_id", "date")},
	Entry{"AidDistribution", MustTableDescriptor("aid_distribution",
		Composite("volunteer_id", "victim_id", "resource_id", "dist_date"),
		"volunteer_id", "victim_id", "resource_id", "dist_date", "qty")},
)

func mustRegistry(entries ...Entry) *Registry {
	r, err := NewRegistry(entries...)
	if err != nil {
		panic(err)
	}
	return r
}
