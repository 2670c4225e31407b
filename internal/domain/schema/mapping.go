package schema

import "fmt"

// FieldMapping describes how one category is physically stored: either a
// direct scalar field on the content record or an array of references
// into another collection that a query must join through.
type FieldMapping struct {
	category      string
	collection    string
	fieldPath     string
	lookupField   string
	refCollection string
	requiresJoin  bool
}

// NewDirect creates a mapping for a scalar field stored inline on the
// content record.
func NewDirect(category, collection, fieldPath string) (FieldMapping, error) {
	if category == "" {
		return FieldMapping{}, fmt.Errorf("category is required")
	}
	if collection == "" || fieldPath == "" {
		return FieldMapping{}, fmt.Errorf("collection and field path are required for %q", category)
	}
	return FieldMapping{category: category, collection: collection, fieldPath: fieldPath}, nil
}

// NewJoined creates a mapping for a reference field resolved through a
// lookup into refCollection.
func NewJoined(category, collection, fieldPath, refCollection, lookupField string) (FieldMapping, error) {
	if category == "" {
		return FieldMapping{}, fmt.Errorf("category is required")
	}
	if collection == "" || fieldPath == "" {
		return FieldMapping{}, fmt.Errorf("collection and field path are required for %q", category)
	}
	if refCollection == "" {
		return FieldMapping{}, fmt.Errorf("reference collection is required for joined category %q", category)
	}
	if lookupField == "" {
		lookupField = "name"
	}
	return FieldMapping{
		category:      category,
		collection:    collection,
		fieldPath:     fieldPath,
		refCollection: refCollection,
		lookupField:   lookupField,
		requiresJoin:  true,
	}, nil
}

// Category returns the mapped category name.
func (m FieldMapping) Category() string { return m.category }

// Collection returns the source collection name.
func (m FieldMapping) Collection() string { return m.collection }

// FieldPath returns the field path on the source record.
func (m FieldMapping) FieldPath() string { return m.fieldPath }

// LookupField returns the field matched in the referenced collection.
func (m FieldMapping) LookupField() string { return m.lookupField }

// RefCollection returns the referenced collection for joined fields.
func (m FieldMapping) RefCollection() string { return m.refCollection }

// RequiresJoin reports whether resolving this category needs a join.
func (m FieldMapping) RequiresJoin() bool { return m.requiresJoin }

// Mapping maps category names to their physical storage description.
type Mapping map[string]FieldMapping
