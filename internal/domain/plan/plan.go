package plan

// Plan is an ordered sequence of stages handed to the document store for
// execution. Pure data; the first stage is always a tenant scope.
type Plan struct {
	// Collection is the source collection the plan runs against.
	Collection string
	Stages     []Stage
}

// Stage is one step of a query plan.
type Stage interface {
	isStage()
}

// TenantScope constrains every subsequent stage to one tenant.
type TenantScope struct {
	TenantID string
}

func (TenantScope) isStage() {}

// Join resolves a local array of references against another collection
// and flattens the result, dropping documents with no surviving match.
// The lookup is itself tenant-scoped.
type Join struct {
	// From is the referenced collection.
	From string
	// LocalField is the array field on the source record.
	LocalField string
	// LookupField is the field matched inside the referenced collection.
	LookupField string
	// Values optionally restricts the lookup to these values. Left empty
	// for aggregation plans, which group over all referenced rows.
	Values []string
	// CategoryID optionally scopes the lookup to one category's
	// attributes.
	CategoryID string
	// As is the flattened output field.
	As string
}

func (Join) isStage() {}

// Filter matches direct fields with any-of semantics. A single-valued
// condition uses Eq; multi-valued conditions use In.
type Filter struct {
	Conditions []Condition
}

func (Filter) isStage() {}

// Condition is one direct-field restriction. Exactly one of Eq, In,
// Exists, or the Gte/Lt pair is set.
type Condition struct {
	Field string
	Eq    string
	In    []string
	// Exists, when non-nil, asserts presence (true) or absence (false)
	// of the field.
	Exists *bool
	// Gte/Lt bound a date field to a [Gte, Lt) window in RFC 3339 form.
	// Either side may be empty for an open bound.
	Gte string
	Lt  string
}

// Group counts documents per distinct combination of the key fields.
type Group struct {
	// Keys are resolved field paths, using the joined output path when
	// the grouped category required a join.
	Keys []string
	// CountAlias names the count accumulator in the output.
	CountAlias string
}

func (Group) isStage() {}

// Sort orders the stream by one field.
type Sort struct {
	Field string
	Desc  bool
}

func (Sort) isStage() {}

// Limit truncates the stream to N documents or groups.
type Limit struct {
	N int
}

func (Limit) isStage() {}

// Count replaces the stream with a single document count.
type Count struct {
	Alias string
}

func (Count) isStage() {}
