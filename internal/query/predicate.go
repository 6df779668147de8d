// Package query compiles flattened wire filter parameters into a structured
// predicate tree over the joined listing/product/category graph, and parses
// the parallel-array sort encoding. The tree is side-effect free and is
// shared by page, count and facet execution without recompilation.
package query

// Entity identifies the relation a filterable attribute lives on.
type Entity string

const (
	EntityListing Entity = "listing"
	EntityProduct Entity = "product"
)

// Field is a reference to one filterable attribute. Name is the canonical
// attribute path (e.g. "price", "ratedCard.cardScore", "name.english");
// the storage adapter maps it to a concrete column.
type Field struct {
	Entity Entity
	Name   string
}

// Node is one node of the predicate tree.
type Node interface{ isNode() }

// And matches when every child matches. The compiler's root is always an
// And; an empty And matches everything.
type And struct {
	Nodes []Node
}

// Or matches when any child matches. Produced by the merged-name filter.
type Or struct {
	Nodes []Node
}

// Eq is an exact match on a single value.
type Eq struct {
	Field Field
	Value any
}

// In matches when the attribute equals any of Values. List-typed wire
// params compile to In even when a single value is supplied.
type In struct {
	Field  Field
	Values []any
}

// Contains is a case-insensitive substring match.
type Contains struct {
	Field  Field
	Needle string
}

// Range constrains a numeric or temporal attribute. An unset bound is
// unbounded. Numeric ranges are closed on both ends; temporal ranges are
// half-open [Min, Max).
type Range struct {
	Field    Field
	Min      any
	Max      any
	MinSet   bool
	MaxSet   bool
	HalfOpen bool
}

func (And) isNode()      {}
func (Or) isNode()       {}
func (Eq) isNode()       {}
func (In) isNode()       {}
func (Contains) isNode() {}
func (Range) isNode()    {}
