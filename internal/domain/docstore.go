package domain

import (
	"context"
	"strings"
)

// Collection names.
const (
	CollectionJobs  = "jobs"
	CollectionUsers = "users"
)

type Op string

const (
	OpEq Op = "eq"
	OpNe Op = "ne"
	OpIn Op = "in"
	// OpContainsAny matches an array field holding at least one of the values.
	OpContainsAny Op = "contains_any"
	// OpElemMatch matches an array of objects holding an element whose fields
	// equal every entry of the map value.
	OpElemMatch Op = "elem_match"
	// OpMatch is a case-insensitive substring match.
	OpMatch  Op = "match"
	OpExists Op = "exists"
)

// Cond is a single predicate on a dot-separated field path.
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Filter matches a document when every All condition holds and, if Any is
// non-empty, at least one Any condition holds. Soft-deleted documents never
// match.
type Filter struct {
	All []Cond
	Any []Cond
}

func Eq(field string, value any) Cond { return Cond{Field: field, Op: OpEq, Value: value} }
func Ne(field string, value any) Cond { return Cond{Field: field, Op: OpNe, Value: value} }
func In(field string, values []string) Cond {
	return Cond{Field: field, Op: OpIn, Value: values}
}
func ContainsAny(field string, values []string) Cond {
	return Cond{Field: field, Op: OpContainsAny, Value: values}
}
func ElemMatch(field string, match map[string]any) Cond {
	return Cond{Field: field, Op: OpElemMatch, Value: match}
}
func Match(field, substr string) Cond { return Cond{Field: field, Op: OpMatch, Value: substr} }
func Exists(field string, exists bool) Cond {
	return Cond{Field: field, Op: OpExists, Value: exists}
}

// And returns a copy of f with extra required conditions.
func (f Filter) And(conds ...Cond) Filter {
	all := make([]Cond, 0, len(f.All)+len(conds))
	all = append(all, f.All...)
	all = append(all, conds...)
	return Filter{All: all, Any: f.Any}
}

// SortField orders by a field path; Desc reverses the order.
type SortField struct {
	Field string
	Desc  bool
}

// ParseSort turns "-createdAt" into a descending sort on createdAt.
func ParseSort(spec string) SortField {
	if strings.HasPrefix(spec, "-") {
		return SortField{Field: strings.TrimPrefix(spec, "-"), Desc: true}
	}
	return SortField{Field: spec}
}

type Query struct {
	Filter Filter
	Sort   []SortField
	Skip   int
	Limit  int
}

// ArrayPush appends Value to the array at Array. When UniqueBy is set the
// push is rejected with ErrDuplicate if an element already carries
// UniqueValue in that field. Inc is applied in the same atomic update.
type ArrayPush struct {
	Array       string
	Value       any
	UniqueBy    string
	UniqueValue any
	Inc         map[string]int64
}

// ArrayElementUpdate modifies the single element of Array whose MatchField
// equals MatchValue. Set and Push keys are relative to the element. The
// whole update is applied atomically to the owning document.
type ArrayElementUpdate struct {
	Array      string
	MatchField string
	MatchValue any
	Set        map[string]any
	Push       map[string]any
}

// DocumentStore is the persistence boundary. Every read excludes
// soft-deleted documents. Implementations return ErrNotFound, ErrDuplicate
// and ErrUnavailable (wrapped) where applicable.
type DocumentStore interface {
	FindByID(ctx context.Context, collection, id string, out any) error
	FindOne(ctx context.Context, collection string, filter Filter, out any) error
	// FindPage decodes matching documents into out, which must point to a slice.
	FindPage(ctx context.Context, collection string, q Query, out any) error
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	Insert(ctx context.Context, collection, id string, doc any) error
	Replace(ctx context.Context, collection, id string, doc any) error
	UpdateFields(ctx context.Context, collection, id string, set map[string]any) error
	Increment(ctx context.Context, collection, id, field string, delta int64) error
	PushToArray(ctx context.Context, collection, id string, push ArrayPush) error
	UpdateArrayElement(ctx context.Context, collection, id string, update ArrayElementUpdate) error
	SoftDelete(ctx context.Context, collection, id string) error
	Ping(ctx context.Context) error
}
