// Package memory is a process-local DocumentStore. Documents are kept as
// decoded JSON trees, so filters and partial updates behave like the
// database-backed stores. It is used for local development and tests.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go-recruitment-platform/internal/domain"
)

type record struct {
	id      string
	seq     int64
	body    map[string]any
	deleted bool
}

type DocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*record
	seq         int64
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{collections: make(map[string]map[string]*record)}
}

func (s *DocumentStore) coll(name string) map[string]*record {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]*record)
		s.collections[name] = c
	}
	return c
}

// live returns the record with id unless it is missing or soft-deleted.
func (s *DocumentStore) live(collection, id string) (*record, error) {
	r, ok := s.coll(collection)[id]
	if !ok || r.deleted {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
	}
	return r, nil
}

func (s *DocumentStore) FindByID(_ context.Context, collection, id string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.live(collection, id)
	if err != nil {
		return err
	}
	return decode(r.body, out)
}

func (s *DocumentStore) FindOne(_ context.Context, collection string, filter domain.Filter, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.match(collection, filter)
	if len(matched) == 0 {
		return fmt.Errorf("%s: %w", collection, domain.ErrNotFound)
	}
	return decode(matched[0].body, out)
}

func (s *DocumentStore) FindPage(_ context.Context, collection string, q domain.Query, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.match(collection, q.Filter)
	sortRecords(matched, q.Sort)

	start := min(max(q.Skip, 0), len(matched))
	end := len(matched)
	if q.Limit > 0 {
		end = min(start+q.Limit, len(matched))
	}
	bodies := make([]map[string]any, 0, end-start)
	for _, r := range matched[start:end] {
		bodies = append(bodies, r.body)
	}
	return decode(bodies, out)
}

func (s *DocumentStore) Count(_ context.Context, collection string, filter domain.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.match(collection, filter))), nil
}

func (s *DocumentStore) Insert(_ context.Context, collection, id string, doc any) error {
	body, err := toObject(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(collection)
	if _, exists := c[id]; exists {
		return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrDuplicate)
	}
	s.seq++
	c[id] = &record{id: id, seq: s.seq, body: body}
	return nil
}

func (s *DocumentStore) Replace(_ context.Context, collection, id string, doc any) error {
	body, err := toObject(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.live(collection, id)
	if err != nil {
		return err
	}
	r.body = body
	return nil
}

func (s *DocumentStore) UpdateFields(_ context.Context, collection, id string, set map[string]any) error {
	values := make(map[string]any, len(set))
	for k, v := range set {
		g, err := toGeneric(v)
		if err != nil {
			return err
		}
		values[k] = g
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.live(collection, id)
	if err != nil {
		return err
	}
	for k, v := range values {
		setPath(r.body, k, v)
	}
	return nil
}

func (s *DocumentStore) Increment(_ context.Context, collection, id, field string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.live(collection, id)
	if err != nil {
		return err
	}
	increment(r.body, field, delta)
	return nil
}

func (s *DocumentStore) PushToArray(_ context.Context, collection, id string, push domain.ArrayPush) error {
	value, err := toGeneric(push.Value)
	if err != nil {
		return err
	}
	unique, err := toGeneric(push.UniqueValue)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.live(collection, id)
	if err != nil {
		return err
	}
	items, _ := lookup(r.body, push.Array).([]any)
	if push.UniqueBy != "" {
		for _, item := range items {
			if m, ok := item.(map[string]any); ok && equal(m[push.UniqueBy], unique) {
				return fmt.Errorf("%s/%s %s: %w", collection, id, push.Array, domain.ErrDuplicate)
			}
		}
	}
	setPath(r.body, push.Array, append(items, value))
	for field, delta := range push.Inc {
		increment(r.body, field, delta)
	}
	return nil
}

func (s *DocumentStore) UpdateArrayElement(_ context.Context, collection, id string, update domain.ArrayElementUpdate) error {
	set := make(map[string]any, len(update.Set))
	for k, v := range update.Set {
		g, err := toGeneric(v)
		if err != nil {
			return err
		}
		set[k] = g
	}
	push := make(map[string]any, len(update.Push))
	for k, v := range update.Push {
		g, err := toGeneric(v)
		if err != nil {
			return err
		}
		push[k] = g
	}
	want, err := toGeneric(update.MatchValue)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.live(collection, id)
	if err != nil {
		return err
	}
	items, _ := lookup(r.body, update.Array).([]any)
	for _, item := range items {
		elem, ok := item.(map[string]any)
		if !ok || !equal(elem[update.MatchField], want) {
			continue
		}
		for k, v := range set {
			elem[k] = v
		}
		for k, v := range push {
			existing, _ := elem[k].([]any)
			elem[k] = append(existing, v)
		}
		return nil
	}
	return fmt.Errorf("%s/%s %s: %w", collection, id, update.Array, domain.ErrNotFound)
}

func (s *DocumentStore) SoftDelete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.live(collection, id)
	if err != nil {
		return err
	}
	r.deleted = true
	return nil
}

func (s *DocumentStore) Ping(context.Context) error {
	return nil
}

func (s *DocumentStore) match(collection string, filter domain.Filter) []*record {
	var out []*record
	for _, r := range s.coll(collection) {
		if !r.deleted && matches(r, filter) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func matches(r *record, f domain.Filter) bool {
	for _, c := range f.All {
		if !condHolds(r, c) {
			return false
		}
	}
	if len(f.Any) == 0 {
		return true
	}
	for _, c := range f.Any {
		if condHolds(r, c) {
			return true
		}
	}
	return false
}

func condHolds(r *record, c domain.Cond) bool {
	var field any
	if c.Field == "id" {
		field = r.id
	} else {
		field = lookup(r.body, c.Field)
	}

	switch c.Op {
	case domain.OpEq:
		want, err := toGeneric(c.Value)
		return err == nil && equal(field, want)
	case domain.OpNe:
		want, err := toGeneric(c.Value)
		return err == nil && !equal(field, want)
	case domain.OpIn:
		values, _ := c.Value.([]string)
		s, ok := field.(string)
		return ok && contains(values, s)
	case domain.OpContainsAny:
		values, _ := c.Value.([]string)
		items, _ := field.([]any)
		for _, item := range items {
			if s, ok := item.(string); ok && contains(values, s) {
				return true
			}
		}
		return false
	case domain.OpElemMatch:
		want, err := toGeneric(c.Value)
		wantMap, ok := want.(map[string]any)
		if err != nil || !ok {
			return false
		}
		items, _ := field.([]any)
		for _, item := range items {
			if m, ok := item.(map[string]any); ok && subset(wantMap, m) {
				return true
			}
		}
		return false
	case domain.OpMatch:
		needle, _ := c.Value.(string)
		return containsFold(field, strings.ToLower(needle))
	case domain.OpExists:
		want, _ := c.Value.(bool)
		return (field != nil) == want
	default:
		return false
	}
}

func containsFold(field any, needle string) bool {
	switch v := field.(type) {
	case string:
		return strings.Contains(strings.ToLower(v), needle)
	case []any:
		for _, item := range v {
			if containsFold(item, needle) {
				return true
			}
		}
	}
	return false
}

func subset(want, have map[string]any) bool {
	for k, v := range want {
		if !equal(have[k], v) {
			return false
		}
	}
	return true
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func sortRecords(records []*record, fields []domain.SortField) {
	sort.SliceStable(records, func(i, j int) bool {
		for _, f := range fields {
			c := compare(lookup(records[i].body, f.Field), lookup(records[j].body, f.Field))
			if c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		return records[i].id < records[j].id
	})
}

// compare orders numbers, timestamps and strings. Missing values sort first.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok || !bok {
		return 0
	}
	at, aerr := time.Parse(time.RFC3339Nano, as)
	bt, berr := time.Parse(time.RFC3339Nano, bs)
	if aerr == nil && berr == nil {
		return at.Compare(bt)
	}
	return strings.Compare(as, bs)
}

func equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

func lookup(root map[string]any, path string) any {
	var cur any = root
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func setPath(root map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	cur := root
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

func increment(root map[string]any, field string, delta int64) {
	n, _ := lookup(root, field).(float64)
	setPath(root, field, n+float64(delta))
}

// toGeneric converts a Go value into its decoded JSON form.
func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toObject(v any) (map[string]any, error) {
	g, err := toGeneric(v)
	if err != nil {
		return nil, err
	}
	m, ok := g.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document must be an object, got %T", g)
	}
	return m, nil
}

// decode copies a stored tree into out so callers never alias stored state.
func decode(v any, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	return dec.Decode(out)
}
