package postgres

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go-recruitment-platform/internal/domain"

	"github.com/lib/pq"
)

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// columnFields are document fields mirrored into real columns.
var columnFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// sqlBuilder accumulates positional arguments while rendering SQL fragments.
type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *sqlBuilder) path(field string) (string, error) {
	if !fieldPattern.MatchString(field) {
		return "", fmt.Errorf("invalid field path %q", field)
	}
	return b.arg(strings.Split(field, ".")) + "::text[]", nil
}

func (b *sqlBuilder) jsonArg(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	return b.arg(string(raw)) + "::jsonb", nil
}

func (b *sqlBuilder) cond(c domain.Cond) (string, error) {
	p, err := b.path(c.Field)
	if err != nil {
		return "", err
	}

	switch c.Op {
	case domain.OpEq:
		v, err := b.jsonArg(c.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(body #> %s) = %s", p, v), nil
	case domain.OpNe:
		v, err := b.jsonArg(c.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(body #> %s) IS DISTINCT FROM %s", p, v), nil
	case domain.OpIn:
		values, ok := c.Value.([]string)
		if !ok {
			return "", fmt.Errorf("%s on %s requires []string", c.Op, c.Field)
		}
		return fmt.Sprintf("(body #>> %s) = ANY(%s::text[])", p, b.arg(values)), nil
	case domain.OpContainsAny:
		values, ok := c.Value.([]string)
		if !ok {
			return "", fmt.Errorf("%s on %s requires []string", c.Op, c.Field)
		}
		return fmt.Sprintf("(body #> %s) ?| %s::text[]", p, b.arg(values)), nil
	case domain.OpElemMatch:
		v, err := b.jsonArg([]any{c.Value})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(body #> %s) @> %s", p, v), nil
	case domain.OpMatch:
		s, ok := c.Value.(string)
		if !ok {
			return "", fmt.Errorf("%s on %s requires a string", c.Op, c.Field)
		}
		return fmt.Sprintf("(body #>> %s) ILIKE %s", p, b.arg("%"+escapeLike(s)+"%")), nil
	case domain.OpExists:
		exists, _ := c.Value.(bool)
		cmp := "<>"
		if !exists {
			cmp = "="
		}
		return fmt.Sprintf("COALESCE(jsonb_typeof(body #> %s), 'null') %s 'null'", p, cmp), nil
	default:
		return "", fmt.Errorf("unsupported operator %q", c.Op)
	}
}

// where renders the filter. Soft-deleted rows are always excluded.
func (b *sqlBuilder) where(f domain.Filter) (string, error) {
	clauses := []string{"deleted_at IS NULL"}
	for _, c := range f.All {
		sql, err := b.cond(c)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, sql)
	}
	if len(f.Any) > 0 {
		var alts []string
		for _, c := range f.Any {
			sql, err := b.cond(c)
			if err != nil {
				return "", err
			}
			alts = append(alts, sql)
		}
		clauses = append(clauses, "("+strings.Join(alts, " OR ")+")")
	}
	return strings.Join(clauses, " AND "), nil
}

func (b *sqlBuilder) orderBy(fields []domain.SortField) (string, error) {
	var parts []string
	for _, s := range fields {
		expr, ok := columnFields[s.Field]
		if !ok {
			p, err := b.path(s.Field)
			if err != nil {
				return "", err
			}
			expr = "(body #> " + p + ")"
		}
		if s.Desc {
			expr += " DESC"
		}
		parts = append(parts, expr)
	}
	parts = append(parts, "id")
	return strings.Join(parts, ", "), nil
}

// setExpr nests one jsonb_set call per field, in key order.
func (b *sqlBuilder) setExpr(base string, set map[string]any) (string, error) {
	expr := base
	for _, field := range sortedKeys(set) {
		p, err := b.path(field)
		if err != nil {
			return "", err
		}
		v, err := b.jsonArg(set[field])
		if err != nil {
			return "", err
		}
		expr = fmt.Sprintf("jsonb_set(%s, %s, %s, true)", expr, p, v)
	}
	return expr, nil
}

func (b *sqlBuilder) incExpr(base string, inc map[string]int64) (string, error) {
	expr := base
	for _, field := range sortedKeys(inc) {
		p, err := b.path(field)
		if err != nil {
			return "", err
		}
		expr = fmt.Sprintf("jsonb_set(%s, %s, to_jsonb(COALESCE((body #>> %s)::bigint, 0) + %s::bigint), true)",
			expr, p, p, b.arg(inc[field]))
	}
	return expr, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func tableName(collection string) string {
	return pq.QuoteIdentifier(collection)
}
