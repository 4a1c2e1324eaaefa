package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"go-recruitment-platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

// DocumentStore keeps every collection in its own table of JSONB documents.
// Document field names are the json tags of the domain types.
type DocumentStore struct {
	db *pgxpool.Pool
}

func NewDocumentStore(db *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{db: db}
}

// Migrate creates the document tables and their indexes.
func (s *DocumentStore) Migrate(ctx context.Context, collections ...string) error {
	for _, collection := range collections {
		table := tableName(collection)
		stmts := []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				body JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				deleted_at TIMESTAMPTZ
			)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (body)`,
				tableName(collection+"_body_gin"), table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (created_at DESC) WHERE deleted_at IS NULL`,
				tableName(collection+"_live_created"), table),
		}
		for _, stmt := range stmts {
			if _, err := s.db.Exec(ctx, stmt); err != nil {
				return wrapErr("migrate "+collection, err)
			}
		}
	}
	return nil
}

func (s *DocumentStore) FindByID(ctx context.Context, collection, id string, out any) error {
	query := fmt.Sprintf(`SELECT body FROM %s WHERE id = $1 AND deleted_at IS NULL`, tableName(collection))
	var body []byte
	if err := s.db.QueryRow(ctx, query, id).Scan(&body); err != nil {
		return wrapErr("find "+collection, err)
	}
	return json.Unmarshal(body, out)
}

func (s *DocumentStore) FindOne(ctx context.Context, collection string, filter domain.Filter, out any) error {
	b := &sqlBuilder{}
	where, err := b.where(filter)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`SELECT body FROM %s WHERE %s ORDER BY id LIMIT 1`, tableName(collection), where)
	var body []byte
	if err := s.db.QueryRow(ctx, query, b.args...).Scan(&body); err != nil {
		return wrapErr("find one "+collection, err)
	}
	return json.Unmarshal(body, out)
}

func (s *DocumentStore) FindPage(ctx context.Context, collection string, q domain.Query, out any) error {
	b := &sqlBuilder{}
	where, err := b.where(q.Filter)
	if err != nil {
		return err
	}
	order, err := b.orderBy(q.Sort)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`SELECT body FROM %s WHERE %s ORDER BY %s`, tableName(collection), where, order)
	if q.Limit > 0 {
		query += " LIMIT " + b.arg(q.Limit)
	}
	if q.Skip > 0 {
		query += " OFFSET " + b.arg(q.Skip)
	}

	rows, err := s.db.Query(ctx, query, b.args...)
	if err != nil {
		return wrapErr("query "+collection, err)
	}
	defer rows.Close()

	// Rows are stitched into one JSON array so any slice type can be decoded.
	var buf bytes.Buffer
	buf.WriteByte('[')
	first := true
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return wrapErr("scan "+collection, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(body)
	}
	if err := rows.Err(); err != nil {
		return wrapErr("query "+collection, err)
	}
	buf.WriteByte(']')
	return json.Unmarshal(buf.Bytes(), out)
}

func (s *DocumentStore) Count(ctx context.Context, collection string, filter domain.Filter) (int64, error) {
	b := &sqlBuilder{}
	where, err := b.where(filter)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s`, tableName(collection), where)
	var total int64
	if err := s.db.QueryRow(ctx, query, b.args...).Scan(&total); err != nil {
		return 0, wrapErr("count "+collection, err)
	}
	return total, nil
}

func (s *DocumentStore) Insert(ctx context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, body) VALUES ($1, $2::jsonb)`, tableName(collection))
	if _, err := s.db.Exec(ctx, query, id, string(body)); err != nil {
		return wrapErr("insert "+collection, err)
	}
	return nil
}

func (s *DocumentStore) Replace(ctx context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	query := fmt.Sprintf(`UPDATE %s SET body = $2::jsonb, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		tableName(collection))
	return s.execOne(ctx, "replace "+collection, query, id, string(body))
}

func (s *DocumentStore) UpdateFields(ctx context.Context, collection, id string, set map[string]any) error {
	if len(set) == 0 {
		return nil
	}
	b := &sqlBuilder{}
	idArg := b.arg(id)
	expr, err := b.setExpr("body", set)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET body = %s, updated_at = now() WHERE id = %s AND deleted_at IS NULL`,
		tableName(collection), expr, idArg)
	return s.execOne(ctx, "update "+collection, query, b.args...)
}

func (s *DocumentStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	b := &sqlBuilder{}
	idArg := b.arg(id)
	expr, err := b.incExpr("body", map[string]int64{field: delta})
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET body = %s WHERE id = %s AND deleted_at IS NULL`,
		tableName(collection), expr, idArg)
	return s.execOne(ctx, "increment "+collection, query, b.args...)
}

// PushToArray appends in a single UPDATE. The uniqueness guard sits in the
// WHERE clause, so a concurrent push re-evaluates it against the committed
// row and loses cleanly.
func (s *DocumentStore) PushToArray(ctx context.Context, collection, id string, push domain.ArrayPush) error {
	b := &sqlBuilder{}
	idArg := b.arg(id)
	p, err := b.path(push.Array)
	if err != nil {
		return err
	}
	v, err := b.jsonArg(push.Value)
	if err != nil {
		return err
	}
	expr := fmt.Sprintf("jsonb_set(body, %s, COALESCE(body #> %s, '[]'::jsonb) || jsonb_build_array(%s), true)", p, p, v)
	expr, err = b.incExpr(expr, push.Inc)
	if err != nil {
		return err
	}

	where := fmt.Sprintf("id = %s AND deleted_at IS NULL", idArg)
	if push.UniqueBy != "" {
		guard, err := b.jsonArg([]any{map[string]any{push.UniqueBy: push.UniqueValue}})
		if err != nil {
			return err
		}
		where += fmt.Sprintf(" AND NOT (COALESCE(body #> %s, '[]'::jsonb) @> %s)", p, guard)
	}

	query := fmt.Sprintf(`UPDATE %s SET body = %s, updated_at = now() WHERE %s`, tableName(collection), expr, where)
	tag, err := s.db.Exec(ctx, query, b.args...)
	if err != nil {
		return wrapErr("push "+collection, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if push.UniqueBy == "" {
		return domain.ErrNotFound
	}
	exists, err := s.exists(ctx, collection, id)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicate
	}
	return domain.ErrNotFound
}

// UpdateArrayElement locks the row, edits the element in memory and writes
// the document back inside one transaction.
func (s *DocumentStore) UpdateArrayElement(ctx context.Context, collection, id string, update domain.ArrayElementUpdate) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return wrapErr("begin "+collection, err)
	}
	defer tx.Rollback(ctx)

	table := tableName(collection)
	var body []byte
	err = tx.QueryRow(ctx, fmt.Sprintf(`SELECT body FROM %s WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, table), id).Scan(&body)
	if err != nil {
		return wrapErr("lock "+collection, err)
	}

	updated, err := applyElementUpdate(body, update)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf(`UPDATE %s SET body = $2::jsonb, updated_at = now() WHERE id = $1`, table), id, string(updated)); err != nil {
		return wrapErr("update "+collection, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit "+collection, err)
	}
	return nil
}

func (s *DocumentStore) SoftDelete(ctx context.Context, collection, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, tableName(collection))
	return s.execOne(ctx, "delete "+collection, query, id)
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return wrapErr("ping", err)
	}
	return nil
}

func (s *DocumentStore) exists(ctx context.Context, collection, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1 AND deleted_at IS NULL)`, tableName(collection))
	var ok bool
	if err := s.db.QueryRow(ctx, query, id).Scan(&ok); err != nil {
		return false, wrapErr("exists "+collection, err)
	}
	return ok, nil
}

func (s *DocumentStore) execOne(ctx context.Context, op, query string, args ...any) error {
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return wrapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// applyElementUpdate edits the matching array element of a raw document.
func applyElementUpdate(body []byte, update domain.ArrayElementUpdate) ([]byte, error) {
	doc, err := decodeGeneric(body)
	if err != nil {
		return nil, err
	}
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, errors.New("document is not an object")
	}

	items, _ := lookup(root, update.Array).([]any)
	want := fmt.Sprint(update.MatchValue)
	var elem map[string]any
	for _, item := range items {
		m, ok := item.(map[string]any)
		if ok && fmt.Sprint(m[update.MatchField]) == want {
			elem = m
			break
		}
	}
	if elem == nil {
		return nil, domain.ErrNotFound
	}

	for _, k := range sortedKeys(update.Set) {
		v, err := toGeneric(update.Set[k])
		if err != nil {
			return nil, err
		}
		elem[k] = v
	}
	for _, k := range sortedKeys(update.Push) {
		v, err := toGeneric(update.Push[k])
		if err != nil {
			return nil, err
		}
		existing, _ := elem[k].([]any)
		elem[k] = append(existing, v)
	}
	return json.Marshal(root)
}

func lookup(root map[string]any, field string) any {
	var cur any = root
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeGeneric(raw)
}

// decodeGeneric keeps numbers as json.Number so int64 counters survive the
// round trip.
func decodeGeneric(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func wrapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.ErrDuplicate
	}
	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
