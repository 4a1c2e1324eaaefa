package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"

	"go-recruitment-platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereBuilder(t *testing.T) {
	t.Run("Empty filter still excludes deleted rows", func(t *testing.T) {
		b := &sqlBuilder{}
		sql, err := b.where(domain.Filter{})
		require.NoError(t, err)
		assert.Equal(t, "deleted_at IS NULL", sql)
		assert.Empty(t, b.args)
	})

	t.Run("Recruiter listing renders an OR group", func(t *testing.T) {
		b := &sqlBuilder{}
		sql, err := b.where(domain.JobListFilter(domain.Viewer{ID: "r1", Role: domain.RoleRecruiter}))
		require.NoError(t, err)
		assert.Equal(t,
			"deleted_at IS NULL AND ((body #> $1::text[]) = $2::jsonb OR (body #> $3::text[]) = $4::jsonb)",
			sql)
		assert.Equal(t, []string{"status"}, b.args[0])
		assert.Equal(t, `"published"`, b.args[1])
		assert.Equal(t, []string{"createdBy"}, b.args[2])
		assert.Equal(t, `"r1"`, b.args[3])
	})

	t.Run("Nested paths are split into segments", func(t *testing.T) {
		b := &sqlBuilder{}
		sql, err := b.where(domain.PendingCompanyFilter())
		require.NoError(t, err)
		assert.Contains(t, sql, "COALESCE(jsonb_typeof(body #> $1::text[]), 'null') <> 'null'")
		assert.Equal(t, []string{"company", "verified"}, b.args[1])
		assert.Equal(t, "false", b.args[2])
	})

	t.Run("Match escapes LIKE wildcards", func(t *testing.T) {
		b := &sqlBuilder{}
		sql, err := b.cond(domain.Match("title", "50%_off"))
		require.NoError(t, err)
		assert.Equal(t, "(body #>> $1::text[]) ILIKE $2", sql)
		assert.Equal(t, `%50\%\_off%`, b.args[1])
	})

	t.Run("ContainsAny uses the array key operator", func(t *testing.T) {
		b := &sqlBuilder{}
		sql, err := b.cond(domain.ContainsAny("categories", []string{"it", "design"}))
		require.NoError(t, err)
		assert.Equal(t, "(body #> $1::text[]) ?| $2::text[]", sql)
	})

	t.Run("ElemMatch wraps the object in an array", func(t *testing.T) {
		b := &sqlBuilder{}
		sql, err := b.cond(domain.ElemMatch("applicants", map[string]any{"applicantId": "u1"}))
		require.NoError(t, err)
		assert.Equal(t, "(body #> $1::text[]) @> $2::jsonb", sql)
		assert.JSONEq(t, `[{"applicantId":"u1"}]`, b.args[1].(string))
	})

	t.Run("Rejects field paths that could inject SQL", func(t *testing.T) {
		b := &sqlBuilder{}
		_, err := b.cond(domain.Eq("status') OR 1=1 --", "x"))
		assert.Error(t, err)
	})

	t.Run("In requires a string slice", func(t *testing.T) {
		b := &sqlBuilder{}
		_, err := b.cond(domain.Cond{Field: "status", Op: domain.OpIn, Value: 3})
		assert.Error(t, err)
	})
}

func TestOrderBy(t *testing.T) {
	b := &sqlBuilder{}
	sql, err := b.orderBy([]domain.SortField{domain.ParseSort("-createdAt"), domain.ParseSort("title")})
	require.NoError(t, err)
	assert.Equal(t, "created_at DESC, (body #> $1::text[]), id", sql)
}

func TestSetExprIsDeterministic(t *testing.T) {
	b := &sqlBuilder{}
	expr, err := b.setExpr("body", map[string]any{"role": "recruiter", "company.verified": true})
	require.NoError(t, err)
	assert.Equal(t,
		"jsonb_set(jsonb_set(body, $1::text[], $2::jsonb, true), $3::text[], $4::jsonb, true)",
		expr)
	assert.Equal(t, []string{"company", "verified"}, b.args[0])
	assert.Equal(t, []string{"role"}, b.args[2])
}

func TestApplyElementUpdate(t *testing.T) {
	body := []byte(`{"id":"j1","views":12345678901,"applicants":[
		{"id":"a1","status":"Pending","statusHistory":[{"status":"Pending"}]},
		{"id":"a2","status":"Pending","statusHistory":[{"status":"Pending"}]}
	]}`)

	t.Run("Sets fields and appends history on the matched element only", func(t *testing.T) {
		out, err := applyElementUpdate(body, domain.ArrayElementUpdate{
			Array:      "applicants",
			MatchField: "id",
			MatchValue: "a2",
			Set:        map[string]any{"status": "Interview"},
			Push:       map[string]any{"statusHistory": map[string]any{"status": "Interview", "changedBy": "r1"}},
		})
		require.NoError(t, err)

		var doc struct {
			Views      int64 `json:"views"`
			Applicants []struct {
				ID            string           `json:"id"`
				Status        string           `json:"status"`
				StatusHistory []map[string]any `json:"statusHistory"`
			} `json:"applicants"`
		}
		require.NoError(t, json.Unmarshal(out, &doc))
		assert.Equal(t, int64(12345678901), doc.Views)
		assert.Equal(t, "Pending", doc.Applicants[0].Status)
		assert.Len(t, doc.Applicants[0].StatusHistory, 1)
		assert.Equal(t, "Interview", doc.Applicants[1].Status)
		assert.Len(t, doc.Applicants[1].StatusHistory, 2)
		assert.Equal(t, "r1", doc.Applicants[1].StatusHistory[1]["changedBy"])
	})

	t.Run("Missing element is not found", func(t *testing.T) {
		_, err := applyElementUpdate(body, domain.ArrayElementUpdate{
			Array: "applicants", MatchField: "id", MatchValue: "zzz",
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestWrapErr(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: pgUniqueViolation}, domain.ErrDuplicate},
		{"dial failure", dial, domain.ErrUnavailable},
		{"wrapped dial failure", fmt.Errorf("failed to connect to `host=db`: %w", dial), domain.ErrUnavailable},
		{"deadline", context.DeadlineExceeded, domain.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, wrapErr("find", tt.err), tt.want)
		})
	}

	t.Run("Other errors keep their cause", func(t *testing.T) {
		cause := &pgconn.PgError{Code: "42P01"}
		err := wrapErr("find", cause)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, domain.ErrUnavailable)
		assert.Contains(t, err.Error(), "find")
	})
}
