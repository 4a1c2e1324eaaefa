package mongo

import (
	"fmt"
	"regexp"

	"go-recruitment-platform/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
)

const deletedAtField = "deletedAt"

// fieldName maps the top-level id onto Mongo's primary key.
func fieldName(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

func condToBSON(c domain.Cond) (bson.M, error) {
	field := fieldName(c.Field)
	switch c.Op {
	case domain.OpEq:
		return bson.M{field: c.Value}, nil
	case domain.OpNe:
		return bson.M{field: bson.M{"$ne": c.Value}}, nil
	case domain.OpIn, domain.OpContainsAny:
		values, ok := c.Value.([]string)
		if !ok {
			return nil, fmt.Errorf("%s on %s requires []string", c.Op, c.Field)
		}
		return bson.M{field: bson.M{"$in": values}}, nil
	case domain.OpElemMatch:
		match, ok := c.Value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s on %s requires a map", c.Op, c.Field)
		}
		return bson.M{field: bson.M{"$elemMatch": bson.M(match)}}, nil
	case domain.OpMatch:
		s, ok := c.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%s on %s requires a string", c.Op, c.Field)
		}
		return bson.M{field: bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}}, nil
	case domain.OpExists:
		exists, _ := c.Value.(bool)
		if exists {
			return bson.M{field: bson.M{"$exists": true, "$ne": nil}}, nil
		}
		return bson.M{field: nil}, nil
	default:
		return nil, fmt.Errorf("unsupported operator %q", c.Op)
	}
}

// filterToBSON renders the filter. Soft-deleted documents are always excluded.
func filterToBSON(f domain.Filter) (bson.M, error) {
	and := bson.A{bson.M{deletedAtField: nil}}
	for _, c := range f.All {
		m, err := condToBSON(c)
		if err != nil {
			return nil, err
		}
		and = append(and, m)
	}
	if len(f.Any) > 0 {
		or := bson.A{}
		for _, c := range f.Any {
			m, err := condToBSON(c)
			if err != nil {
				return nil, err
			}
			or = append(or, m)
		}
		and = append(and, bson.M{"$or": or})
	}
	if len(and) == 1 {
		return bson.M{deletedAtField: nil}, nil
	}
	return bson.M{"$and": and}, nil
}

func sortToBSON(fields []domain.SortField) bson.D {
	sort := bson.D{}
	for _, s := range fields {
		dir := 1
		if s.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: fieldName(s.Field), Value: dir})
	}
	return append(sort, bson.E{Key: "_id", Value: 1})
}

func byID(id string) bson.M {
	return bson.M{"_id": id, deletedAtField: nil}
}
