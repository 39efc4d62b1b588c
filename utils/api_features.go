package utils

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

var operatorKey = regexp.MustCompile(`^([A-Za-z0-9_.]+)\[(gte|gt|lte|lt)\]$`)

// reserved query params consumed by pagination/sorting, never treated as filters.
var reservedParams = map[string]bool{
	"page":   true,
	"limit":  true,
	"sort":   true,
	"fields": true,
}

// QueryFeatures translates list-endpoint query params (page, limit, sort,
// fields, and field[gte|gt|lte|lt] comparisons) into a Mongo filter and
// find options.
type QueryFeatures struct {
	Filter bson.M
	Page   int64
	Limit  int64

	sort       bson.D
	projection bson.D
}

// ParseQuery builds QueryFeatures from raw URL query values. base carries
// filter conditions the endpoint itself imposes; caller-supplied params
// never override them.
func ParseQuery(values url.Values, base bson.M) *QueryFeatures {
	f := &QueryFeatures{Filter: bson.M{}}

	for key, vals := range values {
		if reservedParams[key] || len(vals) == 0 {
			continue
		}
		if m := operatorKey.FindStringSubmatch(key); m != nil {
			field, op := m[1], "$"+m[2]
			cond, ok := f.Filter[field].(bson.M)
			if !ok {
				cond = bson.M{}
			}
			cond[op] = coerceValue(vals[0])
			f.Filter[field] = cond
			continue
		}
		f.Filter[key] = coerceValue(vals[0])
	}

	for key, val := range base {
		f.Filter[key] = val
	}

	f.Page = parseInt(values.Get("page"), 1)
	if f.Page < 1 {
		f.Page = 1
	}
	f.Limit = parseInt(values.Get("limit"), defaultLimit)
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}

	f.sort = parseSort(values.Get("sort"))
	f.projection = parseFields(values.Get("fields"))

	return f
}

// FindOptions returns mongo find options applying sort, projection and
// pagination.
func (f *QueryFeatures) FindOptions() *options.FindOptions {
	opts := options.Find().
		SetSort(f.sort).
		SetSkip((f.Page - 1) * f.Limit).
		SetLimit(f.Limit)
	if len(f.projection) > 0 {
		opts.SetProjection(f.projection)
	}
	return opts
}

func parseSort(raw string) bson.D {
	if raw == "" {
		return bson.D{{Key: "created_at", Value: -1}}
	}
	var sort bson.D
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		order := 1
		if strings.HasPrefix(field, "-") {
			order = -1
			field = field[1:]
		}
		sort = append(sort, bson.E{Key: field, Value: order})
	}
	if len(sort) == 0 {
		return bson.D{{Key: "created_at", Value: -1}}
	}
	return sort
}

func parseFields(raw string) bson.D {
	if raw == "" {
		return nil
	}
	var projection bson.D
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		projection = append(projection, bson.E{Key: field, Value: 1})
	}
	return projection
}

func parseInt(raw string, fallback int64) int64 {
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// coerceValue turns numeric and boolean query strings into their typed
// form so Mongo comparisons behave numerically.
func coerceValue(raw string) interface{} {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
