package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseQuery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f := ParseQuery(url.Values{}, bson.M{})
		assert.Equal(t, int64(1), f.Page)
		assert.Equal(t, int64(10), f.Limit)
		assert.Empty(t, f.Filter)
	})

	t.Run("plain equality filters are coerced", func(t *testing.T) {
		values := url.Values{}
		values.Set("featured", "true")
		values.Set("stock", "5")
		values.Set("tags", "audio")

		f := ParseQuery(values, bson.M{})

		assert.Equal(t, true, f.Filter["featured"])
		assert.Equal(t, 5.0, f.Filter["stock"])
		assert.Equal(t, "audio", f.Filter["tags"])
	})

	t.Run("comparison operators build range conditions", func(t *testing.T) {
		values := url.Values{}
		values.Set("price[gte]", "10")
		values.Set("price[lte]", "100")

		f := ParseQuery(values, bson.M{})

		cond, ok := f.Filter["price"].(bson.M)
		assert.True(t, ok)
		assert.Equal(t, 10.0, cond["$gte"])
		assert.Equal(t, 100.0, cond["$lte"])
	})

	t.Run("base conditions override caller filters", func(t *testing.T) {
		values := url.Values{}
		values.Set("is_active", "false")

		f := ParseQuery(values, bson.M{"is_active": true})

		assert.Equal(t, true, f.Filter["is_active"])
	})

	t.Run("limit is clamped to the maximum", func(t *testing.T) {
		values := url.Values{}
		values.Set("limit", "5000")
		values.Set("page", "-3")

		f := ParseQuery(values, bson.M{})

		assert.Equal(t, int64(100), f.Limit)
		assert.Equal(t, int64(1), f.Page)
	})

	t.Run("reserved params never become filters", func(t *testing.T) {
		values := url.Values{}
		values.Set("page", "2")
		values.Set("sort", "-price")
		values.Set("fields", "name,price")
		values.Set("limit", "20")

		f := ParseQuery(values, bson.M{})

		assert.Empty(t, f.Filter)
		assert.Equal(t, int64(2), f.Page)
		assert.Equal(t, int64(20), f.Limit)
	})
}

func TestPaginationMeta(t *testing.T) {
	values := url.Values{}
	values.Set("page", "2")
	values.Set("limit", "10")
	f := ParseQuery(values, bson.M{})

	meta := f.Meta(25)

	assert.Equal(t, int64(25), meta.Total)
	assert.Equal(t, int64(2), meta.Page)
	assert.Equal(t, int64(3), meta.Pages)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.50, Round2(2.5000001))
	assert.Equal(t, 33.49, Round2(33.489999999))
	assert.Equal(t, 0.0, Round2(0))
}

func TestFilterFields(t *testing.T) {
	in := map[string]interface{}{
		"name":  "Alice",
		"email": "alice@example.com",
		"role":  "Superadmin",
	}

	out := FilterFields(in, "name", "email")

	assert.Equal(t, "Alice", out["name"])
	assert.Equal(t, "alice@example.com", out["email"])
	assert.NotContains(t, out, "role")
}
