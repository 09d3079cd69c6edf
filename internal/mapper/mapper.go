// Package mapper builds partial update documents from domain structs.
//
// Every resource in this API persists updates the same way: copy a fixed,
// whitelisted set of fields from an incoming value into a $set document.
// Instead of repeating that field-by-field per resource, each repository
// declares its field list once and feeds it through Fields.
package mapper

import (
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Fields returns a bson.M holding only the struct fields of v whose bson
// tag name appears in names. v must be a struct or a pointer to one;
// anything else panics, since a wrong argument type is a programming
// error, not a runtime condition.
func Fields(v interface{}, names ...string) bson.M {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		panic(fmt.Sprintf("mapper: expected struct, got %T", v))
	}

	allowed := make(map[string]bool, len(names))
	for _, name := range names {
		allowed[name] = true
	}

	doc := bson.M{}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		name := bsonName(field)
		if name == "" || !allowed[name] {
			continue
		}
		doc[name] = rv.Field(i).Interface()
	}
	return doc
}

// Set wraps Fields in a {$set: ...} update document.
func Set(v interface{}, names ...string) bson.M {
	return bson.M{"$set": Fields(v, names...)}
}

// bsonName resolves the persisted field name: the first element of the
// bson tag, or the lower-cased Go field name when untagged (matching the
// driver's default).
func bsonName(field reflect.StructField) string {
	tag, ok := field.Tag.Lookup("bson")
	if !ok {
		return strings.ToLower(field.Name)
	}
	name := strings.Split(tag, ",")[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return strings.ToLower(field.Name)
	}
	return name
}
