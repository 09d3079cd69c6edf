package mapper

import (
	"testing"

	"eshop-api/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFields_WhitelistOnly(t *testing.T) {
	user := &domain.User{
		ID:           primitive.NewObjectID(),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "$2a$12$secret",
		Phone:        "555-0100",
		IsAdmin:      true,
		City:         "London",
	}

	doc := Fields(user, "name", "email", "phone")

	assert.Equal(t, "Ada", doc["name"])
	assert.Equal(t, "ada@example.com", doc["email"])
	assert.Equal(t, "555-0100", doc["phone"])
	assert.NotContains(t, doc, "passwordHash")
	assert.NotContains(t, doc, "isAdmin")
	assert.NotContains(t, doc, "_id")
	assert.Len(t, doc, 3)
}

func TestFields_UnknownNamesIgnored(t *testing.T) {
	doc := Fields(domain.Category{Name: "Tools"}, "name", "no_such_field")
	assert.Equal(t, map[string]interface{}{"name": "Tools"}, map[string]interface{}(doc))
}

func TestFields_PanicsOnNonStruct(t *testing.T) {
	assert.Panics(t, func() { Fields(42, "name") })
}

func TestSet_WrapsInSetOperator(t *testing.T) {
	doc := Set(domain.Category{Name: "Tools", Icon: "wrench"}, "name", "icon")
	inner, ok := doc["$set"]
	assert.True(t, ok)
	assert.Len(t, inner, 2)
}

// Whatever the document holds, nothing outside the whitelist may appear
// in the update.
func TestProperty_MappingNeverLeaksNonWhitelistedFields(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("only whitelisted names appear in the output", prop.ForAll(
		func(name, email, hash, city string) bool {
			user := &domain.User{
				Name:         name,
				Email:        email,
				PasswordHash: hash,
				City:         city,
			}
			doc := Fields(user, "name", "email")
			if len(doc) != 2 {
				return false
			}
			_, hasHash := doc["passwordHash"]
			_, hasCity := doc["city"]
			return !hasHash && !hasCity
		},
		gen.AnyString(),
		gen.AnyString(),
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
