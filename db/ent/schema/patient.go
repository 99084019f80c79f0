package schema

import (
	"errors"
	"regexp"
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"
)

var (
	reDOB         = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	errInvalidDOB = errors.New("date of birth must be MM/DD/YYYY")
)

type Patient struct{ ent.Schema }

func (Patient) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "patients"},
	}
}

func (Patient) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable().
			StorageKey("id"),
		field.String("first_name").Optional().Nillable().MaxLen(100),
		field.String("last_name").Optional().Nillable().MaxLen(100),
		field.String("date_of_birth").Optional().Nillable().
			Validate(func(s string) error {
				if s == "" || reDOB.MatchString(s) {
					return nil
				}
				return errInvalidDOB
			}),
		field.String("extracted_from").Optional().Nillable(),
		field.Time("created_at").Default(time.Now),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
	}
}

func (Patient) Edges() []ent.Edge {
	return []ent.Edge{
		// ONE patient -> MANY orders
		edge.To("orders", Order.Type),
	}
}

func (Patient) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("last_name", "first_name"),
	}
}
