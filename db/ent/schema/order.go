package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"

	"github.com/clinops/docintake/constants"
	"github.com/clinops/docintake/utils"
)

type Order struct{ ent.Schema }

func (Order) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "orders"},
	}
}

func (Order) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable().
			StorageKey("id"),
		field.UUID("patient_id", uuid.UUID{}).Optional().Nillable(),
		field.String("order_type").NotEmpty().Default("general"),
		field.String("description").Optional().Nillable(),
		field.String("status").
			Default(string(constants.OrderStatusPending)).
			Validate(utils.EnumValidator(constants.OrderStatuses()...)),
		field.Time("created_at").Default(time.Now),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
		field.Time("completed_at").Optional().Nillable(),
	}
}

func (Order) Edges() []ent.Edge {
	return []ent.Edge{
		// MANY orders -> ONE patient (FK: orders.patient_id)
		edge.From("patient", Patient.Type).
			Ref("orders").
			Field("patient_id").
			Unique(),
		// ONE order -> MANY documents
		edge.To("documents", Document.Type),
	}
}

func (Order) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
	}
}
