package schema

import (
	"encoding/json"
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"
)

type ActivityLog struct{ ent.Schema }

func (ActivityLog) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "activity_logs"},
	}
}

func (ActivityLog) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable().
			StorageKey("id"),
		field.String("action").NotEmpty(),
		field.String("entity_type").NotEmpty(),
		field.String("entity_id").NotEmpty(),
		field.JSON("details", json.RawMessage{}).Optional(),
		field.Time("ts").Default(time.Now).Immutable(),
	}
}

func (ActivityLog) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("ts"),
		index.Fields("entity_type", "entity_id"),
	}
}
