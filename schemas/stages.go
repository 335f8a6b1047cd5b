package schemas

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	STAGE_KEY_NEW       = "new"
	STAGE_KEY_COMPLETED = "completed"

	STAGE_NEW_LEAD       = "New Lead"
	STAGE_COMPLETED_LEAD = "Completed Lead"
)

// Stage is one step of the lead pipeline. Leads reference it by ID; Name is
// a mutable display attribute. Key marks the protected boundary stages.
type Stage struct {
	ID    bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name  string        `json:"name" bson:"name"`
	Order int           `json:"order" bson:"order"`
	Key   string        `json:"key,omitempty" bson:"key,omitempty"`
}

func (s *Stage) IsProtected() bool {
	return s.Key == STAGE_KEY_NEW || s.Key == STAGE_KEY_COMPLETED
}

// IsReservedStageName reports whether name belongs to a protected stage.
// Protected stages cannot be renamed and no other stage may take their
// names, so "New Lead" and "Completed Lead" always stay undeletable.
func IsReservedStageName(name string) bool {
	return strings.EqualFold(name, STAGE_NEW_LEAD) || strings.EqualFold(name, STAGE_COMPLETED_LEAD)
}

// DefaultStages is the catalog seeded into an empty stages collection.
func DefaultStages() []Stage {
	return []Stage{
		{Name: STAGE_NEW_LEAD, Order: 0, Key: STAGE_KEY_NEW},
		{Name: "Contacted", Order: 1},
		{Name: "In Progress", Order: 2},
		{Name: "Negotiation", Order: 3},
		{Name: STAGE_COMPLETED_LEAD, Order: 4, Key: STAGE_KEY_COMPLETED},
		{Name: "Lost", Order: 5},
	}
}
