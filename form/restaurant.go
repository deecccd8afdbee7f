package form

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/eino-contrib/jsonschema"
	"github.com/tbxark/formbot/responder"
	"github.com/tbxark/formbot/types"
)

const RestaurantFormName = "restaurant_form"

const (
	SlotCuisine        = "cuisine"
	SlotNumPeople      = "num_people"
	SlotOutdoorSeating = "outdoor_seating"
	SlotPreferences    = "preferences"
	SlotFeedback       = "feedback"
)

// CuisineDB lists the supported cuisines.
var CuisineDB = []string{
	"caribbean",
	"chinese",
	"french",
	"greek",
	"indian",
	"italian",
	"mexican",
}

type RestaurantBooking struct {
	Cuisine        string `json:"cuisine" jsonschema:"description=Cuisine of the restaurant,enum=caribbean,enum=chinese,enum=french,enum=greek,enum=indian,enum=italian,enum=mexican"`
	NumPeople      int    `json:"num_people" jsonschema:"description=Number of guests,minimum=1"`
	OutdoorSeating any    `json:"outdoor_seating" jsonschema:"description=True for outside seating and false for inside seating"`
	Preferences    string `json:"preferences" jsonschema:"description=Additional preferences or 'no additional preferences'"`
	Feedback       string `json:"feedback" jsonschema:"description=Feedback on the experience so far"`
}

type RestaurantForm struct {
	*SlotForm
}

var _ Form = (*RestaurantForm)(nil)

func NewRestaurantForm(opts ...Option) *RestaurantForm {
	slots := []SlotSpec{
		{
			Name:        SlotCuisine,
			DisplayName: "Cuisine",
			Mapping:     []Strategy{Entity("cuisine")},
			Validator:   Categorical{Reference: CuisineDB, Template: responder.TemplateWrongCuisine},
		},
		{
			Name:        SlotNumPeople,
			DisplayName: "Number of people",
			Mapping: []Strategy{
				Entity("number"),
				Intent("deny", types.String("number of people not known")),
			},
			Validator: PositiveInt{Template: responder.TemplateWrongNumPeople},
		},
		{
			Name:        SlotOutdoorSeating,
			DisplayName: "Outdoor seating",
			Mapping: []Strategy{
				Entity("seating"),
				Intent("affirm", types.Bool(true)),
				Intent("deny", types.Bool(false)),
			},
			Validator: TriStateBool{},
		},
		{
			Name:        SlotPreferences,
			DisplayName: "Preferences",
			Mapping: []Strategy{
				Text("inform"),
				Intent("deny", types.String("no additional preferences")),
			},
			Validator: Passthrough{},
		},
		{
			Name:        SlotFeedback,
			DisplayName: "Feedback",
			Mapping: []Strategy{
				Entity("feedback"),
				Text(),
			},
			Validator: Passthrough{},
		},
	}
	return &RestaurantForm{SlotForm: NewSlotForm(RestaurantFormName, slots, opts...)}
}

func (RestaurantForm) JsonSchema() (string, error) {
	schema := jsonschema.Reflect(&RestaurantBooking{})
	schema.Title = "Restaurant booking"
	schema.Description = "Slots collected by the restaurant form: cuisine, number of people, outdoor seating, preferences and feedback."
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return string(schemaBytes), nil
}

// Booking builds the typed record from the tracker slots.
func (f *RestaurantForm) Booking(tracker *types.Tracker) RestaurantBooking {
	b := RestaurantBooking{
		Cuisine:     tracker.Slot(SlotCuisine).Text(),
		Preferences: tracker.Slot(SlotPreferences).Text(),
		Feedback:    tracker.Slot(SlotFeedback).Text(),
	}
	if n, err := strconv.Atoi(tracker.Slot(SlotNumPeople).Text()); err == nil {
		b.NumPeople = n
	}
	seating := tracker.Slot(SlotOutdoorSeating)
	if v, ok := seating.Boolean(); ok {
		b.OutdoorSeating = v
	} else if !seating.IsNull() {
		b.OutdoorSeating = seating.Text()
	}
	return b
}
