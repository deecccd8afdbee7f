package form

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tbxark/formbot/types"
)

func TestCategoricalValidate(t *testing.T) {
	v := Categorical{Reference: CuisineDB, Template: "wrong_cuisine"}
	cases := []struct {
		in   types.Value
		want Outcome
	}{
		{types.String("Italian"), Outcome{Value: types.String("italian")}},
		{types.String("MEXICAN"), Outcome{Value: types.String("mexican")}},
		{types.String("greek"), Outcome{Value: types.String("greek")}},
		{types.String("korean"), Outcome{Value: types.Null(), Template: "wrong_cuisine"}},
		{types.String(""), Outcome{Value: types.Null(), Template: "wrong_cuisine"}},
		{types.Bool(true), Outcome{Value: types.Null(), Template: "wrong_cuisine"}},
	}
	for _, tc := range cases {
		got := v.Validate(tc.in)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Validate(%v) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestPositiveIntValidate(t *testing.T) {
	v := PositiveInt{Template: "wrong_num_people"}
	rejected := []types.Value{
		types.String("-3"),
		types.String("0"),
		types.String("four"),
		types.String("2.5"),
		types.String("number of people not known"),
		types.Bool(true),
		types.Null(),
	}
	for _, in := range rejected {
		got := v.Validate(in)
		if !got.Value.IsNull() || got.Template != "wrong_num_people" {
			t.Errorf("Validate(%v) = %+v, want null with message", in, got)
		}
	}
	for _, in := range []string{"1", "4", "12", " 7 "} {
		got := v.Validate(types.String(in))
		if got.Template != "" {
			t.Errorf("Validate(%q) sent %q", in, got.Template)
		}
		if !got.Value.Equal(types.String(in)) {
			t.Errorf("Validate(%q) = %v, want value kept", in, got.Value)
		}
	}
}

func TestTriStateBoolValidate(t *testing.T) {
	v := TriStateBool{}
	cases := []struct {
		in   types.Value
		want types.Value
	}{
		{types.Bool(true), types.Bool(true)},
		{types.Bool(false), types.Bool(false)},
		{types.String("outside please"), types.Bool(true)},
		{types.String("outdoor"), types.Bool(true)},
		{types.String("inside"), types.Bool(false)},
		{types.String("indoors is fine"), types.Bool(false)},
		// "out" wins over "in"
		{types.String("outside, not inside"), types.Bool(true)},
		{types.String("no idea"), types.String("no idea")},
		{types.String("Outside"), types.String("Outside")},
	}
	for _, tc := range cases {
		got := v.Validate(tc.in)
		if got.Template != "" {
			t.Errorf("Validate(%v) sent %q", tc.in, got.Template)
		}
		if !got.Value.Equal(tc.want) {
			t.Errorf("Validate(%v) = %v, want %v", tc.in, got.Value, tc.want)
		}
	}
}

func TestValidatorsAreIdempotent(t *testing.T) {
	validators := []Validator{
		Categorical{Reference: CuisineDB, Template: "wrong_cuisine"},
		PositiveInt{Template: "wrong_num_people"},
		TriStateBool{},
		Passthrough{},
	}
	inputs := []types.Value{
		types.String("Chinese"),
		types.String("4"),
		types.String("outside"),
		types.String("anything"),
		types.Bool(false),
	}
	for _, v := range validators {
		for _, in := range inputs {
			first := v.Validate(in)
			if first.Value.IsNull() {
				continue
			}
			second := v.Validate(first.Value)
			if !second.Value.Equal(first.Value) {
				t.Errorf("%T: re-validating %v gave %v, want %v", v, first.Value, second.Value, first.Value)
			}
		}
	}
}
