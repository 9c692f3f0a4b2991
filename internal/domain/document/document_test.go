package document

import (
	"reflect"
	"testing"
)

func TestNew_CopiesInput(t *testing.T) {
	src := map[string]string{"id": "1", "recipe_name": "Bowl"}
	d := New(src)
	src["recipe_name"] = "Changed"

	if got := d.Value("recipe_name"); got != "Bowl" {
		t.Errorf("recipe_name = %q, want Bowl", got)
	}
}

func TestFields_ReturnsCopy(t *testing.T) {
	d := New(map[string]string{"id": "1"})
	f := d.Fields()
	f["id"] = "2"

	if got := d.Value("id"); got != "1" {
		t.Errorf("id = %q, want 1", got)
	}
}

func TestGet_Missing(t *testing.T) {
	d := New(map[string]string{"id": "1"})
	if _, ok := d.Get("fat(g)"); ok {
		t.Error("expected missing field")
	}
	if d.Value("fat(g)") != "" {
		t.Error("expected empty value for missing field")
	}
}

func TestNames_Sorted(t *testing.T) {
	d := New(map[string]string{"z": "1", "a": "2", "m": "3"})
	if got := d.Names(); !reflect.DeepEqual(got, []string{"a", "m", "z"}) {
		t.Errorf("Names() = %v", got)
	}
	if d.Len() != 3 {
		t.Errorf("Len() = %d, want 3", d.Len())
	}
}
