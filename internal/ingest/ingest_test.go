package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

var textFields = []string{"recipe_name", "diet_type", "cuisine_type", "protein(g)", "carbs(g)", "fat(g)"}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_CSV(t *testing.T) {
	path := writeFile(t, "data.csv", "id,recipe_name,diet_type,cuisine_type,protein(g),carbs(g),fat(g),vegan\n"+
		"1,Lentil Soup,vegan,mediterranean,18,40.5,6,True\n"+
		"2,Chicken Bowl,paleo,american,45.2,12,,False\n")

	docs, err := Load(path, textFields, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}

	d := docs[0]
	want := map[string]string{
		"id":           "1",
		"recipe_name":  "Lentil Soup",
		"protein(g)":   "18.0",
		"carbs(g)":     "40.5",
		"fat(g)":       "6.0",
		"cuisine_type": "mediterranean",
		"vegan":        "True",
	}
	for k, v := range want {
		if got := d.Value(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if got := docs[1].Value("fat(g)"); got != "" {
		t.Errorf("empty cell = %q, want empty", got)
	}
}

func TestLoad_EveryValueIsText(t *testing.T) {
	path := writeFile(t, "data.csv", "id,recipe_name,protein(g)\n1,A,1\n2,B,2.5\n")

	docs, err := Load(path, textFields, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, d := range docs {
		if d.Len() != 3 {
			t.Errorf("expected 3 fields, got %d", d.Len())
		}
		for _, name := range d.Names() {
			if _, ok := d.Get(name); !ok {
				t.Errorf("field %s missing", name)
			}
		}
	}
	if got := docs[0].Value("protein(g)"); got != "1.0" {
		t.Errorf("protein(g) = %q, want 1.0 (column typed as float)", got)
	}
}

func TestLoad_MissingDeclaredFieldSkipped(t *testing.T) {
	path := writeFile(t, "data.csv", "id,recipe_name\n1,Soup\n")

	docs, err := Load(path, textFields, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := docs[0].Get("fat(g)"); ok {
		t.Error("absent column must not be invented")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv"), textFields, nil); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeFile(t, "data.json", "[]"), textFields, nil); err == nil {
		t.Error("expected error for unsupported format")
	}
	if _, err := Load(writeFile(t, "empty.csv", ""), textFields, nil); err == nil {
		t.Error("expected error for empty csv")
	}
	if _, err := Load(writeFile(t, "ragged.csv", "id,recipe_name\n1\n"), textFields, nil); err == nil {
		t.Error("expected error for ragged csv")
	}
}

type parquetRecipe struct {
	ID          int64   `parquet:"id"`
	RecipeName  string  `parquet:"recipe_name"`
	DietType    string  `parquet:"diet_type"`
	CuisineType string  `parquet:"cuisine_type"`
	Protein     float64 `parquet:"protein(g)"`
	Carbs       float64 `parquet:"carbs(g)"`
	Fat         float64 `parquet:"fat(g)"`
	Vegan       bool    `parquet:"vegan"`
}

func TestLoad_Parquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.parquet")
	rows := []parquetRecipe{
		{ID: 1, RecipeName: "Lentil Soup", DietType: "vegan", CuisineType: "mediterranean",
			Protein: 18, Carbs: 40.5, Fat: 6.25, Vegan: true},
		{ID: 2, RecipeName: "Chicken Bowl", DietType: "paleo", CuisineType: "american",
			Protein: 45.2, Carbs: 12, Fat: 9},
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}

	docs, err := Load(path, textFields, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}

	want := map[string]string{
		"id":          "1",
		"recipe_name": "Lentil Soup",
		"protein(g)":  "18.0",
		"carbs(g)":    "40.5",
		"fat(g)":      "6.25",
		"vegan":       "True",
	}
	for k, v := range want {
		if got := docs[0].Value(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if got := docs[1].Value("recipe_name"); got != "Chicken Bowl" {
		t.Errorf("recipe_name = %q", got)
	}
}
