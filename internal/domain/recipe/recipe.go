// Package recipe is the typed view of a recipe document used at the template boundary.
package recipe

import (
	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/document"
)

// Dataset column names.
const (
	FieldID          = "id"
	FieldName        = "recipe_name"
	FieldDietType    = "diet_type"
	FieldCuisineType = "cuisine_type"
	FieldProtein     = "protein(g)"
	FieldCarbs       = "carbs(g)"
	FieldFat         = "fat(g)"
)

// TextFields are the columns indexed for full-text search.
var TextFields = []string{FieldName, FieldDietType, FieldCuisineType, FieldProtein, FieldCarbs, FieldFat}

// KeywordFields are the columns indexed for exact-match filtering.
var KeywordFields = []string{FieldID}

// DefaultBoosts returns the per-field retrieval weights.
// diet_type is indexed but does not contribute to scoring.
func DefaultBoosts() map[string]float64 {
	return map[string]float64{
		FieldName:        3.0,
		FieldCuisineType: 2.0,
		FieldDietType:    0.0,
		FieldProtein:     2.0,
		FieldCarbs:       1.0,
		FieldFat:         1.0,
	}
}

// Recipe holds the fields rendered into the prompt context. Macronutrients stay
// as normalized text since they are only ever displayed.
type Recipe struct {
	ID          string
	Name        string
	DietType    string
	CuisineType string
	Protein     string
	Carbs       string
	Fat         string
}

// FromDocument extracts a Recipe. Every templated field must be present;
// the id is optional since it is never rendered.
func FromDocument(d document.Document) (Recipe, error) {
	r := Recipe{ID: d.Value(FieldID)}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{FieldName, &r.Name},
		{FieldDietType, &r.DietType},
		{FieldProtein, &r.Protein},
		{FieldCarbs, &r.Carbs},
		{FieldFat, &r.Fat},
		{FieldCuisineType, &r.CuisineType},
	} {
		v, ok := d.Get(f.name)
		if !ok {
			return Recipe{}, domain.NewFormattingError(f.name)
		}
		*f.dst = v
	}
	return r, nil
}
