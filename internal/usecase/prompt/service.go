// Package prompt renders the retrieval-augmented prompt sent to the generator.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/mealmentor/internal/domain/document"
	"github.com/kailas-cloud/mealmentor/internal/domain/recipe"
)

const instruction = `You're a healthy recipe recommender. Answer the QUESTION based on the CONTEXT from our recipe database.
Use only the facts from the CONTEXT when answering the QUESTION. Do not ask any follow up questions.

QUESTION: %s

CONTEXT:
%s`

const entry = `recipe_name: %s
diet_type: %s
protein: %sg
carbs: %sg
fat: %sg
cuisine_type: %s`

// Service assembles prompts. It is stateless and safe for concurrent use.
type Service struct{}

// New creates a prompt assembler.
func New() *Service { return &Service{} }

// Build renders the question and the retrieved documents, in retrieval order.
// A document missing a templated field yields a domain.FormattingError.
func (s *Service) Build(question string, docs []document.Document) (string, error) {
	var ctxb strings.Builder
	for i, d := range docs {
		r, err := recipe.FromDocument(d)
		if err != nil {
			return "", fmt.Errorf("document %d: %w", i, err)
		}
		ctxb.WriteString(Entry(r))
		ctxb.WriteString("\n\n")
	}
	return strings.TrimSpace(fmt.Sprintf(instruction, question, ctxb.String())), nil
}

// Entry renders one recipe as a context block.
func Entry(r recipe.Recipe) string {
	return fmt.Sprintf(entry, r.Name, r.DietType, r.Protein, r.Carbs, r.Fat, r.CuisineType)
}
