package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"

	"spendlens/internal/pagination"
)

type swaggerParam struct {
	Name    string `json:"name"`
	Default *int   `json:"default"`
	Maximum *int   `json:"maximum"`
}

func listExpenseParams(t *testing.T) map[string]swaggerParam {
	t.Helper()

	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("read swagger doc: %v", err)
	}

	var doc struct {
		Paths map[string]map[string]struct {
			Parameters []swaggerParam `json:"parameters"`
		} `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("swagger doc is not valid JSON: %v", err)
	}

	op, ok := doc.Paths["/expenses"]["get"]
	if !ok {
		t.Fatal("GET /expenses missing from swagger doc")
	}
	params := make(map[string]swaggerParam, len(op.Parameters))
	for _, p := range op.Parameters {
		params[p.Name] = p
	}
	return params
}

func TestListExpenses_PageSizeMatchesPagination(t *testing.T) {
	p, ok := listExpenseParams(t)["page_size"]
	if !ok {
		t.Fatal("page_size parameter not documented")
	}
	if p.Default == nil || *p.Default != pagination.DefaultPageSize {
		t.Errorf("expected documented default %d, got %v", pagination.DefaultPageSize, p.Default)
	}
	if p.Maximum == nil || *p.Maximum != pagination.MaxPageSize {
		t.Errorf("expected documented maximum %d, got %v", pagination.MaxPageSize, p.Maximum)
	}
}
