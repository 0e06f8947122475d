package config

import "testing"

func TestSchemaFor(t *testing.T) {
	cfg := NewDefault()
	cfg.Schemas["stock"] = "stock.schema"
	cfg.Schemas["fx"] = "fx.schema"
	cfg.Schemas["any"] = "any.schema"
	cfg.Documents.Bindings = []Binding{
		{Pattern: "quotes/*.rdl", Schema: "stock"},
		{Pattern: "fx-*.rdl", Schema: "fx"},
	}
	cfg.Documents.DefaultSchema = "any"

	tests := []struct {
		path string
		want string
	}{
		{"quotes/aapl.rdl", "stock"},
		{"data/fx-eur.rdl", "fx"},
		{"fx-eur.rdl", "fx"},
		{"other/aapl.rdl", "any"},
	}
	for _, tt := range tests {
		if got := cfg.SchemaFor(tt.path); got != tt.want {
			t.Errorf("SchemaFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	cfg.Documents.DefaultSchema = ""
	if got := cfg.SchemaFor("other/aapl.rdl"); got != "" {
		t.Errorf("expected no schema, got %q", got)
	}
}
