package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// rulesSchema constrains the optional rules override file: a flat object
// mapping known field names to replacement regular expressions.
func rulesSchema() map[string]any {
	pat := map[string]any{"type": "string", "minLength": 1}
	props := map[string]any{}
	for _, f := range []Field{
		FieldInvoiceNumber, FieldBillingDate,
		FieldAmountExclTax, FieldTaxAmount, FieldAmountInclTax,
		FieldEnergyKWh, FieldStation, FieldCountry,
		FieldSessionStart, FieldSessionEnd,
	} {
		props[string(f)] = pat
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

func validateRulesDoc(data []byte) error {
	b, err := json.Marshal(rulesSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rules-schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("rules-schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal rules file: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("rules file does not match schema: %w", err)
	}
	return nil
}

// LoadRulesFile reads a JSON override file and overlays its patterns on the
// default rule table. Unknown field names are rejected by the schema; a
// pattern that does not compile is a configuration error.
func LoadRulesFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules validates and applies override patterns from raw JSON.
func ParseRules(data []byte) ([]Rule, error) {
	if err := validateRulesDoc(data); err != nil {
		return nil, err
	}
	var overrides map[string]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("unmarshal rules file: %w", err)
	}
	rules := DefaultRules()
	for i := range rules {
		pat, ok := overrides[string(rules[i].Field)]
		if !ok {
			continue
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("field %s: compile pattern: %w", rules[i].Field, err)
		}
		rules[i].Pattern = re
	}
	return rules, nil
}
