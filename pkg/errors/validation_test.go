package errors

import (
	"testing"
)

func TestValidateTopologyName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "pcu", false},
		{"valid with dash", "pcu-b", false},
		{"valid with underscore", "pcu_h", false},
		{"valid alphanumeric", "srs2", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal", "foo/../bar", true},
		{"leading dot", ".pcu", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"space", "p cu", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTopologyName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTopologyName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUnitName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "benzene_linear", false},
		{"valid with dash", "zn-paddlewheel", false},
		{"valid digits", "zn4o", false},

		{"empty", "", true},
		{"slash", "units/benzene", true},
		{"backslash", "units\\benzene", true},
		{"leading underscore", "_benzene", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUnitName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUnitName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBlueprintFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "mof5.toml", false},
		{"valid with dash", "ir-mof.toml", false},

		{"empty", "", true},
		{"with path", "path/to/mof5.toml", true},
		{"hidden file", ".mof5.toml", true},
		{"wrong extension", "mof5.yaml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBlueprintFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBlueprintFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRefineBudget(t *testing.T) {
	if err := ValidateRefineBudget(0); err != nil {
		t.Errorf("budget 0 should be valid (means default): %v", err)
	}
	if err := ValidateRefineBudget(500); err != nil {
		t.Errorf("budget 500 should be valid: %v", err)
	}
	if err := ValidateRefineBudget(-1); err == nil {
		t.Error("negative budget must fail")
	}
	if err := ValidateRefineBudget(2_000_000); err == nil {
		t.Error("oversized budget must fail")
	}
}

func TestValidateWeight(t *testing.T) {
	if err := ValidateWeight(0); err != nil {
		t.Errorf("weight 0 should be valid (means uniform): %v", err)
	}
	if err := ValidateWeight(2.5); err != nil {
		t.Errorf("weight 2.5 should be valid: %v", err)
	}
	if err := ValidateWeight(-0.1); err == nil {
		t.Error("negative weight must fail")
	}
}
