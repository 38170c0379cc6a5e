package common

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseRowType(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  RowType
		shouldErr bool
	}{
		{"evidence", "evidence-file", RowTypeEvidenceFile, false},
		{"uppercase", "SECTION-BREAK", RowTypeSectionBreak, false},
		{"component", "component-reference", RowTypeComponentReference, false},
		{"underscore", "section_break", RowType(""), true},
		{"empty", "", RowType(""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRowType(tt.input)
			if tt.shouldErr {
				if !errors.Is(err, ErrInvalidRowType) {
					t.Errorf("ParseRowType(%q) error = %v, want %v", tt.input, err, ErrInvalidRowType)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ParseRowType(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRowType_IsValid(t *testing.T) {
	for _, n := range RowTypeNames() {
		if !RowType(n).IsValid() {
			t.Errorf("RowType(%q).IsValid() = false, want true", n)
		}
	}
	if RowType("").IsValid() {
		t.Error("RowType(\"\").IsValid() = true, want false")
	}
}

func TestRowType_Editable(t *testing.T) {
	tests := []struct {
		rt   RowType
		want bool
	}{
		{RowTypeEvidenceFile, false},
		{RowTypeCoverPage, true},
		{RowTypeDivider, true},
		{RowTypeSectionBreak, false},
		{RowTypeComponentReference, false},
	}
	for _, tt := range tests {
		if got := tt.rt.Editable(); got != tt.want {
			t.Errorf("%s.Editable() = %v, want %v", tt.rt, got, tt.want)
		}
	}
}

func TestParseStampFormat(t *testing.T) {
	tests := []struct {
		input     string
		expected  StampFormat
		shouldErr bool
	}{
		{"pageOfTotal", StampFormatPageOfTotal, false},
		{"pageoftotal", StampFormatPageOfTotal, false},
		{"Page", StampFormatPage, false},
		{"number", StampFormatNumber, false},
		{"roman", StampFormat(0), true},
	}

	for _, tt := range tests {
		got, err := ParseStampFormat(tt.input)
		if tt.shouldErr {
			if err == nil {
				t.Errorf("ParseStampFormat(%q) expected error, got nil", tt.input)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("ParseStampFormat(%q) = %v, %v, want %v", tt.input, got, err, tt.expected)
		}
	}
}

func TestMustParseLateInsertMode(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("MustParseLateInsertMode panicked unexpectedly: %v", r)
			}
		}()
		if got := MustParseLateInsertMode("Subnumber"); got != LateInsertModeSubnumber {
			t.Errorf("MustParseLateInsertMode(\"Subnumber\") = %v, want %v", got, LateInsertModeSubnumber)
		}
	})

	t.Run("invalid value panics", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("MustParseLateInsertMode should have panicked")
			}
		}()
		MustParseLateInsertMode("renumber")
	})
}

func TestEnums_YAML(t *testing.T) {
	type doc struct {
		Row   RowType        `yaml:"row"`
		Case  CaseType       `yaml:"case"`
		Stamp StampFormat    `yaml:"stamp"`
		Mode  LateInsertMode `yaml:"mode"`
	}
	in := doc{RowTypeDivider, CaseTypeBundle, StampFormatNumber, LateInsertModeSubnumber}

	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	want := "row: divider\ncase: bundle\nstamp: number\nmode: subnumber\n"
	if string(data) != want {
		t.Errorf("yaml.Marshal() = %q, want %q", data, want)
	}

	var out doc
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if out != in {
		t.Errorf("yaml.Unmarshal() = %+v, want %+v", out, in)
	}

	if err := yaml.Unmarshal([]byte("stamp: roman\n"), &out); !errors.Is(err, ErrInvalidStampFormat) {
		t.Errorf("yaml.Unmarshal(roman) error = %v, want %v", err, ErrInvalidStampFormat)
	}
}

func TestCaseTypeString(t *testing.T) {
	if got := MustParseCaseType("Affidavit").String(); got != "affidavit" {
		t.Errorf("String() = %q, want %q", got, "affidavit")
	}
	if CaseType("brief").IsValid() {
		t.Error("CaseType(\"brief\").IsValid() = true, want false")
	}
}
