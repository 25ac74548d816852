package errors

import (
	"strings"
	"testing"
)

func TestValidateUploadName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "icons.svg", false},
		{"valid with dash", "my-sprite.svg", false},
		{"valid unicode", "ícones.svg", false},
		{"valid without extension", "sprite", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300) + ".svg", true},
		{"slash", "dir/icons.svg", true},
		{"backslash", "dir\\icons.svg", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"null byte", "foo\x00.svg", true},
		{"newline", "foo\n.svg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUploadName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUploadName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateUploadName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateSVGExtension(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"icons.svg", false},
		{"ICONS.SVG", false},
		{"icons.svgz", true},
		{"icons.png", true},
		{"icons", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateSVGExtension(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSVGExtension(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMediaType(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"image/svg+xml", false},
		{"image/svg+xml; charset=utf-8", false},
		{"image/png", true},
		{"text/xml", true},
		{"", true},
		{";;;", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateMediaType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMediaType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidMediaType) {
				t.Errorf("ValidateMediaType(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}
