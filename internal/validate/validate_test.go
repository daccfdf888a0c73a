package validate

import (
	"testing"
)

type sample struct {
	Email string  `json:"email" validate:"required,email"`
	Count *int32  `json:"count" validate:"required,gte=0"`
	Note  *string `json:"note,omitempty" validate:"omitempty,max=5"`
}

func TestStruct(t *testing.T) {
	count := int32(1)
	negative := int32(-1)
	long := "toolongnote"

	tests := []struct {
		name       string
		input      sample
		wantFields []string
	}{
		{
			name:  "valid",
			input: sample{Email: "a@b.com", Count: &count},
		},
		{
			name:       "missing required fields",
			input:      sample{},
			wantFields: []string{"email", "count"},
		},
		{
			name:       "bad email",
			input:      sample{Email: "nope", Count: &count},
			wantFields: []string{"email"},
		},
		{
			name:       "negative count",
			input:      sample{Email: "a@b.com", Count: &negative},
			wantFields: []string{"count"},
		},
		{
			name:       "note too long",
			input:      sample{Email: "a@b.com", Count: &count, Note: &long},
			wantFields: []string{"note"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := Struct(tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Struct() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Struct() expected an error")
			}
			if len(fields) != len(tt.wantFields) {
				t.Errorf("expected %d failing fields, got %v", len(tt.wantFields), fields)
			}
			for _, name := range tt.wantFields {
				msgs, ok := fields[name]
				if !ok || len(msgs) == 0 {
					t.Errorf("expected messages for JSON field %q, got %v", name, fields)
				}
			}
		})
	}
}

func TestStructUsesJSONNames(t *testing.T) {
	type renamed struct {
		TimeMinutes *int32 `json:"time_minutes" validate:"required"`
	}

	fields, err := Struct(renamed{})
	if err == nil {
		t.Fatalf("Struct() expected an error")
	}
	if _, ok := fields["time_minutes"]; !ok {
		t.Errorf("expected the JSON name time_minutes, got %v", fields)
	}
	if _, ok := fields["TimeMinutes"]; ok {
		t.Errorf("Go field name leaked into validation output: %v", fields)
	}
}
