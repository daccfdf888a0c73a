package json

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "single object", input: `{"name":"ok"}`, wantErr: false},
		{name: "trailing whitespace", input: `{"name":"ok"}` + "\n  ", wantErr: false},
		{name: "trailing object", input: `{"name":"ok"}{"name":"again"}`, wantErr: true},
		{name: "trailing garbage", input: `{"name":"ok"} extra`, wantErr: true},
		{name: "malformed", input: `{"name":`, wantErr: true},
		{name: "empty input", input: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst payload
			err := DecodeJSON(&dst, json.NewDecoder(strings.NewReader(tt.input)))
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodeJSON(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
