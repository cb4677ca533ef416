package types_test

import (
	"encoding/json"
	"testing"

	"github.com/enna-dta/incidentdb/internal/types"
)

func TestFlexIntUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"number", `{"v": 45}`, 45},
		{"numeric string", `{"v": "45"}`, 45},
		{"padded string", `{"v": " 45 "}`, 45},
		{"empty string", `{"v": ""}`, 0},
		{"null", `{"v": null}`, 0},
		{"absent", `{}`, 0},
		{"garbage string", `{"v": "abc"}`, 0},
		{"negative", `{"v": -3}`, -3},
	}

	for _, tc := range cases {
		var target struct {
			V types.FlexInt `json:"v"`
		}
		if err := json.Unmarshal([]byte(tc.in), &target); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if target.V.Int() != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, target.V.Int())
		}
	}
}

func TestFlexIntMarshal(t *testing.T) {
	out, err := json.Marshal(types.FlexInt(30))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != "30" {
		t.Errorf("Expected 30, got %s", out)
	}
}
