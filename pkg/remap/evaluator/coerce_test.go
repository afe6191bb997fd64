package evaluator

import (
	"testing"

	rerrors "github.com/remaplang/remap/pkg/remap/errors"
)

func TestCasts(t *testing.T) {
	tests := []struct {
		name string
		src  string
		in   string
		want string
	}{
		{"int is idempotent", "cast .v as int", `{"v":5}`, `{"v":5}`},
		{"float truncates to int", "cast .v as int", `{"v":3.9}`, `{"v":3}`},
		{"negative float truncates toward zero", "cast .v as int", `{"v":-3.9}`, `{"v":-3}`},
		{"string to int", "cast .v as int", `{"v":"42"}`, `{"v":42}`},
		{"padded string to int", "cast .v as int", `{"v":"  42 "}`, `{"v":42}`},
		{"float-looking string to int", "cast .v as int", `{"v":"4.8"}`, `{"v":4}`},
		{"null to int", "cast .v as int", `{"v":null}`, `{"v":0}`},
		{"int to float", "cast .v as float", `{"v":5}`, `{"v":5.0}`},
		{"string to float", "cast .v as float", `{"v":"2.5"}`, `{"v":2.5}`},
		{"null to float", "cast .v as float", `{"v":null}`, `{"v":0.0}`},
		{"int to string", "cast .v as string", `{"v":5}`, `{"v":"5"}`},
		{"float to string", "cast .v as string", `{"v":2.5}`, `{"v":"2.5"}`},
		{"bool to string", "cast .v as string", `{"v":true}`, `{"v":"true"}`},
		{"null to string", "cast .v as string", `{"v":null}`, `{"v":"null"}`},
		{"int to bool", "cast .v as bool", `{"v":1}`, `{"v":true}`},
		{"zero to bool", "cast .v as bool", `{"v":0}`, `{"v":false}`},
		{"yes to bool", "cast .v as bool", `{"v":"yes"}`, `{"v":true}`},
		{"TRUE to bool", "cast .v as bool", `{"v":"TRUE"}`, `{"v":true}`},
		{"no to bool", "cast .v as bool", `{"v":"no"}`, `{"v":false}`},
		{"empty string to bool", "cast .v as bool", `{"v":""}`, `{"v":false}`},
		{"null to bool", "cast .v as bool", `{"v":null}`, `{"v":false}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.src, tt.in); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCastFailures(t *testing.T) {
	tests := []struct {
		name string
		src  string
		in   string
	}{
		{"letters to int", "cast .v as int", `{"v":"abc"}`},
		{"array to int", "cast .v as int", `{"v":[1]}`},
		{"map to bool", "cast .v as bool", `{"v":{}}`},
		{"maybe to bool", "cast .v as bool", `{"v":"maybe"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runErr(t, tt.src, tt.in)
			if err.Class != rerrors.ClassCast {
				t.Errorf("class = %s, want cast", err.Class)
			}
		})
	}
}
