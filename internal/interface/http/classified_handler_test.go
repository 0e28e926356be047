package handlers

import (
	"reflect"
	"testing"
)

func TestParseIDArray(t *testing.T) {
	cases := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{`["a","b"]`, []string{"a", "b"}, false},
		{`[]`, []string{}, false},
		{`[" a ", ""]`, []string{"a"}, false},
		{`"a"`, nil, true},
		{`a,b`, nil, true},
		{`[1,2]`, nil, true},
		{`{"ids":["a"]}`, nil, true},
		{``, nil, true},
	}
	for _, tc := range cases {
		got, err := parseIDArray(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseIDArray(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseIDArray(%q): %v", tc.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseIDArray(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
