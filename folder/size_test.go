package folder

import (
	"encoding/json"
	"testing"
)

func TestParseSize(t *testing.T) {
	cases := []struct {
		in     interface{}
		want   int64
		wantOK bool
	}{
		{in: 10, want: 10, wantOK: true},
		{in: 15.3, want: 15, wantOK: true},
		{in: json.Number("42"), want: 42, wantOK: true},
		{in: nil},
		{in: ""},
		{in: "toto"},
		{in: "2toto"},
		{in: "  10 ", want: 10, wantOK: true},
		{in: "10B", want: 10, wantOK: true},
		{in: "10o", want: 10, wantOK: true},
		{in: "10 000", want: 10000, wantOK: true},
		{in: "15k", want: 15000, wantOK: true},
		{in: "15 k", want: 15000, wantOK: true},
		{in: "15K", want: 15000, wantOK: true},
		{in: "15ko", want: 15000, wantOK: true},
		{in: "15Kb", want: 15000, wantOK: true},
		{in: "11 Mb", want: 11000000, wantOK: true},
		{in: "123 456.0 Mo", want: 123456000000, wantOK: true},
		{in: "7.5g", want: 7500000000, wantOK: true},
		{in: "42 to", want: 42000000000000, wantOK: true},
		{in: "3 Po", want: 3000000000000000, wantOK: true},
		{in: "2 Ki", want: 2048, wantOK: true},
		{in: "2ki", want: 2048, wantOK: true},
		{in: "6mi", want: 6291456, wantOK: true},
		{in: "  7  GI", want: 7516192768, wantOK: true},
		{in: "13Ti", want: 14293651161088, wantOK: true},
		{in: "1 000 Pi", want: 1125899906842624000, wantOK: true},
		{in: "2Gi", want: 2147483648, wantOK: true},
		{in: "99999999 Pi"},
	}

	for _, c := range cases {
		got, ok := ParseSize(c.in)
		if ok != c.wantOK || got != c.want {
			t.Errorf("ParseSize(%#v) = %d, %v; want %d, %v", c.in, got, ok, c.want, c.wantOK)
		}
	}
}
