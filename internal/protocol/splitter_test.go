package protocol

import (
	"reflect"
	"testing"
)

func TestSplitMessages(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want []string
	}{
		{
			name: "drops segments without braces",
			blob: "\x00{\"a\":1}\x00garbage\x00{\"b\":2}",
			want: []string{`{"a":1}`, `{"b":2}`},
		},
		{
			name: "runs of control bytes are one separator",
			blob: "\x00\x00\x10\x1f{\"a\":1}\x01\x02\x03\x04{\"b\":2}\x00\x00",
			want: []string{`{"a":1}`, `{"b":2}`},
		},
		{
			name: "no separators",
			blob: `{"cmd":"WELCOME"}`,
			want: []string{`{"cmd":"WELCOME"}`},
		},
		{
			name: "only separators",
			blob: "\x00\x01\x1f",
			want: nil,
		},
		{
			name: "empty",
			blob: "",
			want: nil,
		},
		{
			name: "keeps invalid json that contains a brace",
			blob: "\x00not json { at all\x00",
			want: []string{"not json { at all"},
		},
		{
			name: "space and DEL are not separators",
			blob: "{\"a\": 1}\x7f{\"b\": 2}",
			want: []string{"{\"a\": 1}\x7f{\"b\": 2}"},
		},
		{
			name: "printable header bytes between fragments are dropped",
			blob: "\x00\x00\x007\x00\x10\x00\x01\x00\x00\x00\x05\x00\x00\x00\x00{\"cmd\":\"DANMU_MSG\"}\x00\x00\x00:\x00\x10{\"cmd\":\"SEND_GIFT\"}",
			want: []string{`{"cmd":"DANMU_MSG"}`, `{"cmd":"SEND_GIFT"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitMessages(tt.blob)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitMessages() = %q, want %q", got, tt.want)
			}
		})
	}
}
