package pathcodec

import "testing"

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "Plain path", raw: "/sub/b.txt", want: "/sub/b.txt"},
		{name: "Space", raw: "/my%20file.txt", want: "/my file.txt"},
		{name: "Lowercase hex", raw: "/%e3%81%82", want: "/あ"},
		{name: "Plus is literal", raw: "/a+b", want: "/a+b"},
		{name: "Malformed escape kept", raw: "/100%zz", want: "/100%zz"},
		{name: "Trailing percent kept", raw: "/50%", want: "/50%"},
		{name: "Truncated escape kept", raw: "/x%4", want: "/x%4"},
		{name: "Invalid UTF-8 byte", raw: "/caf%E9", want: "/caf\xe9"},
		{name: "Encoded slash", raw: "/a%2Fb", want: "/a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.raw); got != tt.want {
				t.Errorf("Decode(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "Unreserved", in: "a-b_c.d~e", want: "a-b_c.d~e"},
		{name: "Slash kept", in: "/sub/", want: "/sub/"},
		{name: "Space", in: "my file", want: "my%20file"},
		{name: "Percent", in: "100%", want: "100%25"},
		{name: "HTML specials", in: `<a href="x">&'`, want: "%3Ca%20href%3D%22x%22%3E%26%27"},
		{name: "Colon", in: "c:d", want: "c%3Ad"},
		{name: "CRLF", in: "a\r\nb", want: "a%0D%0Ab"},
		{name: "Multibyte", in: "あ", want: "%E3%81%82"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.in); got != tt.want {
				t.Errorf("Encode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	names := []string{
		"a.txt",
		"with space",
		"100%",
		"%41literal",
		"q?x=1#frag",
		"caf\xe9",
		"日本語.md",
		"semi;colon,comma",
		"",
	}
	for _, name := range names {
		if got := Decode(Encode(name)); got != name {
			t.Errorf("Decode(Encode(%q)) = %q", name, got)
		}
	}
}
