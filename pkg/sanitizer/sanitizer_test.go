package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "basic trim", input: "  hello  ", want: "hello"},
		{name: "multiple spaces", input: "hello    world", want: "hello world"},
		{name: "tabs and newlines", input: "hello\t\nworld", want: "hello world"},
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "preserve special characters", input: " Café & Spa™ ", want: "Café & Spa™"},
		{name: "hebrew characters", input: " אולם הרצאות ", want: "אולם הרצאות"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizePurpose(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Annual meeting", want: "Annual meeting"},
		{name: "surrounding whitespace", input: "\t Annual meeting \n", want: "Annual meeting"},
		{name: "line breaks flattened", input: "Annual\nmeeting", want: "Annual meeting"},
		{name: "control characters dropped", input: "Annual\x00 meet\x07ing", want: "Annual meeting"},
		{name: "whitespace only", input: " \n\t ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePurpose(tt.input); got != tt.want {
				t.Errorf("SanitizePurpose(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeSpecialRequests(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "keeps line breaks", input: "Projector\nWhiteboard", want: "Projector\nWhiteboard"},
		{name: "windows line endings", input: "Projector\r\nWhiteboard", want: "Projector\nWhiteboard"},
		{name: "trailing blanks", input: "Projector   \nWhiteboard  ", want: "Projector\nWhiteboard"},
		{name: "collapses empty lines", input: "Projector\n\n\n\nWhiteboard", want: "Projector\n\nWhiteboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeSpecialRequests(tt.input); got != tt.want {
				t.Errorf("SanitizeSpecialRequests(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizersAreIdempotent(t *testing.T) {
	inputs := []string{"  a  b ", "x\r\n\r\n\r\ny  ", "\x01tab\tsep"}
	for _, in := range inputs {
		once := SanitizeSpecialRequests(in)
		if twice := SanitizeSpecialRequests(once); twice != once {
			t.Errorf("SanitizeSpecialRequests not idempotent for %q: %q then %q", in, once, twice)
		}
		once = SanitizePurpose(in)
		if twice := SanitizePurpose(once); twice != once {
			t.Errorf("SanitizePurpose not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
