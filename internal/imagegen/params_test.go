package imagegen

import (
	"reflect"
	"testing"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		wantPrompt string
		wantValues map[string]string
		wantBools  map[string]bool
	}{
		{
			name:       "prompt only",
			message:    "only prompt text",
			wantPrompt: "only prompt text",
		},
		{
			name:       "prompt with flags",
			message:    "A b --style Realistic --aspect 16:9",
			wantPrompt: "A b",
			wantValues: map[string]string{"style": "Realistic", "aspect": "16:9"},
		},
		{
			name:       "quoted flag value keeps spaces",
			message:    `A painting of a sunset --style "Realistic 3D" --res 1280x720`,
			wantPrompt: "A painting of a sunset",
			wantValues: map[string]string{"style": "Realistic 3D", "res": "1280x720"},
		},
		{
			name:       "flag without value becomes boolean",
			message:    "cat --fast --style Anime",
			wantPrompt: "cat",
			wantValues: map[string]string{"style": "Anime"},
			wantBools:  map[string]bool{"fast": true},
		},
		{
			name:       "trailing flag without value becomes boolean",
			message:    "cat --style",
			wantPrompt: "cat",
			wantBools:  map[string]bool{"style": true},
		},
		{
			name:       "stray tokens after flags are dropped",
			message:    "cat --style Anime extra words --aspect 16:9",
			wantPrompt: "cat",
			wantValues: map[string]string{"style": "Anime", "aspect": "16:9"},
		},
		{
			name:       "extra whitespace collapses in prompt",
			message:    "  a   lone   banana   --aspect 3:4",
			wantPrompt: "a lone banana",
			wantValues: map[string]string{"aspect": "3:4"},
		},
		{
			name:       "unbalanced quote degrades to whole-input prompt",
			message:    `say "hello --style Anime`,
			wantPrompt: `say "hello --style Anime`,
		},
		{
			name:       "empty message",
			message:    "",
			wantPrompt: "",
		},
		{
			name:       "flags only leaves prompt empty",
			message:    "--style Anime",
			wantPrompt: "",
			wantValues: map[string]string{"style": "Anime"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseParams(tt.message)

			if got.Prompt != tt.wantPrompt {
				t.Errorf("Prompt = %q, want %q", got.Prompt, tt.wantPrompt)
			}

			wantValues := tt.wantValues
			if wantValues == nil {
				wantValues = map[string]string{}
			}
			if !reflect.DeepEqual(got.Values, wantValues) {
				t.Errorf("Values = %v, want %v", got.Values, wantValues)
			}

			wantBools := tt.wantBools
			if wantBools == nil {
				wantBools = map[string]bool{}
			}
			if !reflect.DeepEqual(got.Bools, wantBools) {
				t.Errorf("Bools = %v, want %v", got.Bools, wantBools)
			}
		})
	}
}

func TestParamsAccessors(t *testing.T) {
	p := ParseParams("cat --style Anime --fast")

	if got := p.Value("style"); got != "Anime" {
		t.Errorf("Value(style) = %q, want Anime", got)
	}
	if got := p.Value("aspect"); got != "" {
		t.Errorf("Value(aspect) = %q, want empty", got)
	}
	if !p.Has("style") || !p.Has("fast") {
		t.Error("Has should report both style and fast")
	}
	if p.Has("res") {
		t.Error("Has(res) should be false")
	}
	if got := len(p.Names()); got != 2 {
		t.Errorf("Names() returned %d entries, want 2", got)
	}
}
