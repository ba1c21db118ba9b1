package imagegen

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeRunner struct {
	urls  []string
	err   error
	calls int
	model string
	input map[string]any
}

func (f *fakeRunner) Run(_ context.Context, model string, input map[string]any) ([]string, error) {
	f.calls++
	f.model = model
	f.input = input
	return f.urls, f.err
}

func TestGenerateInputAssembly(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		wantInput map[string]any
	}{
		{
			name:    "bare prompt",
			message: "a banana in space",
			wantInput: map[string]any{
				"prompt":              "a banana in space",
				"magic_prompt_option": "Auto",
			},
		},
		{
			name:    "style and aspect",
			message: "a banana in space --style Realistic --aspect 16:9",
			wantInput: map[string]any{
				"prompt":              "a banana in space",
				"magic_prompt_option": "Auto",
				"aspect_ratio":        "16:9",
				"style_type":          "Realistic",
			},
		},
		{
			name:    "resolution wins over aspect",
			message: "a banana in space --aspect 16:9 --res 1024x1024",
			wantInput: map[string]any{
				"prompt":              "a banana in space",
				"magic_prompt_option": "Auto",
				"resolution":          "1024x1024",
			},
		},
		{
			name:    "invalid resolution falls back to aspect",
			message: "a banana in space --aspect 16:9 --res abc",
			wantInput: map[string]any{
				"prompt":              "a banana in space",
				"magic_prompt_option": "Auto",
				"aspect_ratio":        "16:9",
			},
		},
		{
			name:    "default aspect is omitted",
			message: "a banana in space --aspect 1:1",
			wantInput: map[string]any{
				"prompt":              "a banana in space",
				"magic_prompt_option": "Auto",
			},
		},
		{
			name:    "style none is omitted",
			message: "a banana in space --style none",
			wantInput: map[string]any{
				"prompt":              "a banana in space",
				"magic_prompt_option": "Auto",
			},
		},
		{
			name:    "fuzzy style resolves before forwarding",
			message: "a banana in space --style realistik",
			wantInput: map[string]any{
				"prompt":              "a banana in space",
				"magic_prompt_option": "Auto",
				"style_type":          "Realistic",
			},
		},
		{
			name:    "unknown flags are ignored",
			message: "a banana in space --seed 42 --style Anime",
			wantInput: map[string]any{
				"prompt":              "a banana in space",
				"magic_prompt_option": "Auto",
				"style_type":          "Anime",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{urls: []string{"https://example.com/out.png"}}
			pipe := New(Options{Runner: runner})

			got := pipe.Generate(context.Background(), tt.message)
			if got != "![image](https://example.com/out.png)\n" {
				t.Fatalf("Generate() = %q", got)
			}
			if runner.model != "ideogram-ai/ideogram-v2a" {
				t.Errorf("model = %q", runner.model)
			}
			if !reflect.DeepEqual(runner.input, tt.wantInput) {
				t.Errorf("input = %v, want %v", runner.input, tt.wantInput)
			}
		})
	}
}

func TestGenerateMissingPrompt(t *testing.T) {
	for _, message := range []string{"", "   ", "--style Anime"} {
		runner := &fakeRunner{urls: []string{"https://example.com/out.png"}}
		pipe := New(Options{Runner: runner})

		got := pipe.Generate(context.Background(), message)
		if got != "Error: Prompt is required" {
			t.Errorf("Generate(%q) = %q, want prompt error", message, got)
		}
		if runner.calls != 0 {
			t.Errorf("Generate(%q) called the runner %d times", message, runner.calls)
		}
	}
}

func TestGenerateRunnerFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("model blew up")}
	pipe := New(Options{Runner: runner})

	got := pipe.Generate(context.Background(), "a banana in space")
	if got != "Error generating image: model blew up" {
		t.Errorf("Generate() = %q", got)
	}
}

func TestGenerateEmptyOutput(t *testing.T) {
	pipe := New(Options{Runner: &fakeRunner{}})

	got := pipe.Generate(context.Background(), "a banana in space")
	if got != "No image was generated." {
		t.Errorf("Generate() = %q", got)
	}
}

func TestResolveResolution(t *testing.T) {
	pipe := New(Options{Runner: &fakeRunner{}})

	tests := []struct {
		input string
		want  string
	}{
		{"", "None"},
		{"none", "None"},
		{"abc", "None"},
		{"12x", "None"},
		{"x12", "None"},
		{"1:1", "None"},
		{"1024x1024", "1024x1024"},
		{"1024X1024", "1024x1024"},
	}

	for _, tt := range tests {
		if got := pipe.ResolveResolution(tt.input); got != tt.want {
			t.Errorf("ResolveResolution(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		reply  string
		want   string
		wantOK bool
	}{
		{"![image](https://example.com/out.png)\n", "https://example.com/out.png", true},
		{"No image was generated.", "", false},
		{"Error: Prompt is required", "", false},
		{"![image]()", "", false},
	}

	for _, tt := range tests {
		got, ok := ImageURL(tt.reply)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ImageURL(%q) = (%q, %v), want (%q, %v)", tt.reply, got, ok, tt.want, tt.wantOK)
		}
	}
}
