package imagegen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// ideogramModel is the only model this pipeline talks to.
const ideogramModel = "ideogram-ai/ideogram-v2a"

// Runner executes one hosted image generation and returns the output URLs.
// *replicate.Client satisfies this.
type Runner interface {
	Run(ctx context.Context, model string, input map[string]any) ([]string, error)
}

type Options struct {
	Runner Runner
	Logger *slog.Logger
}

// Pipeline turns one chat message into one image generation call.
type Pipeline struct {
	runner Runner
	logger *slog.Logger
}

func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Pipeline{
		runner: opts.Runner,
		logger: logger,
	}
}

var resolutionShape = regexp.MustCompile(`^\d+x\d+$`)

// ResolveStyle matches free text to an available style, defaulting to "None".
func (p *Pipeline) ResolveStyle(input string) string {
	return p.resolve("style", input, availableStyles, DefaultStyle)
}

// ResolveAspectRatio matches free text to an available aspect ratio,
// defaulting to "1:1".
func (p *Pipeline) ResolveAspectRatio(input string) string {
	return p.resolve("aspect ratio", input, availableAspectRatios, DefaultAspectRatio)
}

// ResolveResolution matches free text to an available resolution. Anything
// not shaped like "<width>x<height>" is rejected to "None" before the
// candidate list is consulted.
func (p *Pipeline) ResolveResolution(input string) string {
	if input == "" || strings.EqualFold(input, "none") {
		return DefaultResolution
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	if !resolutionShape.MatchString(normalized) {
		p.logger.Warn("invalid resolution format, expected <width>x<height>", "input", input)
		return DefaultResolution
	}

	return p.resolve("resolution", input, availableResolutions, DefaultResolution)
}

func (p *Pipeline) resolve(kind, input string, candidates []string, def string) string {
	matched, ok := closestMatch(input, candidates, def)
	if !ok {
		p.logger.Warn("no matching value found", "kind", kind, "input", input)
	}
	return matched
}

// Generate runs one full chat turn: extract the prompt and flags, resolve
// the options, call the model, and format the reply. All failures come back
// as user-facing strings; Generate never returns an error.
func (p *Pipeline) Generate(ctx context.Context, message string) string {
	params := ParseParams(message)

	prompt := strings.TrimSpace(params.Prompt)
	if prompt == "" {
		return "Error: Prompt is required"
	}

	if unknown := unknownFlags(params); len(unknown) > 0 {
		p.logger.Warn("unknown flags ignored", "flags", unknown)
	}

	style := p.ResolveStyle(params.Value("style"))
	aspect := p.ResolveAspectRatio(params.Value("aspect"))
	resolution := p.ResolveResolution(params.Value("res"))

	p.logger.Info("generation request",
		"prompt", prompt,
		"style", style,
		"aspect_ratio", aspect,
		"resolution", resolution,
	)

	input := map[string]any{
		"prompt":              prompt,
		"magic_prompt_option": "Auto",
	}

	// Resolution wins over aspect ratio; aspect ratio is only forwarded
	// when no usable resolution was resolved.
	switch {
	case resolution != DefaultResolution && validDimensions(resolution):
		input["resolution"] = resolution
	case aspect != DefaultAspectRatio:
		input["aspect_ratio"] = aspect
	}
	if style != DefaultStyle {
		input["style_type"] = style
	}

	urls, err := p.runner.Run(ctx, ideogramModel, input)
	if err != nil {
		p.logger.Error("image generation failed", "err", err)
		return fmt.Sprintf("Error generating image: %s", err)
	}

	if len(urls) == 0 {
		return "No image was generated."
	}

	return fmt.Sprintf("![image](%s)\n", urls[0])
}

func unknownFlags(params Params) []string {
	known := map[string]bool{"style": true, "aspect": true, "res": true}

	var unknown []string
	for _, name := range params.Names() {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

func validDimensions(resolution string) bool {
	parts := strings.SplitN(resolution, "x", 2)
	if len(parts) != 2 {
		return false
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}

	return width > 0 && height > 0
}

// ImageURL extracts the URL back out of a reply formatted by Generate.
// Front-ends use it to send a real photo instead of markdown text.
func ImageURL(reply string) (string, bool) {
	reply = strings.TrimSpace(reply)
	const prefix = "![image]("
	if !strings.HasPrefix(reply, prefix) || !strings.HasSuffix(reply, ")") {
		return "", false
	}

	url := strings.TrimSuffix(strings.TrimPrefix(reply, prefix), ")")
	if url == "" {
		return "", false
	}
	return url, true
}
