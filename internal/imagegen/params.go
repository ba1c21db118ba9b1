package imagegen

import (
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

// Params is the result of extracting command-line style directives from a
// chat message. Values holds flags written as "--name value", Bools holds
// bare "--name" flags. Prompt is everything before the first flag.
type Params struct {
	Prompt string
	Values map[string]string
	Bools  map[string]bool
}

// Value returns the string value of a flag, or "" when the flag is absent
// or was given without a value.
func (p Params) Value(name string) string {
	return p.Values[name]
}

// Has reports whether the flag was present in any form.
func (p Params) Has(name string) bool {
	if _, ok := p.Values[name]; ok {
		return true
	}
	return p.Bools[name]
}

// Names returns every flag name that appeared in the message.
func (p Params) Names() []string {
	out := make([]string, 0, len(p.Values)+len(p.Bools))
	for name := range p.Values {
		out = append(out, name)
	}
	for name := range p.Bools {
		out = append(out, name)
	}
	return out
}

// ParseParams splits a chat message into a prompt and trailing flags.
//
//	ParseParams(`A painting of a sunset --style "Realistic 3D" --aspect 16:9`)
//
// yields Prompt="A painting of a sunset", style="Realistic 3D",
// aspect="16:9". Quoting follows shell rules, so flag values may contain
// spaces. A message that fails to tokenize (unbalanced quotes) is treated
// as a plain prompt with no flags; parsing never fails.
func ParseParams(message string) Params {
	tokens, err := shellwords.Parse(message)
	if err != nil {
		return Params{
			Prompt: message,
			Values: map[string]string{},
			Bools:  map[string]bool{},
		}
	}

	params := Params{
		Values: map[string]string{},
		Bools:  map[string]bool{},
	}

	i := 0
	var promptParts []string
	for i < len(tokens) {
		if strings.HasPrefix(tokens[i], "--") {
			break
		}
		promptParts = append(promptParts, tokens[i])
		i++
	}
	params.Prompt = strings.Join(promptParts, " ")

	for i < len(tokens) {
		if !strings.HasPrefix(tokens[i], "--") {
			// Stray text after flags began. Dropped on purpose.
			i++
			continue
		}

		name := strings.TrimPrefix(tokens[i], "--")
		if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "--") {
			params.Values[name] = tokens[i+1]
			i += 2
		} else {
			params.Bools[name] = true
			i++
		}
	}

	return params
}
