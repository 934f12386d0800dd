package facts

import (
	"fmt"
	"strconv"
	"strings"

	"lead_intel_backend/internal/intel/domain"

	"github.com/jmespath/go-jmespath"
)

// pathChain is an ordered list of compiled context lookups. The first path
// that yields a present value wins.
type pathChain []*jmespath.JMESPath

func compileChain(exprs ...string) pathChain {
	chain := make(pathChain, 0, len(exprs))
	for _, expr := range exprs {
		chain = append(chain, jmespath.MustCompile(expr))
	}
	return chain
}

// perChannel expands each template across ChannelOrder. Templates are
// expanded channel-major within a template, so every channel is tried for
// the first template before the second template is considered.
func perChannel(templates ...string) []string {
	exprs := make([]string, 0, len(templates)*len(domain.ChannelOrder))
	for _, tmpl := range templates {
		for _, ch := range domain.ChannelOrder {
			exprs = append(exprs, fmt.Sprintf(tmpl, ch))
		}
	}
	return exprs
}

// firstString returns the first present scalar along the chain.
func (c pathChain) firstString(doc map[string]any) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, path := range c {
		value, err := path.Search(doc)
		if err != nil {
			continue
		}
		if s, ok := scalarString(value); ok {
			return s, true
		}
	}
	return "", false
}

// firstStrings returns the first present value along the chain as a list.
// A string value becomes a one-element list; arrays keep their present
// scalar elements.
func (c pathChain) firstStrings(doc map[string]any) []string {
	if doc == nil {
		return nil
	}
	for _, path := range c {
		value, err := path.Search(doc)
		if err != nil || value == nil {
			continue
		}
		if list, ok := value.([]any); ok {
			out := make([]string, 0, len(list))
			for _, item := range list {
				if s, ok := scalarString(item); ok {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
			continue
		}
		if s, ok := scalarString(value); ok {
			return []string{s}
		}
	}
	return nil
}

// scalarString treats nil and blank strings as absent and formats numbers
// and booleans. Objects and arrays are not scalars.
func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func presentString(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	s := strings.TrimSpace(*p)
	return s, s != ""
}
