package summary

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses one location inside a session summary. The surface is
// deliberately narrow: dotted map keys, bracket-quoted keys for names that
// contain dots (`tools.byName.['github.list_issues'].count`), and numeric
// sequence indices (`[0]`).
type Path struct {
	expr string
	segs []segment
}

type segment struct {
	key     string
	index   int
	isIndex bool
}

// ParsePath compiles a path expression. A leading `$` root marker is
// accepted and ignored.
func ParsePath(expr string) (Path, error) {
	rest := strings.TrimPrefix(expr, "$")
	rest = strings.TrimPrefix(rest, ".")
	if rest == "" {
		return Path{}, fmt.Errorf("summary: empty path expression %q", expr)
	}

	var segs []segment
	for len(rest) > 0 {
		switch {
		case rest[0] == '[':
			seg, remainder, err := parseBracket(rest)
			if err != nil {
				return Path{}, fmt.Errorf("summary: invalid path %q: %w", expr, err)
			}
			segs = append(segs, seg)
			if remainder == "." {
				return Path{}, fmt.Errorf("summary: invalid path %q: trailing dot", expr)
			}
			rest = strings.TrimPrefix(remainder, ".")
		default:
			end := strings.IndexAny(rest, ".[")
			if end == -1 {
				segs = append(segs, segment{key: rest})
				rest = ""
				continue
			}
			if end == 0 {
				return Path{}, fmt.Errorf("summary: invalid path %q: empty segment", expr)
			}
			segs = append(segs, segment{key: rest[:end]})
			if rest[end] == '.' {
				rest = rest[end+1:]
				if rest == "" {
					return Path{}, fmt.Errorf("summary: invalid path %q: trailing dot", expr)
				}
			} else {
				rest = rest[end:]
			}
		}
	}
	return Path{expr: expr, segs: segs}, nil
}

func parseBracket(rest string) (segment, string, error) {
	body := rest[1:]
	if body == "" {
		return segment{}, "", fmt.Errorf("unterminated bracket")
	}
	if body[0] == '\'' || body[0] == '"' {
		quote := body[0]
		end := strings.IndexByte(body[1:], quote)
		if end == -1 {
			return segment{}, "", fmt.Errorf("unterminated quoted key")
		}
		key := body[1 : 1+end]
		remainder := body[1+end+1:]
		if !strings.HasPrefix(remainder, "]") {
			return segment{}, "", fmt.Errorf("expected ] after quoted key")
		}
		return segment{key: key}, remainder[1:], nil
	}

	end := strings.IndexByte(body, ']')
	if end == -1 {
		return segment{}, "", fmt.Errorf("unterminated bracket")
	}
	index, err := strconv.Atoi(body[:end])
	if err != nil {
		return segment{}, "", fmt.Errorf("bracket index %q is not a number", body[:end])
	}
	return segment{index: index, isIndex: true}, body[end+1:], nil
}

// String returns the original expression.
func (p Path) String() string {
	return p.expr
}
