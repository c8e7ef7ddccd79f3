// Package playbook parses and runs Markdown playbooks: ordered lists of
// recorded sessions to replay, with optional per-step overrides.
package playbook

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Step is one entry in a playbook. Zero-valued overrides fall back to the
// playbook defaults, which in turn fall back to the run configuration.
type Step struct {
	Session     string
	Repeats     int
	Sensitivity float64
	Cooldown    time.Duration
}

// Playbook is a parsed run list.
type Playbook struct {
	Name  string
	Steps []Step

	// Defaults from the frontmatter, zero when absent.
	Cooldown    time.Duration
	Sensitivity float64
	Library     string
}

type frontmatterYAML struct {
	Name        string  `yaml:"name"`
	Cooldown    string  `yaml:"cooldown"`
	Sensitivity float64 `yaml:"sensitivity"`
	Library     string  `yaml:"library"`
}

type Parser struct {
	markdown goldmark.Markdown
}

func NewParser() *Parser {
	return &Parser{
		markdown: goldmark.New(),
	}
}

// ParseFile parses a playbook from disk.
func (p *Parser) ParseFile(path string) (*Playbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playbook: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse reads a playbook: optional YAML frontmatter with defaults, then
// Markdown list items naming one session per step.
func (p *Parser) Parse(r io.Reader) (*Playbook, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	pb := &Playbook{}
	content, frontmatter := extractFrontmatter(content)
	if frontmatter != nil {
		if err := parseFrontmatter(frontmatter, pb); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
	}

	doc := p.markdown.Parser().Parse(text.NewReader(content))

	steps, err := extractSteps(doc, content)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("playbook has no steps")
	}

	pb.Steps = steps
	return pb, nil
}

// stepRegex splits "SessionName (repeats: 2, sensitivity: 0.5)" style items
// into the session reference and the optional override list.
var stepRegex = regexp.MustCompile(`^(.+?)\s*(?:\(([^)]*)\))?$`)

// extractSteps walks the AST collecting top-level list items.
func extractSteps(doc ast.Node, source []byte) ([]Step, error) {
	var steps []Step
	var walkErr error

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		item, ok := n.(*ast.ListItem)
		if !ok {
			return ast.WalkContinue, nil
		}

		line := strings.TrimSpace(extractText(item, source))
		if line == "" {
			return ast.WalkSkipChildren, nil
		}

		step, err := parseStep(line)
		if err != nil {
			walkErr = fmt.Errorf("step %d: %w", len(steps)+1, err)
			return ast.WalkStop, nil
		}
		steps = append(steps, step)
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}
	return steps, nil
}

// parseStep splits one list item into a step.
func parseStep(line string) (Step, error) {
	matches := stepRegex.FindStringSubmatch(line)
	if matches == nil || strings.TrimSpace(matches[1]) == "" {
		return Step{}, fmt.Errorf("cannot parse step %q", line)
	}

	step := Step{Session: strings.TrimSpace(matches[1])}
	if matches[2] == "" {
		return step, nil
	}

	for _, part := range strings.Split(matches[2], ",") {
		key, value, found := strings.Cut(part, ":")
		if !found {
			return Step{}, fmt.Errorf("cannot parse option %q", strings.TrimSpace(part))
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "repeats":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return Step{}, fmt.Errorf("invalid repeats %q", value)
			}
			step.Repeats = n
		case "sensitivity":
			s, err := strconv.ParseFloat(value, 64)
			if err != nil || s <= 0 {
				return Step{}, fmt.Errorf("invalid sensitivity %q", value)
			}
			step.Sensitivity = s
		case "cooldown":
			d, err := time.ParseDuration(value)
			if err != nil || d < 0 {
				return Step{}, fmt.Errorf("invalid cooldown %q", value)
			}
			step.Cooldown = d
		default:
			return Step{}, fmt.Errorf("unknown option %q", key)
		}
	}
	return step, nil
}

// extractText extracts plain text from an AST node, descending through the
// paragraph wrappers goldmark puts inside list items. Nested sub-lists are
// left out so annotations under a step never bleed into its line.
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*ast.List); ok {
			continue
		}
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			continue
		}
		buf.WriteString(extractText(c, source))
	}
	return buf.String()
}

// extractFrontmatter extracts YAML frontmatter from markdown content.
// Returns the content without frontmatter and the frontmatter bytes.
func extractFrontmatter(content []byte) ([]byte, []byte) {
	lines := bytes.Split(content, []byte("\n"))

	if len(lines) < 3 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return content, nil
	}

	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			frontmatter := bytes.Join(lines[1:i], []byte("\n"))
			body := bytes.Join(lines[i+1:], []byte("\n"))
			return body, frontmatter
		}
	}

	return content, nil
}

func parseFrontmatter(frontmatter []byte, pb *Playbook) error {
	var fm frontmatterYAML
	if err := yaml.Unmarshal(frontmatter, &fm); err != nil {
		return err
	}

	pb.Name = fm.Name
	pb.Library = fm.Library
	pb.Sensitivity = fm.Sensitivity

	if fm.Cooldown != "" {
		d, err := time.ParseDuration(fm.Cooldown)
		if err != nil {
			return fmt.Errorf("invalid cooldown %q: %w", fm.Cooldown, err)
		}
		pb.Cooldown = d
	}
	return nil
}
