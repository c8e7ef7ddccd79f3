package record

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Source feeds samples to a handler until the stream ends or the context is
// cancelled. Platform capture backends implement this; so does the JSONL
// replay source used for scripted captures and tests.
type Source interface {
	Run(ctx context.Context, handle func(Sample)) error
}

// jsonlSample is the wire form of one line in a capture script.
type jsonlSample struct {
	Kind    string   `json:"kind"`
	X       int      `json:"x,omitempty"`
	Y       int      `json:"y,omitempty"`
	Button  string   `json:"button,omitempty"`
	Pressed bool     `json:"pressed,omitempty"`
	DX      int      `json:"dx,omitempty"`
	DY      int      `json:"dy,omitempty"`
	Key     string   `json:"key,omitempty"`
	Offset  *float64 `json:"offset,omitempty"`
}

var sampleKinds = map[string]SampleKind{
	"move":    SampleMouseMove,
	"click":   SampleMouseClick,
	"scroll":  SampleMouseScroll,
	"press":   SampleKeyPress,
	"release": SampleKeyRelease,
}

// JSONLSource reads one JSON sample per line. Blank lines are skipped.
type JSONLSource struct {
	r io.Reader
}

// NewJSONLSource wraps a reader of line-delimited JSON samples.
func NewJSONLSource(r io.Reader) *JSONLSource {
	return &JSONLSource{r: r}
}

// OpenJSONLFile opens a capture script from disk. The caller owns closing
// the returned file.
func OpenJSONLFile(path string) (*JSONLSource, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open capture script: %w", err)
	}
	return NewJSONLSource(f), f, nil
}

// Run decodes samples line by line and hands each to the handler.
func (s *JSONLSource) Run(ctx context.Context, handle func(Sample)) error {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}

		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var js jsonlSample
		if err := json.Unmarshal(raw, &js); err != nil {
			return fmt.Errorf("capture script line %d: %w", line, err)
		}

		kind, ok := sampleKinds[js.Kind]
		if !ok {
			return fmt.Errorf("capture script line %d: unknown sample kind %q", line, js.Kind)
		}

		handle(Sample{
			Kind:    kind,
			X:       js.X,
			Y:       js.Y,
			Button:  js.Button,
			Pressed: js.Pressed,
			DX:      js.DX,
			DY:      js.DY,
			Key:     js.Key,
			Offset:  js.Offset,
		})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read capture script: %w", err)
	}
	return nil
}
