package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"puma/crawler/internal/domain"
)

// JSONLines writes one product record per line
type JSONLines struct {
	mu      sync.Mutex
	w       *bufio.Writer
	enc     *json.Encoder
	closer  io.Closer
	written int
}

func NewJSONLines(w io.Writer) *JSONLines {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	s := &JSONLines{w: buf, enc: enc}
	if c, ok := w.(io.Closer); ok && w != os.Stdout {
		s.closer = c
	}
	return s
}

// Open writes to path, or to stdout when path is "-" or empty
func Open(path string) (*JSONLines, error) {
	if path == "" || path == "-" {
		return NewJSONLines(os.Stdout), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output %s: %w", path, err)
	}
	return NewJSONLines(f), nil
}

func (s *JSONLines) Write(_ context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(product); err != nil {
		return fmt.Errorf("failed to write product %s: %w", product.RetailerSKU, err)
	}
	s.written++
	return s.w.Flush()
}

// Written reports how many records were written
func (s *JSONLines) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

func (s *JSONLines) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
