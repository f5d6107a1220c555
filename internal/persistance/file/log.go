package file

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nestjam/goto/internal/domain"
)

const ownerReadWritePermission os.FileMode = 0600

// Log is an append-only journal of short links. Every line has the form
// `<short url>: "<original url>"` and the whole file is one YAML mapping.
type Log struct {
	rw           io.ReadWriter
	entries      []domain.URLPair
	needsNewline bool
	mu           sync.Mutex
}

// MalformedLogError is returned when the journal exists but is not a
// mapping of short urls to original urls.
type MalformedLogError struct {
	Line   int
	Reason string
}

func (e *MalformedLogError) Error() string {
	if e.Line == 0 {
		return "malformed url log: " + e.Reason
	}

	return fmt.Sprintf("malformed url log: line %d: %s", e.Line, e.Reason)
}

// IsMalformed reports whether err was caused by unparsable journal data,
// as opposed to a failure to open or read the file.
func IsMalformed(err error) bool {
	var target *MalformedLogError
	return errors.As(err, &target)
}

// Open opens or creates the journal at path without truncating it.
func Open(path string) (*Log, error) {
	const op = "open url log"
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, ownerReadWritePermission)

	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	l, err := New(f)

	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, op)
	}

	return l, nil
}

// New reads the existing journal from rw. Further writes go to rw, which
// is expected to be positioned at the end of the data.
func New(rw io.ReadWriter) (*Log, error) {
	const op = "new url log"
	data, err := io.ReadAll(rw)

	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	entries, err := parse(data)

	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return &Log{
		rw:           rw,
		entries:      entries,
		needsNewline: len(data) > 0 && data[len(data)-1] != '\n',
	}, nil
}

func parse(data []byte) ([]domain.URLPair, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedLogError{Reason: err.Error()}
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	// Decoding into a node keeps duplicate keys, later ones win on replay.
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &MalformedLogError{Line: root.Line, Reason: "not a mapping of urls"}
	}

	const pairLen = 2
	urls := make([]domain.URLPair, 0, len(root.Content)/pairLen)
	for i := 0; i+1 < len(root.Content); i += pairLen {
		key, value := root.Content[i], root.Content[i+1]

		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return nil, &MalformedLogError{Line: key.Line, Reason: "short url and original url must be strings"}
		}

		urls = append(urls, domain.URLPair{
			ShortURL:    key.Value,
			OriginalURL: value.Value,
		})
	}

	return urls, nil
}

// Entries returns the urls read from the journal in file order.
func (l *Log) Entries() []domain.URLPair {
	return l.entries
}

// Append writes one entry to the end of the journal and syncs it when the
// underlying writer supports it.
func (l *Log) Append(shortURL, originalURL string) error {
	const op = "append url"
	line, err := encode(shortURL, originalURL)

	if err != nil {
		return errors.Wrap(err, op)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.needsNewline {
		line = append([]byte{'\n'}, line...)
	}

	if _, err = l.rw.Write(line); err != nil {
		return errors.Wrap(err, op)
	}
	l.needsNewline = false

	if s, ok := l.rw.(interface{ Sync() error }); ok {
		if err = s.Sync(); err != nil {
			return errors.Wrap(err, op)
		}
	}

	return nil
}

func encode(shortURL, originalURL string) ([]byte, error) {
	entry := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: shortURL},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: originalURL, Style: yaml.DoubleQuotedStyle},
		},
	}

	data, err := yaml.Marshal(entry)
	if err != nil {
		return nil, errors.Wrap(err, "encode url")
	}

	return data, nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	c, ok := l.rw.(io.Closer)
	if !ok {
		return nil
	}

	if err := c.Close(); err != nil {
		return errors.Wrap(err, "close url log")
	}

	return nil
}
