package knowledge

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"legallens-backend/internal/shared/storage/object"
)

const maxDocumentBytes = 8 << 20

// ErrUnknownSource is returned for an unrecognized KNOWLEDGE_SOURCE value.
var ErrUnknownSource = errors.New("unknown knowledge source")

//go:embed defaults/knowledge.json
var embeddedDocument []byte

// Source loads a complete Base.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Base, error)
}

// EmbeddedSource serves the knowledge base compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Load(ctx context.Context) (*Base, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Parse(embeddedDocument, FormatJSON)
}

// EmbeddedDocument returns a copy of the bundled knowledge document.
func EmbeddedDocument() []byte {
	return append([]byte(nil), embeddedDocument...)
}

// FileSource reads a JSON or YAML document from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(ctx context.Context) (*Base, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge file %s: %w", s.Path, err)
	}
	defer f.Close()
	return readDocument(f, FormatFor(s.Path), s.Path)
}

// ObjectSource reads a document from the object store.
type ObjectSource struct {
	Store object.ObjectStore
	Key   string
}

func (s ObjectSource) Name() string { return "object:" + s.Key }

func (s ObjectSource) Load(ctx context.Context) (*Base, error) {
	if s.Store == nil {
		return nil, errors.New("object store not configured")
	}
	body, err := s.Store.Open(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("open knowledge object %s: %w", s.Key, err)
	}
	defer body.Close()
	return readDocument(body, FormatFor(s.Key), s.Key)
}

func readDocument(r io.Reader, format Format, name string) (*Base, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read knowledge document %s: %w", name, err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("knowledge document %s exceeds %d bytes", name, maxDocumentBytes)
	}
	base, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse knowledge document %s: %w", name, err)
	}
	return base, nil
}

// NewSource returns the Source for kind: embedded, file, object or postgres.
func NewSource(kind, path string, store object.ObjectStore, pg *PGStore) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "embedded":
		return EmbeddedSource{}, nil
	case "file":
		if strings.TrimSpace(path) == "" {
			return nil, errors.New("KNOWLEDGE_PATH is required for file source")
		}
		return FileSource{Path: path}, nil
	case "object":
		if strings.TrimSpace(path) == "" {
			return nil, errors.New("KNOWLEDGE_PATH is required for object source")
		}
		return ObjectSource{Store: store, Key: path}, nil
	case "postgres":
		if pg == nil || pg.DB == nil {
			return nil, errors.New("postgres knowledge source requires DATABASE_URL")
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, kind)
	}
}
