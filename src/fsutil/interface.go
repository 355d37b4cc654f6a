package fsutil

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound   = errors.New("archived file not found")
	ErrInvalidKey = errors.New("invalid archive key")
)

// Archive keeps the raw bytes of every uploaded file.
type Archive interface {
	// Put stores data under key, replacing anything already there
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the bytes stored under key
	Get(ctx context.Context, key string) ([]byte, error)
}

// KeyGenerator derives unique, time-ordered archive keys from filenames.
type KeyGenerator struct {
	node *snowflake.Node
}

func NewKeyGenerator(nodeID int64) (*KeyGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &KeyGenerator{node: node}, nil
}

// Key returns "<snowflake id>_<base name>".
func (g *KeyGenerator) Key(filename string) string {
	return fmt.Sprintf("%s_%s", g.node.Generate().String(), SafeName(filename))
}

// SafeName strips any directory part from a client supplied filename.
func SafeName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return "upload"
	}
	return name
}

// OriginalName recovers the filename a key was generated from.
func OriginalName(key string) string {
	if _, name, ok := strings.Cut(key, "_"); ok {
		return name
	}
	return key
}
