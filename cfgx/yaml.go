package cfgx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/erlorenz/go-hub/cfgx/internal/casing"
)

// YAMLFileSource reads values from a yaml document. A field's key is its
// struct path with every segment in snake case, so "Logging.Level" is read
// from
//
//	logging:
//	  level: debug
//
// Override the dotted key with the tag "yaml".
type YAMLFileSource struct {
	// PriorityLevel defaults to PriorityFile (25) when zero.
	PriorityLevel int
	// Path of the document inside FS.
	Path string
	// FS defaults to the working directory.
	FS fs.FS
	// Optional skips the source when the file does not exist.
	Optional bool
}

// NewYAMLFileSource returns a source reading path relative to the working
// directory at PriorityFile.
func NewYAMLFileSource(path string) *YAMLFileSource {
	return &YAMLFileSource{PriorityLevel: PriorityFile, Path: path}
}

// Priority implements [Source].
func (s *YAMLFileSource) Priority() int {
	if s.PriorityLevel == 0 {
		return PriorityFile
	}
	return s.PriorityLevel
}

// Process implements [Source].
func (s *YAMLFileSource) Process(structMap map[string]ConfigField) error {
	fsys := s.FS
	if fsys == nil {
		fsys = os.DirFS(".")
	}

	b, err := readLimited(fsys, s.Path)
	if err != nil {
		if s.Optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read yaml %s: %w", s.Path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("decode yaml %s: %w", s.Path, err)
	}

	var allErrs []error

	for _, path := range sortedPaths(structMap) {
		field := structMap[path]

		key := yamlKey(path)
		if tagVal, ok := field.Tag.Lookup(tagYAML); ok {
			key = tagVal
		}

		val, ok := lookupYAML(doc, key)
		if !ok {
			continue
		}
		if err := setValue(field, val); err != nil {
			allErrs = append(allErrs, err)
		}
	}

	if len(allErrs) > 0 {
		return &MultiError{allErrs}
	}
	return nil
}

func yamlKey(path string) string {
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		segments[i] = casing.ToSnake(seg)
	}
	return strings.Join(segments, ".")
}

// lookupYAML walks nested mappings along the dotted key and returns the scalar
// found there in string form.
func lookupYAML(doc map[string]any, key string) (string, bool) {
	var node any = doc

	for _, seg := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return "", false
		}
		if node, ok = m[seg]; !ok {
			return "", false
		}
	}

	switch v := node.(type) {
	case nil, map[string]any, []any:
		return "", false
	case string:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}
