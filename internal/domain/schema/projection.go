package schema

import (
	"strings"

	"github.com/leengari/docsim/internal/domain/errors"
)

// Project returns a reduced copy of root holding only the requested paths.
// A path naming an object or array keeps it whole; a dotted path keeps only
// the named descendant, inside its enclosing objects and arrays.
// An empty path list keeps the whole document.
func Project(root *Object, paths []string) (*Object, error) {
	if len(paths) == 0 {
		return root, nil
	}
	return projectObject(root, root.Name, paths)
}

func projectObject(obj *Object, subject string, paths []string) (*Object, error) {
	// head -> nested paths; a nil entry means "keep whole"
	selected := make(map[string][]string)
	whole := make(map[string]bool)

	for _, p := range paths {
		head, rest, nested := strings.Cut(p, ".")
		if _, ok := obj.Field(head); !ok || head == "" {
			return nil, errors.NewUnknownField(subject, p)
		}
		if !nested {
			whole[head] = true
			continue
		}
		selected[head] = append(selected[head], rest)
	}

	projected := &Object{Name: obj.Name}
	for _, f := range obj.Fields {
		name := f.FieldName()
		if whole[name] {
			projected.Fields = append(projected.Fields, f)
			continue
		}
		rest, ok := selected[name]
		if !ok {
			continue
		}

		child, err := projectChild(f, subject+"."+name, rest)
		if err != nil {
			return nil, err
		}
		projected.Fields = append(projected.Fields, child)
	}

	return projected, nil
}

func projectChild(f Field, subject string, paths []string) (Field, error) {
	switch c := f.(type) {
	case *Object:
		return projectObject(c, subject, paths)
	case *Array:
		items, ok := c.Items.(*Object)
		if !ok {
			return nil, errors.NewUnknownField(subject, paths[0])
		}
		reduced, err := projectObject(items, subject, paths)
		if err != nil {
			return nil, err
		}
		return &Array{Name: c.Name, Items: reduced, Cardinality: c.Cardinality}, nil
	default:
		return nil, errors.NewUnknownField(subject, paths[0])
	}
}
