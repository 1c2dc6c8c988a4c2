package apidocs

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// APISpec is a read-only view over an OpenAPI document, keyed by endpoint
// reference. An endpoint reference is the URL path joined with the lowercase
// HTTP method by a colon, e.g. "/dev_fetch_api_key:post".
type APISpec struct {
	// Source is the path the spec was loaded from, when file-backed
	Source string

	ops map[string]*Operation
}

// Operation is the documented behavior of one (endpoint, method) pair.
type Operation struct {
	Endpoint    string
	Method      string
	Summary     string
	Description string
	// Parameters in spec order
	Parameters []Parameter
}

// Parameter is one argument descriptor of an operation.
type Parameter struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// yaml wire format, the subset of OpenAPI this tool reads

type specDoc struct {
	Paths map[string]map[string]operationDoc `yaml:"paths"`
}

type operationDoc struct {
	OperationID string         `yaml:"operationId"`
	Summary     string         `yaml:"summary"`
	Description string         `yaml:"description"`
	Parameters  []parameterDoc `yaml:"parameters"`
}

type parameterDoc struct {
	Name        string `yaml:"name"`
	In          string `yaml:"in"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Schema      struct {
		Type string `yaml:"type"`
	} `yaml:"schema"`
}

// LoadAPISpec reads and parses an OpenAPI YAML file.
//
// A missing file fails with [ErrSpecFileNotFound] so expansion errors can
// name the spec file a directive asked for.
func LoadAPISpec(path string) (*APISpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSpecFileNotFound, path)
		}
		return nil, fmt.Errorf("reading spec file: %w", err)
	}

	spec, err := ParseAPISpec(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	spec.Source = path

	return spec, nil
}

// ParseAPISpec parses OpenAPI YAML content into an APISpec.
func ParseAPISpec(data []byte) (*APISpec, error) {
	var doc specDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal openapi document: %w", err)
	}

	spec := &APISpec{
		ops: make(map[string]*Operation),
	}

	for path, methods := range doc.Paths {
		for method, op := range methods {
			method = strings.ToLower(method)
			o := &Operation{
				Endpoint:    path,
				Method:      method,
				Summary:     op.Summary,
				Description: op.Description,
			}
			for _, p := range op.Parameters {
				o.Parameters = append(o.Parameters, Parameter{
					Name:        p.Name,
					Type:        p.Schema.Type,
					Required:    p.Required,
					Description: p.Description,
				})
			}
			spec.ops[path+":"+method] = o
		}
	}

	return spec, nil
}

// Operation looks up the operation for an endpoint reference such as
// "/dev_fetch_api_key:post". Fails with [ErrUnknownEndpoint] when the spec
// has no such operation.
func (s *APISpec) Operation(ref string) (*Operation, error) {
	op, ok := s.ops[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, ref)
	}
	return op, nil
}

// Endpoints returns all known endpoint references in sorted order.
func (s *APISpec) Endpoints() []string {
	refs := make([]string, 0, len(s.ops))
	for ref := range s.ops {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
