package aifunc

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Manifest is the tool-calling description of one function, shaped as
// {"type":"function","function":{"name","description","parameters":{...}}}.
type Manifest struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec is the "function" member of a Manifest.
type FunctionSpec struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters is the object schema of a function's parameter list. Properties keep
// declaration order when serialized; Required is always present, possibly empty.
type Parameters struct {
	Type       string                                             `json:"type"`
	Properties *orderedmap.OrderedMap[string, *jsonschema.Schema] `json:"properties"`
	Required   []string                                           `json:"required"`
}

// Manifest walks the descriptor tree and returns the function's tool manifest.
// The result is freshly built on every call; callers may modify it.
func (f *Function) Manifest() Manifest {
	return Manifest{
		Type: "function",
		Function: FunctionSpec{
			Name:        f.name,
			Description: f.description,
			Parameters: Parameters{
				Type:       "object",
				Properties: describeProperties(f.params),
				Required:   requiredNames(f.params),
			},
		},
	}
}

// Parameters returns the parameters schema as a generic JSON map, for providers
// that take tool definitions as map[string]any. Key order of nested maps is lost.
func (f *Function) Parameters() map[string]any {
	data, err := json.Marshal(f.Manifest().Function.Parameters)
	if err != nil {
		// Manifests only hold strings, slices and schema nodes.
		panic("aifunc: marshal parameters: " + err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		panic("aifunc: unmarshal parameters: " + err.Error())
	}
	return m
}

// requiredNames returns the names of required params in declaration order.
func requiredNames(params []Param) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		if p.Required() {
			out = append(out, p.Name())
		}
	}
	return out
}
