// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package httpparams decodes and validates the per-item parameters shared by
// the HTTP request nodes and maps them onto a request.Spec.
package httpparams

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
	"github.com/tombee/conductor-httpnodes/pkg/node"
	"github.com/tombee/conductor-httpnodes/pkg/request"
)

// validate is shared; validator caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Values of the typeofData parameter.
const (
	DataQueryParameter = "queryParameter"
	DataJSON           = "jsonData"
)

// Values of the contentType parameter.
const (
	ContentJSON = "json"
	ContentForm = "form-urlencoded"
	ContentRaw  = "raw"
)

// Values of the specifyBody parameter.
const (
	SpecifyKeypair = "keypair"
	SpecifyJSON    = "json"
)

// Header is one caller-supplied header.
type Header struct {
	Name  string `mapstructure:"name" json:"name" validate:"required"`
	Value string `mapstructure:"value" json:"value"`
}

// Argument is one query parameter or JSON body field.
type Argument struct {
	Key   string `mapstructure:"key" json:"key" validate:"required"`
	Value string `mapstructure:"value" json:"value"`
}

// HeaderCollection is the fixedCollection shape {"keyvalue": [...]}.
type HeaderCollection struct {
	KeyValue []Header `mapstructure:"keyvalue" json:"keyvalue,omitempty" validate:"dive"`
}

// ArgumentCollection is the fixedCollection shape {"keyvalue": [...]}.
type ArgumentCollection struct {
	KeyValue []Argument `mapstructure:"keyvalue" json:"keyvalue,omitempty" validate:"dive"`
}

// BodyCollection is the fixedCollection shape {"parameters": [...]}.
type BodyCollection struct {
	Parameters []Header `mapstructure:"parameters" json:"parameters,omitempty" validate:"dive"`
}

// Parameters are the resolved parameters of one item.
type Parameters struct {
	Authentication string             `mapstructure:"authentication" json:"authentication" validate:"required" jsonschema:"enum=none,enum=genericHttpAuthApi,enum=httpbinApi,default=none,description=Credential type to authenticate with"`
	Operation      string             `mapstructure:"operation" json:"operation" validate:"oneof=get post put patch delete head" jsonschema:"enum=get,enum=post,enum=put,enum=patch,enum=delete,enum=head,default=get"`
	URL            string             `mapstructure:"url" json:"url" validate:"required" jsonschema:"required,description=Request URL"`
	Headers        HeaderCollection   `mapstructure:"headers" json:"headers"`
	TypeOfData     string             `mapstructure:"typeofData" json:"typeofData" validate:"oneof=queryParameter jsonData" jsonschema:"enum=queryParameter,enum=jsonData"`
	Arguments      ArgumentCollection `mapstructure:"arguments" json:"arguments"`

	SendBody       bool           `mapstructure:"sendBody" json:"sendBody"`
	ContentType    string         `mapstructure:"contentType" json:"contentType" validate:"oneof=json form-urlencoded raw" jsonschema:"enum=json,enum=form-urlencoded,enum=raw,default=json"`
	SpecifyBody    string         `mapstructure:"specifyBody" json:"specifyBody" validate:"oneof=keypair json" jsonschema:"enum=keypair,enum=json,default=keypair"`
	BodyParameters BodyCollection `mapstructure:"bodyParameters" json:"bodyParameters"`
	JSONBody       any            `mapstructure:"jsonBody" json:"jsonBody,omitempty" jsonschema:"description=JSON document or object sent as the body"`
	Body           string         `mapstructure:"body" json:"body,omitempty"`
	RawContentType string         `mapstructure:"rawContentType" json:"rawContentType,omitempty" jsonschema:"default=text/plain"`

	OutputResponse bool `mapstructure:"outputResponse" json:"outputResponse" jsonschema:"default=true"`
	HIPAAErrorMode bool `mapstructure:"hipaaErrorMode" json:"hipaaErrorMode" jsonschema:"default=true"`
	ContinueOnFail bool `mapstructure:"continueOnFail" json:"continueOnFail"`
}

// Defaults returns the parameter values used when an item leaves them unset.
// TypeOfData is left empty; Decode picks queryParameter for GET and HEAD and
// jsonData for the other methods.
func Defaults() Parameters {
	return Parameters{
		Authentication: "none",
		Operation:      "get",
		ContentType:    ContentJSON,
		SpecifyBody:    SpecifyKeypair,
		RawContentType: "text/plain",
		OutputResponse: true,
		HIPAAErrorMode: true,
	}
}

// Decode overlays values onto Defaults and validates the result. Scalars
// are weakly typed, so "true" and 1 decode into booleans.
func Decode(values map[string]any) (*Parameters, error) {
	p := Defaults()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		ZeroFields:       false,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(values); err != nil {
		return nil, &nodeerrors.ValidationError{Message: fmt.Sprintf("decode parameters: %v", err)}
	}
	p.Operation = strings.ToLower(strings.TrimSpace(p.Operation))
	if p.TypeOfData == "" {
		p.TypeOfData = DataQueryParameter
		if p.Method().AllowsBody() {
			p.TypeOfData = DataJSON
		}
	}
	if err := validate.Struct(&p); err != nil {
		return nil, validationError(err)
	}
	return &p, nil
}

// Method returns the HTTP method for Operation.
func (p *Parameters) Method() request.Method {
	m, _ := request.ParseMethod(p.Operation)
	return m
}

// Spec maps the parameters onto a request spec. Exactly one body mode is
// selected: sendBody picks by contentType and specifyBody, otherwise
// typeofData=jsonData sends the arguments as a JSON object.
func (p *Parameters) Spec() (request.Spec, error) {
	method := p.Method()
	spec := request.Spec{Method: method, URL: strings.TrimSpace(p.URL)}

	for _, h := range p.Headers.KeyValue {
		spec.Headers = append(spec.Headers, request.Pair{Name: h.Name, Value: h.Value})
	}

	switch p.TypeOfData {
	case DataQueryParameter:
		for _, a := range p.Arguments.KeyValue {
			spec.Query = append(spec.Query, request.Pair{Name: a.Key, Value: a.Value})
		}
	case DataJSON:
		if !method.AllowsBody() {
			return request.Spec{}, &nodeerrors.ValidationError{
				Field:   "typeofData",
				Message: fmt.Sprintf("%s requests only accept query parameters", method),
			}
		}
		obj := make(map[string]any, len(p.Arguments.KeyValue))
		for _, a := range p.Arguments.KeyValue {
			obj[a.Key] = a.Value
		}
		spec.Body = request.JSONBody(obj)
	}

	if p.SendBody {
		if !method.AllowsBody() {
			return request.Spec{}, &nodeerrors.ValidationError{
				Field:   "sendBody",
				Message: fmt.Sprintf("%s requests cannot carry a body", method),
			}
		}
		body, err := p.body()
		if err != nil {
			return request.Spec{}, err
		}
		spec.Body = body
	}
	return spec, nil
}

func (p *Parameters) body() (request.Body, error) {
	switch p.ContentType {
	case ContentRaw:
		return request.RawBody(p.Body, p.RawContentType), nil
	case ContentForm:
		if p.SpecifyBody == SpecifyJSON {
			obj, err := p.jsonObject()
			if err != nil {
				return request.Body{}, err
			}
			return request.FormBody(sortedPairs(obj)...), nil
		}
		return request.FormBody(p.bodyPairs()...), nil
	default:
		if p.SpecifyBody == SpecifyJSON {
			v, err := p.jsonValue()
			if err != nil {
				return request.Body{}, err
			}
			return request.JSONBody(v), nil
		}
		obj := make(map[string]any, len(p.BodyParameters.Parameters))
		for _, kv := range p.BodyParameters.Parameters {
			obj[kv.Name] = kv.Value
		}
		return request.JSONBody(obj), nil
	}
}

func (p *Parameters) bodyPairs() []request.Pair {
	out := make([]request.Pair, 0, len(p.BodyParameters.Parameters))
	for _, kv := range p.BodyParameters.Parameters {
		out = append(out, request.Pair{Name: kv.Name, Value: kv.Value})
	}
	return out
}

// jsonValue returns JSONBody decoded when it is a string.
func (p *Parameters) jsonValue() (any, error) {
	s, ok := p.JSONBody.(string)
	if !ok {
		if p.JSONBody == nil {
			return map[string]any{}, nil
		}
		return p.JSONBody, nil
	}
	if strings.TrimSpace(s) == "" {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, &nodeerrors.ValidationError{
			Field:   "jsonBody",
			Message: fmt.Sprintf("invalid JSON: %v", err),
		}
	}
	return v, nil
}

func (p *Parameters) jsonObject() (map[string]any, error) {
	v, err := p.jsonValue()
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &nodeerrors.ValidationError{
			Field:   "jsonBody",
			Message: "form-urlencoded bodies require a JSON object",
		}
	}
	return obj, nil
}

func sortedPairs(obj map[string]any) []request.Pair {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]request.Pair, 0, len(keys))
	for _, k := range keys {
		out = append(out, request.Pair{Name: k, Value: fmt.Sprint(obj[k])})
	}
	return out
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &nodeerrors.ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Parameters.")
	msg := fmt.Sprintf("failed %q check", fe.Tag())
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "oneof":
		msg = fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	}
	return &nodeerrors.ValidationError{Field: field, Message: msg}
}

// ForItem resolves and decodes the parameters of item i.
func ForItem(ec *node.ExecuteContext, i int) (*Parameters, error) {
	if ec.Params == nil {
		return Decode(nil)
	}
	values, err := ec.Params.Values(i)
	if err != nil {
		return nil, err
	}
	return Decode(values)
}
