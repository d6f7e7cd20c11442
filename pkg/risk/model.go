// Package risk implements published cardiovascular risk equations for people
// with type 2 diabetes. Each equation is available as a free function over a
// typed input struct and as a Model that reads the same inputs from a Record.
package risk

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/synaptica-ai/cvdrisk/pkg/survival"
)

var (
	ErrMissingField         = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field value")
	ErrUnsupportedParameter = errors.New("unsupported parameter")
	ErrUnknownModel         = errors.New("unknown model")
	// ErrNonFiniteRisk reports an equation that evaluated to NaN or ±Inf.
	ErrNonFiniteRisk = errors.New("non-finite risk")

	errNonFinite = errors.New("non-finite value")
)

// MissingFieldError lists every required key a record lacked.
type MissingFieldError struct {
	Model  string
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field(s): %s", e.Model, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

func unsupported(model, param string, value interface{}) error {
	return fmt.Errorf("%s: %w: %s %v", model, ErrUnsupportedParameter, param, value)
}

// Record is a clinical record keyed by field name. Values are numbers or
// booleans; anything else is rejected when a model reads it.
type Record map[string]interface{}

// Model is a configured risk equation.
type Model interface {
	Name() string
	// RequiredFeatures lists the record fields Score reads.
	RequiredFeatures() []string
	// FeatureKeys lists the required fields followed by the derived terms
	// reported by Explain.
	FeatureKeys() []string
	Score(rec Record) (float64, error)
	// Explain returns the feature vector the equation was evaluated on, keyed
	// by term name.
	Explain(rec Record) (map[string]float64, error)
}

type descriptor struct {
	name     string
	required []string
	terms    []string
}

func (d descriptor) Name() string { return d.name }

func (d descriptor) RequiredFeatures() []string {
	return append([]string(nil), d.required...)
}

func (d descriptor) FeatureKeys() []string {
	seen := make(map[string]struct{}, len(d.required)+len(d.terms))
	keys := make([]string, 0, len(d.required)+len(d.terms))
	for _, group := range [][]string{d.required, d.terms} {
		for _, k := range group {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

// equation binds a typed input to a Model: read pulls the input out of a
// record, build produces the named feature vector and risk is the free
// function form of the equation.
type equation[In any] struct {
	descriptor
	read  func(r *reader) In
	build func(In) ([]string, []float64)
	risk  func(In) (float64, error)
}

func (m *equation[In]) input(rec Record) (In, error) {
	r := newReader(rec)
	in := m.read(r)
	return in, r.err(m.name)
}

func (m *equation[In]) Score(rec Record) (float64, error) {
	in, err := m.input(rec)
	if err != nil {
		return 0, err
	}
	p, err := m.risk(in)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("%s: %w: %v", m.name, ErrNonFiniteRisk, p)
	}
	return p, nil
}

func (m *equation[In]) Explain(rec Record) (map[string]float64, error) {
	in, err := m.input(rec)
	if err != nil {
		return nil, err
	}
	names, x := m.build(in)
	if len(names) != len(x) {
		return nil, fmt.Errorf("%s: %w: %d names, %d values", m.name, survival.ErrDimensionMismatch, len(names), len(x))
	}
	out := make(map[string]float64, len(x))
	for i, name := range names {
		out[name] = x[i]
	}
	return out, nil
}

type reader struct {
	rec     Record
	missing []string
	invalid []string
}

func newReader(rec Record) *reader {
	return &reader{rec: rec}
}

func (r *reader) value(key string) (interface{}, bool) {
	v, ok := r.rec[key]
	if !ok || v == nil {
		r.missing = append(r.missing, key)
		return nil, false
	}
	return v, true
}

func (r *reader) num(key string) float64 {
	v, ok := r.value(key)
	if !ok {
		return 0
	}
	f, err := toFloat(v)
	if err != nil {
		r.invalid = append(r.invalid, key)
		return 0
	}
	return f
}

func (r *reader) flag(key string) bool {
	return r.num(key) != 0
}

// optionalFlag reads key when present and treats absence as false.
func (r *reader) optionalFlag(key string) bool {
	v, ok := r.rec[key]
	if !ok || v == nil {
		return false
	}
	f, err := toFloat(v)
	if err != nil {
		r.invalid = append(r.invalid, key)
		return false
	}
	return f != 0
}

func (r *reader) err(model string) error {
	if len(r.missing) > 0 {
		sort.Strings(r.missing)
		return &MissingFieldError{Model: model, Fields: r.missing}
	}
	if len(r.invalid) > 0 {
		sort.Strings(r.invalid)
		return fmt.Errorf("%s: %w: %s", model, ErrInvalidField, strings.Join(r.invalid, ", "))
	}
	return nil
}

// toFloat accepts numbers, booleans and numeric strings. NaN and ±Inf are
// rejected: the clamps cannot floor a NaN.
func toFloat(value interface{}) (float64, error) {
	f, err := parseNumber(value)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNonFinite
	}
	return f, nil
}

func parseNumber(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case bool:
		return b2f(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// coxTable is one stratum of a Cox proportional hazards equation.
type coxTable struct {
	beta   []float64
	s0     float64
	b0     float64
	shrink float64
}

func (t coxTable) risk(x []float64) (float64, error) {
	shrink := t.shrink
	if shrink == 0 {
		shrink = 1
	}
	return survival.Cox(x, t.beta, t.s0, t.b0, shrink)
}
