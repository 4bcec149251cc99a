package pg

import (
	"errors"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"
)

func vector(data ...float64) *tensor.Dense {
	return tensor.New(tensor.WithShape(len(data)), tensor.WithBacking(data))
}

func TestAgentInfo(t *testing.T) {
	prob := vector(0.25, 0.75)
	dist, err := NewDistInfo(prob)
	if err != nil {
		t.Fatal(err)
	}
	value := vector(1.5)

	info, err := NewAgentInfo(dist, value)
	if err != nil {
		t.Fatal(err)
	}

	if info.Schema() != AgentInfoSchema {
		t.Errorf("schema: want(%v) have(%v)", AgentInfoSchema, info.Schema())
	}
	if want := []string{"dist_info", "value"}; !reflect.DeepEqual(
		info.Fields(), want) {
		t.Errorf("fields: want(%v) have(%v)", want, info.Fields())
	}
	if info.DistInfo() != Record(dist) || info.Value() != value {
		t.Error("accessors returned the wrong values")
	}

	// Values are positional in field order
	values := info.Values()
	if values[0] != Record(dist) || values[1] != value {
		t.Errorf("values out of order: %v", values)
	}

	got, err := info.Field("value")
	if err != nil {
		t.Fatal(err)
	}
	if got != value {
		t.Errorf("field value: want(%v) have(%v)", value, got)
	}

	nested, err := info.Field("dist_info")
	if err != nil {
		t.Fatal(err)
	}
	p, err := nested.(Record).Field("prob")
	if err != nil {
		t.Fatal(err)
	}
	if !floats.Equal(p.(tensor.Tensor).Data().([]float64), []float64{0.25,
		0.75}) {
		t.Errorf("prob: have %v", p)
	}

	if _, err := info.Field("prev_rnn_state"); !errors.Is(err, ErrNoField) {
		t.Errorf("want error %v, have %v", ErrNoField, err)
	}
}

func TestArity(t *testing.T) {
	x := vector(1)

	tests := []struct {
		schema string
		values []interface{}
	}{
		{AgentInfoSchema, []interface{}{x}},
		{AgentInfoSchema, []interface{}{x, x, x}},
		{AgentInfoRnnSchema, []interface{}{x, x}},
		{NdigoInfoSchema, nil},
		{IcmInfoSchema, []interface{}{x}},
		{RndInfoSchema, []interface{}{nil}},
		{ARTInfoSchema, []interface{}{x}},
		{DistInfoStdSchema, []interface{}{x}},
	}

	for _, test := range tests {
		t.Run(test.schema, func(t *testing.T) {
			_, err := New(test.schema, test.values...)
			if !errors.Is(err, ErrArity) {
				t.Errorf("%v values: want error %v, have %v",
					len(test.values), ErrArity, err)
			}
		})
	}
}

func TestFieldType(t *testing.T) {
	if _, err := NewAgentInfo(nil, 1.5); !errors.Is(err, ErrFieldType) {
		t.Errorf("want error %v, have %v", ErrFieldType, err)
	}
	if _, err := NewNdigoInfo([]float64{0}); !errors.Is(err, ErrFieldType) {
		t.Errorf("want error %v, have %v", ErrFieldType, err)
	}

	// Records are not partially filled on error
	x := vector(1)
	if a, err := NewAgentInfo(x, 1.5); err == nil || a != (AgentInfo{}) {
		t.Errorf("want zero record and error, have %v and %v", a, err)
	}
	rnn, err := NewAgentInfoRnn(x, x, "state")
	if err == nil || rnn != (AgentInfoRnn{}) {
		t.Errorf("want zero record and error, have %v and %v", rnn, err)
	}
	std, err := NewDistInfoStd(x, 0.5)
	if err == nil || std != (DistInfoStd{}) {
		t.Errorf("want zero record and error, have %v and %v", std, err)
	}

	// nil is an explicit placeholder
	info, err := NewAgentInfoRnn(nil, vector(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	if info.PrevRnnState() != nil {
		t.Errorf("want nil state, have %v", info.PrevRnnState())
	}
}

func TestEmptyRecords(t *testing.T) {
	empty := []string{IcmInfoSchema, RndInfoSchema, RandInfoSchema,
		KohonenInfoSchema, ARTInfoSchema}

	for _, name := range empty {
		r, err := New(name)
		if err != nil {
			t.Fatalf("%v: %v", name, err)
		}
		if r.Schema() != name {
			t.Errorf("want schema %v, have %v", name, r.Schema())
		}
		if len(r.Fields()) != 0 || len(r.Values()) != 0 {
			t.Errorf("%v should have no fields", name)
		}
	}

	// Empty records of different schemas are not interchangeable
	icm, _ := New(IcmInfoSchema)
	rnd, _ := New(RndInfoSchema)
	if icm == rnd {
		t.Error("records of different schemas compare equal")
	}
	icm2, _ := NewIcmInfo()
	if icm != Record(icm2) {
		t.Error("records of the same schema and values should be equal")
	}

	// Neither are records of different schemas holding the same values
	x := vector(0.5, 0.5)
	ndigo, err := New(NdigoInfoSchema, x)
	if err != nil {
		t.Fatal(err)
	}
	dist, err := New(DistInfoSchema, x)
	if err != nil {
		t.Fatal(err)
	}
	if ndigo == dist {
		t.Error("records of different schemas with the same values " +
			"compare equal")
	}
	if !reflect.DeepEqual(ndigo.Values(), dist.Values()) {
		t.Errorf("values differ: %v and %v", ndigo.Values(), dist.Values())
	}
	if reflect.DeepEqual(ndigo, dist) {
		t.Error("records of different schemas are deeply equal")
	}
}

func TestSchemas(t *testing.T) {
	want := []string{AgentInfoSchema, AgentInfoRnnSchema, IcmInfoSchema,
		NdigoInfoSchema, RndInfoSchema, RandInfoSchema, KohonenInfoSchema,
		ARTInfoSchema, DistInfoSchema, DistInfoStdSchema}
	if got := Schemas(); !reflect.DeepEqual(got, want) {
		t.Errorf("want(%v) have(%v)", want, got)
	}

	for _, name := range want {
		placeholder := name == KohonenInfoSchema || name == ARTInfoSchema
		if IsPlaceholder(name) != placeholder {
			t.Errorf("%v: want placeholder %v", name, placeholder)
		}
	}

	if _, err := New("MyInfo"); !errors.Is(err, ErrUnknownSchema) {
		t.Errorf("want error %v, have %v", ErrUnknownSchema, err)
	}
	if _, err := FieldsOf("MyInfo"); !errors.Is(err, ErrUnknownSchema) {
		t.Errorf("want error %v, have %v", ErrUnknownSchema, err)
	}

	// Returned field names are copies
	fields, _ := FieldsOf(AgentInfoSchema)
	fields[0] = "changed"
	if f, _ := FieldsOf(AgentInfoSchema); f[0] != "dist_info" {
		t.Error("schema fields were modified through a returned slice")
	}
}

func materialize(t *testing.T, v interface{}) []float64 {
	t.Helper()
	view, ok := v.(tensor.View)
	if !ok {
		t.Fatalf("want tensor, have %T", v)
	}
	return view.Materialize().Data().([]float64)
}

func TestAt(t *testing.T) {
	mean := tensor.New(tensor.WithShape(3, 2),
		tensor.WithBacking([]float64{0, 1, 2, 3, 4, 5}))
	logStd := tensor.New(tensor.WithShape(3, 2),
		tensor.WithBacking([]float64{-1, -1, -2, -2, -3, -3}))
	dist, err := NewDistInfoStd(mean, logStd)
	if err != nil {
		t.Fatal(err)
	}
	value := tensor.New(tensor.WithShape(3, 1),
		tensor.WithBacking([]float64{10, 20, 30}))
	info, err := NewAgentInfoRnn(dist, value, nil)
	if err != nil {
		t.Fatal(err)
	}

	r, err := At(info, 1)
	if err != nil {
		t.Fatal(err)
	}
	step, ok := r.(AgentInfoRnn)
	if !ok {
		t.Fatalf("want AgentInfoRnn, have %T", r)
	}
	if step.PrevRnnState() != nil {
		t.Error("nil field should stay nil")
	}

	if got := materialize(t, step.Value()); !floats.Equal(got,
		[]float64{20}) {
		t.Errorf("value: want([20]) have(%v)", got)
	}

	d := step.DistInfo().(DistInfoStd)
	if got := materialize(t, d.Mean()); !floats.Equal(got,
		[]float64{2, 3}) {
		t.Errorf("mean: want([2 3]) have(%v)", got)
	}
	if got := materialize(t, d.LogStd()); !floats.Equal(got,
		[]float64{-2, -2}) {
		t.Errorf("log_std: want([-2 -2]) have(%v)", got)
	}

	// The original record is unchanged
	if !info.Value().(tensor.Tensor).Shape().Eq(tensor.Shape{3, 1}) {
		t.Error("indexing modified the original record")
	}

	if _, err := At(info, 3); err == nil {
		t.Error("expected error indexing past the leading dimension")
	}
}
