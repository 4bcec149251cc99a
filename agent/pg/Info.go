package pg

// Schema names
const (
	AgentInfoSchema    = "AgentInfo"
	AgentInfoRnnSchema = "AgentInfoRnn"
	IcmInfoSchema      = "IcmInfo"
	NdigoInfoSchema    = "NdigoInfo"
	RndInfoSchema      = "RndInfo"
	RandInfoSchema     = "RandInfo"
	KohonenInfoSchema  = "KohonenInfo"
	ARTInfoSchema      = "ARTInfo"
	DistInfoSchema     = "DistInfo"
	DistInfoStdSchema  = "DistInfoStd"
)

func init() {
	register(AgentInfoSchema, []string{"dist_info", "value"}, false,
		func(v ...interface{}) (Record, error) { return NewAgentInfo(v...) })
	register(AgentInfoRnnSchema,
		[]string{"dist_info", "value", "prev_rnn_state"}, false,
		func(v ...interface{}) (Record, error) { return NewAgentInfoRnn(v...) })
	register(IcmInfoSchema, nil, false,
		func(v ...interface{}) (Record, error) { return NewIcmInfo(v...) })
	register(NdigoInfoSchema, []string{"prev_gru_state"}, false,
		func(v ...interface{}) (Record, error) { return NewNdigoInfo(v...) })
	register(RndInfoSchema, nil, false,
		func(v ...interface{}) (Record, error) { return NewRndInfo(v...) })
	register(RandInfoSchema, nil, false,
		func(v ...interface{}) (Record, error) { return NewRandInfo(v...) })
	register(KohonenInfoSchema, nil, true,
		func(v ...interface{}) (Record, error) { return NewKohonenInfo(v...) })
	register(ARTInfoSchema, nil, true,
		func(v ...interface{}) (Record, error) { return NewARTInfo(v...) })
	register(DistInfoSchema, []string{"prob"}, false,
		func(v ...interface{}) (Record, error) { return NewDistInfo(v...) })
	register(DistInfoStdSchema, []string{"mean", "log_std"}, false,
		func(v ...interface{}) (Record, error) { return NewDistInfoStd(v...) })
}

// AgentInfo is output by feedforward policy gradient agents at each
// step: the parameters of the action distribution and the value
// estimate.
type AgentInfo struct {
	distInfo, value interface{}
}

// NewAgentInfo returns a new AgentInfo with fields dist_info and value
func NewAgentInfo(values ...interface{}) (AgentInfo, error) {
	var a AgentInfo
	err := fill(AgentInfoSchema, values, &a.distInfo, &a.value)
	if err != nil {
		return AgentInfo{}, err
	}
	return a, nil
}

// DistInfo returns the action distribution parameters
func (a AgentInfo) DistInfo() interface{} { return a.distInfo }

// Value returns the value estimate
func (a AgentInfo) Value() interface{} { return a.value }

func (a AgentInfo) Schema() string   { return AgentInfoSchema }
func (a AgentInfo) Fields() []string { return fieldNames(AgentInfoSchema) }

func (a AgentInfo) Values() []interface{} {
	return []interface{}{a.distInfo, a.value}
}

func (a AgentInfo) Field(name string) (interface{}, error) {
	return field(a, name)
}

// AgentInfoRnn is output by recurrent policy gradient agents at each
// step. PrevRnnState is the recurrent state before the step.
type AgentInfoRnn struct {
	distInfo, value, prevRnnState interface{}
}

// NewAgentInfoRnn returns a new AgentInfoRnn with fields dist_info,
// value, and prev_rnn_state
func NewAgentInfoRnn(values ...interface{}) (AgentInfoRnn, error) {
	var a AgentInfoRnn
	err := fill(AgentInfoRnnSchema, values, &a.distInfo, &a.value,
		&a.prevRnnState)
	if err != nil {
		return AgentInfoRnn{}, err
	}
	return a, nil
}

func (a AgentInfoRnn) DistInfo() interface{}     { return a.distInfo }
func (a AgentInfoRnn) Value() interface{}        { return a.value }
func (a AgentInfoRnn) PrevRnnState() interface{} { return a.prevRnnState }

func (a AgentInfoRnn) Schema() string   { return AgentInfoRnnSchema }
func (a AgentInfoRnn) Fields() []string { return fieldNames(AgentInfoRnnSchema) }

func (a AgentInfoRnn) Values() []interface{} {
	return []interface{}{a.distInfo, a.value, a.prevRnnState}
}

func (a AgentInfoRnn) Field(name string) (interface{}, error) {
	return field(a, name)
}

// IcmInfo is output by the intrinsic curiosity module. It has no fields.
type IcmInfo struct{}

// NewIcmInfo returns a new IcmInfo
func NewIcmInfo(values ...interface{}) (IcmInfo, error) {
	return IcmInfo{}, fill(IcmInfoSchema, values)
}

func (IcmInfo) Schema() string        { return IcmInfoSchema }
func (IcmInfo) Fields() []string      { return nil }
func (IcmInfo) Values() []interface{} { return nil }

func (i IcmInfo) Field(name string) (interface{}, error) {
	return field(i, name)
}

// NdigoInfo is output by the NDIGO curiosity module. PrevGruState is
// the state of its GRU before the step.
type NdigoInfo struct {
	prevGruState interface{}
}

// NewNdigoInfo returns a new NdigoInfo with field prev_gru_state
func NewNdigoInfo(values ...interface{}) (NdigoInfo, error) {
	var n NdigoInfo
	if err := fill(NdigoInfoSchema, values, &n.prevGruState); err != nil {
		return NdigoInfo{}, err
	}
	return n, nil
}

func (n NdigoInfo) PrevGruState() interface{} { return n.prevGruState }

func (n NdigoInfo) Schema() string        { return NdigoInfoSchema }
func (n NdigoInfo) Fields() []string      { return fieldNames(NdigoInfoSchema) }
func (n NdigoInfo) Values() []interface{} { return []interface{}{n.prevGruState} }

func (n NdigoInfo) Field(name string) (interface{}, error) {
	return field(n, name)
}

// RndInfo is output by the random network distillation module. It has
// no fields.
type RndInfo struct{}

// NewRndInfo returns a new RndInfo
func NewRndInfo(values ...interface{}) (RndInfo, error) {
	return RndInfo{}, fill(RndInfoSchema, values)
}

func (RndInfo) Schema() string        { return RndInfoSchema }
func (RndInfo) Fields() []string      { return nil }
func (RndInfo) Values() []interface{} { return nil }

func (r RndInfo) Field(name string) (interface{}, error) {
	return field(r, name)
}

// RandInfo is output by the random reward module. It has no fields.
type RandInfo struct{}

// NewRandInfo returns a new RandInfo
func NewRandInfo(values ...interface{}) (RandInfo, error) {
	return RandInfo{}, fill(RandInfoSchema, values)
}

func (RandInfo) Schema() string        { return RandInfoSchema }
func (RandInfo) Fields() []string      { return nil }
func (RandInfo) Values() []interface{} { return nil }

func (r RandInfo) Field(name string) (interface{}, error) {
	return field(r, name)
}

// KohonenInfo is a placeholder for the output of a Kohonen map
// curiosity module. Its fields are not defined yet.
type KohonenInfo struct{}

// NewKohonenInfo returns a new KohonenInfo
func NewKohonenInfo(values ...interface{}) (KohonenInfo, error) {
	return KohonenInfo{}, fill(KohonenInfoSchema, values)
}

func (KohonenInfo) Schema() string        { return KohonenInfoSchema }
func (KohonenInfo) Fields() []string      { return nil }
func (KohonenInfo) Values() []interface{} { return nil }

func (k KohonenInfo) Field(name string) (interface{}, error) {
	return field(k, name)
}

// ARTInfo is a placeholder for the output of an ART curiosity module.
// Its fields are not defined yet.
type ARTInfo struct{}

// NewARTInfo returns a new ARTInfo
func NewARTInfo(values ...interface{}) (ARTInfo, error) {
	return ARTInfo{}, fill(ARTInfoSchema, values)
}

func (ARTInfo) Schema() string        { return ARTInfoSchema }
func (ARTInfo) Fields() []string      { return nil }
func (ARTInfo) Values() []interface{} { return nil }

func (a ARTInfo) Field(name string) (interface{}, error) {
	return field(a, name)
}

// DistInfo holds the probabilities of a categorical action
// distribution
type DistInfo struct {
	prob interface{}
}

// NewDistInfo returns a new DistInfo with field prob
func NewDistInfo(values ...interface{}) (DistInfo, error) {
	var d DistInfo
	if err := fill(DistInfoSchema, values, &d.prob); err != nil {
		return DistInfo{}, err
	}
	return d, nil
}

func (d DistInfo) Prob() interface{} { return d.prob }

func (d DistInfo) Schema() string        { return DistInfoSchema }
func (d DistInfo) Fields() []string      { return fieldNames(DistInfoSchema) }
func (d DistInfo) Values() []interface{} { return []interface{}{d.prob} }

func (d DistInfo) Field(name string) (interface{}, error) {
	return field(d, name)
}

// DistInfoStd holds the mean and log standard deviation of a diagonal
// Gaussian action distribution
type DistInfoStd struct {
	mean, logStd interface{}
}

// NewDistInfoStd returns a new DistInfoStd with fields mean and
// log_std
func NewDistInfoStd(values ...interface{}) (DistInfoStd, error) {
	var d DistInfoStd
	err := fill(DistInfoStdSchema, values, &d.mean, &d.logStd)
	if err != nil {
		return DistInfoStd{}, err
	}
	return d, nil
}

func (d DistInfoStd) Mean() interface{}   { return d.mean }
func (d DistInfoStd) LogStd() interface{} { return d.logStd }

func (d DistInfoStd) Schema() string   { return DistInfoStdSchema }
func (d DistInfoStd) Fields() []string { return fieldNames(DistInfoStdSchema) }

func (d DistInfoStd) Values() []interface{} {
	return []interface{}{d.mean, d.logStd}
}

func (d DistInfoStd) Field(name string) (interface{}, error) {
	return field(d, name)
}

// fieldNames returns a copy of the field names of a registered schema
func fieldNames(name string) []string {
	fields, _ := FieldsOf(name)
	return fields
}
