package nn

import (
	"math"

	"github.com/born-ml/convnet/internal/tensor"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"
)

// Mode selects training or inference behavior for batch norm and dropout.
type Mode string

// Supported modes.
const (
	ModeTrain Mode = "train"
	ModeTest  Mode = "test"
)

func (m Mode) valid() bool {
	return m == ModeTrain || m == ModeTest
}

// Default hyperparameters.
const (
	DefaultEps      = 1e-5
	DefaultMomentum = 0.9
)

// BatchNormParam configures batch norm and spatial batch norm.
//
// RunningMean and RunningVar are owned by the caller and carried across calls:
// a train-mode forward pass updates them in place. Nil statistics are replaced
// with zeros of shape [D] on first use.
type BatchNormParam[T tensor.Float] struct {
	Mode        Mode
	Eps         float64
	Momentum    float64
	RunningMean *tensor.Tensor[T]
	RunningVar  *tensor.Tensor[T]
}

// DefaultBatchNormParam returns a batch norm config with eps=1e-5 and momentum=0.9.
func DefaultBatchNormParam[T tensor.Float](mode Mode) *BatchNormParam[T] {
	return &BatchNormParam[T]{
		Mode:     mode,
		Eps:      DefaultEps,
		Momentum: DefaultMomentum,
	}
}

// LayerNormParam configures layer norm.
type LayerNormParam struct {
	Eps float64
}

// DefaultLayerNormParam returns a layer norm config with eps=1e-5.
func DefaultLayerNormParam() LayerNormParam {
	return LayerNormParam{Eps: DefaultEps}
}

// GroupNormParam configures spatial group norm. The group count is passed to the
// layer directly.
type GroupNormParam struct {
	Eps float64
}

// DefaultGroupNormParam returns a group norm config with eps=1e-5.
func DefaultGroupNormParam() GroupNormParam {
	return GroupNormParam{Eps: DefaultEps}
}

// DropoutParam configures inverted dropout.
type DropoutParam struct {
	P    float64 // Probability of keeping each unit, in (0, 1].
	Mode Mode
	Seed *int64 // Optional; a fixed seed reproduces the mask.
}

// DefaultDropoutParam returns a train-mode dropout config keeping units with probability p.
func DefaultDropoutParam(p float64) DropoutParam {
	return DropoutParam{P: p, Mode: ModeTrain}
}

// WithSeed returns a copy of p that draws its mask from seed.
func (p DropoutParam) WithSeed(seed int64) DropoutParam {
	p.Seed = &seed
	return p
}

// ConvParam configures naive convolution.
type ConvParam struct {
	Stride int
	Pad    int
}

// DefaultConvParam returns stride 1, no padding.
func DefaultConvParam() ConvParam {
	return ConvParam{Stride: 1, Pad: 0}
}

// PoolParam configures naive max pooling.
type PoolParam struct {
	PoolHeight int
	PoolWidth  int
	Stride     int
}

// DefaultPoolParam returns 2x2 windows with stride 2.
func DefaultPoolParam() PoolParam {
	return PoolParam{PoolHeight: 2, PoolWidth: 2, Stride: 2}
}

// DecodeBatchNormParam reads a batch norm config from a named-option record.
//
// Recognized keys: "mode" (required), "eps", "momentum", "running_mean", "running_var".
// Missing optional keys take their defaults.
func DecodeBatchNormParam[T tensor.Float](s *structpb.Struct) (*BatchNormParam[T], error) {
	mode, err := stringField(s, "mode", "")
	if err != nil {
		return nil, err
	}
	p := DefaultBatchNormParam[T](Mode(mode))
	if p.Eps, err = numberField(s, "eps", DefaultEps); err != nil {
		return nil, err
	}
	if p.Momentum, err = numberField(s, "momentum", DefaultMomentum); err != nil {
		return nil, err
	}
	if p.RunningMean, err = vectorField[T](s, "running_mean"); err != nil {
		return nil, err
	}
	if p.RunningVar, err = vectorField[T](s, "running_var"); err != nil {
		return nil, err
	}
	return p, nil
}

// WriteTo stores the running statistics into s under "running_mean" and
// "running_var", so the record can be handed to the next forward call.
// A nil record is left alone.
func (p *BatchNormParam[T]) WriteTo(s *structpb.Struct) {
	if s == nil {
		return
	}
	if s.Fields == nil {
		s.Fields = make(map[string]*structpb.Value)
	}
	if p.RunningMean != nil {
		s.Fields["running_mean"] = vectorValue(p.RunningMean)
	}
	if p.RunningVar != nil {
		s.Fields["running_var"] = vectorValue(p.RunningVar)
	}
}

// DecodeLayerNormParam reads "eps" from a named-option record.
func DecodeLayerNormParam(s *structpb.Struct) (LayerNormParam, error) {
	eps, err := numberField(s, "eps", DefaultEps)
	if err != nil {
		return LayerNormParam{}, err
	}
	return LayerNormParam{Eps: eps}, nil
}

// DecodeGroupNormParam reads "eps" from a named-option record.
func DecodeGroupNormParam(s *structpb.Struct) (GroupNormParam, error) {
	eps, err := numberField(s, "eps", DefaultEps)
	if err != nil {
		return GroupNormParam{}, err
	}
	return GroupNormParam{Eps: eps}, nil
}

// DecodeDropoutParam reads "p", "mode" and the optional "seed" from a named-option record.
func DecodeDropoutParam(s *structpb.Struct) (DropoutParam, error) {
	var p DropoutParam
	var err error
	if p.P, err = numberField(s, "p", math.NaN()); err != nil {
		return DropoutParam{}, err
	}
	if math.IsNaN(p.P) {
		return DropoutParam{}, errors.Wrap(ErrInvalidConfig, `missing option "p"`)
	}
	mode, err := stringField(s, "mode", "")
	if err != nil {
		return DropoutParam{}, err
	}
	p.Mode = Mode(mode)
	if _, ok := s.GetFields()["seed"]; ok {
		seed, err := intField(s, "seed", 0)
		if err != nil {
			return DropoutParam{}, err
		}
		p = p.WithSeed(int64(seed))
	}
	return p, nil
}

// DecodeConvParam reads "stride" and "pad" from a named-option record.
func DecodeConvParam(s *structpb.Struct) (ConvParam, error) {
	def := DefaultConvParam()
	stride, err := intField(s, "stride", def.Stride)
	if err != nil {
		return ConvParam{}, err
	}
	pad, err := intField(s, "pad", def.Pad)
	if err != nil {
		return ConvParam{}, err
	}
	return ConvParam{Stride: stride, Pad: pad}, nil
}

// DecodePoolParam reads "pool_height", "pool_width" and "stride" from a named-option record.
func DecodePoolParam(s *structpb.Struct) (PoolParam, error) {
	p := DefaultPoolParam()
	var err error
	if p.PoolHeight, err = intField(s, "pool_height", p.PoolHeight); err != nil {
		return PoolParam{}, err
	}
	if p.PoolWidth, err = intField(s, "pool_width", p.PoolWidth); err != nil {
		return PoolParam{}, err
	}
	if p.Stride, err = intField(s, "stride", p.Stride); err != nil {
		return PoolParam{}, err
	}
	return p, nil
}

func numberField(s *structpb.Struct, key string, def float64) (float64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return def, nil
	}
	if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
		return 0, errors.Wrapf(ErrInvalidConfig, "option %q: expected number, got %v", key, v.AsInterface())
	}
	return v.GetNumberValue(), nil
}

func intField(s *structpb.Struct, key string, def int) (int, error) {
	f, err := numberField(s, key, float64(def))
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, errors.Wrapf(ErrInvalidConfig, "option %q: expected integer, got %v", key, f)
	}
	return int(f), nil
}

func stringField(s *structpb.Struct, key, def string) (string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return def, nil
	}
	if _, isStr := v.GetKind().(*structpb.Value_StringValue); !isStr {
		return "", errors.Wrapf(ErrInvalidConfig, "option %q: expected string, got %v", key, v.AsInterface())
	}
	return v.GetStringValue(), nil
}

// vectorField decodes a list of numbers into a 1D tensor. A missing key yields nil.
func vectorField[T tensor.Float](s *structpb.Struct, key string) (*tensor.Tensor[T], error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "option %q: expected list, got %v", key, v.AsInterface())
	}
	if len(list.GetValues()) == 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "option %q: empty list", key)
	}
	data := make([]T, len(list.GetValues()))
	for i, item := range list.GetValues() {
		if _, isNum := item.GetKind().(*structpb.Value_NumberValue); !isNum {
			return nil, errors.Wrapf(ErrInvalidConfig, "option %q[%d]: expected number", key, i)
		}
		data[i] = T(item.GetNumberValue())
	}
	return tensor.FromSlice(data, tensor.Shape{len(data)})
}

func vectorValue[T tensor.Float](t *tensor.Tensor[T]) *structpb.Value {
	values := make([]*structpb.Value, t.NumElements())
	for i, v := range t.Data() {
		values[i] = structpb.NewNumberValue(float64(v))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}
