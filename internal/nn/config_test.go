package nn

import (
	"testing"

	"github.com/born-ml/convnet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestDecode_BatchNormParam(t *testing.T) {
	s := mustStruct(t, map[string]any{
		"mode":         "train",
		"momentum":     0.5,
		"running_mean": []any{1.0, 2.0},
	})

	p, err := DecodeBatchNormParam[float64](s)
	require.NoError(t, err)
	assert.Equal(t, ModeTrain, p.Mode)
	assert.Equal(t, DefaultEps, p.Eps)
	assert.Equal(t, 0.5, p.Momentum)
	require.NotNil(t, p.RunningMean)
	assert.Equal(t, []float64{1, 2}, p.RunningMean.Data())
	assert.Nil(t, p.RunningVar)
}

// TestBatchNormParam_RoundTrip checks that running statistics written back into the
// record are picked up by the next decode.
func TestBatchNormParam_RoundTrip(t *testing.T) {
	s := mustStruct(t, map[string]any{"mode": "train"})
	x := tensor.MustFromSlice([]float64{1, 10, 3, 20}, tensor.Shape{2, 2})
	gamma := tensor.Ones[float64](tensor.Shape{2})
	beta := tensor.Zeros[float64](tensor.Shape{2})

	p, err := DecodeBatchNormParam[float64](s)
	require.NoError(t, err)
	_, _, err = BatchNormForward(x, gamma, beta, p)
	require.NoError(t, err)
	p.WriteTo(s)

	again, err := DecodeBatchNormParam[float64](s)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.2, 1.5}, again.RunningMean.Data(), 1e-12)
	assert.InDeltaSlice(t, []float64{0.1, 2.5}, again.RunningVar.Data(), 1e-12)

	// The decoded record goes straight into the next call.
	_, _, err = BatchNormForward(x, gamma, beta, again)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.38, 2.85}, again.RunningMean.Data(), 1e-12)
}

func TestDecode_DropoutParam(t *testing.T) {
	p, err := DecodeDropoutParam(mustStruct(t, map[string]any{"p": 0.3, "mode": "test", "seed": 7}))
	require.NoError(t, err)
	assert.Equal(t, 0.3, p.P)
	assert.Equal(t, ModeTest, p.Mode)
	require.NotNil(t, p.Seed)
	assert.Equal(t, int64(7), *p.Seed)

	p, err = DecodeDropoutParam(mustStruct(t, map[string]any{"p": 0.3, "mode": "train"}))
	require.NoError(t, err)
	assert.Nil(t, p.Seed)

	_, err = DecodeDropoutParam(mustStruct(t, map[string]any{"mode": "train"}))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDecode_ConvAndPoolParam(t *testing.T) {
	conv, err := DecodeConvParam(mustStruct(t, map[string]any{"stride": 2, "pad": 1}))
	require.NoError(t, err)
	assert.Equal(t, ConvParam{Stride: 2, Pad: 1}, conv)

	conv, err = DecodeConvParam(mustStruct(t, map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, DefaultConvParam(), conv)

	pool, err := DecodePoolParam(mustStruct(t, map[string]any{"pool_height": 3, "pool_width": 2, "stride": 1}))
	require.NoError(t, err)
	assert.Equal(t, PoolParam{PoolHeight: 3, PoolWidth: 2, Stride: 1}, pool)
}

func TestDecode_NormParams(t *testing.T) {
	ln, err := DecodeLayerNormParam(mustStruct(t, map[string]any{"eps": 1e-3}))
	require.NoError(t, err)
	assert.Equal(t, 1e-3, ln.Eps)

	gn, err := DecodeGroupNormParam(mustStruct(t, map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, DefaultGroupNormParam(), gn)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		decode func(*structpb.Struct) error
		fields map[string]any
	}{
		{"fractional stride", func(s *structpb.Struct) error { _, err := DecodeConvParam(s); return err }, map[string]any{"stride": 1.5}},
		{"string pad", func(s *structpb.Struct) error { _, err := DecodeConvParam(s); return err }, map[string]any{"pad": "one"}},
		{"numeric mode", func(s *structpb.Struct) error { _, err := DecodeBatchNormParam[float32](s); return err }, map[string]any{"mode": 1}},
		{"running mean not a list", func(s *structpb.Struct) error { _, err := DecodeBatchNormParam[float32](s); return err }, map[string]any{"mode": "train", "running_mean": 1}},
		{"running var with strings", func(s *structpb.Struct) error { _, err := DecodeBatchNormParam[float32](s); return err }, map[string]any{"mode": "train", "running_var": []any{"a"}}},
		{"empty running mean", func(s *structpb.Struct) error { _, err := DecodeBatchNormParam[float64](s); return err }, map[string]any{"mode": "train", "running_mean": []any{}}},
		{"eps as string", func(s *structpb.Struct) error { _, err := DecodeLayerNormParam(s); return err }, map[string]any{"eps": "small"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode(mustStruct(t, tt.fields))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestBatchNormParam_WriteToNil(t *testing.T) {
	p := DefaultBatchNormParam[float64](ModeTrain)
	p.RunningMean = tensor.Zeros[float64](tensor.Shape{2})
	assert.NotPanics(t, func() { p.WriteTo(nil) })

	s := &structpb.Struct{}
	p.WriteTo(s)
	require.Contains(t, s.GetFields(), "running_mean")
	assert.NotContains(t, s.GetFields(), "running_var")
}
