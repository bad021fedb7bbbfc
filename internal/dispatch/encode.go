package dispatch

import (
	"fmt"

	"github.com/nerrad567/myo-osc/internal/channel"
	"github.com/nerrad567/myo-osc/internal/device"
)

// Encode builds the outbound message for one sample on one channel.
//
// It has no side effects. A disabled policy yields ok == false and a nil
// error. Scaling failures, including ErrDivisionByZero, are returned
// wrapped with the channel name.
//
// Parameters:
//   - kind: Channel the sample belongs to
//   - policy: That channel's policy
//   - sample: The device reading
//
// Returns:
//   - Message: Address and fields to send
//   - bool: false when the channel is disabled
//   - error: Scaling failure or unsupported sample
func Encode(kind channel.Kind, policy channel.Policy, sample device.Sample) (Message, bool, error) {
	if !policy.Enabled {
		return Message{}, false, nil
	}

	fields, err := encodeFields(kind, policy, sample)
	if err != nil {
		return Message{}, false, fmt.Errorf("%s: %w", kind, err)
	}
	return Message{Address: policy.Address, Fields: fields}, true, nil
}

func encodeFields(kind channel.Kind, p channel.Policy, sample device.Sample) ([]Field, error) {
	switch s := sample.(type) {
	case device.Byte:
		b, err := p.ScaleByte(int8(s))
		if err != nil {
			return nil, err
		}
		return []Field{Int8(b)}, nil

	case device.EMG:
		bs, err := p.ScaleBytes(s[:])
		if err != nil {
			return nil, err
		}
		out := make([]Field, len(bs))
		for i, b := range bs {
			out[i] = Int8(b)
		}
		return out, nil

	case device.Scalar:
		f, err := p.ScaleFloat32(float32(s))
		if err != nil {
			return nil, err
		}
		return []Field{Float32(f)}, nil

	case device.Vector3:
		return floatFields(p.ScaleFloat32s(s.X, s.Y, s.Z))

	case device.Quaternion:
		if kind == channel.Orientation {
			roll, pitch, yaw := s.Euler()
			return floatFields(p.ScaleFloat32s(float32(roll), float32(pitch), float32(yaw)))
		}
		return floatFields(p.ScaleFloat32s(s.X, s.Y, s.Z, s.W))

	case device.Label:
		return []Field{String(s)}, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedSample, sample)
	}
}

func floatFields(vs []float32, err error) ([]Field, error) {
	if err != nil {
		return nil, err
	}
	out := make([]Field, len(vs))
	for i, v := range vs {
		out[i] = Float32(v)
	}
	return out, nil
}
