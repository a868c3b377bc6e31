package face

import (
	"math"
	"testing"
)

func channels(f ControlFrame) map[string]float64 {
	return map[string]float64{
		"jawOpen":          f.JawOpen,
		"mouthFunnel":      f.MouthFunnel,
		"mouthPucker":      f.MouthPucker,
		"mouthClose":       f.MouthClose,
		"browInnerUp":      f.BrowInnerUp,
		"cheekSquintLeft":  f.CheekSquintLeft,
		"cheekSquintRight": f.CheekSquintRight,
	}
}

func TestMapOutputsBounded(t *testing.T) {
	inputs := []struct {
		amplitude, low, high float64
	}{
		{-5, 0, 0},
		{0, 0, 0},
		{0.01, 0, 0},
		{0.08, 0.5, 0.5},
		{0.15, 1, 1},
		{100, 100, 100},
		{-1, -1, -1},
		{0.2, 0, 10},
	}

	for _, in := range inputs {
		frame := Map(in.amplitude, in.low, in.high)
		for name, v := range channels(frame) {
			if v < 0 || v > 1 {
				t.Errorf("Map(%v, %v, %v) %s = %v, want within [0,1]",
					in.amplitude, in.low, in.high, name, v)
			}
			if math.IsNaN(v) {
				t.Errorf("Map(%v, %v, %v) %s is NaN", in.amplitude, in.low, in.high, name)
			}
		}
	}
}

func TestMapCalibrationPoints(t *testing.T) {
	const eps = 1e-9

	tests := []struct {
		name                 string
		amplitude, low, high float64
		want                 ControlFrame
	}{
		{
			// At/above floor+range everything saturates
			name:      "full loudness",
			amplitude: 0.15,
			want: ControlFrame{
				JawOpen:          1,
				MouthFunnel:      0.45,
				MouthPucker:      0,
				MouthClose:       0,
				BrowInnerUp:      0.2,
				CheekSquintLeft:  0.15,
				CheekSquintRight: 0.15,
			},
		},
		{
			name:      "at noise floor",
			amplitude: 0.01,
			want: ControlFrame{
				JawOpen:          0,
				MouthFunnel:      0,
				MouthPucker:      0.2,
				MouthClose:       0.25,
				BrowInnerUp:      0,
				CheekSquintLeft:  0,
				CheekSquintRight: 0,
			},
		},
		{
			name:      "half loudness",
			amplitude: 0.08,
			want: ControlFrame{
				JawOpen:          0.6,
				MouthFunnel:      0.225,
				MouthPucker:      0.1,
				MouthClose:       0.125,
				BrowInnerUp:      0.1,
				CheekSquintLeft:  0.075,
				CheekSquintRight: 0.075,
			},
		},
		{
			name:      "band energies contribute",
			amplitude: 0.15,
			low:       1,
			high:      1,
			want: ControlFrame{
				JawOpen:          1,
				MouthFunnel:      0.7,
				MouthPucker:      0.15,
				MouthClose:       0,
				BrowInnerUp:      0.3,
				CheekSquintLeft:  0.15,
				CheekSquintRight: 0.15,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := channels(Map(tt.amplitude, tt.low, tt.high))
			want := channels(tt.want)
			for name, w := range want {
				if math.Abs(got[name]-w) > eps {
					t.Errorf("Map(%v, %v, %v) %s = %v, want %v",
						tt.amplitude, tt.low, tt.high, name, got[name], w)
				}
			}
		})
	}
}

func TestMapDeterministic(t *testing.T) {
	a := Map(0.0731, 0.42, 0.17)
	b := Map(0.0731, 0.42, 0.17)
	if a != b {
		t.Errorf("Map is not deterministic: %+v != %+v", a, b)
	}
}

func TestMapBelowFloorIsSilent(t *testing.T) {
	for _, amp := range []float64{-10, -0.001, 0, 0.0099} {
		frame := Map(amp, 0, 0)
		if frame.JawOpen != 0 {
			t.Errorf("Map(%v) jawOpen = %v, want 0", amp, frame.JawOpen)
		}
		if frame.MouthClose != 0.25 {
			t.Errorf("Map(%v) mouthClose = %v, want 0.25", amp, frame.MouthClose)
		}
	}
}
