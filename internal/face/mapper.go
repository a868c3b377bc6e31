// Package face maps audio loudness measurements to facial-animation
// control frames.
//
// The mapping is a cheap proxy for full audio-to-face models: it derives
// viseme intensity from loudness and band energies only, with no phoneme
// classification and no memory across frames. It is pure and total, so it
// is safe to call at audio frame rate from a real-time loop.
package face

// ControlFrame is the bounded vector of blendshape weights derived from a
// single audio sample. Every channel is clamped to [0,1].
type ControlFrame struct {
	JawOpen          float64 `json:"jawOpen"`
	MouthFunnel      float64 `json:"mouthFunnel"`
	MouthPucker      float64 `json:"mouthPucker"`
	MouthClose       float64 `json:"mouthClose"`
	BrowInnerUp      float64 `json:"browInnerUp"`
	CheekSquintLeft  float64 `json:"cheekSquintLeft"`
	CheekSquintRight float64 `json:"cheekSquintRight"`
}

// Calibration constants. These must not change: downstream rigs are tuned
// against this exact noise floor and dynamic range.
const (
	noiseFloor   = 0.01
	dynamicRange = 0.14
)

// Map converts an RMS-like amplitude and optional low/high band energies
// into a control frame. Inputs outside the expected range are not
// rejected; every output channel is clamped, so the function never fails.
func Map(amplitude, low, high float64) ControlFrame {
	n := clamp01((amplitude - noiseFloor) / dynamicRange)

	squint := clamp01(n * 0.15)
	return ControlFrame{
		JawOpen:          clamp01(n * 1.2),
		MouthFunnel:      clamp01(n*0.45 + high*0.25),
		MouthPucker:      clamp01((1-n)*0.2 + high*0.15),
		MouthClose:       clamp01((1 - n) * 0.25),
		BrowInnerUp:      clamp01(n*0.2 + low*0.1),
		CheekSquintLeft:  squint,
		CheekSquintRight: squint,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
