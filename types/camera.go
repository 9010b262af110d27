package types

// Payloads published by the camera pipeline.

// CameraState is retained on "camera/state".
type CameraState struct {
	Ready      bool   `json:"ready"`
	CommErrors uint32 `json:"comm_errors"`
}

// FrameStats is retained on "camera/frame" after every completed frame.
type FrameStats struct {
	Frame        uint32 `json:"frame"`
	AvgLuminance uint8  `json:"avg_luminance"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Centre       uint32 `json:"centre"` // attribute word of the centre pixel
}
