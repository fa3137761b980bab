package processor

import "github.com/ZacxDev/ultrawide-splitter/internal/ffmpeg"

// Crop is a full-height region of the input starting at column X.
type Crop struct {
	X      int
	Width  int
	Height int
}

// Filter renders the crop as an ffmpeg video filter.
func (c Crop) Filter() string {
	return ffmpeg.CropFilter(c.X, c.Width, c.Height)
}

// SplitGeometry divides a width x height frame at its horizontal midpoint.
// With an odd width the right half gets the extra column, so the two crops
// always cover the frame exactly.
func SplitGeometry(width, height int) (left, right Crop) {
	half := width / 2
	left = Crop{X: 0, Width: half, Height: height}
	right = Crop{X: half, Width: width - half, Height: height}
	return left, right
}

