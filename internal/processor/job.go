package processor

import (
	"github.com/ZacxDev/ultrawide-splitter/internal/ffmpeg"
	"github.com/ZacxDev/ultrawide-splitter/internal/planner"
	"github.com/ZacxDev/ultrawide-splitter/pkg/types"
)

// EncodeJob is one half of a split, fully described before it runs.
type EncodeJob struct {
	Side       types.Side
	InputPath  string
	OutputPath string
	Crop       Crop
	Params     planner.EncodeParameters
}

// Args returns the encoder arguments for the job.
func (j EncodeJob) Args() []string {
	return ffmpeg.EncodeArgs(j.InputPath, j.OutputPath, j.Crop.Filter(), j.Params)
}

func buildJobs(input, leftPath, rightPath string, width, height int, params planner.EncodeParameters) []EncodeJob {
	left, right := SplitGeometry(width, height)
	return []EncodeJob{
		{Side: types.SideLeft, InputPath: input, OutputPath: leftPath, Crop: left, Params: params},
		{Side: types.SideRight, InputPath: input, OutputPath: rightPath, Crop: right, Params: params},
	}
}
