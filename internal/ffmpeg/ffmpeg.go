package ffmpeg

import (
	"fmt"

	"github.com/ZacxDev/ultrawide-splitter/internal/planner"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	DefaultFFmpeg  = "ffmpeg"
	DefaultFFprobe = "ffprobe"
)

// ProbeArgs returns the ffprobe arguments used to inspect path. Output is
// JSON, limited to the first video stream plus the container duration.
func ProbeArgs(path string) []string {
	args := ffmpeg.ConvertKwargsToCmdLineArgs(ffmpeg.KwArgs{
		"v":              "error",
		"select_streams": "v:0",
		"show_entries":   "stream=index,codec_type,codec_name,width,height:format=duration",
		"of":             "json",
	})
	return append(args, path)
}

// CropFilter renders a crop filter for a region anchored at y=0.
func CropFilter(x, width, height int) string {
	return fmt.Sprintf("crop=%d:%d:%d:0", width, height, x)
}

// EncodeArgs returns the ffmpeg arguments that crop input with videoFilter,
// encode video with params, copy every audio stream untouched and write to
// output, overwriting any existing file.
func EncodeArgs(input, output, videoFilter string, params planner.EncodeParameters) []string {
	kwargs := params.OutputArgs()
	kwargs["vf"] = videoFilter
	kwargs["c:a"] = "copy"

	return ffmpeg.Input(input).
		Output(output, kwargs).
		OverWriteOutput().
		GetArgs()
}
