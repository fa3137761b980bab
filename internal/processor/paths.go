package processor

import (
	"path/filepath"
	"strings"

	"github.com/ZacxDev/ultrawide-splitter/pkg/types"
	"github.com/pkg/errors"
)

const defaultExtension = "mp4"

// OutputPaths derives the left and right output paths for input. The
// extension is format when given, else the input's own, else mp4. The
// directory is outDir when given, else the input's directory.
func OutputPaths(input, format, outDir string) (left, right string, err error) {
	base := filepath.Base(input)
	inputExt := filepath.Ext(base)
	stem := strings.TrimSuffix(base, inputExt)

	ext := strings.TrimPrefix(strings.TrimSpace(format), ".")
	if ext == "" {
		ext = strings.TrimPrefix(inputExt, ".")
	}
	if ext == "" {
		ext = defaultExtension
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(input)
	}

	left = filepath.Join(dir, outputName(stem, types.SideLeft, ext))
	right = filepath.Join(dir, outputName(stem, types.SideRight, ext))

	if err := checkCollisions(input, left, right); err != nil {
		return "", "", err
	}
	return left, right, nil
}

func outputName(stem string, side types.Side, ext string) string {
	return stem + "-" + side.String() + "." + ext
}

func checkCollisions(input, left, right string) error {
	absInput, err := filepath.Abs(input)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", input)
	}
	absLeft, err := filepath.Abs(left)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", left)
	}
	absRight, err := filepath.Abs(right)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", right)
	}

	switch {
	case absLeft == absRight:
		return &PathCollisionError{Path: absLeft, Reason: "left and right outputs are the same file"}
	case absLeft == absInput:
		return &PathCollisionError{Path: absLeft, Reason: "left output would overwrite the input"}
	case absRight == absInput:
		return &PathCollisionError{Path: absRight, Reason: "right output would overwrite the input"}
	}
	return nil
}
