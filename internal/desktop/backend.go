package desktop

import (
	"image"

	"github.com/go-vgo/robotgo"
)

// backend is the slice of the OS automation library the adapters use.
type backend interface {
	ScreenSize() (w, h int)
	Capture(x, y, w, h int) (image.Image, error)
	Bounds(pid int) (x, y, w, h int)
	Move(x, y int)
	Click(button string, double bool)
	Processes() ([]process, error)
}

type process struct {
	Pid  int
	Name string
}

// robotgoBackend drives the real desktop.
type robotgoBackend struct{}

func (robotgoBackend) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

func (robotgoBackend) Capture(x, y, w, h int) (image.Image, error) {
	return robotgo.CaptureImg(x, y, w, h)
}

func (robotgoBackend) Bounds(pid int) (int, int, int, int) {
	return robotgo.GetBounds(pid)
}

func (robotgoBackend) Move(x, y int) {
	robotgo.Move(x, y)
}

func (robotgoBackend) Click(button string, double bool) {
	robotgo.Click(button, double)
}

func (robotgoBackend) Processes() ([]process, error) {
	procs, err := robotgo.Process()
	if err != nil {
		return nil, err
	}
	out := make([]process, len(procs))
	for i, p := range procs {
		out[i] = process{Pid: p.Pid, Name: p.Name}
	}
	return out, nil
}
