package node

/*------------------------------------------------------------------
 *
 * Purpose:	File source node variant: one output pad, reading raw planar
 *		PCM frames from an os.File opened at configure time. Reaching
 *		end-of-file is not a fault: the node emits silence for the
 *		rest of the run, matching a hardware source that simply has
 *		nothing left to capture.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"os"

	"github.com/oscmex/engine/internal/audio"
)

// FileSourceConfig configures a file source node.
type FileSourceConfig struct {
	Path   string
	Format audio.Format
	Pool   *audio.Pool
}

type FileSource struct {
	*Base
	cfg FileSourceConfig
	f   *os.File
	eof bool
}

func NewFileSource(name string) *FileSource {
	n := &FileSource{}
	n.Base = NewBase(name, "filesource", nil, []Pad{{Name: "out"}})
	n.DoConfigure = n.configure
	n.DoStart = n.start
	n.DoStop = n.stop
	n.DoProcess = n.process
	return n
}

func (n *FileSource) configure(cfg interface{}) error {
	c, ok := cfg.(FileSourceConfig)
	if !ok {
		return fmt.Errorf("filesource %s: expected FileSourceConfig, got %T", n.Name(), cfg)
	}
	if c.Pool == nil {
		return fmt.Errorf("filesource %s: Pool is required", n.Name())
	}
	if n.f != nil {
		n.f.Close()
	}
	f, err := os.Open(c.Path)
	if err != nil {
		return fmt.Errorf("filesource %s: opening %s: %w", n.Name(), c.Path, err)
	}
	n.cfg = c
	n.f = f
	n.outputs[0].Format = c.Format
	return nil
}

func (n *FileSource) start() error {
	n.eof = false
	_, err := n.f.Seek(0, io.SeekStart)
	return err
}

func (n *FileSource) stop() error {
	return nil
}

func (n *FileSource) process(tick Tick) error {
	out := n.cfg.Pool.Get(n.cfg.Format, defaultFrameCount)
	if n.eof {
		tick.Outputs[0] = out
		return nil
	}
	for _, plane := range out.Planes {
		if _, err := io.ReadFull(n.f, plane); err != nil {
			n.eof = true
			break
		}
	}
	tick.Outputs[0] = out
	return nil
}

// defaultFrameCount is the frame count file nodes read/write per tick.
const defaultFrameCount = 960
