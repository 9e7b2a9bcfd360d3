package node

/*------------------------------------------------------------------
 *
 * Purpose:	File sink node variant: one input pad, appending each
 *		delivered buffer's raw planar PCM bytes to an os.File opened
 *		at configure time. Stop syncs and leaves the file in place
 *		for a later Start to append further (matching the pad
 *		contract's one-file-per-configure lifetime).
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/oscmex/engine/internal/audio"
)

// FileSinkConfig configures a file sink node.
type FileSinkConfig struct {
	Path   string
	Format audio.Format
}

type FileSink struct {
	*Base
	cfg FileSinkConfig
	f   *os.File
}

func NewFileSink(name string) *FileSink {
	n := &FileSink{}
	n.Base = NewBase(name, "filesink", []Pad{{Name: "in"}}, nil)
	n.DoConfigure = n.configure
	n.DoStart = n.start
	n.DoStop = n.stop
	n.DoProcess = n.process
	return n
}

func (n *FileSink) configure(cfg interface{}) error {
	c, ok := cfg.(FileSinkConfig)
	if !ok {
		return fmt.Errorf("filesink %s: expected FileSinkConfig, got %T", n.Name(), cfg)
	}
	if n.f != nil {
		n.f.Close()
	}
	f, err := os.Create(c.Path)
	if err != nil {
		return fmt.Errorf("filesink %s: creating %s: %w", n.Name(), c.Path, err)
	}
	n.cfg = c
	n.f = f
	n.inputs[0].Format = c.Format
	return nil
}

func (n *FileSink) start() error { return nil }

func (n *FileSink) stop() error {
	return n.f.Sync()
}

// process appends the delivered planes to the file. Format agreement is
// a connect-time guarantee of the graph, not re-checked per tick.
func (n *FileSink) process(tick Tick) error {
	in := tick.Inputs[0]
	if in == nil {
		return nil
	}
	for _, plane := range in.Planes {
		if _, err := n.f.Write(plane); err != nil {
			return fmt.Errorf("filesink %s: writing: %w", n.Name(), err)
		}
	}
	return nil
}
