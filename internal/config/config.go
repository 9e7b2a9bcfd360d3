// Package config loads a YAML graph/device descriptor and assembles the
// node.Node instances and graph.Graph connections it names.
package config

/*------------------------------------------------------------------
 *
 * Purpose:	Parse a graph descriptor file into Node and Edge
 *		declarations. One YAML document describes every node in the
 *		graph (kind, name, and kind-specific parameters) and the
 *		edges connecting their pads; Build resolves it into a live
 *		graph.Graph wired to real node.Node instances.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oscmex/engine/internal/audio"
	"github.com/oscmex/engine/internal/deviceio"
	"github.com/oscmex/engine/internal/graph"
	"github.com/oscmex/engine/internal/node"
	"github.com/oscmex/engine/internal/oscerr"
)

// FormatSpec is the YAML-level stand-in for audio.Format, since the wire
// format names sample encodings and channel counts as plain strings/ints.
type FormatSpec struct {
	SampleRate int    `yaml:"sample_rate"`
	Sample     string `yaml:"sample"` // "s16", "s32", "f32"
	Channels   int    `yaml:"channels"`
	Planar     bool   `yaml:"planar"`
}

func (f FormatSpec) toAudio() (audio.Format, error) {
	var sf audio.SampleFormat
	switch f.Sample {
	case "s16":
		sf = audio.SampleFormatS16
	case "s32":
		sf = audio.SampleFormatS32
	case "f32", "":
		sf = audio.SampleFormatF32
	default:
		return audio.Format{}, fmt.Errorf("config: unknown sample format %q", f.Sample)
	}
	channels := f.Channels
	if channels == 0 {
		channels = 2
	}
	return audio.Format{
		SampleRate: f.SampleRate,
		Sample:     sf,
		Layout:     audio.ChannelLayout{Channels: channels},
		Planar:     true,
	}, nil
}

// NodeSpec declares one graph node.
type NodeSpec struct {
	Name   string     `yaml:"name"`
	Kind   string     `yaml:"kind"` // hwsource, hwsink, filesource, filesink, filter
	Device string     `yaml:"device,omitempty"`
	Path   string     `yaml:"path,omitempty"`
	Spec   string     `yaml:"spec,omitempty"` // filter chain spec string
	Format FormatSpec `yaml:"format"`
	GPIO   *GPIOSpec  `yaml:"gpio,omitempty"`
}

// GPIOSpec names an optional hardware-sink enable line.
type GPIOSpec struct {
	Chip string `yaml:"chip"`
	Line int    `yaml:"line"`
}

// EdgeSpec declares one connection between two nodes' pads.
type EdgeSpec struct {
	From     string `yaml:"from"`
	FromPad  string `yaml:"from_pad"`
	To       string `yaml:"to"`
	ToPad    string `yaml:"to_pad"`
}

// Document is the top-level shape of a graph descriptor file.
type Document struct {
	BufferSize int        `yaml:"buffer_size"`
	Nodes      []NodeSpec `yaml:"nodes"`
	Edges      []EdgeSpec `yaml:"edges"`
}

// Load reads and parses a graph descriptor file without building anything.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if doc.BufferSize == 0 {
		doc.BufferSize = 960
	}
	return &doc, nil
}

// Build assembles a doc into a live graph.Graph, opening real hardware
// devices via driver and wiring every declared edge.
func Build(doc *Document, driver deviceio.Driver, pool *audio.Pool, onError oscerr.Handler) (*graph.Graph, error) {
	g := graph.New(onError)
	for _, spec := range doc.Nodes {
		n, cfg, err := buildNode(spec, driver, pool, doc.BufferSize)
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
		if err := n.Configure(cfg); err != nil {
			return nil, fmt.Errorf("config: configuring node %q: %w", spec.Name, err)
		}
	}
	for _, e := range doc.Edges {
		if err := g.Connect(e.From, e.FromPad, e.To, e.ToPad); err != nil {
			return nil, fmt.Errorf("config: connecting %s/%s -> %s/%s: %w", e.From, e.FromPad, e.To, e.ToPad, err)
		}
	}
	return g, nil
}

func buildNode(spec NodeSpec, driver deviceio.Driver, pool *audio.Pool, bufferSize int) (node.Node, interface{}, error) {
	format, err := spec.Format.toAudio()
	if err != nil {
		return nil, nil, fmt.Errorf("config: node %q: %w", spec.Name, err)
	}

	switch spec.Kind {
	case "hwsource":
		n := node.NewHWSource(spec.Name)
		return n, node.HWSourceConfig{DeviceName: spec.Device, Driver: driver, Format: format, Pool: pool}, nil

	case "hwsink":
		n := node.NewHWSink(spec.Name)
		cfg := node.HWSinkConfig{DeviceName: spec.Device, Driver: driver, Format: format, Pool: pool}
		if spec.GPIO != nil {
			keyer, err := deviceio.NewGPIOKeyer(spec.GPIO.Chip, spec.GPIO.Line)
			if err != nil {
				return nil, nil, fmt.Errorf("config: node %q: %w", spec.Name, err)
			}
			cfg.Keyer = keyer
		}
		return n, cfg, nil

	case "filesource":
		n := node.NewFileSource(spec.Name)
		return n, node.FileSourceConfig{Path: spec.Path, Format: format, Pool: pool}, nil

	case "filesink":
		n := node.NewFileSink(spec.Name)
		return n, node.FileSinkConfig{Path: spec.Path, Format: format}, nil

	case "filter":
		n := node.NewFilter(spec.Name)
		return n, node.FilterConfig{Spec: spec.Spec, Format: format, BufferSize: bufferSize, Pool: pool}, nil

	default:
		return nil, nil, fmt.Errorf("config: node %q: unknown kind %q", spec.Name, spec.Kind)
	}
}
