package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/prasrvenkat/tempo"

	"gopkg.in/yaml.v3"
)

// result is the machine-readable form of an evaluated time type
type result struct {
	Kind  string `json:"kind" yaml:"kind"`
	Value string `json:"value" yaml:"value"`
	Terms []term `json:"terms,omitempty" yaml:"terms,omitempty"`
}

type term struct {
	Unit  string `json:"unit" yaml:"unit"`
	Count int64  `json:"count" yaml:"count"`
}

func newResult(v tempo.Value) result {
	res := result{Kind: v.Kind.String(), Value: v.String()}
	for _, t := range v.Duration {
		res.Terms = append(res.Terms, term{Unit: t.Unit.String(), Count: t.Count})
	}
	return res
}

func writeResult(out io.Writer, format string, res result) error {
	switch format {
	case "json":
		return json.NewEncoder(out).Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(out)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(out, res.Value)
		return err
	}
}

// streamWriter prints iterator moments as they are produced. Text and JSON
// lines stream; YAML is buffered into one document.
type streamWriter struct {
	out     io.Writer
	format  string
	pending []string
}

func newStreamWriter(out io.Writer, format string) *streamWriter {
	return &streamWriter{out: out, format: format}
}

func (w *streamWriter) write(t time.Time) error {
	s := tempo.FormatMoment(t)
	switch w.format {
	case "json":
		return json.NewEncoder(w.out).Encode(result{Kind: "moment", Value: s})
	case "yaml":
		w.pending = append(w.pending, s)
		return nil
	default:
		_, err := fmt.Fprintln(w.out, s)
		return err
	}
}

func (w *streamWriter) close() error {
	if w.format != "yaml" {
		return nil
	}
	enc := yaml.NewEncoder(w.out)
	if err := enc.Encode(map[string][]string{"moments": w.pending}); err != nil {
		return err
	}
	return enc.Close()
}
