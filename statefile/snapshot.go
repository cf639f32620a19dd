package statefile

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/sametz/fit-o-mat/data"
	"github.com/sametz/fit-o-mat/internal/codec"
	"github.com/sametz/fit-o-mat/model"
)

// snapshotMagic identifies a session snapshot stream.
var snapshotMagic = [4]byte{'F', 'O', 'M', '1'}

// Snapshot captures one session: the model formula, the full parameter
// vector and the preprocessed dataset. Fit-derived columns are not
// persisted; reloading a snapshot starts from a clean, unfitted state.
type Snapshot struct {
	Formula string
	Params  model.ParamSet
	Data    *data.DataSet
}

type wireSnapshot struct {
	Formula string      `json:"formula"`
	Params  []wireParam `json:"params"`
	X       []float64   `json:"x"`
	Y       []float64   `json:"y"`
	XErr    []float64   `json:"xerr,omitempty"`
	YErr    []float64   `json:"yerr,omitempty"`
	Labels  []string    `json:"labels,omitempty"`
}

// wireParam keeps confidence as a pointer so the undefined sentinel (NaN)
// survives JSON, which has no NaN literal.
type wireParam struct {
	Name       string   `json:"name"`
	Value      float64  `json:"value"`
	Free       bool     `json:"free"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// WriteSnapshot serializes the snapshot with the given compression tag.
func WriteSnapshot(w io.Writer, snap *Snapshot, comp codec.Compression) error {
	if snap.Data == nil {
		return fmt.Errorf("snapshot has no dataset")
	}
	if err := snap.Data.Validate(); err != nil {
		return fmt.Errorf("snapshot dataset invalid: %w", err)
	}
	c, err := codec.For(comp)
	if err != nil {
		return err
	}

	wire := wireSnapshot{
		Formula: snap.Formula,
		Params:  make([]wireParam, 0, len(snap.Params)),
		X:       snap.Data.X,
		Y:       snap.Data.Y,
		XErr:    snap.Data.XErr,
		YErr:    snap.Data.YErr,
		Labels:  snap.Data.Labels,
	}
	for _, p := range snap.Params {
		wp := wireParam{Name: p.Name, Value: p.Value, Free: p.Free}
		if p.HasConfidence() {
			conf := p.Confidence
			wp.Confidence = &conf
		}
		wire.Params = append(wire.Params, wp)
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return err
	}
	compressed, err := c.Compress(payload)
	if err != nil {
		return err
	}

	header := append(append([]byte{}, snapshotMagic[:]...), byte(comp))
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(compressed)

	return err
}

// ReadSnapshot deserializes a snapshot stream written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) < len(snapshotMagic)+1 {
		return nil, fmt.Errorf("snapshot stream too short: %d bytes", len(raw))
	}
	if [4]byte(raw[:4]) != snapshotMagic {
		return nil, fmt.Errorf("not a session snapshot: bad magic %q", raw[:4])
	}
	comp := codec.Compression(raw[4])
	c, err := codec.For(comp)
	if err != nil {
		return nil, err
	}
	payload, err := c.Decompress(raw[5:])
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot payload: %w", err)
	}

	var wire wireSnapshot
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("decode snapshot payload: %w", err)
	}

	snap := &Snapshot{
		Formula: wire.Formula,
		Params:  make(model.ParamSet, 0, len(wire.Params)),
		Data: &data.DataSet{
			X:      wire.X,
			Y:      wire.Y,
			XErr:   wire.XErr,
			YErr:   wire.YErr,
			Labels: wire.Labels,
		},
	}
	for _, wp := range wire.Params {
		conf := math.NaN()
		if wp.Confidence != nil {
			conf = *wp.Confidence
		}
		snap.Params = append(snap.Params, model.Param{
			Name: wp.Name, Value: wp.Value, Free: wp.Free, Confidence: conf,
		})
	}
	if err := snap.Data.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot dataset invalid: %w", err)
	}

	return snap, nil
}
