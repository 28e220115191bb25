package regress

import (
	"bytes"
	"encoding/gob"

	"github.com/rotisserie/eris"
)

func init() {
	gob.Register(&RegressionTree{})
	gob.Register(&RandomForest{})
	gob.Register(&GradientBoosting{})
}

// envelope wraps a fitted model for serialization. Encoding through an
// interface field keeps the payload self-describing: decoding does not need
// to switch on the algorithm identifier.
type envelope struct {
	Model Regressor
}

// Marshal serializes a fitted model into an opaque artifact payload.
func Marshal(r Regressor) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&envelope{Model: r}); err != nil {
		return nil, eris.Wrap(err, "regress: encode model")
	}
	return buf.Bytes(), nil
}

// Unmarshal restores a fitted model from an artifact payload.
func Unmarshal(payload []byte) (Regressor, error) {
	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&env); err != nil {
		return nil, eris.Wrap(err, "regress: decode model")
	}
	if env.Model == nil {
		return nil, eris.New("regress: payload contains no model")
	}
	return env.Model, nil
}
