// Package digest derives the content signature and storage handle of a
// finalized prediction.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/okian/quantumcrowd/internal/domain/model"
)

const (
	signaturePrefix = "0x"
	handlePrefix    = "Qm"
	handleHexLen    = 44
)

// payload is the canonical content of a prediction. Publication fields are
// excluded so that attaching a txHash never changes the signature.
type payload struct {
	StartupID    int               `json:"startupId"`
	Prediction   float64           `json:"prediction"`
	Confidence   float64           `json:"confidence"`
	ModelVersion string            `json:"modelVersion"`
	Breakdown    model.FeatureSet  `json:"breakdown"`
	QuantumData  model.QuantumData `json:"quantum_data"`
	Time         int64             `json:"time"`
}

// Sum returns the hex SHA-256 of the canonical JSON of rec.
func Sum(rec *model.PredictionRecord) (string, error) {
	b, err := json.Marshal(payload{
		StartupID:    rec.StartupID,
		Prediction:   rec.Prediction,
		Confidence:   rec.Confidence,
		ModelVersion: rec.ModelVersion,
		Breakdown:    rec.Breakdown,
		QuantumData:  rec.QuantumData,
		Time:         rec.Time,
	})
	if err != nil {
		return "", fmt.Errorf("encode prediction %d: %w", rec.StartupID, err)
	}
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:]), nil
}

// Seal sets the signature and storage handle of rec from its content.
func Seal(rec *model.PredictionRecord) error {
	sum, err := Sum(rec)
	if err != nil {
		return err
	}
	rec.Signature = signaturePrefix + sum
	rec.IPFSHash = handlePrefix + sum[:handleHexLen]
	return nil
}

// IntentSignature signs an investment intent id.
func IntentSignature(intentID string) string {
	h := sha256.Sum256([]byte(intentID))
	return signaturePrefix + hex.EncodeToString(h[:])
}
