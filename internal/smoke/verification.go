package smoke

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/okian/quantumcrowd/internal/domain/model"
)

const (
	signatureHexLen = 64
	ipfsHashLen     = 46
)

// VerifyRecord checks that a finalized prediction record is well formed.
func VerifyRecord(rec *model.PredictionRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: missing prediction", ErrVerification)
	}
	if rec.IsPending() {
		return fmt.Errorf("%w: startup %d: prediction still pending", ErrVerification, rec.StartupID)
	}

	var problems []string
	if rec.Prediction < 0 || rec.Prediction > 100 {
		problems = append(problems, fmt.Sprintf("prediction %.2f out of range", rec.Prediction))
	}
	if rec.Confidence < 0 || rec.Confidence > 100 {
		problems = append(problems, fmt.Sprintf("confidence %.2f out of range", rec.Confidence))
	}
	if !validSignature(rec.Signature) {
		problems = append(problems, fmt.Sprintf("malformed signature %q", rec.Signature))
	}
	if len(rec.IPFSHash) != ipfsHashLen || !strings.HasPrefix(rec.IPFSHash, "Qm") {
		problems = append(problems, fmt.Sprintf("malformed ipfs hash %q", rec.IPFSHash))
	}
	if rec.ModelVersion == "" {
		problems = append(problems, "missing model version")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: startup %d: %s", ErrVerification, rec.StartupID, strings.Join(problems, "; "))
	}
	return nil
}

func validSignature(sig string) bool {
	raw, ok := strings.CutPrefix(sig, "0x")
	if !ok || len(raw) != signatureHexLen {
		return false
	}
	_, err := hex.DecodeString(raw)
	return err == nil
}
