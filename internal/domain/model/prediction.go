package model

// Pending marks signature, storage handle and backend fields of a record whose scoring has not finished.
const Pending = "pending"

// QuantumData describes how a prediction was computed. Values are informational only.
type QuantumData struct {
	CircuitDepth  int     `json:"circuit_depth"`
	ExecutionTime float64 `json:"execution_time"`
	Backend       string  `json:"backend"`
	Shots         int     `json:"shots"`
}

// PredictionRecord is the latest prediction for one startup.
type PredictionRecord struct {
	StartupID    int         `json:"startupId"`
	Prediction   float64     `json:"prediction"`
	Confidence   float64     `json:"confidence"`
	ModelVersion string      `json:"modelVersion"`
	Signature    string      `json:"signature"`
	IPFSHash     string      `json:"ipfsHash"`
	TxHash       *string     `json:"txHash"`
	Breakdown    FeatureSet  `json:"breakdown"`
	QuantumData  QuantumData `json:"quantum_data"`
	Time         int64       `json:"time"`
}

// IsPending reports whether r is a placeholder.
func (r *PredictionRecord) IsPending() bool {
	return r.Signature == Pending
}

// Clone returns a copy that shares no mutable state with r.
func (r *PredictionRecord) Clone() PredictionRecord {
	c := *r
	if r.TxHash != nil {
		tx := *r.TxHash
		c.TxHash = &tx
	}
	return c
}

// Placeholder builds the record returned to a caller before scoring runs.
func Placeholder(startupID int, modelVersion string, unix int64) PredictionRecord {
	return PredictionRecord{
		StartupID:    startupID,
		ModelVersion: modelVersion,
		Signature:    Pending,
		IPFSHash:     Pending,
		QuantumData:  QuantumData{Backend: Pending},
		Time:         unix,
	}
}
