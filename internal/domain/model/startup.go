package model

// Startup is a registry entry. Field names mirror the public JSON schema.
type Startup struct {
	ID           int     `json:"id" koanf:"id"`
	Owner        string  `json:"owner" koanf:"owner"`
	Title        string  `json:"title" koanf:"title"`
	Tagline      string  `json:"tagline" koanf:"tagline"`
	Sector       string  `json:"sector" koanf:"sector"`
	Goal         float64 `json:"goal" koanf:"goal"`
	Raised       float64 `json:"raised" koanf:"raised"`
	MetadataHash string  `json:"metadataHash" koanf:"metadata_hash"`
}

// InvestIntent is the pre-signing payload returned for an investment intent.
type InvestIntent struct {
	IntentID  string  `json:"intentId"`
	StartupID int     `json:"startupId"`
	Investor  string  `json:"investor"`
	Amount    float64 `json:"amount"`
	Timestamp int64   `json:"timestamp"`
	Signature string  `json:"signature"`
}
