package core

// SupportReply is the AI support assistant's structured answer.
type SupportReply struct {
	Message          string   `json:"message" jsonschema_description:"A direct, practical answer to the manager's question about running the shop system"`
	SuggestedActions []string `json:"suggested_actions" jsonschema_description:"Zero or more short follow-up actions the manager could take next, each under ten words"`
	Confidence       float64  `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
}

// BackupManifest is the AI-written summary attached to a backup log entry.
type BackupManifest struct {
	Summary    string `json:"summary" jsonschema_description:"One or two sentences describing what this backup contains, in plain business language"`
	RiskNote   string `json:"risk_note" jsonschema_description:"A one-sentence note on anything unusual in the dataset, or an empty string"`
}
