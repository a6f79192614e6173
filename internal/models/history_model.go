package models

import "time"

// AnalysisHistoryItem records a completed analysis for the history page.
// Stored in the "analysisHistory" collection with an auto-generated ID.
type AnalysisHistoryItem struct {
	ID        string         `json:"id" firestore:"-"` // Document ID, auto-generated
	UserID    string         `json:"userId" firestore:"userId"`
	Mode      AnalysisMode   `json:"mode" firestore:"mode"`
	ImageURL  string         `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"` // empty for image-less modes or when media storage is disabled
	Result    AnalysisResult `json:"result" firestore:"result"`
	CreatedAt time.Time      `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
