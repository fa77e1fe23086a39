package service

import "agriyield/entities"

// SlotPrefix is the storage slot name; each browser gets SlotPrefix + ":" + uid.
const SlotPrefix = "agriYieldHistory"

// HistoryService never fails the caller: persistence errors are logged and swallowed.
type HistoryService interface {
	Append(uid string, form entities.PredictionFormData, result entities.PredictionResult) entities.HistoricalPrediction
	// List returns the log most recent first; a missing or corrupt slot reads as empty.
	List(uid string) []entities.HistoricalPrediction
	Clear(uid string)
}
