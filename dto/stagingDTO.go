package dto

import "quadrantplanner/model"

type StagingOldestItem struct {
	TaskID          string `json:"task_id"`
	Title           string `json:"title"`
	DaysSinceStaged int    `json:"days_since_staged"`
}

type StagingZoneStatus struct {
	CurrentCount       int                `json:"current_count"`
	MaxCapacity        int                `json:"max_capacity"`
	IsFull             bool               `json:"is_full"`
	OldestItem         *StagingOldestItem `json:"oldest_item,omitempty"`
	ProcessingReminder string             `json:"processing_reminder,omitempty"`
}

type StagingZoneResponse struct {
	Status      StagingZoneStatus `json:"status"`
	Tasks       []model.Task      `json:"tasks"`
	Suggestions []string          `json:"suggestions"`
}
