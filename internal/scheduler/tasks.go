package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskGeocodeProfile = "profiles.geocode"

const TaskWelcomeEmail = "profiles.welcome_email"

type GeocodeProfilePayload struct {
	ProfileID   string `json:"profileId"`
	Role        string `json:"role"`
	FullAddress string `json:"fullAddress"`
}

type WelcomeEmailPayload struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

func NewGeocodeProfileTask(payload GeocodeProfilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGeocodeProfile, data), nil
}

func ParseGeocodeProfilePayload(task *asynq.Task) (GeocodeProfilePayload, error) {
	var payload GeocodeProfilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return GeocodeProfilePayload{}, err
	}
	return payload, nil
}

func NewWelcomeEmailTask(payload WelcomeEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWelcomeEmail, data), nil
}

func ParseWelcomeEmailPayload(task *asynq.Task) (WelcomeEmailPayload, error) {
	var payload WelcomeEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return WelcomeEmailPayload{}, err
	}
	return payload, nil
}
