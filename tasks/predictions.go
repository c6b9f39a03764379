package tasks

import (
	"text2phenotype.com/svmpredict/redis"
)

const PredictionsDB redis.DB = 3

type TaskStatus string

const (
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure || s == TaskStatusCanceled
}

func (s TaskStatus) Submitted() bool {
	return s == TaskStatusSubmitted || s == TaskStatusStarted
}

// PredictionTask is a batch prediction request. The feature vectors live in
// S3 at FeaturesFileKey as a JSON array of arrays.
type PredictionTask struct {
	Config          string     `json:"config"`
	Probability     *bool      `json:"probability,omitempty"`
	FeaturesFileKey string     `json:"features_file_key"`
	ResultsFileKey  string     `json:"results_file_key"`
	UserCanceled    bool       `json:"user_canceled"`
	StartedAt       *string    `json:"started_at"`
	CompletedAt     *string    `json:"completed_at"`
	Attempts        int        `json:"attempts"`
	Status          TaskStatus `json:"status"`
	ErrorMessages   []string   `json:"error_messages"`
}

type PredictionTasks struct {
	client redis.Client
}

func NewPredictionTasks(client redis.Client) PredictionTasks {
	return PredictionTasks{client: client}
}

func (tasks PredictionTasks) Get(redisKey string) (*PredictionTask, error) {
	var task PredictionTask
	if err := tasks.client.GetDocument(redisKey, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks PredictionTasks) Update(redisKey string, updateFunc func(task *PredictionTask)) error {
	var task PredictionTask
	return tasks.client.UpdateDocument(redisKey, &task, func() {
		updateFunc(&task)
	})
}
