package worker

import (
	"text2phenotype.com/svmpredict/tasks"
	"fmt"
)

type redisTransactions interface {
	getPredictionTask(redisKey string) (*tasks.PredictionTask, error)
	onTaskStarted(task *Task) error
	onTaskCancelled(task *Task, errorMessages ...string) error
	onTaskRejected(task *Task, reason string) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) getPredictionTask(redisKey string) (*tasks.PredictionTask, error) {
	return wrapper.tasksClient.Predictions.Get(redisKey)
}

// update applies mark to the stored document and mirrors the result on task,
// so the reply reports the state that was saved.
func (wrapper *redisClientWrapper) update(task *Task, mark func(predictionTask *tasks.PredictionTask)) error {
	return wrapper.tasksClient.Predictions.Update(task.redisKey, func(predictionTask *tasks.PredictionTask) {
		mark(predictionTask)
		*task.predictionTask = *predictionTask
	})
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	return wrapper.update(task, markStarted)
}

func (wrapper *redisClientWrapper) onTaskCancelled(task *Task, errorMessages ...string) error {
	return wrapper.update(task, func(predictionTask *tasks.PredictionTask) {
		markCancelled(predictionTask, errorMessages...)
	})
}

func (wrapper *redisClientWrapper) onTaskRejected(task *Task, reason string) error {
	return wrapper.update(task, func(predictionTask *tasks.PredictionTask) {
		markRejected(predictionTask, reason)
	})
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	return wrapper.update(task, func(predictionTask *tasks.PredictionTask) {
		markExceededRetries(predictionTask, maxRetries)
	})
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.update(task, func(predictionTask *tasks.PredictionTask) {
		markFailed(predictionTask, err)
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	resultsFileKey := getResultsFileKey(task)
	return wrapper.update(task, func(predictionTask *tasks.PredictionTask) {
		markComplete(predictionTask, resultsFileKey)
	})
}

func markStarted(task *tasks.PredictionTask) {
	task.Status = tasks.TaskStatusStarted
	task.Attempts += 1
	task.StartedAt = getFormattedNow()
	task.CompletedAt = nil
}

func markCancelled(task *tasks.PredictionTask, errorMessages ...string) {
	task.Status = tasks.TaskStatusCanceled
	task.StartedAt = getFormattedNow()
	task.CompletedAt = getFormattedNow()
	task.Attempts += 1
	task.ErrorMessages = append(task.ErrorMessages, errorMessages...)
}

func markRejected(task *tasks.PredictionTask, reason string) {
	task.Status = tasks.TaskStatusCompletedFailure
	task.StartedAt = getFormattedNow()
	task.CompletedAt = getFormattedNow()
	task.Attempts += 1
	task.ErrorMessages = append(task.ErrorMessages, reason)
}

func markExceededRetries(task *tasks.PredictionTask, maxRetries int) {
	task.Status = tasks.TaskStatusCompletedFailure
	task.StartedAt = getFormattedNow()
	task.CompletedAt = getFormattedNow()
	task.Attempts += 1
	task.ErrorMessages = append(
		task.ErrorMessages,
		fmt.Sprintf(
			"Task has exceeded retries. (Attempts: %d, max retries: %d )",
			task.Attempts,
			maxRetries,
		),
	)
}

func markFailed(task *tasks.PredictionTask, err error) {
	task.Status = tasks.TaskStatusFailed
	task.CompletedAt = getFormattedNow()
	task.ErrorMessages = append(task.ErrorMessages, err.Error())
}

func markComplete(task *tasks.PredictionTask, resultsFileKey string) {
	if !task.Status.Complete() {
		task.Status = tasks.TaskStatusCompletedSuccess
	}
	task.CompletedAt = getFormattedNow()
	task.ResultsFileKey = resultsFileKey
}
