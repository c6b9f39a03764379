package worker

import (
	"text2phenotype.com/svmpredict/pipeline"
	"text2phenotype.com/svmpredict/tasks"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

const senderName = "svm"

var ErrPipelineClosed = errors.New("pipeline channel was closed before returning anything")

type Message struct {
	WorkType string `json:"work_type"`
	RedisKey string `json:"redis_key"`
	Sender   string `json:"sender"`
	Version  string `json:"version"`
}

// Reply tells the sender how the task ended up.
type Reply struct {
	Message
	Status         tasks.TaskStatus `json:"status"`
	Attempts       int              `json:"attempts"`
	MaxAttempts    int              `json:"max_attempts"`
	ModelHash      string           `json:"model_hash,omitempty"`
	ResultsFileKey string           `json:"results_file_key,omitempty"`
}

type Task struct {
	delivery       *amqp.Delivery
	predictionTask *tasks.PredictionTask
	message        *Message
	redisKey       string
	modelHash      string
	svmLogger      *zerolog.Logger
}

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	task, err := worker.createTask(delivery)
	rejectLogger := worker.svmLogger.With().Str("message_id", delivery.MessageId).Logger()
	if err != nil {
		worker.svmLogger.Err(err).
			Str("message_id", delivery.MessageId).
			Str("tid", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(task); err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	reply := worker.newReply(task)
	if err = worker.rmq.sendReply(task, reply); err != nil {
		task.svmLogger.Err(err).Msg("Got error while sending message to reply queue")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.svmLogger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.svmLogger.Info().
		Str("status", string(reply.Status)).
		Int("attempts", reply.Attempts).
		Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(delivery *amqp.Delivery) (*Task, error) {
	var message Message
	err := json.Unmarshal(delivery.Body, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	predictionTask, err := worker.redis.getPredictionTask(message.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction task for message, got error %w", err)
	}
	taskLogger := worker.svmLogger.With().
		Str("tid", message.RedisKey).
		Str("config_name", predictionTask.Config).
		Logger()
	task := Task{
		delivery:       delivery,
		predictionTask: predictionTask,
		redisKey:       message.RedisKey,
		message:        &message,
		svmLogger:      &taskLogger,
	}
	return &task, nil
}

func (worker *Worker) newReply(task *Task) Reply {
	reply := Reply{
		Message:     *task.message,
		Status:      task.predictionTask.Status,
		Attempts:    task.predictionTask.Attempts,
		MaxAttempts: worker.config.TaskMaxRetries,
		ModelHash:   task.modelHash,
	}
	reply.Sender = senderName
	if reply.Status == tasks.TaskStatusCompletedSuccess {
		reply.ResultsFileKey = task.predictionTask.ResultsFileKey
	}
	return reply
}

// processTask returns an error only when the task state could not be
// recorded; a failed prediction is stored on the task and acknowledged.
func (worker *Worker) processTask(task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(task)
	if err != nil {
		task.svmLogger.Err(err).
			Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		return nil
	}
	if err = worker.redis.onTaskStarted(task); err != nil {
		task.svmLogger.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update task info: %w", err)
	}
	if err = worker.runPipeline(task); err != nil {
		task.svmLogger.Err(err).Msg("Got error while running pipeline")
		if err = worker.redis.onTaskFailedWithError(task, err); err != nil {
			return err
		}
		return nil
	}
	task.svmLogger.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(task); err != nil {
		task.svmLogger.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) runPipeline(task *Task) (err error) {
	defer recoverWithError(&err)
	task.svmLogger.Info().Msgf("Processing message from RMQ, attempt # %d of %d",
		task.predictionTask.Attempts, worker.config.TaskMaxRetries)
	data, err := worker.s3.getFeatures(task)
	if err != nil {
		task.svmLogger.Err(err).Caller().Msg("Could not fetch features from s3")
		return fmt.Errorf("failed fetch features from s3: %w", err)
	}
	var features [][]float64
	if err = json.Unmarshal(data, &features); err != nil {
		return fmt.Errorf("failed to decode features: %w", err)
	}
	request := pipeline.Request{
		Tid:         task.redisKey,
		Config:      task.predictionTask.Config,
		Features:    features,
		Probability: task.predictionTask.Probability,
	}
	response, ok := <-worker.ppln(request)
	if !ok {
		task.svmLogger.Error().Msg("Pipeline channel was closed before returning anything")
		return ErrPipelineClosed
	}
	if response.Failed() {
		return errors.New(response.Error)
	}
	result, err := json.Marshal(response)
	if err != nil {
		return err
	}
	task.modelHash = response.ModelHash
	task.svmLogger.Info().
		Int("predictions", len(response.Results)).
		Str("model_hash", response.ModelHash).
		Msg("Finished pipeline, saving results to s3")
	if err = worker.s3.saveResultsFile(task, result); err != nil {
		task.svmLogger.Err(err).Msg("Got error while trying to save results")
		return err
	}
	return nil
}

func (worker *Worker) shouldPerformTask(task *Task) (bool, error) {
	predictionTask := task.predictionTask
	taskLogger := task.svmLogger

	if predictionTask.Status.Complete() {
		taskLogger.Info().Msg("Task is already done. (might indicate issue acking message with RMQ). Sending reply.")
		return false, nil
	}
	if predictionTask.UserCanceled {
		taskLogger.Info().Msg("Task was canceled, no need to perform it. Sending reply.")
		err := worker.redis.onTaskCancelled(task)
		return false, err
	}
	if reason := worker.unservableReason(predictionTask); reason != "" {
		taskLogger.Info().Str("reason", reason).Msg("Task can never succeed on this worker. Sending reply.")
		err := worker.redis.onTaskRejected(task, reason)
		return false, err
	}
	if predictionTask.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("Prediction task has exceeded retries. Sending reply.")
		err := worker.redis.onTaskExceededRetries(task, worker.config.TaskMaxRetries)
		return false, err
	}
	return true, nil
}

// unservableReason explains why retrying the task cannot help, or returns
// an empty string.
func (worker *Worker) unservableReason(predictionTask *tasks.PredictionTask) string {
	model, ok := worker.resolveModel(predictionTask.Config)
	if !ok {
		return fmt.Sprintf("configuration %q is not served", predictionTask.Config)
	}
	if predictionTask.Probability != nil && *predictionTask.Probability && !model.Calibrated {
		return fmt.Sprintf("configuration %q has no probability estimates", model.Config)
	}
	return ""
}

func recoverWithError(err *error) {
	if rv := recover(); rv != nil {
		*err = fmt.Errorf("got panic: %v", rv)
	}
}
