package worker

import (
	"text2phenotype.com/svmpredict/pipeline"
	"text2phenotype.com/svmpredict/tasks"
	"errors"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type failingMethod struct {
	fail bool
}

type withValue struct {
	fail          bool
	returnedValue interface{}
}

type pipelineMock struct {
	ppln   pipeline.Pipeline
	config pipelineMockConfig
	calls  pipelineCall
}

type pipelineMockConfig struct {
	fail     bool
	response pipeline.Response
}

type pipelineCall struct {
	pipeline bool
}

type redisMock struct {
	config redisMockConfig
	calls  redisMockCalls
}

type redisMockConfig struct {
	getPredictionTask     withValue
	onTaskCancelled       failingMethod
	onTaskRejected        failingMethod
	onTaskStarted         failingMethod
	onTaskExceededRetries failingMethod
	onTaskFailedWithError failingMethod
	onTaskComplete        failingMethod
}

type redisMockCalls struct {
	getPredictionTask     bool
	onTaskCancelled       bool
	onTaskRejected        bool
	onTaskStarted         bool
	onTaskExceededRetries bool
	onTaskFailedWithError bool
	onTaskComplete        bool
}

type rmqMock struct {
	config rmqMockConfig
	calls  rmqMockCalls
	reply  Reply
}

type rmqMockConfig struct {
	sendReply           failingMethod
	acknowledgeDelivery failingMethod
}

type rmqMockCalls struct {
	sendReply           bool
	acknowledgeDelivery bool
	rejectDelivery      bool
}

type s3Mock struct {
	config s3MockConfig
	calls  s3MockCalls
	saved  []byte
}

type s3MockConfig struct {
	getFeatures     withValue
	saveResultsFile failingMethod
}

type s3MockCalls struct {
	getFeatures     bool
	saveResultsFile bool
}

func (mock *s3Mock) close() {}

func (mock *rmqMock) close() {}

func (mock *redisMock) close() {}

func getPipelineMock(config pipelineMockConfig) *pipelineMock {
	mock := pipelineMock{config: config}
	if config.fail {
		mock.ppln = func(request pipeline.Request) <-chan pipeline.Response {
			mock.calls.pipeline = true
			ch := make(chan pipeline.Response)
			close(ch)
			return ch
		}
	} else {
		mock.ppln = func(request pipeline.Request) <-chan pipeline.Response {
			mock.calls.pipeline = true
			response := mock.config.response
			response.Tid = request.Tid
			ch := make(chan pipeline.Response, 1)
			ch <- response
			close(ch)
			return ch
		}
	}
	return &mock
}

func (mock *redisMock) getPredictionTask(redisKey string) (*tasks.PredictionTask, error) {
	mock.calls.getPredictionTask = true
	if mock.config.getPredictionTask.fail {
		return nil, errors.New("failed to get prediction task")
	}
	switch mock.config.getPredictionTask.returnedValue.(type) {
	case tasks.PredictionTask:
		task := mock.config.getPredictionTask.returnedValue.(tasks.PredictionTask)
		return &task, nil
	default:
		return &tasks.PredictionTask{}, nil
	}
}

func (mock *redisMock) onTaskStarted(task *Task) error {
	mock.calls.onTaskStarted = true
	if mock.config.onTaskStarted.fail {
		return errors.New("failed to update prediction task on start")
	}
	markStarted(task.predictionTask)
	return nil
}

func (mock *redisMock) onTaskCancelled(task *Task, errorMessages ...string) error {
	mock.calls.onTaskCancelled = true
	if mock.config.onTaskCancelled.fail {
		return errors.New("failed to update prediction task on cancel")
	}
	markCancelled(task.predictionTask, errorMessages...)
	return nil
}

func (mock *redisMock) onTaskRejected(task *Task, reason string) error {
	mock.calls.onTaskRejected = true
	if mock.config.onTaskRejected.fail {
		return errors.New("failed to update prediction task on reject")
	}
	markRejected(task.predictionTask, reason)
	return nil
}

func (mock *redisMock) onTaskExceededRetries(task *Task, maxRetries int) error {
	mock.calls.onTaskExceededRetries = true
	if mock.config.onTaskExceededRetries.fail {
		return errors.New("failed to update prediction task on exceeded retries")
	}
	markExceededRetries(task.predictionTask, maxRetries)
	return nil
}

func (mock *redisMock) onTaskFailedWithError(task *Task, err error) error {
	mock.calls.onTaskFailedWithError = true
	if mock.config.onTaskFailedWithError.fail {
		return errors.New("failed to update prediction task on fail with error")
	}
	markFailed(task.predictionTask, err)
	return nil
}

func (mock *redisMock) onTaskComplete(task *Task) error {
	mock.calls.onTaskComplete = true
	if mock.config.onTaskComplete.fail {
		return errors.New("failed to update prediction task on complete")
	}
	markComplete(task.predictionTask, getResultsFileKey(task))
	return nil
}

func (mock *rmqMock) rejectDelivery(delivery *amqp.Delivery, svmLogger *zerolog.Logger) {
	mock.calls.rejectDelivery = true
}

func (mock *rmqMock) getDeliveriesCh() <-chan amqp.Delivery {
	return nil
}

func (mock *rmqMock) getReqChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) getRespChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) sendReply(task *Task, reply Reply) error {
	mock.calls.sendReply = true
	if mock.config.sendReply.fail {
		return errors.New("failed to send reply")
	}
	mock.reply = reply
	return nil
}

func (mock *rmqMock) acknowledgeDelivery(delivery *amqp.Delivery) error {
	mock.calls.acknowledgeDelivery = true
	if mock.config.acknowledgeDelivery.fail {
		return errors.New("failed to acknowledge delivery")
	}
	return nil
}

func (mock *s3Mock) getFeatures(task *Task) ([]byte, error) {
	mock.calls.getFeatures = true
	if mock.config.getFeatures.fail {
		return nil, errors.New("mock: failed to load from s3")
	}
	switch mock.config.getFeatures.returnedValue.(type) {
	case []byte:
		return mock.config.getFeatures.returnedValue.([]byte), nil
	default:
		return []byte("[[0, 0], [1, 1]]"), nil
	}
}

func (mock *s3Mock) saveResultsFile(task *Task, result []byte) error {
	mock.calls.saveResultsFile = true
	if mock.config.saveResultsFile.fail {
		return errors.New("failed to upload results")
	}
	mock.saved = result
	return nil
}
