package rmq

import (
	"text2phenotype.com/svmpredict/logger"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type Config struct {
	Host                    string `envconfig:"SVM_RMQ_HOST" required:"true"`
	Port                    string `envconfig:"SVM_RMQ_PORT" required:"true"`
	Username                string `envconfig:"SVM_RMQ_USERNAME" required:"true"`
	Password                string `envconfig:"SVM_RMQ_PASSWORD" required:"true"`
	Exchange                string `envconfig:"SVM_RMQ_DEFAULT_EXCHANGE" default:"svm-default-exchange"`
	MaxParallelRequestCount int    `envconfig:"SVM_MQ_MAX_PARALLEL_REQUESTS" default:"5"`
	TaskQueue               string `envconfig:"SVM_TASK_QUEUE" required:"true"`
	ReplyQueue              string `envconfig:"SVM_REPLY_QUEUE" required:"true"`
}

// Client consumes prediction tasks on one connection and publishes replies
// on another, so a slow consumer never blocks publishing.
type Client struct {
	Deliveries     <-chan amqp.Delivery
	ReqChanErrors  <-chan *amqp.Error
	RespChanErrors <-chan *amqp.Error
	config         Config
	reqConn        *amqp.Connection
	respConn       *amqp.Connection
	respChannel    *amqp.Channel
	rmqLogger      *zerolog.Logger
}

func NewClient() (*Client, error) {
	rmqLogger := logger.NewLogger("RMQ client")
	var err error
	var config Config
	if err = envconfig.Process("", &config); err != nil {
		rmqLogger.Error().Err(err).Msg("Could not read env config")
		return nil, err
	}

	url := getURL(config)
	respConn, respChannel, err := setup(url)
	if err != nil {
		return nil, fmt.Errorf("failed connection: %w", err)
	}
	reqConn, reqChannel, err := setup(url)
	if err != nil {
		_ = respConn.Close()
		return nil, fmt.Errorf("failed connection: %w", err)
	}
	closeAll := func() {
		_ = reqConn.Close()
		_ = respConn.Close()
	}

	q, err := reqChannel.QueueDeclarePassive(
		config.TaskQueue, // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		closeAll()
		return nil, err
	}
	if err := reqChannel.QueueBind(
		config.TaskQueue,
		config.TaskQueue,
		config.Exchange,
		false,
		nil); err != nil {
		closeAll()
		return nil, err
	}
	if err := reqChannel.Qos(config.MaxParallelRequestCount, 0, false); err != nil {
		closeAll()
		return nil, fmt.Errorf("qos: %w", err)
	}

	deliveries, err := reqChannel.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("consume deliveries: %w", err)
	}
	reqChanErrors := reqChannel.NotifyClose(make(chan *amqp.Error, 1))
	respChanErrors := respChannel.NotifyClose(make(chan *amqp.Error, 1))

	rmqLogger.Info().Str("queue", q.Name).Msg("Consuming prediction tasks")
	return &Client{
		Deliveries:     deliveries,
		ReqChanErrors:  reqChanErrors,
		RespChanErrors: respChanErrors,
		config:         config,
		reqConn:        reqConn,
		respConn:       respConn,
		respChannel:    respChannel,
		rmqLogger:      &rmqLogger,
	}, nil
}

func (c *Client) SendReply(msg amqp.Publishing) error {
	return c.respChannel.Publish(
		c.config.Exchange,
		c.config.ReplyQueue,
		false,
		false,
		msg)
}

func (c *Client) Close() {
	_ = c.reqConn.Close()
	_ = c.respConn.Close()
}

func getURL(config Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", config.Username, config.Password, config.Host, config.Port)
}

func setup(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}
