package tasks

import (
	"text2phenotype.com/svmpredict/redis"
)

type Client struct {
	Predictions PredictionTasks
}

// NewClient is a preferred way for working with prediction tasks
func NewClient() (Client, error) {
	predictionsRedisClient, err := redis.NewClient(PredictionsDB)
	if err != nil {
		return Client{}, err
	}
	return Client{
		Predictions: PredictionTasks{client: predictionsRedisClient},
	}, nil
}

func (client *Client) Close() {
	_ = client.Predictions.client.Close()
}
