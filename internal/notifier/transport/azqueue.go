package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/bytedance/sonic"
)

type queueClient interface {
	EnqueueMessage(ctx context.Context, content string, o *azqueue.EnqueueMessageOptions) (azqueue.EnqueueMessagesResponse, error)
}

// Envelope сообщение очереди; бот различает пользователей по user_id
type Envelope struct {
	UserID  string          `json:"user_id"`
	Command json.RawMessage `json:"command"`
}

type AzureQueue struct {
	queue queueClient
}

func NewAzureQueue(queue queueClient) *AzureQueue {
	return &AzureQueue{queue: queue}
}

// NewAzureQueueFromConnectionString повторы отключены: не более одной попытки
func NewAzureQueueFromConnectionString(connStr, queueName string) (*AzureQueue, error) {
	opts := azqueue.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries: -1,
				TryTimeout: time.Second * 10,
			},
		},
	}
	qc, err := azqueue.NewQueueClientFromConnectionString(connStr, queueName, &opts)
	if err != nil {
		return nil, fmt.Errorf("клиент очереди: %w", err)
	}
	return NewAzureQueue(qc), nil
}

func (q *AzureQueue) SendData(ctx context.Context, userID string, data []byte) error {
	body, err := sonic.ConfigStd.Marshal(Envelope{UserID: userID, Command: data})
	if err != nil {
		return fmt.Errorf("сериализация конверта: %w", err)
	}
	if _, err := q.queue.EnqueueMessage(ctx, string(body), nil); err != nil {
		return fmt.Errorf("azqueue enqueue: %w", err)
	}
	return nil
}
