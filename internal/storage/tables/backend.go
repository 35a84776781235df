package tables

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"taskPlanner/internal/logger"
	"taskPlanner/internal/storage"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

const (
	partitionKey = "planner"
	healthRowKey = "healthcheck"

	payloadProperty = "Payload"
	chunksProperty  = "Chunks"

	// строковое свойство ограничено 64 KiB в UTF-16; байт UTF-8 не меньше кодовой единицы UTF-16
	chunkSize = 32 * 1024
	// сущность ограничена 1 MiB вместе с ключами
	maxChunks = 14
)

// ErrPayloadTooLarge коллекция не помещается в одну сущность таблицы
var ErrPayloadTooLarge = errors.New("коллекция превышает размер сущности Azure Tables")

type tableClient interface {
	GetEntity(ctx context.Context, partitionKey, rowKey string, options *aztables.GetEntityOptions) (aztables.GetEntityResponse, error)
	UpsertEntity(ctx context.Context, entity []byte, options *aztables.UpsertEntityOptions) (aztables.UpsertEntityResponse, error)
}

// Storage слоты как строки таблицы Azure Table Storage. Коллекция делится на строковые
// свойства Payload, Payload1, ... не длиннее chunkSize байт.
type Storage struct {
	table tableClient
}

func New(table tableClient) *Storage {
	return &Storage{table: table}
}

// NewFromConnectionString создаёт таблицу при необходимости
func NewFromConnectionString(ctx context.Context, connStr, tableName string) (*Storage, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute,
				RetryDelay:    time.Second,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, fmt.Errorf("клиент таблиц: %w", err)
	}

	client := svc.NewClient(tableName)
	if _, err := client.CreateTable(ctx, nil); err != nil {
		var respErr *azcore.ResponseError
		if !(errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists)) {
			logger.Error("Storage: Не удалось создать таблицу", err, zap.String("table", tableName))
			return nil, fmt.Errorf("создание таблицы %s: %w", tableName, err)
		}
	}

	logger.Info("Storage: Подключение к Azure Tables", zap.String("table", tableName))
	return New(client), nil
}

// rowKey RowKey не допускает символы / \ # ?
func rowKey(key string) string {
	return url.PathEscape(key)
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

func chunkProperty(i int) string {
	if i == 0 {
		return payloadProperty
	}
	return payloadProperty + strconv.Itoa(i)
}

// splitPayload режет по границам рун, чтобы каждое свойство оставалось корректной строкой
func splitPayload(payload []byte) []string {
	if len(payload) == 0 {
		return []string{""}
	}

	var chunks []string
	for len(payload) > 0 {
		n := min(chunkSize, len(payload))
		for n < len(payload) && n > 0 && !utf8.RuneStart(payload[n]) {
			n--
		}
		chunks = append(chunks, string(payload[:n]))
		payload = payload[n:]
	}
	return chunks
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.table.GetEntity(ctx, partitionKey, rowKey(key), nil)
	if err != nil {
		if isNotFound(err) {
			return nil, storage.ErrSlotNotFound
		}
		return nil, fmt.Errorf("чтение сущности: %w", err)
	}

	var ent map[string]any
	if err := sonic.ConfigStd.Unmarshal(resp.Value, &ent); err != nil {
		return nil, fmt.Errorf("разбор сущности: %w", err)
	}

	// сущности без Chunks записаны одним свойством
	chunks := 1
	if n, ok := ent[chunksProperty].(float64); ok {
		chunks = int(n)
	}

	var b strings.Builder
	for i := range chunks {
		part, ok := ent[chunkProperty(i)].(string)
		if !ok {
			return nil, fmt.Errorf("разбор сущности %s: нет свойства %s", key, chunkProperty(i))
		}
		b.WriteString(part)
	}
	return []byte(b.String()), nil
}

func (s *Storage) Set(ctx context.Context, key string, payload []byte) error {
	chunks := splitPayload(payload)
	if len(chunks) > maxChunks {
		logger.Warn("Storage: Коллекция не помещается в сущность",
			zap.String("key", key),
			zap.Int("bytes", len(payload)))
		return fmt.Errorf("%w: слот %s, %d байт", ErrPayloadTooLarge, key, len(payload))
	}

	ent := map[string]any{
		"PartitionKey": partitionKey,
		"RowKey":       rowKey(key),
		chunksProperty: len(chunks),
	}
	for i, part := range chunks {
		ent[chunkProperty(i)] = part
	}

	data, err := sonic.ConfigStd.Marshal(ent)
	if err != nil {
		return fmt.Errorf("сериализация сущности: %w", err)
	}

	// Replace удаляет свойства, оставшиеся от более длинной коллекции
	_, err = s.table.UpsertEntity(ctx, data, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace})
	if err != nil {
		return fmt.Errorf("запись сущности: %w", err)
	}
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	_, err := s.table.GetEntity(ctx, partitionKey, healthRowKey, nil)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("azure tables: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	return nil
}
