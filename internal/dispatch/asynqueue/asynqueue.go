// Package asynqueue runs document parses as asynq tasks on Redis instead of
// polling the documents table.
package asynqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"packslip/internal/domain"
	"packslip/internal/port"
)

// TaskTypeParse is the asynq task type of a document parse.
const TaskTypeParse = "document:parse"

const (
	queueName    = "parse"
	parseTimeout = 5 * time.Minute
)

type parsePayload struct {
	DocumentID uuid.UUID `json:"document_id"`
}

// NewParseTask builds the task for one document.
func NewParseTask(docID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(parsePayload{DocumentID: docID})
	if err != nil {
		return nil, fmt.Errorf("marshaling parse payload: %w", err)
	}
	return asynq.NewTask(TaskTypeParse, payload), nil
}

// Dispatcher enqueues parse tasks.
type Dispatcher struct {
	client *asynq.Client
}

var _ port.ParseDispatcher = (*Dispatcher)(nil)

// NewDispatcher connects a dispatcher to the Redis instance at redisURL.
func NewDispatcher(redisURL string) (*Dispatcher, error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return &Dispatcher{client: asynq.NewClient(redisOpt)}, nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, docID uuid.UUID) error {
	task, err := NewParseTask(docID)
	if err != nil {
		return err
	}
	info, err := d.client.EnqueueContext(ctx, task, asynq.Queue(queueName), asynq.MaxRetry(0))
	if err != nil {
		return fmt.Errorf("asynqueue.Dispatch: %w", err)
	}
	log.Printf("asynqueue.Dispatch: document %s enqueued as task %s", docID, info.ID)
	return nil
}

// Close releases the Redis connection.
func (d *Dispatcher) Close() error {
	return d.client.Close()
}

// DocumentParser is the part of the document service a task runs.
type DocumentParser interface {
	ParseDocument(ctx context.Context, doc *domain.ShipmentDocument, maxAttempts int)
}

// ServerConfig holds task server settings.
type ServerConfig struct {
	RedisURL    string
	Concurrency int
	MaxRetries  int
}

// Server consumes parse tasks. Retries are driven by the document service,
// which re-dispatches requeued documents, so asynq's own retries are off.
type Server struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	handler *Handler
}

// NewServer creates a task server that claims documents from docRepo and
// parses them with parser.
func NewServer(cfg ServerConfig, docRepo port.DocumentRepository, parser DocumentParser) (*Server, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			queueName: 10,
			"default": 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			log.Printf("asynqueue.Server: task %s failed: payload=%s error=%v",
				task.Type(), string(task.Payload()), err)
		}),
	})

	h := NewHandler(docRepo, parser, cfg.MaxRetries)
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeParse, h.ProcessTask)

	return &Server{server: server, mux: mux, handler: h}, nil
}

// Run blocks serving tasks until Shutdown is called.
func (s *Server) Run() error {
	log.Printf("asynqueue.Server: started (queue=%s)", queueName)
	return s.server.Run(s.mux)
}

// Shutdown waits for in-flight tasks and stops the server.
func (s *Server) Shutdown() {
	s.server.Shutdown()
	log.Printf("asynqueue.Server: shutdown complete")
}

// Handler turns a parse task into a claimed document parse.
type Handler struct {
	docRepo    port.DocumentRepository
	parser     DocumentParser
	maxRetries int
}

// NewHandler creates a Handler.
func NewHandler(docRepo port.DocumentRepository, parser DocumentParser, maxRetries int) *Handler {
	return &Handler{docRepo: docRepo, parser: parser, maxRetries: maxRetries}
}

// ProcessTask claims the task's document and parses it. A document that is
// no longer queued was handled by someone else and the task is dropped.
func (h *Handler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var p parsePayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshaling parse payload: %v: %w", err, asynq.SkipRetry)
	}

	doc, err := h.docRepo.ClaimByID(ctx, p.DocumentID)
	if errors.Is(err, domain.ErrDocumentBusy) || errors.Is(err, domain.ErrDocumentNotFound) {
		log.Printf("asynqueue.ProcessTask: skipping document %s: %v", p.DocumentID, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("claiming document %s: %w", p.DocumentID, err)
	}
	doc.ParseAttempts++

	parseCtx, cancel := context.WithTimeout(context.Background(), parseTimeout)
	defer cancel()

	log.Printf("asynqueue.ProcessTask: parsing document %s (attempt %d)", doc.ID, doc.ParseAttempts)
	h.parser.ParseDocument(parseCtx, doc, h.maxRetries)
	return nil
}
